package types

type DepRel string

func (d DepRel) String() string {
	return string(d)
}

type DepArc interface {
	GetModifier() int
	GetHead() int
	String() string
}

type LabeledDepArc interface {
	DepArc
	GetRelation() DepRel
}

type Labeled interface {
	GetLabeledArc(modifier int) LabeledDepArc
}

// LabeledDependencyGraph is a parsed sentence: nodes are 0 (root) and the
// sentence tokens 1..n.
type LabeledDependencyGraph interface {
	Labeled
	NumberOfNodes() int
	Sentence() Sentence
}
