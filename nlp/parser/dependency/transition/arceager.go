package transition

import (
	"errors"
	"fmt"

	. "github.com/danielgalbraith/DepTrain/alg/transition"
	"github.com/danielgalbraith/DepTrain/nlp/parser/dependency"
)

const (
	SHIFT  byte = 'S'
	REDUCE byte = 'E'
	LEFT   byte = 'L'
	RIGHT  byte = 'R'
)

var (
	SH = Transition{T: SHIFT, V: 0}
	RE = Transition{T: REDUCE, V: 0}
)

func LA(relation int) Transition {
	return Transition{T: LEFT, V: relation}
}

func RA(relation int) Transition {
	return Transition{T: RIGHT, V: relation}
}

// ArcEager is the arc-eager transition system with the root at the end of
// the queue (Ballesteros and Nivre 2013):
//
//	SH	(S,	b|B,	A) => (S|b,	B,	A)		if: b != 0 or S empty
//	LA-r	(S|s,	b|B,	A) => (S,	b|B,	A+{(b,r,s)})	if: s has no head
//	RA-r	(S|s,	b|B,	A) => (S|s|b,	B,	A+{(s,r,b)})	if: b != 0
//	RE	(S|s,	B,	A) => (S,	B,	A)		if: s has a head
//
// The root can only be shifted onto an empty stack, so a terminal
// configuration is an empty queue and a stack holding only the root.
type ArcEager struct {
	Relations *dependency.Vocabulary
}

var _ TransitionSystem = &ArcEager{}

func NewArcEager(relations *dependency.Vocabulary) *ArcEager {
	return &ArcEager{Relations: relations}
}

func (a *ArcEager) Name() string {
	return "Arc Eager (root last)"
}

// Index is 0 for SH, 1 for RE, 2+2l for LA-l and 3+2l for RA-l, so ids of
// existing transitions stay stable as labels are added.
func (a *ArcEager) Index(t Transition) int {
	switch t.T {
	case SHIFT:
		return 0
	case REDUCE:
		return 1
	case LEFT:
		return 2 + 2*t.V
	case RIGHT:
		return 3 + 2*t.V
	}
	return -1
}

func (a *ArcEager) Describe(t Transition) string {
	switch t.T {
	case SHIFT:
		return "SH"
	case REDUCE:
		return "RE"
	case LEFT, RIGHT:
		prefix := "LA-"
		if t.T == RIGHT {
			prefix = "RA-"
		}
		label, err := a.Relations.Label(t.V)
		if err != nil {
			return fmt.Sprintf("%s%d", prefix, t.V)
		}
		return prefix + string(label)
	}
	return t.String()
}

func (a *ArcEager) conf(from Configuration) *SimpleConfiguration {
	conf, ok := from.(*SimpleConfiguration)
	if !ok {
		panic(fmt.Sprintf("arc eager got configuration of type %T", from))
	}
	return conf
}

type legality struct {
	shift, reduce, left, right bool
}

func (a *ArcEager) legality(conf *SimpleConfiguration) legality {
	var l legality
	s, sExists := conf.Stack().Peek()
	b, bExists := conf.Queue().Peek()
	l.shift = bExists && (b != 0 || !sExists)
	if sExists {
		hasHead := conf.Arcs().HasHead(s)
		l.reduce = hasHead
		l.left = bExists && !hasHead
		l.right = bExists && b != 0
	}
	return l
}

// LegalActions returns the legal transitions ordered SH, RE, LA-0..LA-k,
// RA-0..RA-k.
func (a *ArcEager) LegalActions(from Configuration) []Transition {
	l := a.legality(a.conf(from))
	numRelations := a.Relations.Len()
	retval := make([]Transition, 0, 2+2*numRelations)
	if l.shift {
		retval = append(retval, SH)
	}
	if l.reduce {
		retval = append(retval, RE)
	}
	if l.left {
		for rel := 0; rel < numRelations; rel++ {
			retval = append(retval, LA(rel))
		}
	}
	if l.right {
		for rel := 0; rel < numRelations; rel++ {
			retval = append(retval, RA(rel))
		}
	}
	return retval
}

func (a *ArcEager) isLegal(conf *SimpleConfiguration, t Transition) bool {
	l := a.legality(conf)
	switch t.T {
	case SHIFT:
		return l.shift && t.V == 0
	case REDUCE:
		return l.reduce && t.V == 0
	case LEFT:
		return l.left && t.V >= 0 && t.V < a.Relations.Len()
	case RIGHT:
		return l.right && t.V >= 0 && t.V < a.Relations.Len()
	}
	return false
}

// Apply returns the configuration reached by t; from is not modified.
func (a *ArcEager) Apply(from Configuration, t Transition) (Configuration, error) {
	source := a.conf(from)
	if !a.isLegal(source, t) {
		return nil, &IllegalActionError{Transition: t, Action: a.Describe(t), State: source.String()}
	}
	conf := source.Copy().(*SimpleConfiguration)
	switch t.T {
	case LEFT:
		s, _ := conf.Stack().Pop()
		b, _ := conf.Queue().Peek()
		label, _ := a.Relations.Label(t.V)
		conf.AddArc(&BasicDepArc{Head: b, Relation: t.V, Modifier: s, RawRelation: label})
	case RIGHT:
		s, _ := conf.Stack().Peek()
		b, _ := conf.Queue().Dequeue()
		label, _ := a.Relations.Label(t.V)
		conf.AddArc(&BasicDepArc{Head: s, Relation: t.V, Modifier: b, RawRelation: label})
		conf.Stack().Push(b)
	case REDUCE:
		conf.Stack().Pop()
	case SHIFT:
		b, _ := conf.Queue().Dequeue()
		conf.Stack().Push(b)
	}
	conf.SetLastTransition(t)
	return conf, nil
}

func (a *ArcEager) Oracle() Oracle {
	return &ArcEagerOracle{Relations: a.Relations}
}

// ArcEagerOracle is the static oracle for ArcEager (Goldberg and Nivre
// 2012), with the root at the end of the queue. It requires projective gold
// trees.
type ArcEagerOracle struct {
	Relations *dependency.Vocabulary
	gold      *GoldTree
}

var _ Oracle = &ArcEagerOracle{}

var ErrNoGoldTransition = errors.New("no transition leads to the gold tree")

func (o *ArcEagerOracle) Name() string {
	return "Arc Eager static oracle"
}

func (o *ArcEagerOracle) SetGold(g interface{}) error {
	gold, ok := g.(*GoldTree)
	if !ok {
		return fmt.Errorf("arc eager oracle expects *GoldTree, got %T", g)
	}
	if err := gold.Validate(); err != nil {
		return err
	}
	o.gold = gold
	return nil
}

func (o *ArcEagerOracle) Transition(from Configuration) (Transition, error) {
	if o.gold == nil {
		return IDLE, errors.New("oracle has no gold tree")
	}
	conf, ok := from.(*SimpleConfiguration)
	if !ok {
		return IDLE, fmt.Errorf("arc eager oracle got configuration of type %T", from)
	}
	if conf.Len() != len(o.gold.Heads) {
		return IDLE, fmt.Errorf("gold tree has %d tokens, sentence has %d", o.gold.Len(), conf.Len()-1)
	}
	heads := o.gold.Heads
	s, sExists := conf.Stack().Peek()
	b, bExists := conf.Queue().Peek()
	if sExists && bExists {
		if heads[s] == b {
			return LA(o.gold.Labels[s]), nil
		}
		if b != 0 && heads[b] == s {
			return RA(o.gold.Labels[b]), nil
		}
		if conf.Arcs().HasHead(s) && (b == 0 || o.linkedBelow(conf, b)) {
			return RE, nil
		}
	}
	if bExists && (b != 0 || !sExists) {
		return SH, nil
	}
	if sExists && !bExists && conf.Arcs().HasHead(s) {
		return RE, nil
	}
	return IDLE, fmt.Errorf("%w: %s", ErrNoGoldTransition, conf.String())
}

// linkedBelow reports whether b has a gold arc to or from a stack node below
// the top.
func (o *ArcEagerOracle) linkedBelow(conf *SimpleConfiguration, b int) bool {
	heads := o.gold.Heads
	for i := 1; i < conf.Stack().Size(); i++ {
		k, _ := conf.Stack().Index(i)
		if heads[k] == b || (b != 0 && heads[b] == k) {
			return true
		}
	}
	return false
}
