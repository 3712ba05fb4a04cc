package transition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielgalbraith/DepTrain/nlp/parser/dependency"
	nlp "github.com/danielgalbraith/DepTrain/nlp/types"
	"github.com/danielgalbraith/DepTrain/util"
)

// BasicDepArc is a labeled arc between node ids; node 0 is the root.
type BasicDepArc struct {
	Head        int
	Relation    int
	Modifier    int
	RawRelation nlp.DepRel
}

var _ nlp.LabeledDepArc = &BasicDepArc{}

func (arc *BasicDepArc) GetHead() int {
	return arc.Head
}

func (arc *BasicDepArc) GetModifier() int {
	return arc.Modifier
}

func (arc *BasicDepArc) GetRelation() nlp.DepRel {
	return arc.RawRelation
}

func (arc *BasicDepArc) Equal(other *BasicDepArc) bool {
	return arc.Head == other.Head && arc.Modifier == other.Modifier && arc.RawRelation == other.RawRelation
}

func (arc *BasicDepArc) String() string {
	return fmt.Sprintf("(%d,%s,%d)", arc.Head, arc.RawRelation, arc.Modifier)
}

type ArcSet interface {
	Clear()
	Add(*BasicDepArc)
	Size() int
	Last() *BasicDepArc
	Index(int) *BasicDepArc

	HasHead(int) bool
	HeadOf(int) (*BasicDepArc, bool)
	Modifiers(int) []int

	Copy() ArcSet
	Equal(ArcSet) bool
}

// ArcSetSimple keeps arcs in insertion order with an index from modifier to
// its arc.
type ArcSetSimple struct {
	Arcs  []*BasicDepArc
	heads []int
}

var _ ArcSet = &ArcSetSimple{}

func NewArcSetSimple(nodes int) *ArcSetSimple {
	s := &ArcSetSimple{Arcs: make([]*BasicDepArc, 0, nodes), heads: make([]int, nodes)}
	s.Clear()
	return s
}

func (s *ArcSetSimple) Clear() {
	s.Arcs = s.Arcs[0:0]
	for i := range s.heads {
		s.heads[i] = -1
	}
}

func (s *ArcSetSimple) Add(arc *BasicDepArc) {
	for arc.Modifier >= len(s.heads) {
		s.heads = append(s.heads, -1)
	}
	s.heads[arc.Modifier] = len(s.Arcs)
	s.Arcs = append(s.Arcs, arc)
}

func (s *ArcSetSimple) Size() int {
	return len(s.Arcs)
}

func (s *ArcSetSimple) Last() *BasicDepArc {
	if len(s.Arcs) == 0 {
		return nil
	}
	return s.Arcs[len(s.Arcs)-1]
}

func (s *ArcSetSimple) Index(i int) *BasicDepArc {
	if i < 0 || i >= len(s.Arcs) {
		return nil
	}
	return s.Arcs[i]
}

func (s *ArcSetSimple) HasHead(modifier int) bool {
	_, exists := s.HeadOf(modifier)
	return exists
}

func (s *ArcSetSimple) HeadOf(modifier int) (*BasicDepArc, bool) {
	if modifier < 0 || modifier >= len(s.heads) || s.heads[modifier] < 0 {
		return nil, false
	}
	return s.Arcs[s.heads[modifier]], true
}

// Modifiers returns the modifiers of head in ascending node order.
func (s *ArcSetSimple) Modifiers(head int) []int {
	var retval []int
	for mod, arcID := range s.heads {
		if arcID >= 0 && s.Arcs[arcID].Head == head {
			retval = append(retval, mod)
		}
	}
	return retval
}

// Arcs are immutable once added, so copies share them.
func (s *ArcSetSimple) Copy() ArcSet {
	arcs := make([]*BasicDepArc, len(s.Arcs), cap(s.Arcs))
	copy(arcs, s.Arcs)
	heads := make([]int, len(s.heads))
	copy(heads, s.heads)
	return &ArcSetSimple{arcs, heads}
}

// Equal compares arc sets regardless of insertion order.
func (s *ArcSetSimple) Equal(other ArcSet) bool {
	if s.Size() != other.Size() {
		return false
	}
	for _, arc := range s.Arcs {
		otherArc, exists := other.HeadOf(arc.Modifier)
		if !exists || !arc.Equal(otherArc) {
			return false
		}
	}
	return true
}

func (s *ArcSetSimple) String() string {
	strs := make([]string, len(s.Arcs))
	for i, arc := range s.Arcs {
		strs[i] = arc.String()
	}
	return "{" + strings.Join(strs, ",") + "}"
}

// TokenNode holds the precomputed surface attributes of a node. Nodes are
// shared between configurations of the same sentence.
type TokenNode struct {
	ID     int
	Form   string
	Norm   string
	Shape  string
	Prefix string
	Suffix string
	Punct  bool
}

const (
	PREFIX_LENGTH = 1
	SUFFIX_LENGTH = 3
)

func NewTokenNode(id int, form string) *TokenNode {
	return &TokenNode{
		ID:     id,
		Form:   form,
		Norm:   strings.ToLower(form),
		Shape:  util.Shape(form),
		Prefix: strings.ToLower(util.Prefix(form, PREFIX_LENGTH)),
		Suffix: strings.ToLower(util.Suffix(form, SUFFIX_LENGTH)),
		Punct:  util.IsPunctuation(form),
	}
}

var RootNode = &TokenNode{ID: 0, Form: nlp.ROOT_TOKEN, Norm: "<root>", Shape: nlp.ROOT_TOKEN, Prefix: "<root>", Suffix: "<root>"}

func (n *TokenNode) String() string {
	return n.Form
}

// GoldTree is the gold analysis of a sentence, indexed by node id; index 0
// is the root and unused.
type GoldTree struct {
	Heads  []int
	Labels []int
}

var (
	ErrCycle         = errors.New("gold heads contain a cycle")
	ErrNonProjective = errors.New("gold tree is not projective")
)

// NewGoldTree builds and validates a gold tree over len(labels) tokens.
// heads are 1-based with 0 for the root; a nil heads slice, or an entry of
// nlp.NO_HEAD, attaches the token to the root. Labels are resolved through
// relations.
func NewGoldTree(heads []int, labels []string, relations *dependency.Vocabulary) (*GoldTree, error) {
	n := len(labels)
	if heads != nil && len(heads) != n {
		return nil, fmt.Errorf("%d heads for %d labels", len(heads), n)
	}
	tree := &GoldTree{Heads: make([]int, n+1), Labels: make([]int, n+1)}
	tree.Heads[0], tree.Labels[0] = -1, -1
	for i, label := range labels {
		id, err := relations.IDOf(label)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i+1, err)
		}
		tree.Labels[i+1] = id
		head := 0
		if heads != nil && heads[i] != nlp.NO_HEAD {
			head = heads[i]
		}
		if head < 0 || head > n {
			return nil, fmt.Errorf("token %d: head %d out of range [0, %d]", i+1, head, n)
		}
		if head == i+1 {
			return nil, fmt.Errorf("token %d is its own head", i+1)
		}
		tree.Heads[i+1] = head
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return tree, nil
}

func (t *GoldTree) Len() int {
	return len(t.Heads) - 1
}

// Dominates reports whether ancestor is on the head path of node.
func (t *GoldTree) Dominates(ancestor, node int) bool {
	for steps := 0; node > 0 && steps <= len(t.Heads); steps++ {
		node = t.Heads[node]
		if node == ancestor {
			return true
		}
	}
	return false
}

// Validate checks that every token reaches the root and that every arc is
// projective.
func (t *GoldTree) Validate() error {
	for node := 1; node < len(t.Heads); node++ {
		if !t.Dominates(0, node) {
			return fmt.Errorf("token %d: %w", node, ErrCycle)
		}
	}
	for mod := 1; mod < len(t.Heads); mod++ {
		head := t.Heads[mod]
		if head == 0 {
			continue
		}
		from, to := util.Min(head, mod), util.Max(head, mod)
		for between := from + 1; between < to; between++ {
			if !t.Dominates(head, between) {
				return fmt.Errorf("arc (%d,%d) over token %d: %w", head, mod, between, ErrNonProjective)
			}
		}
	}
	return nil
}

// Arcs returns the gold arcs as an arc set.
func (t *GoldTree) Arcs(relations *dependency.Vocabulary) ArcSet {
	arcs := NewArcSetSimple(len(t.Heads))
	for mod := 1; mod < len(t.Heads); mod++ {
		label, _ := relations.Label(t.Labels[mod])
		arcs.Add(&BasicDepArc{Head: t.Heads[mod], Relation: t.Labels[mod], Modifier: mod, RawRelation: label})
	}
	return arcs
}
