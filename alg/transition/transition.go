package transition

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
)

// IDLE is the last transition of a freshly initialized configuration.
var IDLE = Transition{'I', 0}

// Transition is a typed action with an integer value; for labeled actions the
// value is the label id. Transitions are comparable and usable as map keys.
type Transition struct {
	T byte
	V int
}

func (t Transition) Type() byte {
	return t.T
}

func (t Transition) Value() int {
	return t.V
}

func (t Transition) Equal(other Transition) bool {
	return t == other
}

func (t Transition) String() string {
	return fmt.Sprintf("%c-%d", t.T, t.V)
}

type Configuration interface {
	Init(interface{})
	Terminal() bool

	Copy() Configuration

	Len() int
	SetLastTransition(Transition)
	GetLastTransition() Transition
	String() string

	// Address resolves a feature location such as S0, N1 or S0h to a node.
	Address(location []byte) (nodeID int, exists bool)
	// Attribute returns the value of a node attribute such as w or l.
	Attribute(nodeID int, attribute []byte) (attributeValue string, exists bool)
}

type ConfigurationSequence []Configuration

type TransitionSystem interface {
	// LegalActions returns the legal transitions in a fixed order.
	LegalActions(conf Configuration) []Transition
	Apply(from Configuration, transition Transition) (Configuration, error)

	// Index maps a transition to a dense id used to address model weights.
	Index(transition Transition) int
	Describe(transition Transition) string

	Oracle() Oracle
	Name() string
}

type Decision interface {
	Transition(Configuration) (Transition, error)
}

type Oracle interface {
	Decision
	SetGold(interface{}) error
	Name() string
}

// IllegalActionError is returned when a transition is applied to a
// configuration in which it is not legal.
type IllegalActionError struct {
	Transition Transition
	Action     string
	State      string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action %s in configuration %s", e.Action, e.State)
}

// IsLegal reports whether t is among the legal actions of conf.
func IsLegal(system TransitionSystem, conf Configuration, t Transition) bool {
	for _, legal := range system.LegalActions(conf) {
		if legal == t {
			return true
		}
	}
	return false
}

func (seq ConfigurationSequence) String() string {
	var buf bytes.Buffer
	w := new(tabwriter.Writer)
	w.Init(&buf, 0, 8, 1, '\t', 0)
	for i, conf := range seq {
		w.Write([]byte(conf.String()))
		if i < len(seq)-1 {
			w.Write([]byte{'\n'})
		}
	}
	w.Flush()
	return buf.String()
}

// Transitions returns the transitions that led to each configuration in seq.
func (seq ConfigurationSequence) Transitions() []Transition {
	retval := make([]Transition, 0, len(seq))
	for _, conf := range seq {
		if last := conf.GetLastTransition(); last != IDLE {
			retval = append(retval, last)
		}
	}
	return retval
}

func (seq ConfigurationSequence) Describe(system TransitionSystem) string {
	strs := make([]string, 0, len(seq))
	for _, t := range seq.Transitions() {
		strs = append(strs, system.Describe(t))
	}
	return strings.Join(strs, " ")
}
