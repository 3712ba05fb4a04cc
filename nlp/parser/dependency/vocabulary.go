package dependency

import (
	"fmt"

	nlp "github.com/danielgalbraith/DepTrain/nlp/types"
	"github.com/danielgalbraith/DepTrain/util"
)

// UnknownLabelError is returned for a label that is not registered, or that
// cannot be registered because the vocabulary is frozen.
type UnknownLabelError struct {
	Label  string
	Frozen bool
}

func (e *UnknownLabelError) Error() string {
	if e.Frozen {
		return fmt.Sprintf("unknown label %q (vocabulary is frozen)", e.Label)
	}
	return fmt.Sprintf("unknown label %q", e.Label)
}

// Vocabulary maps dependency relation names to stable ids. Names are matched
// exactly; ids are assigned in insertion order and never reassigned.
type Vocabulary struct {
	Relations *util.EnumSet
}

func NewVocabulary() *Vocabulary {
	return &Vocabulary{util.NewEnumSet(APPROX_RELATIONS)}
}

const APPROX_RELATIONS = 40

// AddLabel registers name if unseen and returns its id.
func (v *Vocabulary) AddLabel(name string) (int, error) {
	id, _ := v.Relations.Add(name)
	if id < 0 {
		return id, &UnknownLabelError{Label: name, Frozen: true}
	}
	return id, nil
}

func (v *Vocabulary) IDOf(name string) (int, error) {
	id, exists := v.Relations.IndexOf(name)
	if !exists {
		return -1, &UnknownLabelError{Label: name, Frozen: v.Relations.Frozen}
	}
	return id, nil
}

func (v *Vocabulary) Label(id int) (nlp.DepRel, error) {
	value, exists := v.Relations.ValueOf(id)
	if !exists {
		return "", fmt.Errorf("label id %d out of range [0, %d)", id, v.Len())
	}
	return nlp.DepRel(value), nil
}

func (v *Vocabulary) Len() int {
	return v.Relations.Len()
}

func (v *Vocabulary) Labels() []nlp.DepRel {
	values := v.Relations.Values()
	retval := make([]nlp.DepRel, len(values))
	for i, value := range values {
		retval[i] = nlp.DepRel(value)
	}
	return retval
}

// Freeze stops the vocabulary from growing; AddLabel of an unseen name
// fails from then on.
func (v *Vocabulary) Freeze() {
	v.Relations.Frozen = true
}

func (v *Vocabulary) Unfreeze() {
	v.Relations.Frozen = false
}

func (v *Vocabulary) Frozen() bool {
	return v.Relations.Frozen
}

func (v *Vocabulary) String() string {
	return v.Relations.String()
}
