package eval

import (
	"fmt"
)

func Ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

type Error interface {
	String() string
	Class() string
}

type Errors []Error

func (ers Errors) ByType() map[string]int {
	retval := make(map[string]int)
	for _, e := range ers {
		retval[e.Class()]++
	}
	return retval
}

// AttachmentError is a token whose head or label differs from the gold
// analysis.
type AttachmentError struct {
	Sentence, Token  int
	GoldHead, Head   int
	GoldLabel, Label string
}

func (e *AttachmentError) Class() string {
	switch {
	case e.GoldHead != e.Head && e.GoldLabel != e.Label:
		return "head+label"
	case e.GoldHead != e.Head:
		return "head"
	}
	return "label"
}

func (e *AttachmentError) String() string {
	return fmt.Sprintf("sentence %d token %d: %d/%s, gold %d/%s", e.Sentence, e.Token, e.Head, e.Label, e.GoldHead, e.GoldLabel)
}

// Attachment accumulates unlabeled and labeled attachment scores.
type Attachment struct {
	Tokens, Heads, Labeled int
	Exact, Population      int
	Errors                 Errors
}

// Add scores one sentence; heads are 1-based with 0 for the root.
func (a *Attachment) Add(goldHeads []int, goldLabels []string, heads []int, labels []string) error {
	if len(goldHeads) != len(heads) || len(goldLabels) != len(labels) || len(goldHeads) != len(goldLabels) {
		return fmt.Errorf("sentence %d: gold has %d tokens, test has %d", a.Population, len(goldHeads), len(heads))
	}
	exact := true
	for i := range goldHeads {
		a.Tokens++
		headOK := goldHeads[i] == heads[i]
		labelOK := goldLabels[i] == labels[i]
		if headOK {
			a.Heads++
			if labelOK {
				a.Labeled++
			}
		}
		if !headOK || !labelOK {
			exact = false
			a.Errors = append(a.Errors, &AttachmentError{
				Sentence:  a.Population,
				Token:     i + 1,
				GoldHead:  goldHeads[i],
				Head:      heads[i],
				GoldLabel: goldLabels[i],
				Label:     labels[i],
			})
		}
	}
	if exact {
		a.Exact++
	}
	a.Population++
	return nil
}

func (a *Attachment) UAS() float64 {
	return Ratio(a.Heads, a.Tokens)
}

func (a *Attachment) LAS() float64 {
	return Ratio(a.Labeled, a.Tokens)
}

func (a *Attachment) ExactMatch() float64 {
	return Ratio(a.Exact, a.Population)
}
