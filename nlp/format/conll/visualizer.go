package conll

import (
	"fmt"
	"io"
	"strings"

	nlp "github.com/danielgalbraith/DepTrain/nlp/types"
)

// Visualizer is an output sink for parsed documents: every sentence is
// written as a block of CoNLL rows, preceded by a comment holding its text.
type Visualizer struct {
	Writer   io.Writer
	Comments bool
}

func NewVisualizer(writer io.Writer) *Visualizer {
	return &Visualizer{Writer: writer, Comments: true}
}

func sentenceText(doc *nlp.Doc, tokens []nlp.Token) string {
	first, last := tokens[0], tokens[len(tokens)-1]
	if first.Offset >= 0 && last.End() <= len(doc.Text) && first.Offset <= last.End() {
		return doc.Text[first.Offset:last.End()]
	}
	return strings.Join(nlp.TokenSentence(tokens).Tokens(), " ")
}

func (v *Visualizer) Render(docs ...*nlp.Doc) error {
	for _, doc := range docs {
		sents := Doc2Conll(doc)
		for i, tokens := range doc.Sentences() {
			if len(tokens) == 0 {
				continue
			}
			if v.Comments {
				if _, err := fmt.Fprintf(v.Writer, "%c text = %s\n", COMMENT, sentenceText(doc, tokens)); err != nil {
					return err
				}
			}
			if err := Write(v.Writer, sents[i:i+1]); err != nil {
				return err
			}
		}
	}
	return nil
}
