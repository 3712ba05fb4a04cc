package types

import (
	"slices"
	"strings"
)

const (
	ROOT_TOKEN = "<ROOT>"
	ROOT_LABEL = "root"
	NO_HEAD    = -1
)

// Token is a span of the raw text. Head is the 1-based index of the
// governing token within the sentence, 0 for the root and NO_HEAD until a
// parser assigns it.
type Token struct {
	Text   string
	Offset int
	Head   int
	DepRel DepRel
}

func NewToken(text string, offset int) Token {
	return Token{Text: text, Offset: offset, Head: NO_HEAD}
}

func (t Token) End() int {
	return t.Offset + len(t.Text)
}

// Span is a half-open range of token indices.
type Span struct {
	Start, End int
}

func (s Span) Len() int {
	return s.End - s.Start
}

type Doc struct {
	Text   string
	Tokens []Token
	Sents  []Span
}

func NewDoc(text string) *Doc {
	return &Doc{Text: text}
}

// Sentences returns the tokens of each sentence, sharing storage with
// d.Tokens. A document without sentence boundaries is a single sentence.
func (d *Doc) Sentences() [][]Token {
	if len(d.Sents) == 0 {
		if len(d.Tokens) == 0 {
			return nil
		}
		return [][]Token{d.Tokens}
	}
	retval := make([][]Token, len(d.Sents))
	for i, span := range d.Sents {
		retval[i] = d.Tokens[span.Start:span.End]
	}
	return retval
}

func (d *Doc) Words() []string {
	retval := make([]string, len(d.Tokens))
	for i, token := range d.Tokens {
		retval[i] = token.Text
	}
	return retval
}

func (d *Doc) String() string {
	return strings.Join(d.Words(), " ")
}

func (d *Doc) Copy() *Doc {
	return &Doc{Text: d.Text, Tokens: slices.Clone(d.Tokens), Sents: slices.Clone(d.Sents)}
}

type Sentence interface {
	Tokens() []string
}

type BasicSentence []string

func (b BasicSentence) Tokens() []string {
	return []string(b)
}

func (b BasicSentence) Equal(other Sentence) bool {
	return slices.Equal(b.Tokens(), other.Tokens())
}

// TokenSentence adapts the tokens of a sentence of a Doc.
type TokenSentence []Token

func (t TokenSentence) Tokens() []string {
	retval := make([]string, len(t))
	for i, token := range t {
		retval[i] = token.Text
	}
	return retval
}
