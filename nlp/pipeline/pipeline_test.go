package pipeline

import (
	"errors"
	"testing"

	nlp "github.com/danielgalbraith/DepTrain/nlp/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upper struct {
	seen int
}

func (u *upper) Name() string {
	return "upper"
}

func (u *upper) Process(doc *nlp.Doc) error {
	u.seen++
	return nil
}

type failing struct{}

func (f failing) Name() string {
	return "failing"
}

func (f failing) Process(doc *nlp.Doc) error {
	return errors.New("boom")
}

type named string

func (n named) Name() string {
	return string(n)
}

func (n named) Process(doc *nlp.Doc) error {
	return nil
}

func TestDisableViewAddIsIndependent(t *testing.T) {
	p, err := New("en", named("a"), named("b"), named("c"))
	require.NoError(t, err)

	view := p.Disable()
	require.NoError(t, view.Add(named("view")))
	require.NoError(t, p.Add(named("parent")))
	assert.Equal(t, []string{"a", "b", "c", "view"}, view.AllNames())
	assert.Equal(t, []string{"a", "b", "c", "parent"}, p.AllNames())
}

func TestBlank(t *testing.T) {
	p := Blank("en")
	assert.Equal(t, "en", p.Lang)
	assert.Equal(t, []string{SENTENCIZER}, p.Names())
	_, exists := p.Parser()
	assert.False(t, exists)

	doc, err := p.Run("One sentence. And another one!")
	require.NoError(t, err)
	assert.Len(t, doc.Tokens, 7)
	assert.Equal(t, []nlp.Span{{Start: 0, End: 3}, {Start: 3, End: 7}}, doc.Sents)
}

func TestAddDuplicate(t *testing.T) {
	p := Blank("en")
	assert.Error(t, p.Add(new(Sentencizer)))
	_, err := New("en", &upper{}, &upper{})
	assert.Error(t, err)
}

func TestDisableIsAView(t *testing.T) {
	u := &upper{}
	p, err := New("en", new(Sentencizer), u)
	require.NoError(t, err)

	view := p.Disable("upper")
	assert.Equal(t, []string{SENTENCIZER}, view.Names())
	assert.Equal(t, []string{SENTENCIZER, "upper"}, p.Names())
	assert.Equal(t, []string{SENTENCIZER, "upper"}, view.AllNames())
	_, exists := view.Get("upper")
	assert.False(t, exists)

	_, err = view.Run("text")
	require.NoError(t, err)
	assert.Equal(t, 0, u.seen)
	_, err = p.Run("text")
	require.NoError(t, err)
	assert.Equal(t, 1, u.seen)

	none := view.Disable(SENTENCIZER)
	assert.Empty(t, none.Names())
	assert.Equal(t, []string{SENTENCIZER}, view.Names())
}

func TestRunError(t *testing.T) {
	p, err := New("en", failing{})
	require.NoError(t, err)
	_, err = p.Run("text")
	assert.ErrorContains(t, err, "failing: boom")
}

func TestParserWithoutLabels(t *testing.T) {
	parser, err := NewParser(nil, 1, 0)
	require.NoError(t, err)
	p, err := New("en", new(Sentencizer), parser)
	require.NoError(t, err)
	_, err = p.Run("Hello there.")
	assert.True(t, errors.Is(err, ErrNoLabels))
	// empty text has no sentence to parse
	doc, err := p.Run("")
	require.NoError(t, err)
	assert.Empty(t, doc.Tokens)
}
