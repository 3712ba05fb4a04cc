package transition

import (
	"testing"

	"github.com/danielgalbraith/DepTrain/alg/search"
	. "github.com/danielgalbraith/DepTrain/alg/transition"
	"github.com/danielgalbraith/DepTrain/alg/transition/model"
	nlp "github.com/danielgalbraith/DepTrain/nlp/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type goldInstance struct {
	words nlp.BasicSentence
	gold  *GoldTree
}

func (i *goldInstance) Input() interface{} { return i.words }
func (i *goldInstance) Gold() interface{}  { return i.gold }

func TestCopyUninitialized(t *testing.T) {
	c := NewSimpleConfiguration().Copy().(*SimpleConfiguration)
	assert.Nil(t, c.Stack())
	assert.Nil(t, c.Queue())
	assert.Nil(t, c.Arcs())

	c.Init(nlp.BasicSentence{"a", "b"})
	assert.Equal(t, 3, c.Queue().Size())
}

func TestDecodeOverBlankBase(t *testing.T) {
	v := testVocabulary(t)
	a := NewArcEager(v)
	x, err := NewExtractorFromSetup(DefaultFeatureSetup())
	require.NoError(t, err)
	base := NewSimpleConfiguration()
	decoder := search.NewDeterministic(a, base)
	m := model.NewPerceptron(a, x, 1, 0)

	for _, sent := range testSents {
		c, seq, err := decoder.Parse(nlp.BasicSentence(sent.words), m)
		require.NoError(t, err)
		require.True(t, c.Terminal())
		assert.Len(t, seq, 2*len(sent.words)+2)
		heads, labels := c.(*SimpleConfiguration).Heads()
		require.Len(t, heads, len(sent.words))
		require.Len(t, labels, len(sent.words))
		for _, head := range heads {
			assert.True(t, head >= 0 && head <= len(sent.words), "head %d", head)
		}

		gold, err := NewGoldTree(sent.heads, sent.labels, v)
		require.NoError(t, err)
		instance := &goldInstance{nlp.BasicSentence(sent.words), gold}
		c, _, err = decoder.ParseOracle(instance)
		require.NoError(t, err)
		oracleHeads, _ := c.(*SimpleConfiguration).Heads()
		assert.Equal(t, sent.heads, oracleHeads)

		steps, err := decoder.DecodeSteps(instance, m)
		require.NoError(t, err)
		assert.Len(t, steps, 2*len(sent.words)+1)
	}
	assert.Nil(t, base.Stack(), "decoding leaves the base configuration untouched")
}
