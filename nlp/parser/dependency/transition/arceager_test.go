package transition

import (
	"errors"
	"math/rand"
	"testing"

	. "github.com/danielgalbraith/DepTrain/alg/transition"
	"github.com/danielgalbraith/DepTrain/nlp/parser/dependency"
	nlp "github.com/danielgalbraith/DepTrain/nlp/types"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	c := initConf([]string{"a", "b", "c"})
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 0, c.Stack().Size())
	for i, expected := range []int{1, 2, 3, 0} {
		node, exists := c.Queue().Index(i)
		require.True(t, exists)
		assert.Equal(t, expected, node)
	}
	assert.False(t, c.Terminal())
	assert.Equal(t, IDLE, c.GetLastTransition())
}

func TestLegalActionsOrder(t *testing.T) {
	v := testVocabulary(t)
	a := NewArcEager(v)
	c := initConf([]string{"a", "b"})
	assert.Equal(t, []Transition{SH}, a.LegalActions(c))

	next, err := a.Apply(c, SH)
	require.NoError(t, err)
	legal := a.LegalActions(next)
	require.Len(t, legal, 1+2*v.Len())
	assert.Equal(t, SH, legal[0])
	assert.Equal(t, LA(0), legal[1])
	assert.Equal(t, LA(v.Len()-1), legal[v.Len()])
	assert.Equal(t, RA(0), legal[v.Len()+1])

	withHead, err := a.Apply(next, RA(0))
	require.NoError(t, err)
	legal = a.LegalActions(withHead)
	assert.Equal(t, []Transition{RE}, legal, "b is the root: only reduce")
}

func TestIndexDistinct(t *testing.T) {
	v := testVocabulary(t)
	a := NewArcEager(v)
	seen := make(map[int]Transition)
	all := []Transition{SH, RE}
	for rel := 0; rel < v.Len(); rel++ {
		all = append(all, LA(rel), RA(rel))
	}
	for _, tr := range all {
		idx := a.Index(tr)
		_, dup := seen[idx]
		assert.False(t, dup, "index %d reused by %v", idx, tr)
		seen[idx] = tr
	}
	assert.Equal(t, "LA-nsubj", a.Describe(LA(1)))
	assert.Equal(t, "SH", a.Describe(SH))
}

func TestApplyIllegal(t *testing.T) {
	a := NewArcEager(testVocabulary(t))
	c := initConf([]string{"a", "b"})
	before := c.Copy().(*SimpleConfiguration)

	for _, tr := range []Transition{RE, LA(0), RA(0), LA(999)} {
		_, err := a.Apply(c, tr)
		var illegal *IllegalActionError
		require.True(t, errors.As(err, &illegal), "%v", tr)
		assert.Equal(t, tr, illegal.Transition)
	}
	assert.True(t, c.Equal(before))
}

func TestApplyDoesNotMutate(t *testing.T) {
	a := NewArcEager(testVocabulary(t))
	c := initConf([]string{"a", "b"})
	shifted, err := a.Apply(c, SH)
	require.NoError(t, err)
	left, err := a.Apply(shifted, LA(0))
	require.NoError(t, err)

	assert.Equal(t, 1, shifted.(*SimpleConfiguration).Stack().Size())
	assert.Equal(t, 0, shifted.(*SimpleConfiguration).Arcs().Size())
	assert.Equal(t, 1, left.(*SimpleConfiguration).Arcs().Size())
	assert.Equal(t, LA(0), left.GetLastTransition())
}

func runOracle(t *testing.T, a *ArcEager, words []string, gold *GoldTree) *SimpleConfiguration {
	t.Helper()
	oracle := a.Oracle()
	require.NoError(t, oracle.SetGold(gold))
	var c Configuration = initConf(words)
	for steps := 0; !c.Terminal(); steps++ {
		require.LessOrEqual(t, steps, 2*len(words)+2)
		tr, err := oracle.Transition(c)
		require.NoError(t, err)
		require.True(t, IsLegal(a, c, tr), "oracle chose illegal %s in %s", a.Describe(tr), c)
		c, err = a.Apply(c, tr)
		require.NoError(t, err)
	}
	return c.(*SimpleConfiguration)
}

func TestOracleRoundTrip(t *testing.T) {
	v := testVocabulary(t)
	a := NewArcEager(v)
	for _, sent := range testSents {
		gold, err := NewGoldTree(sent.heads, sent.labels, v)
		require.NoError(t, err)
		c := runOracle(t, a, sent.words, gold)

		heads, labels := c.Heads()
		assert.Equal(t, sent.heads, heads)
		expected := make([]nlp.DepRel, len(sent.labels))
		for i, label := range sent.labels {
			expected[i] = nlp.DepRel(label)
		}
		if diff := cmp.Diff(expected, labels); diff != "" {
			t.Errorf("labels mismatch (-want +got):\n%s", diff)
		}
		assert.True(t, c.Arcs().Equal(gold.Arcs(v)))
	}
}

func TestOracleMissingHeads(t *testing.T) {
	v := testVocabulary(t)
	a := NewArcEager(v)
	sent := testSents[0]
	gold, err := NewGoldTree(nil, sent.labels, v)
	require.NoError(t, err)
	c := runOracle(t, a, sent.words, gold)
	heads, _ := c.Heads()
	for i, head := range heads {
		assert.Equal(t, 0, head, "token %d attaches to the root", i+1)
	}

	partial := append([]int(nil), sent.heads...)
	partial[0] = nlp.NO_HEAD
	gold, err = NewGoldTree(partial, sent.labels, v)
	require.NoError(t, err)
	heads, _ = runOracle(t, a, sent.words, gold).Heads()
	assert.Equal(t, 0, heads[0])
	assert.Equal(t, sent.heads[1:], heads[1:])
}

func TestGoldTreeErrors(t *testing.T) {
	v := testVocabulary(t)
	labels := []string{"nsubj", "root", "dobj", "punct"}

	_, err := NewGoldTree([]int{3, 0, 2, 1}, labels, v)
	assert.True(t, errors.Is(err, ErrNonProjective), "%v", err)

	_, err = NewGoldTree([]int{2, 1, 0, 3}, labels, v)
	assert.True(t, errors.Is(err, ErrCycle), "%v", err)

	_, err = NewGoldTree([]int{2, 0, 9, 2}, labels, v)
	assert.Error(t, err)

	_, err = NewGoldTree([]int{2, 0}, labels, v)
	assert.Error(t, err)

	_, err = NewGoldTree([]int{2, 0, 2, 2}, []string{"nsubj", "root", "xcomp", "punct"}, v)
	var unknown *dependency.UnknownLabelError
	assert.True(t, errors.As(err, &unknown))
}

func TestOracleRejectsBadGold(t *testing.T) {
	a := NewArcEager(testVocabulary(t))
	oracle := a.Oracle()
	assert.Error(t, oracle.SetGold("nope"))
	_, err := oracle.Transition(initConf([]string{"a"}))
	assert.Error(t, err)
}

// Any sequence of legal transitions terminates with every token attached.
func TestRandomWalkNeverDeadEnds(t *testing.T) {
	v := testVocabulary(t)
	a := NewArcEager(v)
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 50; trial++ {
		words := testSents[trial%2].words
		var c Configuration = initConf(words)
		for steps := 0; !c.Terminal(); steps++ {
			require.LessOrEqual(t, steps, 2*len(words)+2)
			legal := a.LegalActions(c)
			require.NotEmpty(t, legal, "dead end at %s", c)
			var err error
			c, err = a.Apply(c, legal[rng.Intn(len(legal))])
			require.NoError(t, err)
		}
		heads, _ := c.(*SimpleConfiguration).Heads()
		for i, head := range heads {
			assert.NotEqual(t, nlp.NO_HEAD, head, "token %d unattached", i+1)
		}
	}
}

func TestAddressAndAttributes(t *testing.T) {
	v := testVocabulary(t)
	a := NewArcEager(v)
	det, _ := v.IDOf("det")
	var c Configuration = initConf([]string{"The", "cats", "sat"})
	var err error
	for _, tr := range []Transition{SH, LA(det), SH} {
		c, err = a.Apply(c, tr)
		require.NoError(t, err)
	}
	s0, exists := c.Address([]byte("S0"))
	require.True(t, exists)
	assert.Equal(t, 2, s0)
	n0, _ := c.Address([]byte("N0"))
	assert.Equal(t, 3, n0)
	n1, _ := c.Address([]byte("N1"))
	assert.Equal(t, 0, n1)
	_, exists = c.Address([]byte("N2"))
	assert.False(t, exists)
	_, exists = c.Address([]byte("S0h"))
	assert.False(t, exists)

	s0l, exists := c.Address([]byte("S0l"))
	require.True(t, exists)
	assert.Equal(t, 1, s0l)
	_, exists = c.Address([]byte("S0r"))
	assert.False(t, exists)

	attr := func(node int, name string) string {
		value, exists := c.Attribute(node, []byte(name))
		require.True(t, exists, name)
		return value
	}
	assert.Equal(t, "cats", attr(s0, "w"))
	assert.Equal(t, "the", attr(s0l, "n"))
	assert.Equal(t, "Xxx", attr(s0l, "x"))
	assert.Equal(t, "ats", attr(s0, "s"))
	assert.Equal(t, "t", attr(s0l, "p"))
	assert.Equal(t, "false", attr(s0, "u"))
	assert.Equal(t, "<root>", attr(n1, "p"))
	assert.Equal(t, "det", attr(s0l, "l"))
	assert.Equal(t, "_", attr(s0, "l"))
	assert.Equal(t, "1", attr(s0, "d"))
	assert.Equal(t, "1", attr(s0, "vl"))
	assert.Equal(t, "0", attr(s0, "vr"))
	assert.Equal(t, nlp.ROOT_TOKEN, attr(n1, "w"))
	_, exists = c.Attribute(s0, []byte("q"))
	assert.False(t, exists)
}

func TestExtractorOverConfiguration(t *testing.T) {
	a := NewArcEager(testVocabulary(t))
	x, err := NewExtractorFromSetup(DefaultFeatureSetup())
	require.NoError(t, err)
	var c Configuration = initConf(testSents[0].words)
	c, err = a.Apply(c, SH)
	require.NoError(t, err)
	features := x.Features(c)
	assert.Greater(t, len(features), 10)
	assert.Equal(t, features, x.Features(c.Copy()))
	assert.Contains(t, x.FeatureStrings(c), "S0|n+N0|n:stefflon|don")
}
