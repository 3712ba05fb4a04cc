package transition

import (
	"testing"

	"github.com/danielgalbraith/DepTrain/nlp/parser/dependency"
	nlp "github.com/danielgalbraith/DepTrain/nlp/types"

	"github.com/stretchr/testify/require"
)

type testSentence struct {
	words  []string
	heads  []int
	labels []string
}

var testSents = []testSentence{
	{
		words:  []string{"Stefflon", "Don", "is", "on", "the", "periphery", "of", "global", "greatness", "."},
		heads:  []int{2, 6, 6, 6, 6, 0, 9, 9, 6, 6},
		labels: []string{"compound", "nsubj", "cop", "case", "det", "root", "case", "amod", "nmod", "punct"},
	},
	{
		words: []string{"From", "Jools", "Holland", "to", "the", "BBC", "Sound", "Poll", ",", "Steff", "'s",
			"powerful", "presence", "commands", "attention", "both", "on", "record", "and", "in", "real", "life", "."},
		heads: []int{3, 3, 14, 8, 8, 8, 8, 14, 14, 13, 10, 13, 14, 0, 14, 18, 18, 14, 22, 22, 22, 18, 14},
		labels: []string{"case", "compound", "nmod", "case", "det", "compound", "compound", "nmod", "punct",
			"nmod:poss", "case", "amod", "nsubj", "root", "dobj", "cc:preconj", "case", "nmod", "cc", "case",
			"amod", "conj", "punct"},
	},
}

func testVocabulary(t *testing.T) *dependency.Vocabulary {
	v := dependency.NewVocabulary()
	for _, sent := range testSents {
		for _, label := range sent.labels {
			_, err := v.AddLabel(label)
			require.NoError(t, err)
		}
	}
	return v
}

func initConf(words []string) *SimpleConfiguration {
	c := NewSimpleConfiguration()
	c.Init(nlp.BasicSentence(words))
	return c
}
