package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/danielgalbraith/DepTrain/nlp/pipeline"
	nlp "github.com/danielgalbraith/DepTrain/nlp/types"
	"github.com/danielgalbraith/DepTrain/util/logging"
)

var log = logging.NewLogger("app")

// TRAIN_DATA is the built-in training set: two sentences annotated with
// dependency labels, and heads consistent with them.
var TRAIN_DATA = []pipeline.Example{
	{
		Text:  "Stefflon Don is on the periphery of global greatness.",
		Deps:  []string{"compound", "nsubj", "cop", "case", "det", "root", "case", "amod", "nmod", "punct"},
		Heads: []int{2, 6, 6, 6, 6, 0, 9, 9, 6, 6},
	},
	{
		Text: "From Jools Holland to the BBC Sound Poll, Steff's powerful presence commands attention both on record and in real life.",
		Deps: []string{"case", "compound", "nmod", "case", "det", "compound", "compound", "nmod", "punct", "nmod:poss", "case",
			"amod", "nsubj", "root", "dobj", "cc:preconj", "case", "nmod", "cc", "case", "amod", "conj", "punct"},
		Heads: []int{3, 3, 14, 8, 8, 8, 8, 14, 14, 13, 10, 13, 14, 0, 14, 18, 18, 14, 22, 22, 22, 18, 14},
	},
}

// TEST_TEXT is parsed after training when no other text is given.
const TEST_TEXT = "It was back in 2007 that hip-hop bible XXL launched its first ever Freshman Class, a list of ten up-and-coming artists poised to change the rap game for good. The last decade has seen more than a hundred stars spotlighted as part of the list and its accompanying annual cover feature, but this year features a history-making entry: Stefflon Don. The talented star has already built a strong reputation for herself in the UK; her unique blend of hard-hitting raps and smooth, dancehall beats has galvanized the scene, earning her critical acclaim and a series of impressive chart positions. Now, she seems ready to achieve the unthinkable: global stardom. Earlier this year, her infectious hit “Hurtin’ Me” – featuring former XXL Freshman French Montana – ascended the Billboard charts, peaking at no. 7 and confirming her US fanbase; but could she truly become the first artist to crack the US? And, more importantly, why has it taken so long for UK rappers to achieve Stateside success?"

const DEFAULT_REDIS_KEY_PREFIX = "deptrain:model:"

func VerifyExists(filename string) bool {
	_, err := os.Stat(filename)
	if err != nil {
		log.Error().Err(err).Str("file", filename).Msg("error accessing file")
		return false
	}
	return true
}

// Dependencies renders each token of doc as (text, label, head text).
func Dependencies(doc *nlp.Doc) []string {
	var retval []string
	for _, sent := range doc.Sentences() {
		for _, token := range sent {
			head := token.Text
			if token.Head > 0 {
				head = sent[token.Head-1].Text
			}
			retval = append(retval, fmt.Sprintf("(%s, %s, %s)", token.Text, token.DepRel, head))
		}
	}
	return retval
}

func readText(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
