package pipeline

import (
	"errors"

	"github.com/danielgalbraith/DepTrain/alg/search"
	"github.com/danielgalbraith/DepTrain/alg/transition"
	"github.com/danielgalbraith/DepTrain/alg/transition/model"
	"github.com/danielgalbraith/DepTrain/nlp/parser/dependency"
	deptransition "github.com/danielgalbraith/DepTrain/nlp/parser/dependency/transition"
	nlp "github.com/danielgalbraith/DepTrain/nlp/types"
	"github.com/danielgalbraith/DepTrain/util/logging"

	"github.com/rs/zerolog"
)

var ErrNoLabels = errors.New("parser has no labels")

// Parser assigns a head and a label to every token of each sentence by
// greedy arc-eager decoding.
type Parser struct {
	Vocabulary *dependency.Vocabulary
	System     *deptransition.ArcEager
	Features   *transition.FeatureSetup
	Extractor  *transition.GenericExtractor
	Model      *model.Perceptron
	Decoder    *search.Deterministic

	log zerolog.Logger
}

var _ Component = &Parser{}

// NewParser returns an untrained parser over features (the built-in set if
// nil) with an empty vocabulary.
func NewParser(features *transition.FeatureSetup, seed int64, initScale float64) (*Parser, error) {
	if features == nil {
		features = transition.DefaultFeatureSetup()
	}
	extractor, err := transition.NewExtractorFromSetup(features)
	if err != nil {
		return nil, err
	}
	vocabulary := dependency.NewVocabulary()
	system := deptransition.NewArcEager(vocabulary)
	return &Parser{
		Vocabulary: vocabulary,
		System:     system,
		Features:   features,
		Extractor:  extractor,
		Model:      model.NewPerceptron(system, extractor, seed, initScale),
		Decoder:    search.NewDeterministic(system, deptransition.NewSimpleConfiguration()),
		log:        logging.NewLogger("parser"),
	}, nil
}

func (p *Parser) Name() string {
	return PARSER
}

// AddLabel registers a dependency label with the parser.
func (p *Parser) AddLabel(name string) (int, error) {
	return p.Vocabulary.AddLabel(name)
}

// Reset discards the model's weights.
func (p *Parser) Reset(seed int64, initScale float64) {
	p.Model = model.NewPerceptron(p.System, p.Extractor, seed, initScale)
}

// Parse returns the head (0 for the root) and label of each token of
// sentence.
func (p *Parser) Parse(sentence nlp.Sentence) ([]int, []nlp.DepRel, error) {
	if p.Vocabulary.Len() == 0 {
		return nil, nil, ErrNoLabels
	}
	conf, _, err := p.Decoder.Parse(sentence, p.Model)
	if err != nil {
		return nil, nil, err
	}
	heads, labels := conf.(*deptransition.SimpleConfiguration).Heads()
	return heads, labels, nil
}

func (p *Parser) Process(doc *nlp.Doc) error {
	for _, sent := range doc.Sentences() {
		if len(sent) == 0 {
			continue
		}
		heads, labels, err := p.Parse(nlp.TokenSentence(sent))
		if err != nil {
			return err
		}
		for i := range sent {
			sent[i].Head, sent[i].DepRel = heads[i], labels[i]
		}
		p.log.Debug().Int("tokens", len(sent)).Msg("parsed sentence")
	}
	return nil
}
