package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgalbraith/DepTrain/alg/perceptron"
	"github.com/danielgalbraith/DepTrain/nlp/parser/dependency"
	deptransition "github.com/danielgalbraith/DepTrain/nlp/parser/dependency/transition"
	"github.com/danielgalbraith/DepTrain/nlp/tokenizer"
	nlp "github.com/danielgalbraith/DepTrain/nlp/types"
	"github.com/danielgalbraith/DepTrain/util/conf"

	"github.com/google/uuid"
)

// Example is an annotated training sentence. Deps holds one label per gold
// token. Words, when set, is the gold tokenization of Text; otherwise Text
// is tokenized by the pipeline. Heads, when set, holds the 1-based head of
// each token (0 for the root); tokens without a head attach to the root.
type Example struct {
	Text  string
	Deps  []string
	Heads []int
	Words []string
}

// Tokens returns the gold tokenization of e.
func (e Example) Tokens(tokenize tokenizer.Tokenizer) []string {
	if len(e.Words) > 0 {
		return e.Words
	}
	tokens := tokenize(e.Text)
	words := make([]string, len(tokens))
	for i, token := range tokens {
		words[i] = token.Text
	}
	return words
}

type instance struct {
	words nlp.BasicSentence
	gold  *deptransition.GoldTree
}

func (i *instance) Input() interface{} {
	return i.words
}

func (i *instance) Gold() interface{} {
	return i.gold
}

// Instance resolves e against vocabulary into a training instance.
func (e Example) Instance(tokenize tokenizer.Tokenizer, vocabulary *dependency.Vocabulary) (perceptron.Instance, error) {
	words := e.Tokens(tokenize)
	if len(words) != len(e.Deps) {
		return nil, fmt.Errorf("%d labels for %d tokens", len(e.Deps), len(words))
	}
	gold, err := deptransition.NewGoldTree(e.Heads, e.Deps, vocabulary)
	if err != nil {
		return nil, err
	}
	return &instance{words: nlp.BasicSentence(words), gold: gold}, nil
}

// AddLabels registers every label of examples.
func (p *Parser) AddLabels(examples []Example) error {
	for i, example := range examples {
		for _, dep := range example.Deps {
			if _, err := p.AddLabel(dep); err != nil {
				return &perceptron.DataError{Index: i, Err: err}
			}
		}
	}
	return nil
}

// TrainOptions configures a training run.
type TrainOptions struct {
	Iterations   int
	LearningRate float64
	Decay        float64
	Seed         int64
	Average      bool
	InitScale    float64
	// Resume continues from the parser's current weights instead of
	// starting from freshly initialized ones.
	Resume   bool
	Callback func(perceptron.IterationResult)
}

func OptionsFromConfig(c *conf.Config) TrainOptions {
	return TrainOptions{
		Iterations:   c.Iterations,
		LearningRate: c.LearningRate,
		Decay:        c.Decay,
		Seed:         c.Seed,
		Average:      c.Average,
		InitScale:    c.InitScale,
	}
}

func (o TrainOptions) Validate() error {
	if o.Iterations <= 0 {
		return &conf.ConfigurationError{Field: "iterations", Msg: fmt.Sprintf("must be positive, got %d", o.Iterations)}
	}
	if o.LearningRate <= 0 {
		return &conf.ConfigurationError{Field: "learning_rate", Msg: fmt.Sprintf("must be positive, got %v", o.LearningRate)}
	}
	if o.Decay < 0 {
		return &conf.ConfigurationError{Field: "decay", Msg: fmt.Sprintf("must not be negative, got %v", o.Decay)}
	}
	return nil
}

func (o TrainOptions) schedule() perceptron.Schedule {
	if o.Decay > 0 {
		return perceptron.InverseDecay{Initial: o.LearningRate, Decay: o.Decay}
	}
	return perceptron.Constant(o.LearningRate)
}

// BeginTraining prepares the enabled parser for training: its label set is
// frozen and, unless resuming, its weights are reinitialized from the seed.
func (p *Pipeline) BeginTraining(opts TrainOptions) (*Parser, error) {
	parser, exists := p.Parser()
	if !exists {
		return nil, errors.New("pipeline has no enabled parser")
	}
	if parser.Vocabulary.Len() == 0 {
		return nil, ErrNoLabels
	}
	parser.Vocabulary.Freeze()
	if !opts.Resume {
		parser.Reset(opts.Seed, opts.InitScale)
	}
	return parser, nil
}

// Instances converts examples into training instances. A malformed example
// is reported as a *perceptron.DataError carrying its index.
func (p *Pipeline) Instances(examples []Example, vocabulary *dependency.Vocabulary) ([]perceptron.Instance, error) {
	instances := make([]perceptron.Instance, len(examples))
	for i, example := range examples {
		inst, err := example.Instance(p.Tokenizer, vocabulary)
		if err != nil {
			return nil, &perceptron.DataError{Index: i, Err: err}
		}
		instances[i] = inst
	}
	return instances, nil
}

// Train trains the enabled parser on examples. Options are validated before
// any work is done.
func (p *Pipeline) Train(ctx context.Context, examples []Example, opts TrainOptions) ([]perceptron.IterationResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	parser, err := p.BeginTraining(opts)
	if err != nil {
		return nil, err
	}
	instances, err := p.Instances(examples, parser.Vocabulary)
	if err != nil {
		return nil, err
	}

	log := p.log.With().Str("run", uuid.New().String()).Logger()
	var updater perceptron.UpdateStrategy = new(perceptron.TrivialStrategy)
	if opts.Average {
		updater = new(perceptron.AveragedStrategy)
	}
	trainer := &perceptron.LinearPerceptron{
		Decoder:    parser.Decoder,
		Updater:    updater,
		Iterations: opts.Iterations,
		Schedule:   opts.schedule(),
		Seed:       opts.Seed,
		Log:        &log,
		Callback:   opts.Callback,
	}
	trainer.Init(parser.Model)
	log.Info().
		Int("examples", len(instances)).
		Int("labels", parser.Vocabulary.Len()).
		Int("iterations", opts.Iterations).
		Int64("seed", opts.Seed).
		Bool("average", opts.Average).
		Strs("components", p.Names()).
		Msg("begin training")
	results, err := trainer.Train(ctx, instances)
	if err != nil {
		return results, err
	}
	log.Info().Int("features", parser.Model.Weights.Len()).Msg("training finished")
	return results, nil
}
