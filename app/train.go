package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/danielgalbraith/DepTrain/alg/perceptron"
	"github.com/danielgalbraith/DepTrain/alg/transition"
	"github.com/danielgalbraith/DepTrain/eval"
	"github.com/danielgalbraith/DepTrain/nlp/format/conll"
	"github.com/danielgalbraith/DepTrain/nlp/pipeline"
	"github.com/danielgalbraith/DepTrain/nlp/store"
	nlp "github.com/danielgalbraith/DepTrain/nlp/types"
	"github.com/danielgalbraith/DepTrain/util/conf"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/gosuri/uiprogress"
)

var (
	configFile   string
	modelDir     string
	outputDir    string
	lang         string
	iterations   int
	seed         int64
	learningRate float64
	decay        float64
	average      bool
	initScale    float64
	featuresFile string
	labelsFile   string
	tConll       string
	textFile     string
	outConll     string
	redisAddr    string
	redisKey     string
	noProgress   bool
)

// TrainRun is a single invocation of the train command.
type TrainRun struct {
	Config *conf.Config
	// Text is parsed with the trained pipeline; empty means TEST_TEXT.
	Text string
	// Out receives the CoNLL rendering of the parsed text.
	Out      io.Writer
	Progress bool
	// Examples overrides the training data; nil means Config.TrainConll or
	// TRAIN_DATA.
	Examples []pipeline.Example
}

// TrainResult is what a run produced.
type TrainResult struct {
	Pipeline   *pipeline.Pipeline
	Iterations []perceptron.IterationResult
	Score      *eval.Attachment
	Doc        *nlp.Doc
}

func (r *TrainRun) examples() ([]pipeline.Example, error) {
	if r.Examples != nil {
		return r.Examples, nil
	}
	if r.Config.TrainConll == "" {
		return TRAIN_DATA, nil
	}
	sents, err := conll.ReadFile(r.Config.TrainConll)
	if err != nil {
		return nil, fmt.Errorf("reading training conll %s: %w", r.Config.TrainConll, err)
	}
	log.Info().Int("sentences", len(sents)).Str("file", r.Config.TrainConll).Msg("read training data")
	return sents.Examples(), nil
}

// load returns the pipeline to train, and whether it came from a saved
// model.
func (r *TrainRun) load() (*pipeline.Pipeline, bool, error) {
	if r.Config.Model == "" {
		log.Info().Str("lang", r.Config.Lang).Msg("created blank pipeline")
		return pipeline.Blank(r.Config.Lang), false, nil
	}
	p, err := store.Load(r.Config.Model)
	if err != nil {
		return nil, false, fmt.Errorf("loading model %s: %w", r.Config.Model, err)
	}
	log.Info().Str("model", r.Config.Model).Strs("components", p.AllNames()).Msg("loaded model")
	return p, true, nil
}

func (r *TrainRun) parser(p *pipeline.Pipeline) (*pipeline.Parser, error) {
	if parser, exists := p.Parser(); exists {
		return parser, nil
	}
	var setup *transition.FeatureSetup
	if r.Config.Features != "" {
		var err error
		if setup, err = transition.LoadFeatureConfFile(r.Config.Features); err != nil {
			return nil, fmt.Errorf("reading features %s: %w", r.Config.Features, err)
		}
	}
	parser, err := pipeline.NewParser(setup, r.Config.Seed, r.Config.InitScale)
	if err != nil {
		return nil, err
	}
	if err := p.Add(parser); err != nil {
		return nil, err
	}
	return parser, nil
}

func (r *TrainRun) addLabels(parser *pipeline.Parser, examples []pipeline.Example) error {
	if r.Config.Labels != "" {
		lines, err := conf.ReadLinesFile(r.Config.Labels)
		if err != nil {
			return fmt.Errorf("reading labels %s: %w", r.Config.Labels, err)
		}
		for _, label := range lines.Values {
			if _, err := parser.AddLabel(label); err != nil {
				return err
			}
		}
	}
	return parser.AddLabels(examples)
}

// Run trains a parser, reports its fit on the training data, parses the
// test text and saves the result. A saved model must parse the text
// exactly as the in-memory one does.
func (r *TrainRun) Run(ctx context.Context) (*TrainResult, error) {
	if err := r.Config.Validate(); err != nil {
		return nil, err
	}
	opts := pipeline.OptionsFromConfig(r.Config)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	examples, err := r.examples()
	if err != nil {
		return nil, err
	}
	p, loaded, err := r.load()
	if err != nil {
		return nil, err
	}
	opts.Resume = loaded
	parser, err := r.parser(p)
	if err != nil {
		return nil, err
	}
	if err := r.addLabels(parser, examples); err != nil {
		return nil, err
	}

	var others []string
	for _, name := range p.AllNames() {
		if name != pipeline.PARSER {
			others = append(others, name)
		}
	}
	var bar *uiprogress.Bar
	if r.Progress {
		uiprogress.Start()
		bar = uiprogress.AddBar(opts.Iterations)
		bar.AppendCompleted()
		bar.PrependElapsed()
	}
	opts.Callback = func(result perceptron.IterationResult) {
		if bar != nil {
			bar.Incr()
		}
		log.Debug().Int("iteration", result.Iteration).Float64("loss", result.Loss).Msg("iteration")
	}
	results, err := p.Disable(others...).Train(ctx, examples, opts)
	if bar != nil {
		uiprogress.Stop()
	}
	if err != nil {
		return nil, err
	}
	losses := make([]float64, len(results))
	for i, result := range results {
		losses[i] = result.Loss
	}
	log.Info().Floats64("losses", losses).Msg("training losses")

	score, err := Evaluate(p, examples)
	if err != nil {
		return nil, err
	}
	log.Info().
		Float64("uas", score.UAS()).
		Float64("las", score.LAS()).
		Float64("exact", score.ExactMatch()).
		Msg("training set attachment")

	text := r.Text
	if text == "" {
		text = TEST_TEXT
	}
	doc, err := p.Run(text)
	if err != nil {
		return nil, err
	}
	log.Info().Strs("dependencies", Dependencies(doc)).Msg("parsed test text")
	if r.Out != nil {
		if err := conll.NewVisualizer(r.Out).Render(doc); err != nil {
			return nil, err
		}
	}

	if r.Config.Output != "" {
		if err := store.Save(p, r.Config.Output); err != nil {
			return nil, err
		}
		reloaded, err := store.Load(r.Config.Output)
		if err != nil {
			return nil, err
		}
		again, err := reloaded.Run(text)
		if err != nil {
			return nil, err
		}
		if !slices.Equal(Dependencies(doc), Dependencies(again)) {
			return nil, fmt.Errorf("model reloaded from %s parses differently", r.Config.Output)
		}
		log.Info().Str("output", r.Config.Output).Msg("reloaded model parses identically")
	}
	if r.Config.RedisAddr != "" {
		key := r.Config.RedisKey
		if key == "" {
			key = DEFAULT_REDIS_KEY_PREFIX + r.Config.Lang
		}
		redisStore := store.NewRedisStore(r.Config.RedisAddr, key)
		defer redisStore.Close()
		if err := redisStore.Save(ctx, p); err != nil {
			return nil, err
		}
	}
	return &TrainResult{Pipeline: p, Iterations: results, Score: score, Doc: doc}, nil
}

// Evaluate parses the gold tokenization of each example with p's parser
// and scores it against the gold tree.
func Evaluate(p *pipeline.Pipeline, examples []pipeline.Example) (*eval.Attachment, error) {
	parser, exists := p.Parser()
	if !exists {
		return nil, fmt.Errorf("pipeline has no parser")
	}
	score := new(eval.Attachment)
	for i, example := range examples {
		words := example.Tokens(p.Tokenizer)
		heads, labels, err := parser.Parse(nlp.BasicSentence(words))
		if err != nil {
			return nil, &perceptron.DataError{Index: i, Err: err}
		}
		goldHeads := make([]int, len(words))
		for j, head := range example.Heads {
			if j < len(goldHeads) && head > 0 {
				goldHeads[j] = head
			}
		}
		if err := score.Add(goldHeads, example.Deps, heads, relations(labels)); err != nil {
			return nil, &perceptron.DataError{Index: i, Err: err}
		}
	}
	return score, nil
}

func relations(labels []nlp.DepRel) []string {
	retval := make([]string, len(labels))
	for i, label := range labels {
		retval[i] = string(label)
	}
	return retval
}

// TrainConfig layers the config file, DEPTRAIN_* environment and the flags
// set on cmd, in that order, over the defaults.
func TrainConfig(cmd *commander.Command) (*conf.Config, error) {
	c := conf.Default()
	if configFile != "" {
		var err error
		if c, err = conf.ReadFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := c.FromEnv(); err != nil {
		return nil, err
	}
	cmd.Flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lang":
			c.Lang = lang
		case "m":
			c.Model = modelDir
		case "o":
			c.Output = outputDir
		case "n":
			c.Iterations = iterations
		case "seed":
			c.Seed = seed
		case "lr":
			c.LearningRate = learningRate
		case "decay":
			c.Decay = decay
		case "avg":
			c.Average = average
		case "scale":
			c.InitScale = initScale
		case "f":
			c.Features = featuresFile
		case "l":
			c.Labels = labelsFile
		case "tc":
			c.TrainConll = tConll
		case "redis":
			c.RedisAddr = redisAddr
		case "key":
			c.RedisKey = redisKey
		}
	})
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func Train(cmd *commander.Command, args []string) error {
	config, err := TrainConfig(cmd)
	if err != nil {
		return err
	}
	for _, file := range []string{config.Features, config.Labels, config.TrainConll, textFile} {
		if file != "" && !VerifyExists(file) {
			return fmt.Errorf("missing file %s", file)
		}
	}
	run := &TrainRun{
		Config:   config,
		Progress: !noProgress,
	}
	if textFile != "" {
		if run.Text, err = readText(textFile); err != nil {
			return err
		}
	}
	if outConll != "" {
		out, err := os.Create(outConll)
		if err != nil {
			return err
		}
		defer out.Close()
		run.Out = out
	}
	_, err = run.Run(context.Background())
	return err
}

func TrainCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Train,
		UsageLine: "train <options>",
		Short:     "trains a dependency parser",
		Long: `
trains an arc-eager dependency parser, parses a test text and saves the model

	$ ./deptrain train [-m <model dir>] [-o <output dir>] [-n <iterations>] [-tc <conll>] [options]

Settings are read from the defaults, then the -c YAML file, then DEPTRAIN_*
environment variables, then flags.
`,
		Flag: *flag.NewFlagSet("train", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&configFile, "c", "", "Optional - YAML configuration file")
	cmd.Flag.StringVar(&lang, "lang", conf.DEFAULT_LANG, "Language of a blank pipeline")
	cmd.Flag.StringVar(&modelDir, "m", "", "Optional - model directory to continue training")
	cmd.Flag.StringVar(&outputDir, "o", "", "Optional - output directory for the trained model")
	cmd.Flag.IntVar(&iterations, "n", conf.DEFAULT_ITERATIONS, "Number of training iterations")
	cmd.Flag.Int64Var(&seed, "seed", conf.DEFAULT_SEED, "Random seed for shuffling and weight init")
	cmd.Flag.Float64Var(&learningRate, "lr", conf.DEFAULT_LEARNING_RATE, "Learning rate")
	cmd.Flag.Float64Var(&decay, "decay", 0, "Learning rate decay per iteration")
	cmd.Flag.BoolVar(&average, "avg", true, "Average weights after training")
	cmd.Flag.Float64Var(&initScale, "scale", 0, "Scale of hash-seeded initial weights; 0 starts from zero")
	cmd.Flag.StringVar(&featuresFile, "f", "", "Optional - features configuration file")
	cmd.Flag.StringVar(&labelsFile, "l", "", "Optional - dependency labels configuration file")
	cmd.Flag.StringVar(&tConll, "tc", "", "Optional - training CoNLL file")
	cmd.Flag.StringVar(&textFile, "text", "", "Optional - text file to parse after training")
	cmd.Flag.StringVar(&outConll, "oc", "", "Optional - output CoNLL file of the parsed text")
	cmd.Flag.StringVar(&redisAddr, "redis", "", "Optional - redis address to save the model to")
	cmd.Flag.StringVar(&redisKey, "key", "", "Optional - redis key of the model")
	cmd.Flag.BoolVar(&noProgress, "noprogress", false, "Hide the progress bar")
	return cmd
}
