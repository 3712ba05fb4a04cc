package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/danielgalbraith/DepTrain/eval"
	"github.com/danielgalbraith/DepTrain/nlp/format/conll"
	"github.com/danielgalbraith/DepTrain/nlp/pipeline"
	"github.com/danielgalbraith/DepTrain/nlp/store"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

var (
	input     string
	inputGold string
)

// LoadPipeline reads a saved pipeline from a model directory, or from redis
// when addr is set.
func LoadPipeline(ctx context.Context, dir, addr, key, lang string) (*pipeline.Pipeline, error) {
	if addr == "" {
		if dir == "" {
			return nil, fmt.Errorf("no model directory or redis address given")
		}
		return store.Load(dir)
	}
	if key == "" {
		key = DEFAULT_REDIS_KEY_PREFIX + lang
	}
	redisStore := store.NewRedisStore(addr, key)
	defer redisStore.Close()
	return redisStore.Load(ctx)
}

// ParseText runs p over text and writes the CoNLL rendering to out.
func ParseText(p *pipeline.Pipeline, text string, out io.Writer) error {
	doc, err := p.Run(text)
	if err != nil {
		return err
	}
	log.Info().Int("sentences", len(doc.Sents)).Int("tokens", len(doc.Tokens)).Msg("parsed")
	return conll.NewVisualizer(out).Render(doc)
}

// EvaluateConll scores p against the gold trees of a CoNLL file, parsing
// its gold tokenization.
func EvaluateConll(p *pipeline.Pipeline, filename string) (*eval.Attachment, error) {
	sents, err := conll.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Evaluate(p, sents.Examples())
}

func Parse(cmd *commander.Command, args []string) error {
	p, err := LoadPipeline(context.Background(), modelDir, redisAddr, redisKey, lang)
	if err != nil {
		return err
	}
	text := TEST_TEXT
	if input != "" {
		if !VerifyExists(input) {
			return fmt.Errorf("missing file %s", input)
		}
		if text, err = readText(input); err != nil {
			return err
		}
	}
	var out io.Writer = os.Stdout
	if outConll != "" {
		file, err := os.Create(outConll)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}
	if err := ParseText(p, text, out); err != nil {
		return err
	}
	if inputGold != "" {
		score, err := EvaluateConll(p, inputGold)
		if err != nil {
			return err
		}
		log.Info().
			Float64("uas", score.UAS()).
			Float64("las", score.LAS()).
			Float64("exact", score.ExactMatch()).
			Str("gold", inputGold).
			Msg("attachment")
	}
	return nil
}

func ParseCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Parse,
		UsageLine: "parse <options>",
		Short:     "parses text with a trained model",
		Long: `
parses text with a trained model and writes CoNLL

	$ ./deptrain parse -m <model dir> [-in <text file>] [-oc <out conll>] [-ing <gold conll>]
	$ ./deptrain parse -redis <addr> [-key <key>] [options]

`,
		Flag: *flag.NewFlagSet("parse", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&modelDir, "m", "", "Model directory")
	cmd.Flag.StringVar(&redisAddr, "redis", "", "Optional - redis address to load the model from")
	cmd.Flag.StringVar(&redisKey, "key", "", "Optional - redis key of the model")
	cmd.Flag.StringVar(&lang, "lang", "en", "Language of the default redis key")
	cmd.Flag.StringVar(&input, "in", "", "Optional - text file to parse")
	cmd.Flag.StringVar(&outConll, "oc", "", "Optional - output CoNLL file; stdout by default")
	cmd.Flag.StringVar(&inputGold, "ing", "", "Optional - gold CoNLL file to evaluate against")
	return cmd
}
