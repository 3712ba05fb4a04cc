package app

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/danielgalbraith/DepTrain/eval"
	"github.com/danielgalbraith/DepTrain/nlp/format/conll"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

var (
	parsedConll string
	goldConll   string
	showErrors  bool
)

func sentenceTree(sent conll.Sentence) ([]int, []string) {
	heads, labels := make([]int, len(sent)), make([]string, len(sent))
	for i, row := range sent {
		heads[i], labels[i] = row.Head, row.DepRel
		if heads[i] < 0 {
			heads[i] = 0
		}
	}
	return heads, labels
}

// DepEvalConll scores parsed against gold, sentence by sentence. Both must
// hold the same sentences in the same order.
func DepEvalConll(parsed, gold conll.Sentences) (*eval.Attachment, error) {
	if len(parsed) != len(gold) {
		return nil, fmt.Errorf("parsed has %d sentences, gold has %d", len(parsed), len(gold))
	}
	score := new(eval.Attachment)
	for i := range gold {
		goldHeads, goldLabels := sentenceTree(gold[i])
		heads, labels := sentenceTree(parsed[i])
		if err := score.Add(goldHeads, goldLabels, heads, labels); err != nil {
			return nil, err
		}
	}
	return score, nil
}

// WriteScore prints a score table, followed by error counts by class.
func WriteScore(w io.Writer, score *eval.Attachment) error {
	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "Sentences\t%d\n", score.Population)
	fmt.Fprintf(tw, "Tokens\t%d\n", score.Tokens)
	fmt.Fprintf(tw, "UAS\t%.4f\n", score.UAS())
	fmt.Fprintf(tw, "LAS\t%.4f\n", score.LAS())
	fmt.Fprintf(tw, "Exact\t%.4f\n", score.ExactMatch())
	byType := score.Errors.ByType()
	classes := make([]string, 0, len(byType))
	for class := range byType {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		fmt.Fprintf(tw, "Errors (%s)\t%d\n", class, byType[class])
	}
	return tw.Flush()
}

func DepEval(cmd *commander.Command, args []string) error {
	if parsedConll == "" || goldConll == "" {
		return fmt.Errorf("both -p and -g are required")
	}
	for _, file := range []string{parsedConll, goldConll} {
		if !VerifyExists(file) {
			return fmt.Errorf("missing file %s", file)
		}
	}
	parsed, err := conll.ReadFile(parsedConll)
	if err != nil {
		return err
	}
	gold, err := conll.ReadFile(goldConll)
	if err != nil {
		return err
	}
	log.Info().Int("sentences", len(gold)).Str("parsed", parsedConll).Str("gold", goldConll).Msg("evaluating")
	score, err := DepEvalConll(parsed, gold)
	if err != nil {
		return err
	}
	if showErrors {
		for _, e := range score.Errors {
			fmt.Println(e.String())
		}
	}
	return WriteScore(os.Stdout, score)
}

func DepEvalCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       DepEval,
		UsageLine: "depeval <file options>",
		Short:     "evaluates parsed CoNLL against gold",
		Long: `
reports unlabeled and labeled attachment scores of a parsed CoNLL file

	$ ./deptrain depeval -p <parsed conll> -g <gold conll> [-errors]

`,
		Flag: *flag.NewFlagSet("depeval", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&parsedConll, "p", "", "Parsed CoNLL file")
	cmd.Flag.StringVar(&goldConll, "g", "", "Gold CoNLL file")
	cmd.Flag.BoolVar(&showErrors, "errors", false, "List every attachment error")
	return cmd
}
