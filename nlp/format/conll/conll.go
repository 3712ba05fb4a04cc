package conll

// Package Conll reads and writes CoNLL-X format files
// For a description see http://ilk.uvt.nl/conll/#dataformat

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/danielgalbraith/DepTrain/nlp/pipeline"
	nlp "github.com/danielgalbraith/DepTrain/nlp/types"
)

const (
	FIELD_SEPARATOR      = '\t'
	COMMENT              = '#'
	NUM_FIELDS           = 10
	FEATURES_SEPARATOR   = "|"
	FEATURE_SEPARATOR    = "="
	FEATURE_CONCAT_DELIM = ","
	EMPTY                = "_"
)

type Features map[string]string

func (f Features) String() string {
	return FormatFeatures(f)
}

func FormatFeatures(feat map[string]string) string {
	if len(feat) == 0 {
		return EMPTY
	}
	strs := make([]string, 0, len(feat))
	for k, v := range feat {
		strs = append(strs, fmt.Sprintf("%v%v%v", k, FEATURE_SEPARATOR, v))
	}
	sort.Strings(strs)
	return strings.Join(strs, FEATURES_SEPARATOR)
}

// A Row is a single row of a conll data set. Head is 0 for the root and
// nlp.NO_HEAD when unassigned.
type Row struct {
	ID      int
	Form    string
	Lemma   string
	CPosTag string
	PosTag  string
	Feats   Features
	Head    int
	DepRel  string
}

func orEmpty(value string) string {
	if value == "" {
		return EMPTY
	}
	return value
}

func (r Row) String() string {
	head := EMPTY
	if r.Head != nlp.NO_HEAD {
		head = strconv.Itoa(r.Head)
	}
	fields := []string{
		strconv.Itoa(r.ID),
		r.Form,
		orEmpty(r.Lemma),
		orEmpty(r.CPosTag),
		orEmpty(r.PosTag),
		FormatFeatures(r.Feats),
		head,
		orEmpty(r.DepRel),
		EMPTY,
		EMPTY}
	return strings.Join(fields, string(FIELD_SEPARATOR))
}

// A Sentence holds rows in id order.
type Sentence []Row

type Sentences []Sentence

func (s Sentence) Words() []string {
	words := make([]string, len(s))
	for i, row := range s {
		words[i] = row.Form
	}
	return words
}

// Example converts an annotated sentence into a training example. Rows
// with an unassigned head attach to the root.
func (s Sentence) Example() pipeline.Example {
	example := pipeline.Example{
		Words: s.Words(),
		Deps:  make([]string, len(s)),
		Heads: make([]int, len(s)),
	}
	example.Text = strings.Join(example.Words, " ")
	for i, row := range s {
		example.Deps[i] = row.DepRel
		example.Heads[i] = row.Head
	}
	return example
}

func (sents Sentences) Examples() []pipeline.Example {
	examples := make([]pipeline.Example, len(sents))
	for i, sent := range sents {
		examples[i] = sent.Example()
	}
	return examples
}

func ParseInt(value string) (int, error) {
	if value == EMPTY {
		return nlp.NO_HEAD, nil
	}
	i, err := strconv.ParseInt(value, 10, 0)
	return int(i), err
}

func ParseString(value string) string {
	if value == EMPTY {
		return ""
	}
	return value
}

func ParseFeatures(featuresStr string) (Features, error) {
	var featureMap Features
	if featuresStr == EMPTY {
		return featureMap, nil
	}

	featureList := strings.Split(featuresStr, FEATURES_SEPARATOR)
	featureMap = make(Features, len(featureList))
	for _, featureStr := range featureList {
		featureKV := strings.Split(featureStr, FEATURE_SEPARATOR)
		if len(featureKV) != 2 {
			return nil, fmt.Errorf("wrong number of fields for split of feature %q", featureStr)
		}
		featName := featureKV[0]
		featValue := featureKV[1]
		existingFeatValue, featExist := featureMap[featName]
		if featExist {
			featureMap[featName] = existingFeatValue + FEATURE_CONCAT_DELIM + featValue
		} else {
			featureMap[featName] = featValue
		}
	}
	return featureMap, nil
}

func ParseRow(record []string) (Row, error) {
	var row Row
	id, err := strconv.Atoi(record[0])
	if err != nil {
		return row, fmt.Errorf("error parsing ID field (%s): %w", record[0], err)
	}
	row.ID = id

	form := ParseString(record[1])
	if form == "" {
		return row, errors.New("empty FORM field")
	}
	row.Form = form
	row.Lemma = ParseString(record[2])
	row.CPosTag = ParseString(record[3])
	row.PosTag = ParseString(record[4])

	features, err := ParseFeatures(record[5])
	if err != nil {
		return row, fmt.Errorf("error parsing FEATS field (%s): %w", record[5], err)
	}
	row.Feats = features

	head, err := ParseInt(record[6])
	if err != nil {
		return row, fmt.Errorf("error parsing HEAD field (%s): %w", record[6], err)
	}
	row.Head = head

	deprel := ParseString(record[7])
	if deprel == "" {
		return row, errors.New("empty DEPREL field")
	}
	row.DepRel = deprel
	return row, nil
}

// Read parses sentences separated by blank lines. Lines starting with #
// are comments.
func Read(reader io.Reader) (Sentences, error) {
	var sentences Sentences
	csvReader := csv.NewReader(reader)
	csvReader.Comma = FIELD_SEPARATOR
	csvReader.Comment = COMMENT
	csvReader.FieldsPerRecord = NUM_FIELDS
	csvReader.LazyQuotes = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failure reading delimited file: %w", err)
	}

	var currentSent Sentence
	for i, record := range records {
		// the csv reader skips empty lines, so an id of 1 starts a sentence
		row, err := ParseRow(record)
		if err != nil {
			return nil, fmt.Errorf("error processing record %d at sentence %d: %w", i, len(sentences), err)
		}
		if row.ID == 1 && currentSent != nil {
			sentences = append(sentences, currentSent)
			currentSent = nil
		}
		if row.ID != len(currentSent)+1 {
			return nil, fmt.Errorf("record %d at sentence %d: expected id %d, got %d", i, len(sentences), len(currentSent)+1, row.ID)
		}
		currentSent = append(currentSent, row)
	}
	if currentSent != nil {
		sentences = append(sentences, currentSent)
	}
	return sentences, nil
}

func ReadFile(filename string) (Sentences, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(file)
}

func Write(writer io.Writer, sents Sentences) error {
	for _, sent := range sents {
		for _, row := range sent {
			if _, err := io.WriteString(writer, row.String()+"\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(writer, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func WriteFile(filename string, sents Sentences) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Write(file, sents); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Doc2Conll converts each sentence of a processed document into rows.
func Doc2Conll(doc *nlp.Doc) Sentences {
	var sents Sentences
	for _, tokens := range doc.Sentences() {
		sent := make(Sentence, len(tokens))
		for i, token := range tokens {
			sent[i] = Row{
				ID:     i + 1,
				Form:   token.Text,
				Head:   token.Head,
				DepRel: string(token.DepRel),
			}
		}
		sents = append(sents, sent)
	}
	return sents
}
