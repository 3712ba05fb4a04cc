package pipeline

import (
	"fmt"
	"slices"

	"github.com/danielgalbraith/DepTrain/nlp/tokenizer"
	nlp "github.com/danielgalbraith/DepTrain/nlp/types"
	"github.com/danielgalbraith/DepTrain/util/logging"

	"github.com/rs/zerolog"
)

const (
	SENTENCIZER = "sentencizer"
	PARSER      = "parser"
)

// Component is a named processing step over a tokenized document.
type Component interface {
	Name() string
	Process(doc *nlp.Doc) error
}

// Pipeline tokenizes text and runs its components over the result in
// order. A Pipeline returned by Disable is a view sharing its components
// with the pipeline it was taken from.
type Pipeline struct {
	Lang       string
	Tokenizer  tokenizer.Tokenizer
	components []Component
	disabled   map[string]bool

	log zerolog.Logger
}

// New builds a pipeline over the given components. Component names must be
// unique.
func New(lang string, components ...Component) (*Pipeline, error) {
	p := &Pipeline{
		Lang:      lang,
		Tokenizer: tokenizer.NewTokenizerPTB(),
		disabled:  make(map[string]bool),
		log:       logging.NewLogger("pipeline").With().Str("lang", lang).Logger(),
	}
	for _, c := range components {
		if err := p.Add(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Blank returns a pipeline with only sentence segmentation.
func Blank(lang string) *Pipeline {
	p, _ := New(lang, new(Sentencizer))
	return p
}

func (p *Pipeline) Add(c Component) error {
	if _, exists := p.get(c.Name()); exists {
		return fmt.Errorf("pipeline already has a component named %q", c.Name())
	}
	p.components = append(p.components, c)
	return nil
}

func (p *Pipeline) get(name string) (Component, bool) {
	for _, c := range p.components {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Get returns the enabled component called name.
func (p *Pipeline) Get(name string) (Component, bool) {
	if p.disabled[name] {
		return nil, false
	}
	return p.get(name)
}

// Names returns the names of the enabled components, in order.
func (p *Pipeline) Names() []string {
	var names []string
	for _, c := range p.components {
		if !p.disabled[c.Name()] {
			names = append(names, c.Name())
		}
	}
	return names
}

// AllNames includes disabled components.
func (p *Pipeline) AllNames() []string {
	names := make([]string, len(p.components))
	for i, c := range p.components {
		names[i] = c.Name()
	}
	return names
}

// Disable returns a view of p without the named components; p itself is
// unchanged.
func (p *Pipeline) Disable(names ...string) *Pipeline {
	view := *p
	view.components = slices.Clip(p.components)
	view.disabled = make(map[string]bool, len(p.disabled)+len(names))
	for name := range p.disabled {
		view.disabled[name] = true
	}
	for _, name := range names {
		view.disabled[name] = true
	}
	return &view
}

// Parser returns the enabled parser component, if any.
func (p *Pipeline) Parser() (*Parser, bool) {
	c, exists := p.Get(PARSER)
	if !exists {
		return nil, false
	}
	parser, ok := c.(*Parser)
	return parser, ok
}

func (p *Pipeline) Tokenize(text string) *nlp.Doc {
	doc := nlp.NewDoc(text)
	doc.Tokens = p.Tokenizer(text)
	return doc
}

// Run tokenizes text and applies each enabled component.
func (p *Pipeline) Run(text string) (*nlp.Doc, error) {
	doc := p.Tokenize(text)
	for _, c := range p.components {
		if p.disabled[c.Name()] {
			continue
		}
		if err := c.Process(doc); err != nil {
			return doc, fmt.Errorf("%s: %w", c.Name(), err)
		}
	}
	p.log.Debug().Int("tokens", len(doc.Tokens)).Int("sentences", len(doc.Sents)).Strs("components", p.Names()).Msg("processed")
	return doc, nil
}

// Sentencizer marks sentence boundaries after sentence-final punctuation.
// Documents that already have boundaries are left as they are.
type Sentencizer struct{}

var _ Component = &Sentencizer{}

func (s *Sentencizer) Name() string {
	return SENTENCIZER
}

func (s *Sentencizer) Process(doc *nlp.Doc) error {
	if len(doc.Sents) == 0 {
		doc.Sents = tokenizer.Sentences(doc.Tokens)
	}
	return nil
}
