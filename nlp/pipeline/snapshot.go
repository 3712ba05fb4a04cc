package pipeline

import (
	"fmt"

	"github.com/danielgalbraith/DepTrain/alg/transition"
	"github.com/danielgalbraith/DepTrain/alg/transition/model"

	"gopkg.in/yaml.v3"
)

// Snapshot is everything needed to rebuild a pipeline. Disabled components
// are included.
type Snapshot struct {
	Lang       string
	Components []string
	Labels     []string
	Features   []byte
	Model      *model.Serialized
}

func (p *Pipeline) Snapshot() (*Snapshot, error) {
	s := &Snapshot{Lang: p.Lang, Components: p.AllNames()}
	c, exists := p.get(PARSER)
	if !exists {
		return s, nil
	}
	parser := c.(*Parser)
	features, err := yaml.Marshal(parser.Features)
	if err != nil {
		return nil, err
	}
	s.Features = features
	for _, label := range parser.Vocabulary.Labels() {
		s.Labels = append(s.Labels, string(label))
	}
	s.Model = parser.Model.Serialize()
	return s, nil
}

// FromSnapshot rebuilds the pipeline s was taken from.
func FromSnapshot(s *Snapshot) (*Pipeline, error) {
	p, err := New(s.Lang)
	if err != nil {
		return nil, err
	}
	for _, name := range s.Components {
		var c Component
		switch name {
		case SENTENCIZER:
			c = new(Sentencizer)
		case PARSER:
			parser, err := parserFromSnapshot(s)
			if err != nil {
				return nil, err
			}
			c = parser
		default:
			return nil, fmt.Errorf("unknown component %q in snapshot", name)
		}
		if err := p.Add(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func parserFromSnapshot(s *Snapshot) (*Parser, error) {
	if s.Model == nil {
		return nil, fmt.Errorf("snapshot has a parser but no model")
	}
	features, err := transition.LoadFeatureConf(s.Features)
	if err != nil {
		return nil, fmt.Errorf("snapshot features: %w", err)
	}
	parser, err := NewParser(features, s.Model.Seed, s.Model.InitScale)
	if err != nil {
		return nil, err
	}
	for _, label := range s.Labels {
		if _, err := parser.AddLabel(label); err != nil {
			return nil, err
		}
	}
	parser.Model.Deserialize(s.Model)
	return parser, nil
}
