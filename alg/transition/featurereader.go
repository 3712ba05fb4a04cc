package transition

import (
	"os"

	"gopkg.in/yaml.v3"
)

type FeatureGroup struct {
	Group    string   `yaml:"group"`
	Features []string `yaml:"features"`
}

type FeatureSetup struct {
	FeatureGroups []FeatureGroup `yaml:"feature groups"`
}

func (s *FeatureSetup) NumFeatures() int {
	var numFeatures int
	for _, group := range s.FeatureGroups {
		numFeatures += len(group.Features)
	}
	return numFeatures
}

func LoadFeatureConf(conf []byte) (*FeatureSetup, error) {
	setup := new(FeatureSetup)
	if err := yaml.Unmarshal(conf, setup); err != nil {
		return nil, err
	}
	return setup, nil
}

func LoadFeatureConfFile(filename string) (*FeatureSetup, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return LoadFeatureConf(data)
}

// DefaultFeatures is a first order feature set over words, shapes, affixes,
// arc labels, valency and stack/buffer distance.
const DefaultFeatures = `
feature groups:
- group: unigram
  features:
  - S0|w
  - S0|n
  - S0|x
  - S0|s
  - S0|u
  - S1|n
  - N0|w
  - N0|n
  - N0|x
  - N0|s
  - N0|p
  - N1|n
  - N1|x
  - N2|n
- group: pairs
  features:
  - S0|n+N0|n
  - S0|x+N0|x
  - S0|s+N0|s
  - S0|n+N1|n
  - S1|n+S0|n
  - S0|x+N0|n
  - S0|n+N0|x
- group: distance
  features:
  - S0|d
  - S0|n+S0|d
  - N0|n+S0|d
  - S0|n+N0|n+S0|d
- group: valency
  features:
  - S0|vl
  - S0|vr
  - N0|vl
  - S0|n+S0|vr
- group: arcs
  features:
  - S0|l
  - S0h|n
  - S0h|n+S0|n
  - S0l|l
  - S0r|l
  - N0l|l
  - S0|n+S0l|l
  - N0|n+N0l|l
  - S0|l+N0|n
`

func DefaultFeatureSetup() *FeatureSetup {
	setup, err := LoadFeatureConf([]byte(DefaultFeatures))
	if err != nil {
		panic("default feature setup: " + err.Error())
	}
	return setup
}
