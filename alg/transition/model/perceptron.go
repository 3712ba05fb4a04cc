package model

import (
	"encoding/binary"
	"math"
	"sync"

	. "github.com/danielgalbraith/DepTrain/alg/featurevector"
	"github.com/danielgalbraith/DepTrain/alg/perceptron"
	"github.com/danielgalbraith/DepTrain/alg/transition"

	"github.com/twmb/murmur3"
)

// Perceptron is a multiclass linear model over hashed configuration
// features, with one weight per (feature, transition) pair.
type Perceptron struct {
	sync.Mutex
	System     transition.TransitionSystem
	Extractor  transition.FeatureExtractor
	Weights    *AvgSparse
	Generation int
	Seed       int64
	InitScale  float64
}

var _ perceptron.Model = &Perceptron{}

// NewPerceptron returns a model whose untouched weights are zero, or, when
// initScale is positive, uniform in [-initScale, initScale] as a pure
// function of seed.
func NewPerceptron(system transition.TransitionSystem, extractor transition.FeatureExtractor, seed int64, initScale float64) *Perceptron {
	return &Perceptron{
		System:    system,
		Extractor: extractor,
		Weights:   NewAvgSparse(SeededInit(seed, initScale)),
		Seed:      seed,
		InitScale: initScale,
	}
}

func SeededInit(seed int64, scale float64) InitFunc {
	if scale <= 0 {
		return ZeroInit
	}
	return func(feature Feature, transition int) float64 {
		var buf [24]byte
		binary.LittleEndian.PutUint64(buf[0:], uint64(seed))
		binary.LittleEndian.PutUint64(buf[8:], uint64(feature))
		binary.LittleEndian.PutUint64(buf[16:], uint64(transition))
		h := murmur3.New64()
		h.Write(buf[:])
		u := float64(h.Sum64()>>11) / (1 << 53)
		return (2*u - 1) * scale
	}
}

func (m *Perceptron) Score(conf transition.Configuration, candidates []transition.Transition) map[transition.Transition]float64 {
	m.Lock()
	defer m.Unlock()
	return m.score(m.Extractor.Features(conf), candidates)
}

func (m *Perceptron) score(features []Feature, candidates []transition.Transition) map[transition.Transition]float64 {
	retval := make(map[transition.Transition]float64, len(candidates))
	for _, candidate := range candidates {
		retval[candidate] = m.Weights.Score(features, m.System.Index(candidate))
	}
	return retval
}

// Update returns the hinge loss max(0, 1 + score(predicted) - score(gold))
// measured before the update.
func (m *Perceptron) Update(conf transition.Configuration, gold, predicted transition.Transition, learningRate float64) float64 {
	if gold == predicted {
		return 0
	}
	m.Lock()
	defer m.Unlock()
	features := m.Extractor.Features(conf)
	scores := m.score(features, []transition.Transition{gold, predicted})
	loss := math.Max(0, 1+scores[predicted]-scores[gold])

	m.Weights.AddAll(m.Generation, features, m.System.Index(gold), learningRate)
	m.Weights.AddAll(m.Generation, features, m.System.Index(predicted), -learningRate)
	return loss
}

func (m *Perceptron) IncrementGeneration() {
	m.Lock()
	defer m.Unlock()
	m.Generation++
}

func (m *Perceptron) Average() {
	m.Lock()
	defer m.Unlock()
	m.Weights.Average(m.Generation)
	m.Generation = 0
}

// Serialized is the gob form of a Perceptron's parameters.
type Serialized struct {
	Seed      int64
	InitScale float64
	Entries   []Entry
}

func (m *Perceptron) Serialize() *Serialized {
	m.Lock()
	defer m.Unlock()
	return &Serialized{Seed: m.Seed, InitScale: m.InitScale, Entries: m.Weights.Entries()}
}

func (m *Perceptron) Deserialize(s *Serialized) {
	m.Lock()
	defer m.Unlock()
	m.Seed, m.InitScale = s.Seed, s.InitScale
	m.Weights = NewAvgSparse(SeededInit(s.Seed, s.InitScale))
	m.Weights.Load(s.Entries)
	m.Generation = 0
}
