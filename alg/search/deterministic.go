package search

import (
	"errors"
	"fmt"

	"github.com/danielgalbraith/DepTrain/alg/perceptron"
	"github.com/danielgalbraith/DepTrain/alg/transition"
	"github.com/danielgalbraith/DepTrain/util/logging"

	"github.com/rs/zerolog"
)

var SHOW_ORACLE = false

// Deterministic is a greedy decoder: at every configuration it takes the
// top scoring legal transition.
type Deterministic struct {
	TransFunc          transition.TransitionSystem
	Base               transition.Configuration
	ShowConsiderations bool

	log zerolog.Logger
}

var _ perceptron.StepDecoder = &Deterministic{}

func NewDeterministic(system transition.TransitionSystem, base transition.Configuration) *Deterministic {
	return &Deterministic{
		TransFunc: system,
		Base:      base,
		log:       logging.NewLogger("search"),
	}
}

// Best returns the highest scoring of legal; ties go to the earliest.
func Best(legal []transition.Transition, scores map[transition.Transition]float64) (transition.Transition, bool) {
	if len(legal) == 0 {
		return transition.IDLE, false
	}
	best := legal[0]
	bestScore := scores[best]
	for _, t := range legal[1:] {
		if score := scores[t]; score > bestScore {
			best, bestScore = t, score
		}
	}
	return best, true
}

// maxSteps bounds the number of transitions of a sentence; every arc-eager
// transition shrinks 2*|queue|+|stack|.
func maxSteps(c transition.Configuration) int {
	return 2*c.Len() + 2
}

func (d *Deterministic) init(input interface{}) (transition.Configuration, error) {
	if d.TransFunc == nil {
		return nil, errors.New("can't parse without a transition system")
	}
	if d.Base == nil {
		return nil, errors.New("can't parse without a base configuration")
	}
	c := d.Base.Copy()
	c.Init(input)
	return c, nil
}

// Parse decodes input greedily with model and returns the terminal
// configuration along with the sequence of configurations leading to it.
func (d *Deterministic) Parse(input interface{}, model perceptron.Model) (transition.Configuration, transition.ConfigurationSequence, error) {
	c, err := d.init(input)
	if err != nil {
		return nil, nil, err
	}
	seq := transition.ConfigurationSequence{c}
	limit := maxSteps(c)
	for !c.Terminal() {
		if len(seq) > limit {
			return nil, seq, fmt.Errorf("parse did not terminate after %d transitions", limit)
		}
		legal := d.TransFunc.LegalActions(c)
		best, ok := Best(legal, model.Score(c, legal))
		if !ok {
			return nil, seq, &transition.IllegalActionError{Action: "<none>", State: c.String()}
		}
		if d.ShowConsiderations {
			d.log.Debug().Str("conf", c.String()).Str("chose", d.TransFunc.Describe(best)).Msg("considered")
		}
		if c, err = d.TransFunc.Apply(c, best); err != nil {
			return nil, seq, err
		}
		seq = append(seq, c)
	}
	return c, seq, nil
}

// ParseOracle follows the transition system's oracle to the gold parse.
func (d *Deterministic) ParseOracle(instance perceptron.Instance) (transition.Configuration, transition.ConfigurationSequence, error) {
	c, err := d.init(instance.Input())
	if err != nil {
		return nil, nil, err
	}
	oracle := d.TransFunc.Oracle()
	if err := oracle.SetGold(instance.Gold()); err != nil {
		return nil, nil, err
	}
	seq := transition.ConfigurationSequence{c}
	limit := maxSteps(c)
	for !c.Terminal() {
		if len(seq) > limit {
			return nil, seq, fmt.Errorf("oracle did not terminate after %d transitions", limit)
		}
		gold, err := oracle.Transition(c)
		if err != nil {
			return nil, seq, err
		}
		if c, err = d.TransFunc.Apply(c, gold); err != nil {
			return nil, seq, err
		}
		if SHOW_ORACLE {
			d.log.Debug().Str("conf", c.String()).Msg("oracle")
		}
		seq = append(seq, c)
	}
	return c, seq, nil
}

// DecodeSteps walks the oracle trajectory of instance and records at every
// configuration the legal transitions, the gold transition and the model's
// prediction. Training under the static oracle never leaves the gold path.
func (d *Deterministic) DecodeSteps(instance perceptron.Instance, model perceptron.Model) ([]perceptron.Step, error) {
	c, err := d.init(instance.Input())
	if err != nil {
		return nil, err
	}
	oracle := d.TransFunc.Oracle()
	if err := oracle.SetGold(instance.Gold()); err != nil {
		return nil, err
	}
	limit := maxSteps(c)
	steps := make([]perceptron.Step, 0, limit)
	for !c.Terminal() {
		if len(steps) > limit {
			return nil, fmt.Errorf("oracle did not terminate after %d transitions", limit)
		}
		legal := d.TransFunc.LegalActions(c)
		gold, err := oracle.Transition(c)
		if err != nil {
			return nil, err
		}
		predicted, _ := Best(legal, model.Score(c, legal))
		steps = append(steps, perceptron.Step{Conf: c, Legal: legal, Gold: gold, Predicted: predicted})
		if c, err = d.TransFunc.Apply(c, gold); err != nil {
			return nil, err
		}
	}
	return steps, nil
}
