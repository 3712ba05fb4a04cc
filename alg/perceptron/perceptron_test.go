package perceptron

import (
	"context"
	"errors"
	"testing"

	"github.com/danielgalbraith/DepTrain/alg/transition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingModel struct {
	updates     int
	generation  int
	averaged    bool
	rates       []float64
	seenOrder   []int
	correctFrom int
}

func (m *countingModel) Score(transition.Configuration, []transition.Transition) map[transition.Transition]float64 {
	return nil
}

func (m *countingModel) Update(conf transition.Configuration, gold, predicted transition.Transition, lr float64) float64 {
	m.rates = append(m.rates, lr)
	if gold == predicted {
		return 0
	}
	m.updates++
	return 1
}

func (m *countingModel) IncrementGeneration() { m.generation++ }
func (m *countingModel) Average()             { m.averaged = true }

type testInstance struct {
	id  int
	bad bool
}

func (i *testInstance) Input() interface{} { return i.id }
func (i *testInstance) Gold() interface{}  { return i.id }

var (
	shift = transition.Transition{T: 'S'}
	left  = transition.Transition{T: 'L'}
)

// testDecoder predicts wrongly until the model has been updated enough.
type testDecoder struct {
	err error
}

func (d *testDecoder) DecodeSteps(instance Instance, m Model) ([]Step, error) {
	ti := instance.(*testInstance)
	if ti.bad {
		return nil, errors.New("annotation length mismatch")
	}
	if d.err != nil {
		return nil, d.err
	}
	cm := m.(*countingModel)
	cm.seenOrder = append(cm.seenOrder, ti.id)
	predicted := left
	if cm.updates >= cm.correctFrom {
		predicted = shift
	}
	return []Step{{Gold: shift, Predicted: predicted}, {Gold: left, Predicted: left}}, nil
}

func instances(n int) []Instance {
	retval := make([]Instance, n)
	for i := range retval {
		retval[i] = &testInstance{id: i}
	}
	return retval
}

func TestStateMachine(t *testing.T) {
	var states []State
	p := &LinearPerceptron{
		Decoder:    &testDecoder{},
		Iterations: 2,
		OnState:    func(s State) { states = append(states, s) },
	}
	p.Init(&countingModel{correctFrom: 100})
	assert.Equal(t, Idle, p.State())

	results, err := p.Train(context.Background(), instances(1))
	require.NoError(t, err)
	require.Len(t, results, 2)

	expected := []State{
		Shuffling, PerExampleStep, Updating, PerExampleStep, IterationComplete,
		Shuffling, PerExampleStep, Updating, PerExampleStep, IterationComplete,
		Finished,
	}
	assert.Equal(t, expected, states)
	assert.Equal(t, Finished, p.State())
}

func TestTrainResults(t *testing.T) {
	var seen []IterationResult
	model := &countingModel{correctFrom: 3}
	p := &LinearPerceptron{
		Decoder:    &testDecoder{},
		Iterations: 3,
		Seed:       5,
		Schedule:   InverseDecay{Initial: 1, Decay: 1},
		Updater:    new(AveragedStrategy),
		Callback:   func(r IterationResult) { seen = append(seen, r) },
	}
	p.Init(model)
	results, err := p.Train(context.Background(), instances(2))
	require.NoError(t, err)
	assert.Equal(t, results, seen)

	assert.Equal(t, 1, results[0].Iteration)
	assert.Equal(t, 2.0, results[0].Loss)
	assert.Equal(t, 4, results[0].Steps)
	assert.Equal(t, 0.5, results[0].Accuracy())
	assert.Equal(t, 1.0, results[1].Loss)
	assert.Equal(t, 0.0, results[2].Loss)
	assert.LessOrEqual(t, results[2].Loss, results[0].Loss)

	assert.Equal(t, 0.5, results[1].LearningRate)
	assert.Equal(t, 6, model.generation)
	assert.True(t, model.averaged)
}

func TestOrderDeterministic(t *testing.T) {
	assert.Equal(t, Order(7, 3, 10), Order(7, 3, 10))
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, Order(1, 0, 5))

	run := func() []int {
		model := &countingModel{correctFrom: 100}
		p := &LinearPerceptron{Decoder: &testDecoder{}, Iterations: 4, Seed: 11}
		p.Init(model)
		_, err := p.Train(context.Background(), instances(6))
		require.NoError(t, err)
		return model.seenOrder
	}
	assert.Equal(t, run(), run())
}

func TestOrderSeedsAreIndependent(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		for iteration := 0; iteration < 5; iteration++ {
			assert.NotEqual(t, orderSeed(seed, iteration+1), orderSeed(seed+1, iteration))
			assert.NotEqual(t, Order(seed, iteration+1, 20), Order(seed+1, iteration, 20))
		}
	}
}

func TestDataError(t *testing.T) {
	data := instances(4)
	data[2] = &testInstance{id: 2, bad: true}
	model := &countingModel{}
	p := &LinearPerceptron{Decoder: &testDecoder{}, Iterations: 3}
	p.Init(model)

	_, err := p.Train(context.Background(), data)
	var dataErr *DataError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, 2, dataErr.Index)
	assert.Equal(t, Idle, p.State())
	assert.False(t, model.averaged)
}

func TestIllegalActionPropagates(t *testing.T) {
	illegal := &transition.IllegalActionError{Transition: left, Action: "LA", State: "[]"}
	p := &LinearPerceptron{Decoder: &testDecoder{err: illegal}, Iterations: 1}
	p.Init(&countingModel{})

	_, err := p.Train(context.Background(), instances(1))
	var actionErr *transition.IllegalActionError
	require.True(t, errors.As(err, &actionErr))
	var dataErr *DataError
	assert.False(t, errors.As(err, &dataErr))
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &LinearPerceptron{Decoder: &testDecoder{}, Iterations: 1}
	p.Init(&countingModel{})
	_, err := p.Train(ctx, instances(2))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBadIterations(t *testing.T) {
	p := &LinearPerceptron{Decoder: &testDecoder{}}
	p.Init(&countingModel{})
	_, err := p.Train(context.Background(), instances(1))
	assert.Error(t, err)
}

func TestTrivialStrategy(t *testing.T) {
	m := &countingModel{}
	w := new(TrivialStrategy)
	w.Init(m, 10)
	w.Update(m)
	assert.Same(t, m, w.Finalize(m).(*countingModel))
	assert.False(t, m.averaged)
}

func TestAveragedStrategy(t *testing.T) {
	m := &countingModel{}
	w := new(AveragedStrategy)
	w.Init(m, 4)
	w.Finalize(m)
	assert.False(t, m.averaged, "nothing to average before any update")
	w.Update(m)
	w.Update(m)
	assert.Equal(t, 2, w.N)
	w.Finalize(m)
	assert.True(t, m.averaged)
}
