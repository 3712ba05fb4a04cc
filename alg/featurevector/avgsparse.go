package featurevector

import (
	"fmt"
	"sort"
	"strings"
)

// HistoryValue is a weight with lazily accumulated history, so that the
// average over all generations can be computed without touching every weight
// on every update.
type HistoryValue struct {
	Generation int
	Value      float64
	Total      float64
}

func (h *HistoryValue) IntegratedValue(generation int) float64 {
	return h.Total + float64(generation-h.Generation)*h.Value
}

func (h *HistoryValue) Add(generation int, amount float64) {
	h.Total += float64(generation-h.Generation) * h.Value
	h.Generation = generation
	h.Value += amount
}

// Average replaces the value with its mean over generations and resets the
// history.
func (h *HistoryValue) Average(generation int) {
	if generation > 0 {
		h.Value = h.IntegratedValue(generation) / float64(generation)
	}
	h.Total = 0
	h.Generation = 0
}

func NewHistoryValue(value float64) *HistoryValue {
	return &HistoryValue{Value: value}
}

// Row holds the weights of one feature, indexed by transition id. A nil
// entry has never been updated and still holds its initial value.
type Row []*HistoryValue

func (r Row) Get(transition int) (*HistoryValue, bool) {
	if transition < 0 || transition >= len(r) || r[transition] == nil {
		return nil, false
	}
	return r[transition], true
}

// AvgSparse maps feature hashes to per-transition weight rows.
type AvgSparse struct {
	Rows map[Feature]Row
	Init InitFunc
}

func NewAvgSparse(init InitFunc) *AvgSparse {
	if init == nil {
		init = ZeroInit
	}
	return &AvgSparse{Rows: make(map[Feature]Row), Init: init}
}

func (v *AvgSparse) Value(feature Feature, transition int) float64 {
	if hist, ok := v.Rows[feature].Get(transition); ok {
		return hist.Value
	}
	return v.Init(feature, transition)
}

// Score sums the weights of features for transition, in feature order.
func (v *AvgSparse) Score(features []Feature, transition int) float64 {
	var score float64
	for _, feature := range features {
		score += v.Value(feature, transition)
	}
	return score
}

func (v *AvgSparse) Add(generation int, feature Feature, transition int, amount float64) {
	row := v.Rows[feature]
	if transition >= len(row) {
		extended := make(Row, transition+1)
		copy(extended, row)
		row = extended
		v.Rows[feature] = row
	}
	if row[transition] == nil {
		row[transition] = NewHistoryValue(v.Init(feature, transition))
	}
	row[transition].Add(generation, amount)
}

func (v *AvgSparse) AddAll(generation int, features []Feature, transition int, amount float64) {
	for _, feature := range features {
		v.Add(generation, feature, transition, amount)
	}
}

// Average replaces every stored weight with its running average.
func (v *AvgSparse) Average(generation int) {
	for _, row := range v.Rows {
		for _, hist := range row {
			if hist != nil {
				hist.Average(generation)
			}
		}
	}
}

func (v *AvgSparse) Len() int {
	var n int
	for _, row := range v.Rows {
		for _, hist := range row {
			if hist != nil {
				n++
			}
		}
	}
	return n
}

// Entries returns the stored weights ordered by feature then transition.
func (v *AvgSparse) Entries() []Entry {
	keys := make([]Feature, 0, len(v.Rows))
	for k := range v.Rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	retval := make([]Entry, 0, len(keys))
	for _, k := range keys {
		for transition, hist := range v.Rows[k] {
			if hist != nil {
				retval = append(retval, Entry{k, transition, hist.Value})
			}
		}
	}
	return retval
}

func (v *AvgSparse) Load(entries []Entry) {
	v.Rows = make(map[Feature]Row, len(entries))
	for _, e := range entries {
		row := v.Rows[e.Feature]
		if e.Transition >= len(row) {
			extended := make(Row, e.Transition+1)
			copy(extended, row)
			row = extended
			v.Rows[e.Feature] = row
		}
		row[e.Transition] = NewHistoryValue(e.Value)
	}
}

func (v *AvgSparse) String() string {
	entries := v.Entries()
	strs := make([]string, len(entries))
	for i, e := range entries {
		strs[i] = fmt.Sprintf("%016x[%d]=%v", uint64(e.Feature), e.Transition, e.Value)
	}
	return strings.Join(strs, "\n")
}
