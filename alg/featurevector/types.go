package featurevector

// Feature is the 64-bit hash of an instantiated feature template.
type Feature uint64

// Entry is a single stored weight, used for serialization.
type Entry struct {
	Feature    Feature
	Transition int
	Value      float64
}

// InitFunc yields the baseline weight of a feature/transition pair that has
// never been updated.
type InitFunc func(feature Feature, transition int) float64

func ZeroInit(Feature, int) float64 {
	return 0
}
