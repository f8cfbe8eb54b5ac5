package motionplan

import (
	"gonum.org/v1/gonum/interp"
)

// series holds companion values sampled over a strictly ascending key. Queries below the first
// key return the first value and queries at or above the last key return the last value.
type series struct {
	keys []float64
	fits []interp.PiecewiseLinear
}

func newSeries(keys []float64, values ...[]float64) (*series, error) {
	if len(keys) < 2 {
		return nil, newInvalidPathError("need at least 2 samples, got %d", len(keys))
	}
	if i := firstNonIncreasing(keys); i >= 0 {
		return nil, newInvalidPathError("keys must be strictly ascending, sample %d is %v after %v", i, keys[i], keys[i-1])
	}
	s := &series{keys: keys, fits: make([]interp.PiecewiseLinear, len(values))}
	for i, v := range values {
		if len(v) != len(keys) {
			return nil, newInvalidPathError("series %d has %d samples, expected %d", i, len(v), len(keys))
		}
		if err := s.fits[i].Fit(keys, v); err != nil {
			return nil, newInvalidPathError("%v", err)
		}
	}
	return s, nil
}

// at interpolates the idx-th companion series at key.
func (s *series) at(idx int, key float64) float64 {
	return s.fits[idx].Predict(key)
}

// firstNonIncreasing returns the index of the first key that is not strictly greater than its
// predecessor, or -1. NaN keys are reported as well.
func firstNonIncreasing(keys []float64) int {
	for i := 1; i < len(keys); i++ {
		if !(keys[i] > keys[i-1]) {
			return i
		}
	}
	return -1
}
