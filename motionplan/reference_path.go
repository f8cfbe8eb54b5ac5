package motionplan

import (
	"math"
)

// Field selects one of the series stored in a ReferencePath.
type Field int

// The fields of a ReferencePath sample.
const (
	FieldS Field = iota
	FieldX
	FieldY
	FieldHeading
	FieldCurvature
)

func (f Field) String() string {
	switch f {
	case FieldS:
		return "s"
	case FieldX:
		return "x"
	case FieldY:
		return "y"
	case FieldHeading:
		return "heading"
	case FieldCurvature:
		return "curvature"
	default:
		return "unknown"
	}
}

// PathSample is a single point of a reference path.
type PathSample struct {
	S         float64
	X         float64
	Y         float64
	Heading   float64
	Curvature float64
}

// ReferencePath is an immutable sampled trajectory indexed by arc length. When x is strictly
// descending along the path it can also be queried by x.
type ReferencePath struct {
	samples []PathSample
	byS     *series
	byX     *series
}

// NewReferencePath builds a path from samples ordered by strictly ascending arc length.
func NewReferencePath(samples []PathSample) (*ReferencePath, error) {
	n := len(samples)
	s := make([]float64, n)
	x := make([]float64, n)
	negX := make([]float64, n)
	y := make([]float64, n)
	heading := make([]float64, n)
	curvature := make([]float64, n)
	for i, sample := range samples {
		s[i] = sample.S
		x[i] = sample.X
		negX[i] = -sample.X
		y[i] = sample.Y
		heading[i] = sample.Heading
		curvature[i] = sample.Curvature
	}

	byS, err := newSeries(s, s, x, y, heading, curvature)
	if err != nil {
		return nil, err
	}
	p := &ReferencePath{
		samples: append([]PathSample(nil), samples...),
		byS:     byS,
	}
	if firstNonIncreasing(negX) < 0 {
		// x descending is ascending -x, so the same search applies with negated queries.
		byX, err := newSeries(negX, s, x, y, heading, curvature)
		if err != nil {
			return nil, err
		}
		p.byX = byX
	}
	return p, nil
}

// Len returns the number of samples.
func (p *ReferencePath) Len() int {
	return len(p.samples)
}

// Length returns the arc length of the last sample.
func (p *ReferencePath) Length() float64 {
	return p.samples[len(p.samples)-1].S
}

// Sample returns the i-th sample.
func (p *ReferencePath) Sample(i int) PathSample {
	return p.samples[i]
}

// Samples returns a copy of all samples.
func (p *ReferencePath) Samples() []PathSample {
	return append([]PathSample(nil), p.samples...)
}

// XIndexed reports whether x is strictly descending along the path, which AtX requires.
func (p *ReferencePath) XIndexed() bool {
	return p.byX != nil
}

// AtS linearly interpolates a field at arc length s, clamping outside the sampled range.
func (p *ReferencePath) AtS(f Field, s float64) float64 {
	return p.byS.at(int(f), s)
}

// AtX linearly interpolates a field at position x, clamping outside the sampled range.
// It returns NaN when the path is not x-indexed.
func (p *ReferencePath) AtX(f Field, x float64) float64 {
	if p.byX == nil {
		return math.NaN()
	}
	return p.byX.at(int(f), -x)
}
