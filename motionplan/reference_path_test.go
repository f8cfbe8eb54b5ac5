package motionplan

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func linearPath(n int) []PathSample {
	samples := make([]PathSample, n)
	for i := range samples {
		f := float64(i)
		samples[i] = PathSample{S: f, X: 10 - f, Y: 2 * f, Heading: f * f, Curvature: -f}
	}
	return samples
}

func TestReferencePathExactAtSamples(t *testing.T) {
	samples := linearPath(10)
	path, err := NewReferencePath(samples)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path.Len(), test.ShouldEqual, 10)
	test.That(t, path.Length(), test.ShouldEqual, 9)
	test.That(t, path.XIndexed(), test.ShouldBeTrue)

	for _, sample := range samples {
		test.That(t, path.AtS(FieldY, sample.S), test.ShouldAlmostEqual, sample.Y)
		test.That(t, path.AtS(FieldHeading, sample.S), test.ShouldAlmostEqual, sample.Heading)
		test.That(t, path.AtX(FieldS, sample.X), test.ShouldAlmostEqual, sample.S)
		test.That(t, path.AtX(FieldCurvature, sample.X), test.ShouldAlmostEqual, sample.Curvature)
	}
}

func TestReferencePathHalfway(t *testing.T) {
	path, err := NewReferencePath(linearPath(10))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, path.AtS(FieldY, 2.5), test.ShouldAlmostEqual, 5)
	// heading is quadratic in s, so halfway gives the mean of the bounding samples.
	test.That(t, path.AtS(FieldHeading, 2.5), test.ShouldAlmostEqual, (4.+9.)/2)
	test.That(t, path.AtX(FieldY, 7.5), test.ShouldAlmostEqual, 5)
	test.That(t, path.AtX(FieldHeading, 7.5), test.ShouldAlmostEqual, (4.+9.)/2)
}

func TestReferencePathClamps(t *testing.T) {
	samples := linearPath(10)
	path, err := NewReferencePath(samples)
	test.That(t, err, test.ShouldBeNil)

	first, last := samples[0], samples[len(samples)-1]
	test.That(t, path.AtS(FieldY, -1), test.ShouldEqual, first.Y)
	test.That(t, path.AtS(FieldY, -1e9), test.ShouldEqual, first.Y)
	test.That(t, path.AtS(FieldY, last.S), test.ShouldEqual, last.Y)
	test.That(t, path.AtS(FieldY, 1e9), test.ShouldEqual, last.Y)

	// x descends, so "below the first key" means larger x.
	test.That(t, path.AtX(FieldY, first.X+1), test.ShouldEqual, first.Y)
	test.That(t, path.AtX(FieldY, last.X), test.ShouldEqual, last.Y)
	test.That(t, path.AtX(FieldY, last.X-5), test.ShouldEqual, last.Y)
}

func TestReferencePathMonotoneBetweenSamples(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	samples := make([]PathSample, 50)
	s, x := 0.0, 100.0
	for i := range samples {
		s += 0.1 + rng.Float64()
		x -= 0.1 + rng.Float64()
		samples[i] = PathSample{S: s, X: x, Y: rng.NormFloat64(), Heading: rng.NormFloat64(), Curvature: rng.NormFloat64()}
	}
	path, err := NewReferencePath(samples)
	test.That(t, err, test.ShouldBeNil)

	for i := 1; i < len(samples); i++ {
		lo, hi := samples[i-1], samples[i]
		prev := lo.Y
		for k := 1; k < 10; k++ {
			q := lo.S + (hi.S-lo.S)*float64(k)/10
			v := path.AtS(FieldY, q)
			test.That(t, v, test.ShouldBeBetweenOrEqual, math.Min(lo.Y, hi.Y), math.Max(lo.Y, hi.Y))
			if hi.Y >= lo.Y {
				test.That(t, v, test.ShouldBeGreaterThanOrEqualTo, prev)
			} else {
				test.That(t, v, test.ShouldBeLessThanOrEqualTo, prev)
			}
			prev = v

			xq := lo.X + (hi.X-lo.X)*float64(k)/10
			vx := path.AtX(FieldY, xq)
			test.That(t, vx, test.ShouldBeBetweenOrEqual, math.Min(lo.Y, hi.Y), math.Max(lo.Y, hi.Y))
		}
	}
}

func TestReferencePathNotXIndexed(t *testing.T) {
	samples := linearPath(5)
	samples[3].X = samples[2].X
	path, err := NewReferencePath(samples)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path.XIndexed(), test.ShouldBeFalse)
	test.That(t, math.IsNaN(path.AtX(FieldY, 8)), test.ShouldBeTrue)
	test.That(t, path.AtS(FieldY, 1), test.ShouldAlmostEqual, 2)
}

func TestReferencePathInvalid(t *testing.T) {
	for _, tc := range []struct {
		name    string
		samples []PathSample
		reason  string
	}{
		{"empty", nil, "need at least 2 samples, got 0"},
		{"single", linearPath(1), "need at least 2 samples, got 1"},
		{"repeated s", []PathSample{{S: 0}, {S: 1}, {S: 1}}, "keys must be strictly ascending, sample 2 is 1 after 1"},
		{"descending s", []PathSample{{S: 1}, {S: 0}}, "keys must be strictly ascending, sample 1 is 0 after 1"},
		{"nan s", []PathSample{{S: 0}, {S: math.NaN()}}, "keys must be strictly ascending, sample 1 is NaN after 0"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReferencePath(tc.samples)
			test.That(t, err, test.ShouldNotBeNil)
			var invalid *InvalidPathError
			test.That(t, errors.As(err, &invalid), test.ShouldBeTrue)
			test.That(t, invalid.Reason, test.ShouldEqual, tc.reason)
		})
	}
}

func TestReferencePathImmutable(t *testing.T) {
	samples := linearPath(4)
	path, err := NewReferencePath(samples)
	test.That(t, err, test.ShouldBeNil)

	samples[1].Y = 100
	test.That(t, path.Sample(1).Y, test.ShouldEqual, 2)
	test.That(t, path.AtS(FieldY, 1), test.ShouldAlmostEqual, 2)

	copied := path.Samples()
	copied[2].Y = 100
	test.That(t, path.Sample(2).Y, test.ShouldEqual, 4)
}

func TestFieldString(t *testing.T) {
	test.That(t, FieldCurvature.String(), test.ShouldEqual, "curvature")
	test.That(t, Field(42).String(), test.ShouldEqual, "unknown")
}
