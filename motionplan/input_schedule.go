package motionplan

// ScheduleSample is a single breakpoint of an InputSchedule.
type ScheduleSample struct {
	S        float64
	Velocity float64
	Steering float64
}

// InputSchedule is an open-loop command table indexed by arc length.
type InputSchedule struct {
	samples []ScheduleSample
	byS     *series
}

const (
	scheduleVelocity = iota
	scheduleSteering
)

// NewInputSchedule builds a schedule from samples ordered by strictly ascending arc length.
func NewInputSchedule(samples []ScheduleSample) (*InputSchedule, error) {
	s := make([]float64, len(samples))
	vel := make([]float64, len(samples))
	steering := make([]float64, len(samples))
	for i, sample := range samples {
		s[i] = sample.S
		vel[i] = sample.Velocity
		steering[i] = sample.Steering
	}
	byS, err := newSeries(s, vel, steering)
	if err != nil {
		return nil, err
	}
	return &InputSchedule{samples: append([]ScheduleSample(nil), samples...), byS: byS}, nil
}

// Len returns the number of breakpoints.
func (sch *InputSchedule) Len() int {
	return len(sch.samples)
}

// Sample returns the i-th breakpoint.
func (sch *InputSchedule) Sample(i int) ScheduleSample {
	return sch.samples[i]
}

// Velocity returns the scheduled velocity at arc length s.
func (sch *InputSchedule) Velocity(s float64) float64 {
	return sch.byS.at(scheduleVelocity, s)
}

// Steering returns the scheduled steering angle at arc length s.
func (sch *InputSchedule) Steering(s float64) float64 {
	return sch.byS.at(scheduleSteering, s)
}
