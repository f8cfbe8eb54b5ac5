package motionplan

import (
	"fmt"

	"go.viam.com/hitchpilot/vehicle"
)

// InvalidPathError is returned when a set of samples cannot be interpolated, for example when
// the keys are not strictly monotonic or there are fewer than two samples.
type InvalidPathError struct {
	Reason string
}

func (e *InvalidPathError) Error() string {
	return "invalid path: " + e.Reason
}

func newInvalidPathError(format string, args ...interface{}) *InvalidPathError {
	return &InvalidPathError{Reason: fmt.Sprintf(format, args...)}
}

// PlanningError is returned when no maneuver of the supported shape reaches the target from
// the given pose.
type PlanningError struct {
	Pose   vehicle.Pose
	Reason string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("cannot plan path from (%s): %s", e.Pose, e.Reason)
}
