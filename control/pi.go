package control

import (
	"math"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// PIConfig configures a PI block. Nil bounds leave that side of the output unclamped.
type PIConfig struct {
	Kp   float64  `json:"kp"`
	Ki   float64  `json:"ki"`
	UMin *float64 `json:"u_min,omitempty"`
	UMax *float64 `json:"u_max,omitempty"`
}

// Validate ensures the gains are finite and the bounds are ordered.
func (cfg PIConfig) Validate() error {
	if math.IsNaN(cfg.Kp) || math.IsInf(cfg.Kp, 0) {
		return errors.Errorf("pi block kp must be finite, got %v", cfg.Kp)
	}
	if math.IsNaN(cfg.Ki) || math.IsInf(cfg.Ki, 0) {
		return errors.Errorf("pi block ki must be finite, got %v", cfg.Ki)
	}
	if cfg.UMin != nil && cfg.UMax != nil && *cfg.UMin > *cfg.UMax {
		return errors.Errorf("pi block u_min %v is greater than u_max %v", *cfg.UMin, *cfg.UMax)
	}
	return nil
}

// PI is a proportional-integral block. It assumes Calculate is called at a constant rate, the
// sample period is folded into Ki. When the output saturates, the error just integrated is
// removed again so the accumulator does not wind up.
type PI struct {
	mu       sync.Mutex
	kp       float64
	ki       float64
	uMin     float64
	uMax     float64
	integral float64
}

// NewPI returns a PI block with a zero integral.
func NewPI(cfg PIConfig) (*PI, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &PI{kp: cfg.Kp, ki: cfg.Ki, uMin: math.Inf(-1), uMax: math.Inf(1)}
	if cfg.UMin != nil {
		p.uMin = *cfg.UMin
	}
	if cfg.UMax != nil {
		p.uMax = *cfg.UMax
	}
	return p, nil
}

// Calculate integrates err and returns the clamped control output.
func (p *PI) Calculate(err float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.integral += err
	u := p.kp*err + p.ki*p.integral
	if u < p.uMin || u > p.uMax {
		p.integral -= err
		return lo.Clamp(u, p.uMin, p.uMax)
	}
	return u
}

// Reset zeroes the integral.
func (p *PI) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.integral = 0
}

// Integral returns the accumulated error.
func (p *PI) Integral() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.integral
}
