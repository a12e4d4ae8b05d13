package browser

import (
	"context"
	"math/rand"
	"time"

	"github.com/quizharvest/quizharvest/internal/config"
)

// Pacer injects the randomized pacing used between protocol actions.
// Tests substitute a zero pacer so control flow runs without delays.
type Pacer interface {
	Pause(ctx context.Context, r config.DelayRange) error
}

// uniformPacer draws a uniform integer in [min,max] milliseconds.
type uniformPacer struct {
	rng *rand.Rand
}

// NewPacer returns the production pacer backed by the given source.
func NewPacer(rng *rand.Rand) Pacer {
	return &uniformPacer{rng: rng}
}

func (p *uniformPacer) Pause(ctx context.Context, r config.DelayRange) error {
	ms := r.Min
	if r.Max > r.Min {
		ms += p.rng.Intn(r.Max - r.Min + 1)
	}
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// zeroPacer never sleeps.
type zeroPacer struct{}

// NewZeroPacer returns a pacer with all delays removed.
func NewZeroPacer() Pacer { return zeroPacer{} }

func (zeroPacer) Pause(ctx context.Context, _ config.DelayRange) error {
	return ctx.Err()
}
