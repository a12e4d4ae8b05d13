package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// elementRect is the on-screen bounding box of a selector's first match.
type elementRect struct {
	Found bool    `json:"found"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
}

const rectExpr = `(() => {
	const el = document.querySelector(%q);
	if (!el) return { found: false, x: 0, y: 0, w: 0, h: 0 };
	const r = el.getBoundingClientRect();
	return { found: true, x: r.x, y: r.y, w: r.width, h: r.height };
})()`

// HumanClick moves the cursor from a randomized nearby origin to the
// element center over interpolated steps, then presses and releases with
// paced gaps. The selector must exist: the scrape flow only clicks
// elements it has already waited for, so absence is an error here.
func (s *Session) HumanClick(ctx context.Context, selector string) error {
	var rect elementRect
	if err := s.Evaluate(ctx, fmt.Sprintf(rectExpr, selector), &rect); err != nil {
		return fmt.Errorf("resolving bounds for %q: %w", selector, err)
	}
	if !rect.Found {
		return fmt.Errorf("click target %q not present on page", selector)
	}

	cx := rect.X + rect.W/2
	cy := rect.Y + rect.H/2

	// Start the move from a point 60-180px off the target, either side.
	startX := cx + s.jitter(60, 180)
	startY := cy + s.jitter(60, 180)

	steps := 10 + s.rng.Intn(8)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := startX + (cx-startX)*t
		y := startY + (cy-startY)*t
		if err := s.dispatchMouse(ctx, input.MouseMoved, x, y, 0); err != nil {
			return err
		}
		if err := s.pacer.Pause(ctx, s.cfg.Timing.MouseStep); err != nil {
			return err
		}
	}

	if err := s.pacer.Pause(ctx, s.cfg.Timing.PreClick); err != nil {
		return err
	}
	if err := s.dispatchMouse(ctx, input.MousePressed, cx, cy, 1); err != nil {
		return err
	}
	if err := s.pacer.Pause(ctx, s.cfg.Timing.ClickGap); err != nil {
		return err
	}
	if err := s.dispatchMouse(ctx, input.MouseReleased, cx, cy, 1); err != nil {
		return err
	}

	s.logger.Debug("clicked", zap.String("selector", selector))
	return s.pacer.Pause(ctx, s.cfg.Timing.PostClick)
}

// SmoothScroll dispatches several small wheel deltas with paced gaps.
// Cosmetic only: the direction wobbles like a hand on a wheel and the
// page position at the end is not relied upon.
func (s *Session) SmoothScroll(ctx context.Context, distance, steps int) error {
	if steps <= 0 {
		steps = 1
	}
	base := float64(distance) / float64(steps)
	for i := 0; i < steps; i++ {
		delta := base + float64(s.rng.Intn(21)-10)
		if s.rng.Intn(6) == 0 {
			delta = -delta / 2
		}
		if err := s.dispatchWheel(ctx, delta); err != nil {
			return err
		}
		if err := s.pacer.Pause(ctx, s.cfg.Timing.ScrollStep); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) dispatchMouse(ctx context.Context, typ input.MouseType, x, y float64, clicks int64) error {
	return s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		p := input.DispatchMouseEvent(typ, x, y)
		if typ == input.MousePressed || typ == input.MouseReleased {
			p = p.WithButton(input.Left).WithClickCount(clicks)
		}
		return p.Do(ctx)
	}))
}

func (s *Session) dispatchWheel(ctx context.Context, deltaY float64) error {
	return s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return input.DispatchMouseEvent(input.MouseWheel, 400, 300).
			WithDeltaX(0).
			WithDeltaY(deltaY).
			Do(ctx)
	}))
}

// jitter returns a value in [min,max] with a random sign.
func (s *Session) jitter(min, max int) float64 {
	v := float64(min + s.rng.Intn(max-min+1))
	if s.rng.Intn(2) == 0 {
		return -v
	}
	return v
}
