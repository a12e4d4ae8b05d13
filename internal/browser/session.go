// Package browser owns one tab of a running debug-enabled Chrome and
// exposes the navigation, interaction and extraction primitives the
// scrape loop needs. It is not a general driver: every operation is
// scoped to this workflow.
package browser

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/quizharvest/quizharvest/internal/config"
)

// SelectorTimeoutError reports that a required selector never appeared.
// Callers match it with errors.As to distinguish a structurally broken
// page from transient protocol failures.
type SelectorTimeoutError struct {
	Selector string
	Timeout  time.Duration
}

func (e *SelectorTimeoutError) Error() string {
	return fmt.Sprintf("selector %q not found within %v", e.Selector, e.Timeout)
}

// runFunc executes protocol actions. Production uses chromedp.Run; tests
// substitute a stub.
type runFunc func(ctx context.Context, actions ...chromedp.Action) error

// Session is one connected browser tab.
type Session struct {
	cfg    *config.AppConfig
	logger *zap.Logger
	pacer  Pacer
	rng    *rand.Rand
	runner runFunc

	ctx         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	closeOnce   sync.Once
}

// Connect attaches to the debug endpoint and opens a fresh blank tab.
// An unreachable endpoint is fatal: nothing else can proceed without it.
func Connect(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger, pacer Pacer) (*Session, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, cfg.Browser.DebugURL)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Force the websocket handshake and target creation now so a dead
	// endpoint fails here instead of on the first navigation.
	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("connecting to browser at %s: %w", cfg.Browser.DebugURL, err)
	}

	logger.Info("connected to browser", zap.String("endpoint", cfg.Browser.DebugURL))
	return &Session{
		cfg:         cfg,
		logger:      logger.Named("browser"),
		pacer:       pacer,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		runner:      chromedp.Run,
		ctx:         tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}, nil
}

// Close releases the tab and the allocator connection. Safe to call on
// every exit path, repeatedly.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.tabCancel()
		s.allocCancel()
		s.logger.Info("browser session closed")
	})
}

// run executes actions against the tab. The chromedp context must descend
// from the tab context to carry the target, so the caller's cancellation
// is bridged over: cancelling ctx cancels the in-flight protocol call.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := s.runner(opCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Navigate loads the URL, retrying up to the configured attempt count
// with a randomized backoff between attempts. Exhausting the attempts
// is a session-aborting error.
func (s *Session) Navigate(ctx context.Context, url string) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.Browser.NavRetries; attempt++ {
		if attempt > 1 {
			s.logger.Warn("retrying navigation",
				zap.String("url", url),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			if err := s.pacer.Pause(ctx, s.cfg.Timing.NavBackoff); err != nil {
				return err
			}
		}

		navCtx, cancel := context.WithTimeout(ctx, s.cfg.Browser.NavTimeout)
		err := s.run(navCtx,
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
		)
		cancel()
		if err == nil {
			s.logger.Info("navigation complete", zap.String("url", url))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}
	return fmt.Errorf("navigation to %s failed after %d attempts: %w", url, s.cfg.Browser.NavRetries, lastErr)
}

// WaitForSelector polls for a required selector until it appears or the
// timeout expires, in which case a SelectorTimeoutError is returned.
func (s *Session) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		exists, err := s.SelectorExists(ctx, selector)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		if time.Now().After(deadline) {
			return &SelectorTimeoutError{Selector: selector, Timeout: timeout}
		}
		select {
		case <-time.After(s.cfg.Browser.PollEvery):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// SelectorExists is the non-throwing presence check used for
// loop-termination decisions.
func (s *Session) SelectorExists(ctx context.Context, selector string) (bool, error) {
	var exists bool
	expr := fmt.Sprintf("document.querySelector(%q) !== null", selector)
	if err := s.Evaluate(ctx, expr, &exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Evaluate runs a read-only expression against live page state. It is
// the general read primitive: the presence and text reads below all pass
// through it.
func (s *Session) Evaluate(ctx context.Context, expr string, out interface{}) error {
	return s.run(ctx, chromedp.Evaluate(expr, out))
}

// SnapshotHTML returns the full serialized page.
func (s *Session) SnapshotHTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// ElementText returns the rendered text of the first match for selector.
func (s *Session) ElementText(ctx context.Context, selector string) (string, error) {
	var text string
	if err := s.run(ctx, chromedp.Text(selector, &text, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return text, nil
}

// PageText returns the rendered text of the page body.
func (s *Session) PageText(ctx context.Context) (string, error) {
	var text string
	if err := s.Evaluate(ctx, "document.body.innerText", &text); err != nil {
		return "", err
	}
	return text, nil
}

// WaitReady blocks until the document body is ready again, then lets the
// page settle for a paced moment.
func (s *Session) WaitReady(ctx context.Context) error {
	if err := s.run(ctx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return err
	}
	return s.pacer.Pause(ctx, s.cfg.Timing.PageSettle)
}
