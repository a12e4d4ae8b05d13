package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quizharvest/quizharvest/internal/config"
)

// testSession builds a session around a stub runner so protocol-level
// control flow can be exercised without a browser.
func testSession(cfg *config.AppConfig, runner runFunc) *Session {
	return &Session{
		cfg:         cfg,
		logger:      zap.NewNop(),
		pacer:       NewZeroPacer(),
		runner:      runner,
		ctx:         context.Background(),
		tabCancel:   func() {},
		allocCancel: func() {},
	}
}

func TestNavigateRetriesUntilExhausted(t *testing.T) {
	cfg := config.CreateDefault()
	cfg.Browser.NavRetries = 3

	calls := 0
	boom := errors.New("net::ERR_CONNECTION_RESET")
	s := testSession(cfg, func(ctx context.Context, actions ...chromedp.Action) error {
		calls++
		return boom
	})

	err := s.Navigate(context.Background(), "https://example.test/exam")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestNavigateRecoversOnRetry(t *testing.T) {
	cfg := config.CreateDefault()
	cfg.Browser.NavRetries = 3

	calls := 0
	s := testSession(cfg, func(ctx context.Context, actions ...chromedp.Action) error {
		calls++
		if calls < 3 {
			return errors.New("page load interrupted")
		}
		return nil
	})

	err := s.Navigate(context.Background(), "https://example.test/exam")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitForSelectorTimesOut(t *testing.T) {
	cfg := config.CreateDefault()
	cfg.Browser.PollEvery = time.Millisecond

	// The evaluate succeeds but never reports the selector present.
	s := testSession(cfg, func(ctx context.Context, actions ...chromedp.Action) error {
		return nil
	})

	err := s.WaitForSelector(context.Background(), "h1.exam-title", 15*time.Millisecond)
	require.Error(t, err)

	var timeoutErr *SelectorTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "h1.exam-title", timeoutErr.Selector)
	assert.Equal(t, 15*time.Millisecond, timeoutErr.Timeout)
}

func TestWaitForSelectorPollsRepeatedly(t *testing.T) {
	cfg := config.CreateDefault()
	cfg.Browser.PollEvery = time.Millisecond

	polls := 0
	s := testSession(cfg, func(ctx context.Context, actions ...chromedp.Action) error {
		polls++
		return nil
	})

	err := s.WaitForSelector(context.Background(), "div.question-panel.active", 20*time.Millisecond)
	var timeoutErr *SelectorTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.GreaterOrEqual(t, polls, 2, "expected repeated presence checks before the deadline")
}

func TestWaitForSelectorSurfacesProtocolErrors(t *testing.T) {
	cfg := config.CreateDefault()
	cfg.Browser.PollEvery = time.Millisecond

	boom := errors.New("target detached")
	s := testSession(cfg, func(ctx context.Context, actions ...chromedp.Action) error {
		return boom
	})

	err := s.WaitForSelector(context.Background(), "h1.exam-title", 50*time.Millisecond)
	require.ErrorIs(t, err, boom)

	var timeoutErr *SelectorTimeoutError
	assert.False(t, errors.As(err, &timeoutErr), "a protocol failure is not a timeout")
}

func TestCancellationAbortsInFlightCall(t *testing.T) {
	cfg := config.CreateDefault()

	s := testSession(cfg, func(ctx context.Context, actions ...chromedp.Action) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.SnapshotHTML(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("snapshot did not unblock after cancellation")
	}
}

func TestCancellationStopsNavigationRetries(t *testing.T) {
	cfg := config.CreateDefault()
	cfg.Browser.NavRetries = 5

	calls := 0
	ctx, cancel := context.WithCancel(context.Background())
	s := testSession(cfg, func(_ context.Context, actions ...chromedp.Action) error {
		calls++
		cancel()
		return errors.New("tab crashed")
	})

	err := s.Navigate(ctx, "https://example.test/exam")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "no further attempts after cancellation")
}
