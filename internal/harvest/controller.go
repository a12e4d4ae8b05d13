// Package harvest drives a connected browser session through the
// page-by-page question harvesting sequence and accumulates the
// extracted records.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/quizharvest/quizharvest/internal/browser"
	"github.com/quizharvest/quizharvest/internal/config"
	"github.com/quizharvest/quizharvest/internal/output"
	"github.com/quizharvest/quizharvest/pkg/models"
)

// Driver is the slice of the protocol session the controller needs.
// Tests substitute a fake; production wires *browser.Session.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	SelectorExists(ctx context.Context, selector string) (bool, error)
	ElementText(ctx context.Context, selector string) (string, error)
	SnapshotHTML(ctx context.Context) (string, error)
	PageText(ctx context.Context) (string, error)
	HumanClick(ctx context.Context, selector string) error
	SmoothScroll(ctx context.Context, distance, steps int) error
	WaitReady(ctx context.Context) error
}

// Controller is the scrape-session state machine. Counters are explicit
// fields so the numbering invariants stay auditable: noteID advances once
// per examined page, serial only when a page actually yields a record.
type Controller struct {
	cfg    *config.AppConfig
	drv    Driver
	logger *zap.Logger
	pacer  browser.Pacer

	// OnTitle, when set, is called once the exam name is known. It may
	// return a replacement logger (with a file sink attached); nil keeps
	// the current one.
	OnTitle func(name string) *zap.Logger

	ExamName string
	Records  []models.QuestionRecord

	pageCount int
	noteID    int
	serial    int
}

// New builds a controller over an already-connected driver.
func New(cfg *config.AppConfig, drv Driver, logger *zap.Logger, pacer browser.Pacer) *Controller {
	return &Controller{
		cfg:       cfg,
		drv:       drv,
		logger:    logger,
		pacer:     pacer,
		pageCount: 1,
		noteID:    cfg.Session.BaseNote + cfg.Session.Skip,
		serial:    1,
	}
}

// Run executes the full harvesting sequence against url. Any returned
// error is session-fatal; a clean run with zero collected questions is
// not an error.
func (c *Controller) Run(ctx context.Context, url string) error {
	sel := &c.cfg.Selectors

	if err := c.drv.Navigate(ctx, url); err != nil {
		return err
	}

	if err := c.awaitPageReady(ctx); err != nil {
		return err
	}

	if err := c.deriveExamName(ctx); err != nil {
		return err
	}

	// Enter the solutions view.
	if err := c.drv.HumanClick(ctx, sel.SolutionsButton); err != nil {
		return fmt.Errorf("opening solutions view: %w", err)
	}
	if err := c.drv.WaitReady(ctx); err != nil {
		return err
	}

	if err := c.skipAhead(ctx); err != nil {
		return err
	}

	if err := c.harvest(ctx); err != nil {
		return err
	}

	return c.finalize()
}

// awaitPageReady waits for the two structurally required elements. A
// timeout on either means the page is incompatible or the network is
// broken; no recovery is attempted.
func (c *Controller) awaitPageReady(ctx context.Context) error {
	sel := &c.cfg.Selectors
	for _, required := range []string{sel.ExamTitle, sel.SolutionsButton} {
		err := c.drv.WaitForSelector(ctx, required, c.cfg.Browser.WaitTimeout)
		if err == nil {
			continue
		}
		var te *browser.SelectorTimeoutError
		if errors.As(err, &te) {
			c.logger.Error("required element never appeared; page is structurally incompatible or the network is broken",
				zap.String("selector", te.Selector),
				zap.Duration("waited", te.Timeout))
		}
		return err
	}
	return nil
}

func (c *Controller) deriveExamName(ctx context.Context) error {
	title, err := c.drv.ElementText(ctx, c.cfg.Selectors.ExamTitle)
	if err != nil {
		return fmt.Errorf("reading exam title: %w", err)
	}
	title = strings.TrimSpace(title)

	switch {
	case title != "":
		c.ExamName = output.SanitizeName(title)
	case c.cfg.Output.AllowUntitled:
		c.ExamName = output.FallbackName()
		c.logger.Warn("exam title is empty, using generated name", zap.String("name", c.ExamName))
	default:
		return errors.New("exam title is empty and untitled runs are disabled")
	}

	c.logger.Info("exam identified", zap.String("name", c.ExamName))
	if c.OnTitle != nil {
		if replacement := c.OnTitle(c.ExamName); replacement != nil {
			c.logger = replacement
		}
	}
	return nil
}

// skipAhead clicks "next" up to the configured skip count, stopping early
// if the control disappears. Nothing is extracted while skipping.
func (c *Controller) skipAhead(ctx context.Context) error {
	sel := &c.cfg.Selectors
	for i := 0; i < c.cfg.Session.Skip; i++ {
		exists, err := c.drv.SelectorExists(ctx, sel.NextButton)
		if err != nil {
			return err
		}
		if !exists {
			c.logger.Warn("ran out of questions while skipping", zap.Int("skipped", i))
			return nil
		}
		c.logger.Info("skipping question", zap.Int("skip", i+1), zap.Int("of", c.cfg.Session.Skip))
		if err := c.drv.HumanClick(ctx, sel.NextButton); err != nil {
			return err
		}
		if err := c.pacer.Pause(ctx, c.cfg.Timing.PageSettle); err != nil {
			return err
		}
	}
	return nil
}

// harvest runs the per-question loop until a termination condition hits:
// the scrape limit, a missing "next" control, or the site's last-question
// notice after advancing.
func (c *Controller) harvest(ctx context.Context) error {
	sel := &c.cfg.Selectors
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Cosmetic scroll before touching the question.
		if err := c.drv.SmoothScroll(ctx, 280, 5); err != nil && ctx.Err() != nil {
			return err
		}

		// Reveal the solution panel and give it time to render. A missing
		// control is a per-page problem: extraction below decides whether
		// anything usable is on screen.
		if err := c.drv.HumanClick(ctx, sel.ViewSolution); err != nil {
			if ctx.Err() != nil {
				return err
			}
			c.logger.Warn("could not open solution panel", zap.Int("page", c.pageCount), zap.Error(err))
		}
		if err := c.pacer.Pause(ctx, c.cfg.Timing.SolutionOpen); err != nil {
			return err
		}

		pageHTML, err := c.drv.SnapshotHTML(ctx)
		if err != nil {
			return fmt.Errorf("snapshotting page %d: %w", c.pageCount, err)
		}

		if record := Extract(sel, pageHTML, c.pageCount, c.noteID, c.serial); record != nil {
			if c.cfg.Session.CommonTag != "" {
				record.Tags = append(record.Tags, c.cfg.Session.CommonTag)
			}
			c.Records = append(c.Records, *record)
			c.logger.Info("question collected",
				zap.Int("serial", record.SL),
				zap.Int("noteId", record.NoteID),
				zap.Int("page", c.pageCount))
			c.serial++
		} else {
			c.logger.Warn("page yielded no parseable question", zap.Int("page", c.pageCount))
		}

		if c.cfg.Session.Limit > 0 && len(c.Records) >= c.cfg.Session.Limit {
			c.logger.Info("scrape limit reached", zap.Int("limit", c.cfg.Session.Limit))
			return nil
		}

		hasNext, err := c.drv.SelectorExists(ctx, sel.NextButton)
		if err != nil {
			return err
		}
		if !hasNext {
			c.logger.Info("no next control, last question reached", zap.Int("pages", c.pageCount))
			return nil
		}

		if err := c.drv.HumanClick(ctx, sel.NextButton); err != nil {
			return fmt.Errorf("advancing past page %d: %w", c.pageCount, err)
		}
		if err := c.pacer.Pause(ctx, c.cfg.Timing.PageSettle); err != nil {
			return err
		}

		if text, err := c.drv.PageText(ctx); err == nil {
			if strings.Contains(text, sel.LastQuestion) {
				c.logger.Info("site reports the last question", zap.Int("pages", c.pageCount))
				return nil
			}
		} else if ctx.Err() != nil {
			return err
		}

		c.pageCount++
		c.noteID++
	}
}

// finalize persists whatever was collected. An empty collection is a
// successful run that simply found nothing.
func (c *Controller) finalize() error {
	if len(c.Records) == 0 {
		c.logger.Warn("no questions collected in this session")
		return nil
	}
	path := output.ResultPath(c.cfg.Output.ResultDir, c.ExamName)
	if err := output.WriteRecords(path, c.Records); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	c.logger.Info("results written",
		zap.String("path", path),
		zap.Int("questions", len(c.Records)))
	return nil
}
