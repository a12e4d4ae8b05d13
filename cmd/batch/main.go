// Command batch runs the scraper over a persisted task list, one task at
// a time, persisting status after every task so an interrupted batch can
// resume. With -validate it instead re-checks COMPLETED tasks against the
// known output directories and demotes any whose result file is gone.
package main

import (
	"flag"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/quizharvest/quizharvest/internal/logging"
	"github.com/quizharvest/quizharvest/internal/tasks"
)

func main() {
	taskFile := flag.String("tasks", "tasks.json", "Task list file")
	scraperBin := flag.String("scraper", "./scraper", "Path to the scraper binary")
	resultDir := flag.String("output", "output", "Primary result directory")
	altDir := flag.String("alt-output", "archive", "Secondary result directory checked during validation")
	validate := flag.Bool("validate", false, "Validate COMPLETED tasks instead of running")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	logger := logging.New(*verbose)
	defer logger.Sync()

	list, err := tasks.Load(*taskFile)
	if err != nil {
		logger.Error("could not load task list", zap.String("file", *taskFile), zap.Error(err))
		os.Exit(1)
	}

	if *validate {
		demoted := tasks.Validate(list, *resultDir, *altDir)
		if err := tasks.Save(*taskFile, list); err != nil {
			logger.Error("could not save task list", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("validation complete", zap.Int("demoted", demoted))
		return
	}

	pending := 0
	for i := range list {
		if list[i].Status != tasks.StatusPending {
			continue
		}
		pending++
		logger.Info("running task",
			zap.String("label", list[i].Label),
			zap.String("link", list[i].Link))

		if err := runOne(*scraperBin, &list[i], *resultDir); err != nil {
			logger.Warn("task failed", zap.String("label", list[i].Label), zap.Error(err))
		}
		if err := tasks.Save(*taskFile, list); err != nil {
			logger.Error("could not persist task list", zap.Error(err))
			os.Exit(1)
		}
	}
	logger.Info("batch complete", zap.Int("processed", pending))
}

// runOne invokes a single scraper session as a subprocess. Success marks
// the task COMPLETED and records the freshest result file; any nonzero
// exit marks it FAILED.
func runOne(scraperBin string, task *tasks.Task, resultDir string) error {
	before := time.Now()
	cmd := exec.Command(scraperBin, "-url", task.Link, "-tag", task.Label)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		task.Status = tasks.StatusFailed
		return err
	}

	task.Status = tasks.StatusCompleted
	if newest := newestResult(resultDir, before); newest != "" {
		task.File = newest
	}
	return nil
}

// newestResult returns the relative path of the most recently modified
// result file created since the task started, or "" when none appeared
// (a zero-question session writes nothing and is still a success).
func newestResult(dir string, since time.Time) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var newest string
	var newestAt time.Time
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().Before(since) {
			continue
		}
		if info.ModTime().After(newestAt) {
			newestAt = info.ModTime()
			newest = filepath.Join(dir, e.Name())
		}
	}
	return newest
}
