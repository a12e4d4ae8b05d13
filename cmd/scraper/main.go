package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/quizharvest/quizharvest/internal/browser"
	"github.com/quizharvest/quizharvest/internal/config"
	"github.com/quizharvest/quizharvest/internal/harvest"
	"github.com/quizharvest/quizharvest/internal/logging"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	targetURL := flag.String("url", "", "Exam URL to scrape (required)")
	limit := flag.Int("limit", 0, "Maximum questions to collect (0 = unbounded)")
	commonTag := flag.String("tag", "", "Tag appended to every collected question")
	skip := flag.Int("skip", 0, "Questions to skip before harvesting")
	debugURL := flag.String("debug-url", "", "Browser remote-debugging endpoint")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	if *targetURL == "" {
		fmt.Fprintln(os.Stderr, "error: -url is required")
		flag.Usage()
		os.Exit(1)
	}
	if *skip < 0 {
		fmt.Fprintln(os.Stderr, "error: -skip must be non-negative")
		os.Exit(1)
	}

	var appConfig *config.AppConfig
	if *configFile != "" {
		var err error
		appConfig, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
			os.Exit(1)
		}
	} else {
		appConfig = config.CreateDefault()
	}
	appConfig.Session.Limit = *limit
	appConfig.Session.Skip = *skip
	appConfig.Session.CommonTag = *commonTag
	if *debugURL != "" {
		appConfig.Browser.DebugURL = *debugURL
	}

	if err := run(appConfig, *targetURL, *verbose); err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, url string, verbose bool) error {
	logger := logging.New(verbose)
	defer logger.Sync()

	closeLogFile := func() error { return nil }
	defer func() { closeLogFile() }()

	// Interrupt aborts the in-flight protocol call and unwinds through the
	// deferred session close.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pacer := browser.NewPacer(rand.New(rand.NewSource(time.Now().UnixNano())))

	session, err := browser.Connect(ctx, cfg, logger, pacer)
	if err != nil {
		logger.Error("could not connect to browser", zap.Error(err))
		return err
	}
	defer session.Close()

	controller := harvest.New(cfg, session, logger, pacer)
	controller.OnTitle = func(name string) *zap.Logger {
		if err := os.MkdirAll(cfg.Output.LogDir, 0755); err != nil {
			logger.Warn("could not create log directory", zap.Error(err))
			return nil
		}
		teed, closeFn := logging.WithFile(logger, filepath.Join(cfg.Output.LogDir, name+".log"), verbose)
		closeLogFile = closeFn
		return teed
	}

	if err := controller.Run(ctx, url); err != nil {
		logger.Error("session failed", zap.Error(err))
		return err
	}
	logger.Info("session complete", zap.Int("questions", len(controller.Records)))
	return nil
}
