package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/joseph-ayodele/contract-sentinel/internal/analysis"
	"github.com/joseph-ayodele/contract-sentinel/internal/async"
	"github.com/joseph-ayodele/contract-sentinel/internal/cache"
	"github.com/joseph-ayodele/contract-sentinel/internal/collab"
	"github.com/joseph-ayodele/contract-sentinel/internal/common"
	"github.com/joseph-ayodele/contract-sentinel/internal/export"
	"github.com/joseph-ayodele/contract-sentinel/internal/letter"
	"github.com/joseph-ayodele/contract-sentinel/internal/notify"
	"github.com/joseph-ayodele/contract-sentinel/internal/pipeline"
)

// app holds everything a command needs, built once from config.
type app struct {
	cfg       *common.Config
	logger    *slog.Logger
	notifier  notify.Notifier
	processor *pipeline.Processor
	letters   *letter.Orchestrator
	exporter  *export.Service
	queue     *async.WorkerQueue
	store     cache.Store
}

func newApp(ctx context.Context, cfg *common.Config, logOut, noticeOut io.Writer) (*app, error) {
	logger := common.NewLogger(cfg.Log, logOut)
	slog.SetDefault(logger)

	notifier := notify.Multi(newNoticePrinter(noticeOut), notify.NewLogNotifier(logger))

	client, err := collab.NewClient(collab.Config{
		BaseURL: cfg.Service.BaseURL,
		Timeout: cfg.Service.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, notifier: notifier}

	var recognizer collab.TextRecognizer = client
	if cfg.Cache.DSN != "" {
		store, err := cache.Open(ctx, cfg.Cache.DSN, logger)
		if err != nil {
			// The cache is optional; run uncached.
			logger.Warn("cache.disabled", "error", err)
		} else {
			a.store = store
			recognizer = cache.NewRecognizer(client, store, logger)
		}
	}

	a.queue = async.NewWorkerQueue(logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithProcessTimeout(2*cfg.Service.Timeout),
	)
	a.processor = pipeline.NewProcessor(logger,
		pipeline.NewIngestion(recognizer, notifier, logger),
		analysis.NewOrchestrator(client, notifier, logger),
		a.queue,
	)
	a.letters = letter.NewOrchestrator(client, notifier, logger)
	a.exporter = export.NewService(logger)
	return a, nil
}

func (a *app) Close(ctx context.Context) {
	a.queue.Shutdown(ctx)
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("cache.close_failed", "error", err)
		}
	}
}
