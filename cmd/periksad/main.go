package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"periksa/internal/checker"
	"periksa/internal/classifier"
	"periksa/internal/config"
	"periksa/internal/daemon"
	"periksa/internal/ingest"
	"periksa/internal/logging"
	"periksa/internal/store"
	"periksa/internal/trainer"
	"periksa/internal/training"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return
	}

	var detector classifier.Detector
	if cfg.Classifier.MLEnabled {
		detector = classifier.NewCLIDetector(classifier.WithScorerBinary(cfg.Classifier.MLBinary))
	}
	router := classifier.NewRouter(detector, classifier.NewEngine(), logger)

	var ingestSvc *ingest.Service
	if cfg.Feed.URL != "" {
		fetcher := ingest.NewHTTPFetcher(cfg.FetchTimeout())
		ingestSvc = ingest.NewService(cfg.Feed.URL, fetcher, router, st, cfg.Feed.MaxConcurrentFetches, logger)
	}

	queue := training.NewQueue(st, cfg.Training.Threshold)
	trainerClient := trainer.NewCLI(trainer.WithBinary(cfg.Training.TrainerBinary), trainer.WithLogger(logger))
	orchestrator := training.NewOrchestrator(queue, st, trainerClient, cfg.Training.BaseModelRef, cfg.TrainTimeout(), logger)

	checkSvc := checker.NewService(router, ingest.NewHTTPFetcher(cfg.FetchTimeout()), st, logger)

	d, err := daemon.New(cfg, st, ingestSvc, queue, orchestrator, checkSvc, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = st.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("periksad shutting down")
	d.Stop()
}
