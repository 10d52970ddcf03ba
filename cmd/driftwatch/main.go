package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"driftwatch/internal/anomalies"
	"driftwatch/internal/api"
	"driftwatch/internal/config"
	"driftwatch/internal/engine"
	"driftwatch/internal/ingest"
	"driftwatch/internal/logging"
	"driftwatch/internal/model"
	"driftwatch/internal/report"
	"driftwatch/internal/stats"
	"driftwatch/internal/storage"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", "", "path to config file (yaml or json); defaults apply when omitted")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("driftwatch", version)
		return
	}

	var mgr *config.Manager
	if *configPath != "" {
		m, err := config.NewManager(config.ResolvePath(*configPath))
		if err != nil {
			fmt.Fprintln(os.Stderr, "config error:", err)
			os.Exit(1)
		}
		mgr = m
	} else {
		mgr = config.NewStaticManager(config.DefaultConfig())
	}
	cfg := mgr.Get()

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting driftwatch", "version", version, "config", mgr.Path())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	statsStore := stats.NewStore(cfg.Stats.StoreLimit)
	anomalyStore := anomalies.NewStore(cfg.Anomalies.StoreLimit)

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		logger.Error("storage setup failed", "err", err)
		os.Exit(1)
	}
	if store != nil {
		if err := store.Init(ctx); err != nil {
			logger.Error("storage init failed", "err", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	eng := engine.NewEngine(cfg, logger, statsStore, anomalyStore, store)
	if cfg.Report.Enabled {
		eng.AddPublisher(report.NewConsole(os.Stdout, cfg.Report.Color))
	}
	var hub *api.LiveHub
	if cfg.API.Enabled && cfg.API.Live.Enabled {
		hub = api.NewLiveHub(cfg.API.Live.BufferSize, logger)
		eng.AddPublisher(hub)
	}

	samples := make(chan model.Sample, cfg.Ingest.ChannelBuffer)
	eng.Start(ctx, samples)

	parser := ingest.NewParser()
	ingest.StartGenerator(ctx, mgr, samples, logger)
	ingest.StartREST(ctx, mgr, samples, logger)
	ingest.StartSyslog(ctx, mgr, parser, samples, logger)
	ingest.StartTCPStream(ctx, mgr, parser, samples, logger)
	ingest.StartFileTail(ctx, mgr, parser, samples, logger)
	ingest.StartKafka(ctx, mgr, parser, samples, logger)

	api.Start(ctx, mgr, statsStore, anomalyStore, eng, hub, logger, version)

	go mgr.Watch(3*time.Second,
		func(updated *config.Config) {
			logger.Info("config reloaded", "path", mgr.Path())
			eng.UpdateConfig(updated)
		},
		func(err error) {
			logger.Warn("config reload error", "err", err)
		},
		ctx.Done(),
	)

	<-ctx.Done()
	logger.Info("shutting down")
}
