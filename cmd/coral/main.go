package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/archivelab/coral/internal/logger"
	coralConfig "github.com/archivelab/coral/pkg/config"
	"github.com/archivelab/coral/pkg/metrics"
	"github.com/archivelab/coral/pkg/model"
	"github.com/archivelab/coral/pkg/notify"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: coral.yaml in . or /etc/coral)")
	flag.Parse()

	cfg, err := coralConfig.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(cfg.Logging.Level)
	logger.SetFormat(cfg.Logging.Format)

	fmt.Println("Coral - hierarchical object store")
	logger.Info("log level set to %s", cfg.Logging.Level)

	ctx := context.Background()

	st, err := coralConfig.NewStore(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close store: %v", err)
		}
	}()

	pub, err := coralConfig.NewPublisher(ctx, cfg.Notify)
	if err != nil {
		log.Fatalf("Failed to create event publisher: %v", err)
	}
	if closer, ok := pub.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Error("failed to close event publisher: %v", err)
			}
		}()
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	engine := model.New(st, notify.NewEmitter(pub), metrics.NewModelMetrics())

	// Bootstrap: CreateRoot is not idempotent, so look before creating.
	if _, err := engine.GetRootCollection(ctx); err != nil {
		if !model.IsCode(err, model.ErrNotFound) {
			log.Fatalf("Failed to look up root collection: %v", err)
		}
		if _, err := engine.CreateRoot(ctx); err != nil {
			log.Fatalf("Failed to create root collection: %v", err)
		}
		logger.Info("created root collection")
	}

	if cfg.Metrics.Enabled {
		go func() {
			logger.Info("metrics endpoint listening on %s", cfg.Metrics.Listen)
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				logger.Error("metrics endpoint failed: %v", err)
			}
		}()
	}

	logger.Info("coral is up, store=%s notify=%s", cfg.Store.Type, cfg.Notify.Type)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
}
