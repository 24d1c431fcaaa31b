package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mingyueshfjksnkm/RAO-Calculator/config"
	"github.com/mingyueshfjksnkm/RAO-Calculator/db"
	qhttp "github.com/mingyueshfjksnkm/RAO-Calculator/http"
	"github.com/mingyueshfjksnkm/RAO-Calculator/logging"
	"github.com/mingyueshfjksnkm/RAO-Calculator/ml"
	"github.com/mingyueshfjksnkm/RAO-Calculator/monitoring"
	"github.com/mingyueshfjksnkm/RAO-Calculator/risk"
)

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Load model artifacts. Any missing artifact stops the service here,
	// before the listener starts; the scoring path never sees a half-loaded
	// state.
	classifier, err := ml.LoadModel(cfg.Model.Type, cfg.Model.Path)
	if err != nil {
		logger.Fatal("failed to load classifier", zap.String("path", cfg.Model.Path), zap.Error(err))
	}
	scaler, err := ml.LoadScaler(cfg.Model.MeansPath, cfg.Model.StdsPath, risk.NumericFeatureNames())
	if err != nil {
		logger.Fatal("failed to load standardization tables", zap.Error(err))
	}
	policy, err := risk.PolicyByName(cfg.Scoring.Policy)
	if err != nil {
		logger.Fatal("invalid scoring policy", zap.Error(err))
	}
	scorer, err := risk.NewScorer(risk.ScorerConfig{
		Scaler:     scaler,
		Classifier: classifier,
		Policy:     policy,
		Limits:     cfg.Limits,
		CacheSize:  cfg.Scoring.CacheSize,
	})
	if err != nil {
		logger.Fatal("failed to build scorer", zap.Error(err))
	}
	logger.Info("model loaded",
		zap.String("type", cfg.Model.Type),
		zap.String("policy", policy.Name),
	)

	// 3. Initialize assessment audit store
	if cfg.Scoring.Audit {
		if err := db.InitDB(cfg.Database.Path); err != nil {
			logger.Fatal("failed to initialize database", zap.String("path", cfg.Database.Path), zap.Error(err))
		}
		defer db.Close()
		logger.Info("audit database initialized", zap.String("path", cfg.Database.Path))
	}

	// 4. Monitoring
	hub := monitoring.NewHub(logger)
	go hub.Run()
	defer hub.Stop()
	metrics := monitoring.NewMetrics()

	// 5. Start HTTP server
	qhttp.SetScorer(scorer)
	qhttp.SetEventHub(hub)
	qhttp.SetMetrics(metrics)
	qhttp.SetAuditEnabled(cfg.Scoring.Audit)
	qhttp.SetLogger(logger)

	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        time.Duration(cfg.Http.TimeoutSeconds) * time.Second,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 6. Hot-reload tunable config sections (policy, input limits). Model
	// artifacts stay fixed for the process lifetime.
	stopWatch, err := config.Watch(*configPath, logger, func(updated *config.Config) {
		newPolicy, err := risk.PolicyByName(updated.Scoring.Policy)
		if err != nil {
			logger.Warn("ignoring reloaded config", zap.Error(err))
			return
		}
		scorer.SetPolicy(newPolicy)
		scorer.SetLimits(updated.Limits)
	})
	if err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
	} else {
		defer stopWatch()
	}

	// 7. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}
