package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rfq-workers/internal/common/camunda"
	"rfq-workers/internal/common/config"
	"rfq-workers/internal/common/database"
	"rfq-workers/internal/common/logger"
	"rfq-workers/internal/common/observability"
	"rfq-workers/internal/procurement/fxrates"
	"rfq-workers/internal/procurement/quotestore"
	"rfq-workers/internal/procurement/vendorhistory"

	pvr "rfq-workers/internal/workers/procurement/publish-vendor-ranking"
	svq "rfq-workers/internal/workers/procurement/score-vendor-quotes"
	"rfq-workers/pkg/registry"
)

const registryPath = "configs/activity-registry.json"

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]interface{}{"error": err.Error()})
	os.Exit(1)
}

func main() {
	boot := logger.NewStructured("info", "console", "")

	cfg, err := config.Load()
	if err != nil {
		fatal(boot, "config load failed", err)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output).
		WithFields(map[string]interface{}{"service": cfg.App.Name, "version": cfg.App.Version})
	log.Info("starting worker manager", map[string]interface{}{"environment": cfg.App.Environment})

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig:            &camunda.RetryConfig{MaxRetries: 10, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second},
		Logger:                 log,
	})
	if err != nil {
		fatal(log, "zeebe client failed after retries", err)
	}
	defer zeebe.Close()
	log.Info("zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	clients, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		fatal(log, "backing services unavailable", err)
	}
	defer clients.Close()
	pg, redis, es := clients.Postgres, clients.Redis, clients.Elasticsearch

	publishCfg := pvr.NewConfigFromAppConfig(cfg)
	if created, err := es.EnsureIndex(ctx, publishCfg.Index, pvr.IndexMapping); err != nil {
		log.Warn("rankings index not verified", map[string]interface{}{"index": publishCfg.Index, "error": err.Error()})
	} else if created {
		log.Info("rankings index created", map[string]interface{}{"index": publishCfg.Index})
	}

	store := quotestore.New(pg.GetDB())
	histories := vendorhistory.New(pg.GetDB(), redis.GetClient(),
		time.Duration(cfg.Scoring.HistoryCacheTTLSeconds)*time.Second, log)
	rates := fxrates.New(cfg.Scoring.CurrencyRates, redis.GetClient(), cfg.Scoring.FXRatesKey, log)

	workers := camunda.NewWorkerSet(zeebe.GetClient(), log)
	defer workers.Close()

	scoreHandler, err := svq.NewHandler(svq.HandlerOptions{
		AppConfig: cfg,
		Quotes:    store,
		Histories: histories,
		Rates:     rates,
		Recorder:  obs,
		Logger:    log,
	})
	if err != nil {
		fatal(log, "failed to create score-vendor-quotes handler", err)
	}
	workers.Start(svq.TaskType, config.GetWorkerConfig(cfg, svq.TaskType), scoreHandler.Handle)

	publishHandler, err := pvr.NewHandler(publishCfg, es.Client, log)
	if err != nil {
		fatal(log, "failed to create publish-vendor-ranking handler", err)
	}
	publishHandler.WithRecorder(obs)
	workers.Start(pvr.TaskType, config.GetWorkerConfig(cfg, pvr.TaskType), publishHandler.Handle)

	log.Info("workers registered", map[string]interface{}{"taskTypes": workers.TaskTypes()})

	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		log.Warn("activity registry not loaded", map[string]interface{}{"path": registryPath, "error": err.Error()})
		reg = &registry.ActivityRegistry{}
	} else if err := reg.Validate(); err != nil {
		log.Warn("activity registry invalid", map[string]interface{}{"path": registryPath, "error": err.Error()})
	}
	for _, taskType := range unregisteredTaskTypes(reg, workers.TaskTypes()) {
		log.Warn("worker running without registry entry", map[string]interface{}{"taskType": taskType})
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           newHTTPHandler(zeebe, clients, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("health/metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("worker manager stopped", nil)
}

type zeebeHealth struct {
	client *camunda.Client
}

func (z zeebeHealth) Ping(ctx context.Context) error {
	return z.client.HealthCheck(ctx)
}

func newHTTPHandler(zeebe *camunda.Client, clients *database.Clients, reg *registry.ActivityRegistry) http.Handler {
	deps := clients.Pingers()
	deps["zeebe"] = zeebeHealth{client: zeebe}
	return newHealthMux(deps, reg)
}

func unregisteredTaskTypes(reg *registry.ActivityRegistry, taskTypes []string) []string {
	var missing []string
	for _, taskType := range taskTypes {
		if _, ok := reg.Find(taskType); !ok {
			missing = append(missing, taskType)
		}
	}
	return missing
}

// newHealthMux serves liveness, readiness against every dependency, the
// activity catalogue and Prometheus metrics.
func newHealthMux(deps map[string]database.Pinger, reg *registry.ActivityRegistry) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(deps))
		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		writeJSON(w, status, map[string]interface{}{
			"status": state,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/activities", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reg)
	})

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
