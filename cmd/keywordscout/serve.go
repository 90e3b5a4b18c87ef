package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	kwconfig "github.com/keywordscout/keywordscout/internal/config"
	"github.com/keywordscout/keywordscout/internal/httpapi"
	"github.com/keywordscout/keywordscout/internal/logstore"
	"github.com/keywordscout/keywordscout/internal/niche"
	"github.com/keywordscout/keywordscout/internal/telemetry"
	"github.com/keywordscout/keywordscout/internal/tune"
)

func newServeCmd() *cobra.Command {
	var port int
	var metricsPort int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP boundary (health/optimize/experiments/monitoring/feedback/audit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port, metricsPort)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (defaults to KEYWORDSCOUT_HTTP_PORT or 8088)")
	cmd.Flags().IntVar(&metricsPort, "metrics-port", 9090, "Prometheus /metrics port, 0 disables it")

	return cmd
}

func runServe(cmd *cobra.Command, port, metricsPort int) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	nichesPath, _ := cmd.Flags().GetString("niches")

	cfg, err := kwconfig.Load(cfgPath)
	if err != nil {
		return configErr(err)
	}
	table, err := niche.LoadTable(nichesPath)
	if err != nil {
		return configErr(err)
	}

	logger := logstore.NewLogger(cfg.ToLoggerConfig())
	resolver := niche.NewResolver(table, nil)
	tuneCfg := tune.DefaultConfig()
	tuneCfg.WindowDays = cfg.Optimizer.WindowDays
	tuneCfg.ModelDir = cfg.Optimizer.ModelDir
	optimizer := tune.NewOptimizer(tuneCfg, logger, logger, resolver)

	metrics := telemetry.NewRegistry(prometheus.DefaultRegisterer)

	srvCfg := httpapi.DefaultServerConfig()
	if port != 0 {
		srvCfg.Port = port
	}

	server, err := httpapi.NewServer(srvCfg, httpapi.Dependencies{
		Optimizer: optimizer,
		Logger:    logger,
		Cache:     buildCache(),
		Metrics:   metrics,
	})
	if err != nil {
		return internalErr(err)
	}

	if metricsPort != 0 {
		go serveMetrics(metricsPort)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return internalErr(err)
	case <-sigCh:
		log.Info().Msg("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return internalErr(err)
	}
	return nil
}

// buildCache wires a Redis-backed NicheConfig cache when
// KEYWORDSCOUT_REDIS_ADDR is set, the same optional-collaborator posture
// DefaultServerConfig uses for KEYWORDSCOUT_HTTP_PORT. Serving without
// Redis configured is a supported degraded mode (handleCacheStats answers
// a zero-value niche.CacheStats in that case).
func buildCache() *niche.Cache {
	addr := os.Getenv("KEYWORDSCOUT_REDIS_ADDR")
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return niche.NewCache(client, 15*time.Minute)
}

func serveMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := ":" + strconv.Itoa(port)
	log.Info().Str("addr", addr).Msg("starting metrics server")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
