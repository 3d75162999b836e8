// Package main implements the storecast prediction server.
// It loads the three model artifacts, serves the prediction form and JSON API
// over HTTP and optionally exposes the same pipeline over gRPC.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/HatiCode/storecast/cmd/storecast/config"
	"github.com/HatiCode/storecast/cmd/storecast/logger"
	"github.com/HatiCode/storecast/cmd/storecast/metrics"
	"github.com/HatiCode/storecast/cmd/storecast/models"
	"github.com/HatiCode/storecast/cmd/storecast/router"
	"github.com/HatiCode/storecast/pkg/httpx"
	"github.com/HatiCode/storecast/pkg/pipeline"
)

func main() {
	cfg := config.ParseFlags()

	logger := logger.New(cfg)
	slog.SetDefault(logger)

	logger.Info("starting storecast",
		"version", "v0.1.0",
		"listen", cfg.Listen,
		"grpc_listen", cfg.GRPCListen,
		"bucket_thresholds", cfg.Buckets.String(),
	)

	m := metrics.New(prometheus.DefaultRegisterer)
	set := models.New(cfg, logger)
	for _, r := range set.Roles() {
		m.SetModelInfo(r.Name, r.Model.Name(), r.Model.Kind())
	}

	predictor, err := pipeline.New(
		set.Sales,
		set.Demand,
		set.Meta,
		cfg.Buckets,
		pipeline.DefaultLabels(),
		m,
		logger,
	)
	if err != nil {
		logger.Error("failed to build prediction pipeline", "error", err)
		os.Exit(1)
	}

	handler, err := router.SetupRoutes(predictor, prometheus.DefaultGatherer, logger)
	if err != nil {
		logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}
	httpServer := httpx.NewServer(cfg.Listen, handler, logger)

	serverErr := make(chan error, 2)
	go func() {
		serverErr <- httpServer.Start()
	}()

	var rpcServer *grpcServer
	if cfg.GRPCListen != "" {
		rpcServer, err = newGRPCServer(cfg.GRPCListen, predictor, logger)
		if err != nil {
			logger.Error("failed to listen", "address", cfg.GRPCListen, "error", err)
			os.Exit(1)
		}
		go func() {
			serverErr <- rpcServer.Serve()
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", "error", err)
		}
	}

	logger.Info("shutting down")

	if rpcServer != nil {
		rpcServer.Stop()
	}

	if err := httpServer.Stop(cfg.ShutdownTimeout); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
