// Package config provides configuration parsing for the storecast server.
//
// Values come from command-line flags, falling back to environment variables
// and then to defaults:
//
//  1. Command-line flags
//  2. Environment variables
//  3. Default values
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/HatiCode/storecast/pkg/bucket"
)

// Config holds all server configuration.
type Config struct {
	Listen          string
	GRPCListen      string
	SalesModel      string
	DemandModel     string
	MetaModel       string
	Buckets         bucket.Policy
	ShutdownTimeout time.Duration
	LogFormat       string
	LogLevel        string
}

// ParseFlags parses command-line flags and environment variables into a Config.
// Exits with status 1 if the bucket thresholds are invalid.
func ParseFlags() *Config {
	cfg := &Config{}
	var thresholds string

	// Server
	flag.StringVar(&cfg.Listen, "listen", getEnv("LISTEN", ":8080"), "HTTP listen address")
	flag.StringVar(&cfg.GRPCListen, "grpc-listen", getEnv("GRPC_LISTEN", ""), "gRPC listen address (disabled when empty)")
	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second), "Graceful shutdown timeout")

	// Model artifacts
	flag.StringVar(&cfg.SalesModel, "sales-model", getEnv("SALES_MODEL", "models/sales_regressor.yaml"), "Weekly sales regressor artifact")
	flag.StringVar(&cfg.DemandModel, "demand-model", getEnv("DEMAND_MODEL", "models/demand_classifier.yaml"), "Demand level classifier artifact")
	flag.StringVar(&cfg.MetaModel, "meta-model", getEnv("META_MODEL", "models/meta_classifier.yaml"), "Stacking meta classifier artifact")
	flag.StringVar(&thresholds, "bucket-thresholds", getEnv("BUCKET_THRESHOLDS", bucket.DefaultPolicy().String()), "Comma-separated sales bucket thresholds")

	// Logging
	flag.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "Log format: text or json")
	flag.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	flag.Parse()

	policy, err := parseBuckets(thresholds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid --bucket-thresholds: %v\n", err)
		os.Exit(1)
	}
	cfg.Buckets = policy

	return cfg
}

// parseBuckets reads the sales tier thresholds. The meta model expects
// exactly bucket.NumTiers tiers.
func parseBuckets(s string) (bucket.Policy, error) {
	policy, err := bucket.ParseThresholds(s)
	if err != nil {
		return bucket.Policy{}, fmt.Errorf("%q: %w", s, err)
	}
	return policy, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
