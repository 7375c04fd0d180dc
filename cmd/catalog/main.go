package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/serviceninja/catalog-mcp/internal/probe"
	"github.com/serviceninja/catalog-mcp/internal/server"
	"github.com/serviceninja/catalog-mcp/internal/store"
	"github.com/serviceninja/catalog-mcp/internal/tools"
)

type Config struct {
	Database string `yaml:"database"`
	Server   struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"server"`
	Probe struct {
		HealthTimeoutSeconds int `yaml:"health_timeout_seconds"`
		AliveTimeoutSeconds  int `yaml:"alive_timeout_seconds"`
		FleetLimit           int `yaml:"fleet_limit"`
	} `yaml:"probe"`
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Default config
	cfg := Config{Database: "catalog.db"}
	cfg.Server.Name = "catalog-mcp"
	cfg.Server.Version = "1.0.0"

	// Load config file if provided
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing config: %v\n", err)
			os.Exit(1)
		}
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	prober := probe.New(
		probe.WithHealthTimeout(time.Duration(cfg.Probe.HealthTimeoutSeconds)*time.Second),
		probe.WithAliveTimeout(time.Duration(cfg.Probe.AliveTimeoutSeconds)*time.Second),
		probe.WithFleetLimit(cfg.Probe.FleetLimit),
	)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	handler := tools.NewHandler(st, prober)
	srv := server.New(os.Stdin, os.Stdout, st, handler, server.Config{
		Name:    cfg.Server.Name,
		Version: cfg.Server.Version,
	})
	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
