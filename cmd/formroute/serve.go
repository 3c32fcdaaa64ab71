package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/componentregistry"
	streamsconfig "github.com/c360studio/semstreams/config"
	"github.com/c360studio/semstreams/metric"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/c360studio/semstreams/service"
	"github.com/c360studio/semstreams/types"

	"github.com/c360studio/formroute/processor/assigner"
)

func serveCmd() *cobra.Command {
	var (
		serviceConfigPath string
		engineConfigPath  string
		useMapper         bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the assigner as a stream processor",
		Long: `Serve runs the assigner component against a NATS JetStream deployment.
Submission events arriving on the input subject are resolved and matched
against the assignment rules; decisions are published on the output
subject.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(serviceConfigPath, engineConfigPath, useMapper)
		},
	}

	cmd.Flags().StringVarP(&serviceConfigPath, "config", "c", "", "Service config file path (JSON)")
	cmd.Flags().StringVar(&engineConfigPath, "engine-config", "", "Engine config file path (YAML)")
	cmd.Flags().BoolVar(&useMapper, "mapper", false, "Consult the external mapping service for unresolved fields")

	return cmd
}

func runServe(serviceConfigPath, engineConfigPath string, useMapper bool) error {
	logger := slog.Default()

	cfg, err := loadServiceConfig(serviceConfigPath, engineConfigPath, useMapper)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()
	natsClient, err := connectToNATS(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer natsClient.Close(ctx)

	streamsManager := streamsconfig.NewStreamsManager(natsClient, logger)
	if err := streamsManager.EnsureStreams(ctx, cfg); err != nil {
		return fmt.Errorf("ensure streams: %w", err)
	}

	slog.Info("Formroute ready", "version", Version)

	metricsRegistry := metric.NewMetricsRegistry()
	platform := types.PlatformMeta{
		Org:      cfg.Platform.Org,
		Platform: cfg.Platform.ID,
	}

	configManager, err := streamsconfig.NewConfigManager(cfg, natsClient, logger)
	if err != nil {
		return fmt.Errorf("create config manager: %w", err)
	}
	if err := configManager.Start(ctx); err != nil {
		return fmt.Errorf("start config manager: %w", err)
	}
	defer configManager.Stop(5 * time.Second)

	componentRegistry := component.NewRegistry()
	if err := componentregistry.Register(componentRegistry); err != nil {
		return fmt.Errorf("register semstreams components: %w", err)
	}
	if err := assigner.Register(componentRegistry); err != nil {
		return fmt.Errorf("register assigner: %w", err)
	}

	serviceRegistry := service.NewServiceRegistry()
	if err := service.RegisterAll(serviceRegistry); err != nil {
		return fmt.Errorf("register services: %w", err)
	}

	manager := service.NewServiceManager(serviceRegistry)
	ensureServiceManagerConfig(cfg)

	svcDeps := &service.Dependencies{
		NATSClient:        natsClient,
		MetricsRegistry:   metricsRegistry,
		Logger:            logger,
		Platform:          platform,
		Manager:           configManager,
		ComponentRegistry: componentRegistry,
	}

	if err := manager.ConfigureFromServices(cfg.Services, svcDeps); err != nil {
		return fmt.Errorf("configure service manager: %w", err)
	}

	for name, svcConfig := range cfg.Services {
		if name == "service-manager" {
			continue
		}
		if !svcConfig.Enabled {
			slog.Info("Service disabled in config", "name", name)
			continue
		}
		if !manager.HasConstructor(name) {
			slog.Warn("Service configured but not registered", "name", name)
			continue
		}
		if _, err := manager.CreateService(name, svcConfig.Config, svcDeps); err != nil {
			return fmt.Errorf("create service %s: %w", name, err)
		}
	}

	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	slog.Info("Starting all services")
	if err := manager.StartAll(signalCtx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	if err := manager.StopAll(30 * time.Second); err != nil {
		slog.Error("Error stopping services", "error", err)
	}

	slog.Info("Formroute shutdown complete")
	return nil
}

// ensureServiceManagerConfig adds the service-manager entry when the config
// omits it; without it no services start.
func ensureServiceManagerConfig(cfg *streamsconfig.Config) {
	if cfg.Services == nil {
		cfg.Services = make(types.ServiceConfigs)
	}

	if _, exists := cfg.Services["service-manager"]; !exists {
		defaultConfig := map[string]any{
			"http_port":  8080,
			"swagger_ui": false,
			"server_info": map[string]string{
				"title":       "Formroute API",
				"description": "survey field resolution and template assignment",
				"version":     Version,
			},
		}
		defaultConfigJSON, _ := json.Marshal(defaultConfig)
		cfg.Services["service-manager"] = types.ServiceConfig{
			Name:    "service-manager",
			Enabled: true,
			Config:  defaultConfigJSON,
		}
	}
}

func loadServiceConfig(serviceConfigPath, engineConfigPath string, useMapper bool) (*streamsconfig.Config, error) {
	if serviceConfigPath != "" {
		data, err := os.ReadFile(serviceConfigPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		expanded := streamsconfig.ExpandEnvWithDefaults(string(data))
		loader := streamsconfig.NewLoader()
		return loader.LoadFromBytes([]byte(expanded))
	}
	return buildDefaultServiceConfig(engineConfigPath, useMapper)
}

func buildDefaultServiceConfig(engineConfigPath string, useMapper bool) (*streamsconfig.Config, error) {
	assignerConfig := map[string]any{
		"config_path": engineConfigPath,
		"use_mapper":  useMapper,
	}
	assignerJSON, err := json.Marshal(assignerConfig)
	if err != nil {
		return nil, fmt.Errorf("marshal assigner config: %w", err)
	}

	return &streamsconfig.Config{
		Version: "1.0.0",
		Platform: streamsconfig.PlatformConfig{
			Org:         "formroute",
			ID:          "formroute-local",
			Environment: "dev",
		},
		NATS: streamsconfig.NATSConfig{
			URLs:          []string{"nats://localhost:4222"},
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			JetStream: streamsconfig.JetStreamConfig{
				Enabled: true,
			},
		},
		Services: types.ServiceConfigs{},
		Components: streamsconfig.ComponentConfigs{
			"assigner": types.ComponentConfig{
				Name:    "assigner",
				Type:    types.ComponentTypeProcessor,
				Enabled: true,
				Config:  assignerJSON,
			},
		},
		Streams: streamsconfig.StreamConfigs{
			"SUBMISSIONS": streamsconfig.StreamConfig{
				Subjects: []string{
					"submission.received",
					"submission.assignments",
				},
				MaxAge:   "24h",
				Storage:  "file",
				Replicas: 1,
			},
		},
	}, nil
}

func connectToNATS(ctx context.Context, cfg *streamsconfig.Config, logger *slog.Logger) (*natsclient.Client, error) {
	natsURLs := "nats://localhost:4222"

	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		natsURLs = envURL
	} else if len(cfg.NATS.URLs) > 0 {
		natsURLs = strings.Join(cfg.NATS.URLs, ",")
	}

	logger.Info("Connecting to NATS", "url", natsURLs)

	client, err := natsclient.NewClient(natsURLs,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("NATS connection failed: %w", err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, fmt.Errorf("NATS connection failed: %w", err)
	}

	logger.Info("Connected to NATS", "url", natsURLs)
	return client, nil
}
