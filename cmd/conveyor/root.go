package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	conveyor "github.com/calvora/conveyor"
	redisadapter "github.com/calvora/conveyor/internal/adapters/redis"
	"github.com/calvora/conveyor/internal/config"
	"github.com/calvora/conveyor/internal/ledger"
	"github.com/calvora/conveyor/internal/logging"
	"github.com/calvora/conveyor/internal/pipeline"
	"github.com/calvora/conveyor/internal/workflow/transfer"
	"github.com/calvora/conveyor/internal/workflow/translate"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "conveyor",
		Short:         "Workflow orchestration: sagas, activity graphs and result streams",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newTransferCmd(&configPath))
	root.AddCommand(newPipelineCmd(&configPath))
	return root
}

// app bundles everything a command wires up from one config.
type app struct {
	cfg        config.Config
	logger     *slog.Logger
	redis      *backend.Client
	registry   *prometheus.Registry
	core       *conveyor.Orchestrator
	ledger     *ledger.Service
	transfers  *transfer.Workflow
	translates *translate.Workflow
}

// buildApp wires the process: config, logger, redis, stores, activities,
// workflows. Everything is constructor-injected; no package globals.
func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel())

	client := backend.NewClient(&backend.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	promReg := prometheus.NewRegistry()
	core := conveyor.New(promReg, conveyor.WithLogger(logger))

	accounts := redisadapter.NewStore(client)
	resources := redisadapter.NewDocStore(client, redisadapter.WithDocPrefix("resource:"))
	docs := redisadapter.NewDocStore(client)
	svc := ledger.NewService(accounts, logger)

	if err := transfer.NewActivities(svc, logger).Register(core.Registry()); err != nil {
		return nil, err
	}
	if err := translate.NewActivities(translate.WordByWord{}, client, logger,
		translate.WithMetrics(core.Metrics())).Register(core.Registry()); err != nil {
		return nil, err
	}
	if err := pipeline.NewActivities(resources, docs, logger).Register(core.Registry()); err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		redis:    client,
		registry: promReg,
		core:     core,
		ledger:   svc,
		transfers: transfer.NewWorkflow(core.Host(),
			transfer.WithLogger(logger),
			transfer.WithMetrics(core.Metrics()),
		),
		translates: translate.NewWorkflow(core.Host(), logger),
	}, nil
}

func (a *app) close() {
	if err := a.redis.Close(); err != nil {
		a.logger.Error("failed to close redis client", "err", err)
	}
}
