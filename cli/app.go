package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/goto/lineage/core/graph"
	esStore "github.com/goto/lineage/internal/store/elasticsearch"
	"github.com/goto/lineage/internal/store/memory"
	"github.com/goto/lineage/internal/store/postgres"
	"github.com/goto/lineage/internal/workermanager"
	"github.com/goto/lineage/pkg/statsd"
	"github.com/goto/salt/log"
)

// app bundles the graph service and the mutation path built from Config.
type app struct {
	logger  log.Logger
	graph   *graph.Service
	queue   workermanager.MutationQueue
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("close", "err", err)
		}
	}
}

// outcome describes a mutation handed to the queue: applied when it ran in
// situ, queued when the async worker picks it up later.
func (a *app) outcome(applied string) string {
	if _, ok := a.queue.(*workermanager.Manager); ok {
		return "queued"
	}
	return applied
}

func initApp(ctx context.Context, cfg *Config) (*app, error) {
	logger := initLogger(cfg.LogLevel)
	a := &app{logger: logger}

	statsdReporter, err := statsd.Init(logger, cfg.StatsD)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, statsdReporter.Close)

	store, entities, err := a.initEdgeStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.graph, err = graph.NewService(graph.ServiceDeps{
		Store:       store,
		Entities:    entities,
		Registry:    graph.NewLineageRegistry(cfg.Lineage.Registry...),
		Concurrency: cfg.Lineage.MaxConcurrency,
		MaxHops:     cfg.Lineage.MaxHops,
		Logger:      logger,
	}, graph.ServiceWithStatsDReporter(statsdReporter))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create graph service: %w", err)
	}

	a.queue, err = initMutationQueue(ctx, workermanager.Deps{
		Config: cfg.Worker,
		Graph:  a.graph,
		Logger: logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.queue.Close)

	return a, nil
}

// initEdgeStore opens the configured backend. Entity existence checks are
// only available on postgres.
func (a *app) initEdgeStore(ctx context.Context, cfg *Config) (graph.EdgeStore, graph.EntityChecker, error) {
	switch cfg.Store.Backend {
	case backendPostgres, "":
		pgClient, err := initPostgres(ctx, a.logger, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, pgClient.Close)

		edgeRepo, err := postgres.NewEdgeRepository(pgClient)
		if err != nil {
			return nil, nil, fmt.Errorf("create new edge repository: %w", err)
		}
		entityRepo, err := postgres.NewEntityRepository(pgClient)
		if err != nil {
			return nil, nil, fmt.Errorf("create new entity repository: %w", err)
		}
		return edgeRepo, entityRepo, nil

	case backendElasticsearch:
		esClient, err := initElasticsearch(a.logger, cfg.Elasticsearch)
		if err != nil {
			return nil, nil, err
		}
		edgeRepo, err := esStore.NewEdgeRepository(esClient)
		if err != nil {
			return nil, nil, fmt.Errorf("create new edge repository: %w", err)
		}
		return edgeRepo, nil, nil

	case backendMemory:
		store, err := memory.NewEdgeStoreFromConfig(ctx, cfg.Store.Memory)
		if err != nil {
			return nil, nil, fmt.Errorf("create memory edge store: %w", err)
		}
		a.logger.Warn("using in-memory edge store, edges are lost on exit", "edges", store.Len())
		return store, nil, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnknownBackend, cfg.Store.Backend)
	}
}

func initLogger(logLevel string) *log.Logrus {
	logger := log.NewLogrus(
		log.LogrusWithLevel(logLevel),
		log.LogrusWithWriter(os.Stderr),
	)
	return logger
}

func initElasticsearch(logger log.Logger, config esStore.Config) (*esStore.Client, error) {
	esClient, err := esStore.NewClient(logger, config)
	if err != nil {
		return nil, fmt.Errorf("create new elasticsearch client: %w", err)
	}
	got, err := esClient.Init()
	if err != nil {
		return nil, fmt.Errorf("establish connection to elasticsearch: %w", err)
	}
	logger.Info("connected to elasticsearch", "info", got)
	return esClient, nil
}

func initPostgres(ctx context.Context, logger log.Logger, config postgres.Config) (*postgres.Client, error) {
	pgClient, err := postgres.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("error creating postgres client: %w", err)
	}
	logger.Info("connected to postgres server", "host", config.Host, "port", config.Port)

	return pgClient, nil
}

func initMutationQueue(ctx context.Context, deps workermanager.Deps) (workermanager.MutationQueue, error) {
	if !deps.Config.Enabled {
		return workermanager.NewInSituWorker(deps), nil
	}

	mgr, err := workermanager.New(ctx, deps)
	if err != nil {
		return nil, err
	}

	return mgr, nil
}
