package workermanager

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/goto/lineage/core/graph"
	"github.com/goto/lineage/pkg/worker"
	"github.com/goto/lineage/pkg/worker/pgq"
	"github.com/goto/lineage/pkg/worker/workermw"
	"github.com/goto/salt/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Manager applies graph mutations asynchronously. Producers enqueue
// mutation jobs on the postgres queue and Run executes them against the
// graph with retries.
type Manager struct {
	processor      *pgq.Processor
	worker         Worker
	graph          GraphMutator
	jobOpts        worker.JobOptions
	jobManagerPort int
	logger         log.Logger
	initDone       atomic.Bool
}

//go:generate mockery --name=Worker -r --case underscore --with-expecter --structname Worker --filename worker_mock.go --output=./mocks

type Worker interface {
	Register(typ string, h worker.JobHandler) error
	Run(ctx context.Context) error
	Enqueue(ctx context.Context, jobs ...worker.JobSpec) error
}

//go:generate mockery --name=GraphMutator -r --case underscore --with-expecter --structname GraphMutator --filename graph_mutator_mock.go --output=./mocks

// GraphMutator is the write side of the graph service.
type GraphMutator interface {
	UpsertEdge(ctx context.Context, edge graph.Edge) error
	RemoveEdge(ctx context.Context, key graph.EdgeKey) error
	RemoveEdgesFromNode(ctx context.Context, node graph.URN, filter graph.RelationshipFilter) (int, error)
}

type Config struct {
	Enabled           bool          `mapstructure:"enabled"`
	WorkerCount       int           `mapstructure:"worker_count" default:"3"`
	PollInterval      time.Duration `mapstructure:"poll_interval" default:"500ms"`
	ActivePollPercent float64       `mapstructure:"active_poll_percent" default:"20"`
	MaxAttempts       int           `mapstructure:"max_attempts" default:"5"`
	JobTimeout        time.Duration `mapstructure:"job_timeout" default:"10s"`
	PGQ               pgq.Config    `mapstructure:"pgq"`
	// JobManagerPort serves the dead job admin API when set.
	JobManagerPort int `mapstructure:"job_manager_port"`
}

type Deps struct {
	Config Config
	Graph  GraphMutator
	Logger log.Logger
}

func New(ctx context.Context, deps Deps) (*Manager, error) {
	cfg := deps.Config
	processor, err := pgq.NewProcessor(ctx, cfg.PGQ)
	if err != nil {
		return nil, fmt.Errorf("new worker manager: %w", err)
	}

	w, err := worker.New(
		workermw.WithJobProcessorInstrumentation()(processor),
		worker.WithRunConfig(cfg.WorkerCount, cfg.PollInterval),
		worker.WithActivePollPercent(cfg.ActivePollPercent),
		worker.WithLogger(deps.Logger),
	)
	if err != nil {
		_ = processor.Close()
		return nil, fmt.Errorf("new worker manager: %w", err)
	}

	mgr := NewWithWorker(w, deps)
	mgr.processor = processor
	return mgr, nil
}

// NewWithWorker builds a Manager on an existing Worker. The dead job API
// and queue gauges are unavailable without a postgres processor.
func NewWithWorker(w Worker, deps Deps) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = log.NewNoop()
	}

	return &Manager{
		worker: w,
		graph:  deps.Graph,
		jobOpts: worker.JobOptions{
			MaxAttempts: deps.Config.MaxAttempts,
			Timeout:     deps.Config.JobTimeout,
		},
		jobManagerPort: deps.Config.JobManagerPort,
		logger:         logger,
	}
}

// Run registers the mutation handlers and processes jobs until ctx is
// done.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.init(); err != nil {
		return fmt.Errorf("run async worker: init: %w", err)
	}

	if m.processor != nil && m.jobManagerPort > 0 {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", m.jobManagerPort),
			Handler:           worker.AdminHandler(m.processor),
			ReadHeaderTimeout: 3 * time.Second,
			WriteTimeout:      10 * time.Second,
			MaxHeaderBytes:    1 << 20,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				m.logger.Error("job manager: listen and serve", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	return m.worker.Run(ctx)
}

func (m *Manager) init() error {
	if !m.initDone.CompareAndSwap(false, true) {
		return nil
	}

	handlers := map[string]worker.JobFunc{
		jobUpsertEdge: m.ApplyUpsertEdge,
		jobRemoveEdge: m.ApplyRemoveEdge,
		jobRemoveNode: m.ApplyRemoveNode,
	}
	types := make([]string, 0, len(handlers))
	for typ, fn := range handlers {
		if err := m.worker.Register(typ, worker.JobHandler{Handle: fn, Opts: m.jobOpts}); err != nil {
			return err
		}
		types = append(types, typ)
	}

	if m.processor == nil {
		return nil
	}
	return m.registerStatsCallback(types)
}

func (m *Manager) Close() error {
	if m.processor == nil {
		return nil
	}
	return m.processor.Close()
}

func (m *Manager) registerStatsCallback(jobTypes []string) error {
	const attrJobType = attribute.Key("job.type")

	meter := otel.Meter("github.com/goto/lineage/internal/workermanager")
	activeJobs, err := meter.Int64ObservableGauge("lineage.worker.active_jobs")
	handleOtelErr(err)

	deadJobs, err := meter.Int64ObservableGauge("lineage.worker.dead_jobs")
	handleOtelErr(err)

	_, err = meter.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			stats, err := m.processor.Stats(ctx)
			if err != nil {
				return err
			}

			observed := make(map[string]worker.JobTypeStats, len(jobTypes))
			for _, st := range stats {
				observed[st.Type] = st
			}
			for _, typ := range jobTypes {
				if _, ok := observed[typ]; !ok {
					observed[typ] = worker.JobTypeStats{Type: typ}
				}
			}

			for typ, st := range observed {
				attr := metric.WithAttributes(attrJobType.String(typ))
				o.ObserveInt64(activeJobs, int64(st.Active), attr)
				o.ObserveInt64(deadJobs, int64(st.Dead), attr)
			}
			return nil
		},
		activeJobs,
		deadJobs,
	)
	return err
}

func handleOtelErr(err error) {
	if err != nil {
		otel.Handle(err)
	}
}
