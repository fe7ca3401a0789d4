package workermanager

import (
	"context"
	"fmt"

	"github.com/goto/lineage/core/graph"
	"github.com/goto/salt/log"
)

// InSituWorker applies mutations synchronously. It is used when the async
// worker is disabled.
type InSituWorker struct {
	graph  GraphMutator
	logger log.Logger
}

func NewInSituWorker(deps Deps) *InSituWorker {
	logger := deps.Logger
	if logger == nil {
		logger = log.NewNoop()
	}
	return &InSituWorker{
		graph:  deps.Graph,
		logger: logger,
	}
}

func (w *InSituWorker) EnqueueUpsertEdgeJob(ctx context.Context, edge graph.Edge) error {
	if err := w.graph.UpsertEdge(ctx, edge); err != nil {
		return fmt.Errorf("upsert edge: %w", err)
	}
	return nil
}

func (w *InSituWorker) EnqueueRemoveEdgeJob(ctx context.Context, key graph.EdgeKey) error {
	if err := w.graph.RemoveEdge(ctx, key); err != nil {
		return fmt.Errorf("remove edge: %w", err)
	}
	return nil
}

func (w *InSituWorker) EnqueueRemoveNodeJob(ctx context.Context, node graph.URN, filter graph.RelationshipFilter) error {
	removed, err := w.graph.RemoveEdgesFromNode(ctx, node, filter)
	if err != nil {
		return fmt.Errorf("remove node: %w", err)
	}

	w.logger.Info("removed edges from node", "urn", node, "removed", removed)
	return nil
}

func (*InSituWorker) Close() error { return nil }
