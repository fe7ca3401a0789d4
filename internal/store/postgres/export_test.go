package postgres

import (
	"context"

	"github.com/goto/lineage/core/graph"
)

func (r *EdgeRepository) GetEdge(ctx context.Context, key graph.EdgeKey) (graph.Edge, error) {
	return r.getEdge(ctx, key)
}
