package graph

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const defaultTraversalConcurrency = 8

// Traverser computes multi hop lineage with a breadth first search built
// on one hop EdgeStore lookups. It holds no per query state and is safe
// for concurrent use.
type Traverser struct {
	store       EdgeStore
	registry    LineageRegistry
	concurrency int
}

func NewTraverser(store EdgeStore, registry LineageRegistry, concurrency int) *Traverser {
	if concurrency <= 0 {
		concurrency = defaultTraversalConcurrency
	}
	return &Traverser{
		store:       store,
		registry:    registry,
		concurrency: concurrency,
	}
}

// ComputeLineage walks up to q.MaxHops levels away from origin. Every
// reachable entity is reported once, with the degree and path of the
// first, and therefore shortest, discovery. The result page is a window
// over the discovery order.
func (t *Traverser) ComputeLineage(ctx context.Context, origin URN, q LineageQuery) (EntityLineageResult, error) {
	result := EntityLineageResult{
		Start:         q.Offset,
		Relationships: []LineageRelationship{},
	}

	hops := t.registry.hops(q.Direction, q.RelationshipTypes, q.EntityTypes)
	if q.MaxHops <= 0 || len(hops) == 0 {
		return result, nil
	}

	visited := newUniqueURNs(64)
	visited.add(origin)
	paths := map[URN][]URN{origin: {}}

	var discovered []LineageRelationship
	frontier := []URN{origin}
	for degree := 1; degree <= q.MaxHops && len(frontier) > 0; degree++ {
		if err := ctx.Err(); err != nil {
			return EntityLineageResult{}, CancelledError{Err: err}
		}

		neighbors, err := t.expand(ctx, frontier, hops)
		if err != nil {
			return EntityLineageResult{}, err
		}

		var next []URN
		for i, node := range frontier {
			for _, rel := range neighbors[i] {
				if !visited.add(rel.URN) {
					continue
				}

				path := extendPath(paths[node], node, origin)
				paths[rel.URN] = path
				discovered = append(discovered, LineageRelationship{
					URN:    rel.URN,
					Type:   rel.Type,
					Degree: degree,
					Path:   path,
				})
				next = append(next, rel.URN)
			}
		}
		frontier = next
	}

	result.Total = visited.len() - 1
	if q.Count > 0 {
		result.Relationships = paginate(discovered, q.Offset, q.Count)
	}
	result.Count = len(result.Relationships)
	return result, nil
}

// expand fetches the neighbors of every frontier node. Lookups run
// concurrently up to the configured limit; the result is indexed by
// frontier position so the merge order does not depend on scheduling.
func (t *Traverser) expand(ctx context.Context, frontier []URN, hops []lineageHop) ([][]RelatedEntity, error) {
	out := make([][]RelatedEntity, len(frontier))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for i, node := range frontier {
		i, node := i, node
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return CancelledError{Err: err}
			}

			rels, err := t.neighbors(gctx, node, hops)
			if err != nil {
				return err
			}
			out[i] = rels
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, CancelledError{Err: ctxErr}
		}
		return nil, err
	}
	return out, nil
}

func (t *Traverser) neighbors(ctx context.Context, node URN, hops []lineageHop) ([]RelatedEntity, error) {
	var all []RelatedEntity
	for _, h := range hops {
		page, err := t.store.FindNeighbors(ctx, h.query(node))
		if err != nil {
			return nil, translateStoreError(ctx, "find neighbors", node, nil, err)
		}
		all = append(all, page.Entities...)
	}

	if len(hops) > 1 {
		all = SortRelatedEntities(all)
	}
	return all, nil
}

func extendPath(parentPath []URN, parent, origin URN) []URN {
	if parent == origin {
		return []URN{}
	}

	path := make([]URN, len(parentPath), len(parentPath)+1)
	copy(path, parentPath)
	return append(path, parent)
}
