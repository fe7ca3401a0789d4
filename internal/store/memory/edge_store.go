package memory

import (
	"context"
	"sync"

	"github.com/goto/lineage/core/graph"
	"github.com/tidwall/btree"
)

// EdgeStore keeps edges in two ordered indexes, one keyed by source and
// one keyed by destination, so both directions are answered by a range
// scan.
type EdgeStore struct {
	mu       sync.RWMutex
	outgoing *btree.BTreeG[graph.Edge]
	incoming *btree.BTreeG[graph.Edge]
}

func NewEdgeStore() *EdgeStore {
	return &EdgeStore{
		outgoing: btree.NewBTreeG[graph.Edge](outgoingLess),
		incoming: btree.NewBTreeG[graph.Edge](incomingLess),
	}
}

func outgoingLess(a, b graph.Edge) bool {
	return a.Key().Less(b.Key())
}

func incomingLess(a, b graph.Edge) bool {
	if a.Destination != b.Destination {
		return a.Destination < b.Destination
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	return a.Type < b.Type
}

func (s *EdgeStore) UpsertEdge(ctx context.Context, edge graph.Edge) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	edge.Properties = copyProperties(edge.Properties)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.outgoing.Set(edge)
	s.incoming.Set(edge)
	return nil
}

func (s *EdgeStore) RemoveEdge(ctx context.Context, key graph.EdgeKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pivot := graph.Edge{Source: key.Source, Destination: key.Destination, Type: key.Type}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.outgoing.Delete(pivot)
	s.incoming.Delete(pivot)
	return nil
}

func (s *EdgeStore) RemoveEdgesFromNode(ctx context.Context, node graph.URN, filter graph.RelationshipFilter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := map[graph.EdgeKey]graph.Edge{}
	s.scan(node, filter.Direction, func(e graph.Edge) {
		if filter.Matches(e, node) {
			matched[e.Key()] = e
		}
	})

	for _, e := range matched {
		s.outgoing.Delete(e)
		s.incoming.Delete(e)
	}
	return len(matched), nil
}

func (s *EdgeStore) FindNeighbors(ctx context.Context, q graph.NeighborQuery) (graph.NeighborPage, error) {
	if err := ctx.Err(); err != nil {
		return graph.NeighborPage{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var related []graph.RelatedEntity
	s.scan(q.Node, q.Filter.Direction, func(e graph.Edge) {
		if rel, ok := q.Match(e); ok {
			related = append(related, rel)
		}
	})

	return graph.NewNeighborPage(related, q.Offset, q.Limit), nil
}

// Edges returns every stored edge ordered by source, destination and type.
func (s *EdgeStore) Edges() []graph.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := make([]graph.Edge, 0, s.outgoing.Len())
	s.outgoing.Scan(func(e graph.Edge) bool {
		edges = append(edges, e)
		return true
	})
	return edges
}

func (s *EdgeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.outgoing.Len()
}

// scan visits the edges incident to node in the given direction. Callers
// hold the lock.
func (s *EdgeStore) scan(node graph.URN, dir graph.RelationshipDirection, fn func(graph.Edge)) {
	if dir == graph.DirectionOutgoing || dir == graph.DirectionUndirected {
		s.outgoing.Ascend(graph.Edge{Source: node}, func(e graph.Edge) bool {
			if e.Source != node {
				return false
			}
			fn(e)
			return true
		})
	}
	if dir == graph.DirectionIncoming || dir == graph.DirectionUndirected {
		s.incoming.Ascend(graph.Edge{Destination: node}, func(e graph.Edge) bool {
			if e.Destination != node {
				return false
			}
			fn(e)
			return true
		})
	}
}

func copyProperties(props map[string]interface{}) map[string]interface{} {
	if props == nil {
		return nil
	}
	cp := make(map[string]interface{}, len(props))
	for k, v := range props {
		cp[k] = v
	}
	return cp
}
