package graph_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/goto/lineage/core/graph"
	"github.com/goto/lineage/core/graph/mocks"
	"github.com/goto/lineage/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	urnA graph.URN = "urn:bigquery:table:a"
	urnB graph.URN = "urn:bigquery:table:b"
	urnC graph.URN = "urn:bigquery:table:c"
	urnD graph.URN = "urn:bigquery:table:d"
	urnE graph.URN = "urn:bigquery:table:e"
	jobX graph.URN = "urn:optimus:job:x"

	downstreamOf graph.RelationshipType = "DownstreamOf"
	consumes     graph.RelationshipType = "Consumes"
)

func newStore(t *testing.T, edges ...graph.Edge) *memory.EdgeStore {
	t.Helper()

	s := memory.NewEdgeStore()
	for _, e := range edges {
		require.NoError(t, s.UpsertEdge(context.Background(), e))
	}
	return s
}

func e(src graph.URN, typ graph.RelationshipType, dst graph.URN) graph.Edge {
	return graph.Edge{Source: src, Destination: dst, Type: typ}
}

func downstream(maxHops int) graph.LineageQuery {
	return graph.LineageQuery{Direction: graph.LineageDirectionDownstream, Count: 10, MaxHops: maxHops}
}

func TestTraverser_ComputeLineage(t *testing.T) {
	ctx := context.Background()
	chain := []graph.Edge{e(urnA, downstreamOf, urnB), e(urnB, downstreamOf, urnC)}

	cases := []struct {
		Description string
		Edges       []graph.Edge
		Registry    graph.LineageRegistry
		Origin      graph.URN
		Query       graph.LineageQuery
		Expected    graph.EntityLineageResult
	}{
		{
			Description: "should return every entity of a chain within the hop bound",
			Edges:       chain,
			Origin:      urnA,
			Query:       downstream(2),
			Expected: graph.EntityLineageResult{
				Count: 2,
				Total: 2,
				Relationships: []graph.LineageRelationship{
					{URN: urnB, Type: downstreamOf, Degree: 1, Path: []graph.URN{}},
					{URN: urnC, Type: downstreamOf, Degree: 2, Path: []graph.URN{urnB}},
				},
			},
		},
		{
			Description: "should stop at max hops",
			Edges:       chain,
			Origin:      urnA,
			Query:       downstream(1),
			Expected: graph.EntityLineageResult{
				Count: 1,
				Total: 1,
				Relationships: []graph.LineageRelationship{
					{URN: urnB, Type: downstreamOf, Degree: 1, Path: []graph.URN{}},
				},
			},
		},
		{
			Description: "should return empty result when max hops is zero",
			Edges:       chain,
			Origin:      urnA,
			Query:       downstream(0),
			Expected:    graph.EntityLineageResult{Relationships: []graph.LineageRelationship{}},
		},
		{
			Description: "should walk incoming edges upstream",
			Edges:       chain,
			Origin:      urnC,
			Query:       graph.LineageQuery{Direction: graph.LineageDirectionUpstream, Count: 10, MaxHops: 3},
			Expected: graph.EntityLineageResult{
				Count: 2,
				Total: 2,
				Relationships: []graph.LineageRelationship{
					{URN: urnB, Type: downstreamOf, Degree: 1, Path: []graph.URN{}},
					{URN: urnA, Type: downstreamOf, Degree: 2, Path: []graph.URN{urnB}},
				},
			},
		},
		{
			Description: "should report an entity reached by two types once",
			Edges:       []graph.Edge{e(urnA, "X", urnD), e(urnA, "Y", urnD)},
			Origin:      urnA,
			Query:       downstream(1),
			Expected: graph.EntityLineageResult{
				Count:         1,
				Total:         1,
				Relationships: []graph.LineageRelationship{{URN: urnD, Type: "X", Degree: 1, Path: []graph.URN{}}},
			},
		},
		{
			Description: "should exclude origin on a self loop",
			Edges:       []graph.Edge{e(urnA, "Self", urnA)},
			Origin:      urnA,
			Query:       downstream(5),
			Expected:    graph.EntityLineageResult{Relationships: []graph.LineageRelationship{}},
		},
		{
			Description: "should report the shortest degree in a diamond",
			Edges: []graph.Edge{
				e(urnA, downstreamOf, urnB),
				e(urnB, downstreamOf, urnC),
				e(urnC, downstreamOf, urnD),
				e(urnA, downstreamOf, urnD),
				e(urnD, downstreamOf, urnA),
			},
			Origin: urnA,
			Query:  downstream(5),
			Expected: graph.EntityLineageResult{
				Count: 3,
				Total: 3,
				Relationships: []graph.LineageRelationship{
					{URN: urnB, Type: downstreamOf, Degree: 1, Path: []graph.URN{}},
					{URN: urnD, Type: downstreamOf, Degree: 1, Path: []graph.URN{}},
					{URN: urnC, Type: downstreamOf, Degree: 2, Path: []graph.URN{urnB}},
				},
			},
		},
		{
			Description: "should paginate over discovery order and keep total",
			Edges: []graph.Edge{
				e(urnA, downstreamOf, urnB),
				e(urnA, downstreamOf, urnC),
				e(urnB, downstreamOf, urnD),
				e(urnC, downstreamOf, urnE),
			},
			Origin: urnA,
			Query:  graph.LineageQuery{Direction: graph.LineageDirectionDownstream, Offset: 1, Count: 2, MaxHops: 2},
			Expected: graph.EntityLineageResult{
				Start: 1,
				Count: 2,
				Total: 4,
				Relationships: []graph.LineageRelationship{
					{URN: urnC, Type: downstreamOf, Degree: 1, Path: []graph.URN{}},
					{URN: urnD, Type: downstreamOf, Degree: 2, Path: []graph.URN{urnB}},
				},
			},
		},
		{
			Description: "should return an empty page past the end",
			Edges:       chain,
			Origin:      urnA,
			Query:       graph.LineageQuery{Direction: graph.LineageDirectionDownstream, Offset: 5, Count: 2, MaxHops: 2},
			Expected:    graph.EntityLineageResult{Start: 5, Total: 2, Relationships: []graph.LineageRelationship{}},
		},
		{
			Description: "should only follow registered types",
			Edges:       []graph.Edge{e(urnA, downstreamOf, urnB), e(urnA, "HasOwner", "urn:shield:user:u")},
			Registry:    graph.NewLineageRegistry(graph.LineageSpec{Type: downstreamOf}),
			Origin:      urnA,
			Query:       downstream(1),
			Expected: graph.EntityLineageResult{
				Count:         1,
				Total:         1,
				Relationships: []graph.LineageRelationship{{URN: urnB, Type: downstreamOf, Degree: 1, Path: []graph.URN{}}},
			},
		},
		{
			Description: "should follow inverted types against the edge direction",
			Edges: []graph.Edge{
				e(urnA, downstreamOf, urnB),
				e(jobX, consumes, urnA),
				e(urnE, consumes, urnB),
			},
			Registry: graph.NewLineageRegistry(
				graph.LineageSpec{Type: downstreamOf},
				graph.LineageSpec{Type: consumes, Inverted: true},
			),
			Origin: urnA,
			Query:  downstream(1),
			Expected: graph.EntityLineageResult{
				Count: 2,
				Total: 2,
				Relationships: []graph.LineageRelationship{
					{URN: urnB, Type: downstreamOf, Degree: 1, Path: []graph.URN{}},
					{URN: jobX, Type: consumes, Degree: 1, Path: []graph.URN{}},
				},
			},
		},
		{
			Description: "should return empty when narrowed types are not lineage types",
			Edges:       chain,
			Registry:    graph.NewLineageRegistry(graph.LineageSpec{Type: downstreamOf}),
			Origin:      urnA,
			Query: graph.LineageQuery{
				Direction:         graph.LineageDirectionDownstream,
				Count:             10,
				MaxHops:           2,
				RelationshipTypes: []graph.RelationshipType{"HasOwner"},
			},
			Expected: graph.EntityLineageResult{Relationships: []graph.LineageRelationship{}},
		},
		{
			Description: "should constrain the entity type of every hop",
			Edges: []graph.Edge{
				e(urnA, downstreamOf, jobX),
				e(jobX, downstreamOf, urnB),
				e(urnA, downstreamOf, urnC),
			},
			Origin: urnA,
			Query: graph.LineageQuery{
				Direction:   graph.LineageDirectionDownstream,
				Count:       10,
				MaxHops:     3,
				EntityTypes: []string{"table"},
			},
			Expected: graph.EntityLineageResult{
				Count:         1,
				Total:         1,
				Relationships: []graph.LineageRelationship{{URN: urnC, Type: downstreamOf, Degree: 1, Path: []graph.URN{}}},
			},
		},
		{
			Description: "should return empty for an isolated origin",
			Origin:      urnA,
			Query:       downstream(3),
			Expected:    graph.EntityLineageResult{Relationships: []graph.LineageRelationship{}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.Description, func(t *testing.T) {
			traverser := graph.NewTraverser(newStore(t, tc.Edges...), tc.Registry, 2)

			got, err := traverser.ComputeLineage(ctx, tc.Origin, tc.Query)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.Expected, got); diff != "" {
				t.Errorf("unexpected lineage (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTraverser_ComputeLineageIsDeterministic(t *testing.T) {
	var edges []graph.Edge
	for i := 0; i < 20; i++ {
		src := graph.URN(fmt.Sprintf("urn:bigquery:table:%02d", i))
		for j := i + 1; j < 20 && j < i+4; j++ {
			edges = append(edges, e(src, downstreamOf, graph.URN(fmt.Sprintf("urn:bigquery:table:%02d", j))))
		}
	}
	traverser := graph.NewTraverser(newStore(t, edges...), graph.LineageRegistry{}, 8)

	q := graph.LineageQuery{Direction: graph.LineageDirectionDownstream, Count: 100, MaxHops: 4}
	first, err := traverser.ComputeLineage(context.Background(), "urn:bigquery:table:00", q)
	require.NoError(t, err)
	assert.Equal(t, 12, first.Total)

	for i := 0; i < 10; i++ {
		got, err := traverser.ComputeLineage(context.Background(), "urn:bigquery:table:00", q)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}

	for _, rel := range first.Relationships {
		assert.LessOrEqual(t, rel.Degree, q.MaxHops)
		assert.Len(t, rel.Path, rel.Degree-1)
	}
}

func TestTraverser_ComputeLineageStoreError(t *testing.T) {
	store := mocks.NewEdgeStore(t)
	store.EXPECT().FindNeighbors(mock.Anything, mock.Anything).Return(graph.NeighborPage{}, errors.New("connection refused"))

	traverser := graph.NewTraverser(store, graph.LineageRegistry{}, 1)
	res, err := traverser.ComputeLineage(context.Background(), urnA, downstream(3))

	assert.ErrorIs(t, err, graph.ErrStoreUnavailable)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, graph.EntityLineageResult{}, res)
}

func TestTraverser_ComputeLineageAbortsOnSecondLevelError(t *testing.T) {
	store := mocks.NewEdgeStore(t)
	store.EXPECT().FindNeighbors(mock.Anything, mock.MatchedBy(func(q graph.NeighborQuery) bool { return q.Node == urnA })).
		Return(graph.NeighborPage{Entities: []graph.RelatedEntity{{Type: downstreamOf, URN: urnB}}, Total: 1}, nil)
	store.EXPECT().FindNeighbors(mock.Anything, mock.MatchedBy(func(q graph.NeighborQuery) bool { return q.Node == urnB })).
		Return(graph.NeighborPage{}, errors.New("timeout"))

	traverser := graph.NewTraverser(store, graph.LineageRegistry{}, 1)
	_, err := traverser.ComputeLineage(context.Background(), urnA, downstream(3))

	var storeErr *graph.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, urnB, storeErr.URN)
}

func TestTraverser_ComputeLineageCancelled(t *testing.T) {
	t.Run("should return cancelled before the first level", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		traverser := graph.NewTraverser(mocks.NewEdgeStore(t), graph.LineageRegistry{}, 1)
		_, err := traverser.ComputeLineage(ctx, urnA, downstream(3))
		assert.ErrorIs(t, err, graph.ErrCancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("should not return a partial result when cancelled between levels", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := mocks.NewEdgeStore(t)
		store.EXPECT().FindNeighbors(mock.Anything, mock.Anything).
			RunAndReturn(func(context.Context, graph.NeighborQuery) (graph.NeighborPage, error) {
				cancel()
				return graph.NeighborPage{Entities: []graph.RelatedEntity{{Type: downstreamOf, URN: urnB}}, Total: 1}, nil
			}).Once()

		traverser := graph.NewTraverser(store, graph.LineageRegistry{}, 1)
		res, err := traverser.ComputeLineage(ctx, urnA, downstream(3))
		assert.ErrorIs(t, err, graph.ErrCancelled)
		assert.Equal(t, graph.EntityLineageResult{}, res)
	})
}

type countingStore struct {
	graph.EdgeStore

	mu       sync.Mutex
	inFlight int
	peak     int
	calls    int64
}

func (s *countingStore) FindNeighbors(ctx context.Context, q graph.NeighborQuery) (graph.NeighborPage, error) {
	atomic.AddInt64(&s.calls, 1)

	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.peak {
		s.peak = s.inFlight
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()

	return s.EdgeStore.FindNeighbors(ctx, q)
}

func TestTraverser_ComputeLineageBoundsConcurrency(t *testing.T) {
	var edges []graph.Edge
	for i := 0; i < 16; i++ {
		mid := graph.URN(fmt.Sprintf("urn:bigquery:table:m%02d", i))
		edges = append(edges, e(urnA, downstreamOf, mid), e(mid, downstreamOf, urnZ(i)))
	}
	store := &countingStore{EdgeStore: newStore(t, edges...)}

	traverser := graph.NewTraverser(store, graph.LineageRegistry{}, 3)
	res, err := traverser.ComputeLineage(context.Background(), urnA, downstream(2))
	require.NoError(t, err)

	assert.Equal(t, 32, res.Total)
	assert.LessOrEqual(t, store.peak, 3)
	assert.EqualValues(t, 17, store.calls)
}

func urnZ(i int) graph.URN {
	return graph.URN(fmt.Sprintf("urn:bigquery:table:z%02d", i))
}
