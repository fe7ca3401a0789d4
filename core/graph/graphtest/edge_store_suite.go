// Package graphtest holds the behaviour every graph.EdgeStore backend has
// to show. Backends run EdgeStoreSuite from their own tests.
package graphtest

import (
	"context"
	"fmt"

	"github.com/goto/lineage/core/graph"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

const (
	TableA graph.URN = "urn:bigquery:table:a"
	TableB graph.URN = "urn:bigquery:table:b"
	TableC graph.URN = "urn:bigquery:table:c"
	TableD graph.URN = "urn:bigquery:table:d"
	JobX   graph.URN = "urn:optimus:job:x"
	UserU  graph.URN = "urn:shield:user:u"

	DownstreamOf graph.RelationshipType = "DownstreamOf"
	Produces     graph.RelationshipType = "Produces"
	HasOwner     graph.RelationshipType = "HasOwner"
)

type EdgeStoreSuite struct {
	suite.Suite

	// NewStore returns an empty store. It is called before every test.
	NewStore func() graph.EdgeStore

	ctx   context.Context
	store graph.EdgeStore
}

func (s *EdgeStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore()
}

func (s *EdgeStoreSuite) upsert(edges ...graph.Edge) {
	for _, e := range edges {
		s.Require().NoError(s.store.UpsertEdge(s.ctx, e))
	}
}

func (s *EdgeStoreSuite) neighbors(q graph.NeighborQuery) graph.NeighborPage {
	page, err := s.store.FindNeighbors(s.ctx, q)
	s.Require().NoError(err)
	return page
}

func edge(src graph.URN, typ graph.RelationshipType, dst graph.URN) graph.Edge {
	return graph.Edge{Source: src, Destination: dst, Type: typ}
}

func (s *EdgeStoreSuite) TestUpsertEdgeIsIdempotent() {
	s.upsert(
		graph.Edge{Source: TableA, Destination: TableB, Type: DownstreamOf, Properties: map[string]interface{}{"v": "1"}},
		graph.Edge{Source: TableA, Destination: TableB, Type: DownstreamOf, Properties: map[string]interface{}{"v": "2"}},
		graph.Edge{Source: TableA, Destination: TableB, Type: DownstreamOf},
	)

	page := s.neighbors(graph.NeighborQuery{
		Node:   TableA,
		Filter: graph.NewRelationshipFilter(graph.DirectionOutgoing),
	})
	s.Equal(1, page.Total)
	s.Equal([]graph.RelatedEntity{{Type: DownstreamOf, URN: TableB}}, page.Entities)
}

func (s *EdgeStoreSuite) TestRemoveEdge() {
	s.upsert(edge(TableA, DownstreamOf, TableB), edge(TableA, Produces, TableB))

	s.Require().NoError(s.store.RemoveEdge(s.ctx, graph.EdgeKey{Source: TableA, Destination: TableB, Type: DownstreamOf}))
	s.Require().NoError(s.store.RemoveEdge(s.ctx, graph.EdgeKey{Source: TableA, Destination: TableB, Type: DownstreamOf}), "removing a missing edge is a no-op")
	s.Require().NoError(s.store.RemoveEdge(s.ctx, graph.EdgeKey{Source: TableC, Destination: TableD, Type: HasOwner}))

	page := s.neighbors(graph.NeighborQuery{
		Node:   TableB,
		Filter: graph.NewRelationshipFilter(graph.DirectionIncoming),
	})
	s.Equal([]graph.RelatedEntity{{Type: Produces, URN: TableA}}, page.Entities)
}

func (s *EdgeStoreSuite) TestFindNeighborsDirections() {
	s.upsert(
		edge(TableA, DownstreamOf, TableB),
		edge(TableC, DownstreamOf, TableA),
		edge(TableA, HasOwner, UserU),
	)

	cases := []struct {
		name     string
		dir      graph.RelationshipDirection
		expected []graph.RelatedEntity
	}{
		{
			name: "outgoing",
			dir:  graph.DirectionOutgoing,
			expected: []graph.RelatedEntity{
				{Type: DownstreamOf, URN: TableB},
				{Type: HasOwner, URN: UserU},
			},
		},
		{
			name:     "incoming",
			dir:      graph.DirectionIncoming,
			expected: []graph.RelatedEntity{{Type: DownstreamOf, URN: TableC}},
		},
		{
			name: "undirected",
			dir:  graph.DirectionUndirected,
			expected: []graph.RelatedEntity{
				{Type: DownstreamOf, URN: TableB},
				{Type: DownstreamOf, URN: TableC},
				{Type: HasOwner, URN: UserU},
			},
		},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			page := s.neighbors(graph.NeighborQuery{Node: TableA, Filter: graph.NewRelationshipFilter(tc.dir)})
			s.Equal(tc.expected, page.Entities)
			s.Equal(len(tc.expected), page.Total)
		})
	}
}

func (s *EdgeStoreSuite) TestFindNeighborsTypeFilter() {
	s.upsert(
		edge(TableA, DownstreamOf, TableB),
		edge(TableA, Produces, TableC),
		edge(TableA, HasOwner, UserU),
	)

	s.Run("empty type set matches any type", func() {
		page := s.neighbors(graph.NeighborQuery{Node: TableA, Filter: graph.NewRelationshipFilter(graph.DirectionOutgoing)})
		s.Equal(3, page.Total)
	})
	s.Run("all sentinel matches any type", func() {
		page := s.neighbors(graph.NeighborQuery{
			Node:   TableA,
			Filter: graph.NewRelationshipFilter(graph.DirectionOutgoing, graph.RelationshipTypeAll),
		})
		s.Equal(3, page.Total)
	})
	s.Run("explicit types", func() {
		page := s.neighbors(graph.NeighborQuery{
			Node:   TableA,
			Filter: graph.NewRelationshipFilter(graph.DirectionOutgoing, Produces, HasOwner),
		})
		s.Equal([]graph.RelatedEntity{
			{Type: Produces, URN: TableC},
			{Type: HasOwner, URN: UserU},
		}, page.Entities)
	})
	s.Run("unknown type matches nothing", func() {
		page := s.neighbors(graph.NeighborQuery{
			Node:   TableA,
			Filter: graph.NewRelationshipFilter(graph.DirectionOutgoing, "Unknown"),
		})
		s.Equal(0, page.Total)
		s.Empty(page.Entities)
	})
}

func (s *EdgeStoreSuite) TestFindNeighborsEntityTypeConstraint() {
	s.upsert(
		edge(TableA, DownstreamOf, TableB),
		edge(TableA, Produces, JobX),
		edge(JobX, Produces, TableA),
	)

	page := s.neighbors(graph.NeighborQuery{
		Node:             TableA,
		Filter:           graph.NewRelationshipFilter(graph.DirectionOutgoing),
		DestinationTypes: []string{"job"},
	})
	s.Equal([]graph.RelatedEntity{{Type: Produces, URN: JobX}}, page.Entities)

	page = s.neighbors(graph.NeighborQuery{
		Node:        TableA,
		Filter:      graph.NewRelationshipFilter(graph.DirectionUndirected),
		SourceTypes: []string{"job"},
	})
	s.Equal([]graph.RelatedEntity{{Type: Produces, URN: JobX}}, page.Entities)
}

func (s *EdgeStoreSuite) TestFindNeighborsStablePagination() {
	s.upsert(
		edge(TableA, Produces, TableD),
		edge(TableA, DownstreamOf, TableC),
		edge(TableA, Produces, TableB),
		edge(TableA, DownstreamOf, TableB),
	)

	all := []graph.RelatedEntity{
		{Type: DownstreamOf, URN: TableB},
		{Type: Produces, URN: TableB},
		{Type: DownstreamOf, URN: TableC},
		{Type: Produces, URN: TableD},
	}
	q := graph.NeighborQuery{Node: TableA, Filter: graph.NewRelationshipFilter(graph.DirectionOutgoing)}

	s.Equal(all, s.neighbors(q).Entities)

	var paged []graph.RelatedEntity
	for offset := 0; offset < len(all); offset += 3 {
		q.Offset, q.Limit = offset, 3
		page := s.neighbors(q)
		s.Equal(len(all), page.Total)
		paged = append(paged, page.Entities...)
	}
	s.Equal(all, paged)

	q.Offset, q.Limit = 10, 3
	page := s.neighbors(q)
	s.Empty(page.Entities)
	s.Equal(len(all), page.Total)
}

func (s *EdgeStoreSuite) TestFindNeighborsSelfLoopIsListedOnce() {
	s.upsert(edge(TableA, DownstreamOf, TableA))

	page := s.neighbors(graph.NeighborQuery{Node: TableA, Filter: graph.NewRelationshipFilter(graph.DirectionUndirected)})
	s.Equal([]graph.RelatedEntity{{Type: DownstreamOf, URN: TableA}}, page.Entities)
	s.Equal(1, page.Total)
}

func (s *EdgeStoreSuite) TestFindNeighborsUnknownNode() {
	page := s.neighbors(graph.NeighborQuery{Node: TableD, Filter: graph.NewRelationshipFilter(graph.DirectionUndirected)})
	s.Equal(0, page.Total)
	s.Empty(page.Entities)
}

func (s *EdgeStoreSuite) TestRemoveEdgesFromNode() {
	s.upsert(
		edge(TableA, DownstreamOf, TableB),
		edge(TableB, DownstreamOf, TableC),
		edge(TableB, HasOwner, UserU),
		edge(TableB, DownstreamOf, TableB),
	)

	removed, err := s.store.RemoveEdgesFromNode(s.ctx, TableB, graph.NewRelationshipFilter(graph.DirectionUndirected, DownstreamOf))
	s.Require().NoError(err)
	s.Equal(3, removed)

	page := s.neighbors(graph.NeighborQuery{Node: TableB, Filter: graph.NewRelationshipFilter(graph.DirectionUndirected)})
	s.Equal([]graph.RelatedEntity{{Type: HasOwner, URN: UserU}}, page.Entities)

	removed, err = s.store.RemoveEdgesFromNode(s.ctx, TableB, graph.NewRelationshipFilter(graph.DirectionUndirected, DownstreamOf))
	s.Require().NoError(err)
	s.Equal(0, removed)
}

func (s *EdgeStoreSuite) TestRemoveEdgesFromNodeRespectsDirection() {
	s.upsert(
		edge(TableA, DownstreamOf, TableB),
		edge(TableB, DownstreamOf, TableC),
	)

	removed, err := s.store.RemoveEdgesFromNode(s.ctx, TableB, graph.NewRelationshipFilter(graph.DirectionOutgoing, graph.RelationshipTypeAll))
	s.Require().NoError(err)
	s.Equal(1, removed)

	page := s.neighbors(graph.NeighborQuery{Node: TableB, Filter: graph.NewRelationshipFilter(graph.DirectionUndirected)})
	s.Equal([]graph.RelatedEntity{{Type: DownstreamOf, URN: TableA}}, page.Entities)
}

func table(i int) graph.URN {
	return graph.URN(fmt.Sprintf("urn:bigquery:table:t%02d", i))
}

func (s *EdgeStoreSuite) TestConcurrentUpsertEdges() {
	const n = 16

	g, ctx := errgroup.WithContext(s.ctx)
	for i := 0; i < n; i++ {
		dst := table(i)
		// every edge is written twice so racing writers hit the same triple
		for j := 0; j < 2; j++ {
			g.Go(func() error {
				return s.store.UpsertEdge(ctx, edge(TableA, DownstreamOf, dst))
			})
		}
	}
	s.Require().NoError(g.Wait())

	expected := make([]graph.RelatedEntity, 0, n)
	for i := 0; i < n; i++ {
		expected = append(expected, graph.RelatedEntity{Type: DownstreamOf, URN: table(i)})
	}
	page := s.neighbors(graph.NeighborQuery{Node: TableA, Filter: graph.NewRelationshipFilter(graph.DirectionOutgoing)})
	s.Equal(n, page.Total)
	s.Equal(expected, page.Entities)

	for i := 0; i < n; i++ {
		page := s.neighbors(graph.NeighborQuery{Node: table(i), Filter: graph.NewRelationshipFilter(graph.DirectionIncoming)})
		s.Equal([]graph.RelatedEntity{{Type: DownstreamOf, URN: TableA}}, page.Entities)
	}
}

func (s *EdgeStoreSuite) TestConcurrentRemoveEdgesFromNode() {
	const n = 8

	for i := 0; i < n; i++ {
		s.upsert(
			edge(table(i), DownstreamOf, table(i+1)),
			edge(table(i), HasOwner, UserU),
		)
	}

	filter := graph.NewRelationshipFilter(graph.DirectionUndirected, DownstreamOf)
	g, ctx := errgroup.WithContext(s.ctx)
	for i := 0; i <= n; i++ {
		node, dst := table(i), table(i+n+1)
		// neighbouring nodes share an edge, and every node is removed twice
		for j := 0; j < 2; j++ {
			g.Go(func() error {
				_, err := s.store.RemoveEdgesFromNode(ctx, node, filter)
				return err
			})
		}
		g.Go(func() error {
			return s.store.UpsertEdge(ctx, edge(JobX, Produces, dst))
		})
	}
	s.Require().NoError(g.Wait())

	for i := 0; i < n; i++ {
		page := s.neighbors(graph.NeighborQuery{Node: table(i), Filter: graph.NewRelationshipFilter(graph.DirectionUndirected)})
		s.Equal([]graph.RelatedEntity{{Type: HasOwner, URN: UserU}}, page.Entities, table(i))
	}

	owners := s.neighbors(graph.NeighborQuery{Node: UserU, Filter: graph.NewRelationshipFilter(graph.DirectionIncoming)})
	s.Equal(n, owners.Total)

	produced := s.neighbors(graph.NeighborQuery{Node: JobX, Filter: graph.NewRelationshipFilter(graph.DirectionOutgoing, Produces)})
	s.Equal(n+1, produced.Total)
	seen := map[graph.URN]bool{}
	for _, rel := range produced.Entities {
		s.False(seen[rel.URN], "duplicate neighbour %s", rel.URN)
		seen[rel.URN] = true
	}
}

func (s *EdgeStoreSuite) TestLineageTraversal() {
	s.upsert(
		edge(TableA, DownstreamOf, TableB),
		edge(TableB, DownstreamOf, TableC),
		edge(TableC, DownstreamOf, TableD),
	)

	traverser := graph.NewTraverser(s.store, graph.NewLineageRegistry(), 4)
	res, err := traverser.ComputeLineage(s.ctx, TableA, graph.LineageQuery{
		Direction: graph.LineageDirectionDownstream,
		Count:     10,
		MaxHops:   2,
	})
	s.Require().NoError(err)
	s.Equal(2, res.Total)
	s.Equal([]graph.LineageRelationship{
		{URN: TableB, Type: DownstreamOf, Degree: 1, Path: []graph.URN{}},
		{URN: TableC, Type: DownstreamOf, Degree: 2, Path: []graph.URN{TableB}},
	}, res.Relationships)

	res, err = traverser.ComputeLineage(s.ctx, TableD, graph.LineageQuery{
		Direction: graph.LineageDirectionUpstream,
		Count:     10,
		MaxHops:   5,
	})
	s.Require().NoError(err)
	s.Equal(3, res.Total)
}
