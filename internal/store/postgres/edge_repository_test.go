package postgres_test

import (
	"context"
	"testing"

	"github.com/goto/lineage/core/graph"
	"github.com/goto/lineage/core/graph/graphtest"
	"github.com/goto/lineage/internal/store/postgres"
	"github.com/goto/lineage/internal/testutils"
	"github.com/goto/salt/log"
	"github.com/stretchr/testify/suite"
)

type EdgeRepositoryTestSuite struct {
	suite.Suite
	ctx        context.Context
	client     *postgres.Client
	repository *postgres.EdgeRepository
	entities   *postgres.EntityRepository
}

func (r *EdgeRepositoryTestSuite) SetupSuite() {
	var err error

	logger := log.NewLogrus()
	r.client, err = newTestClient(r.T(), logger)
	if err != nil {
		r.T().Fatal(err)
	}

	r.ctx = context.TODO()

	r.repository, err = postgres.NewEdgeRepository(r.client)
	if err != nil {
		r.T().Fatal(err)
	}

	r.entities, err = postgres.NewEntityRepository(r.client)
	if err != nil {
		r.T().Fatal(err)
	}
}

func (r *EdgeRepositoryTestSuite) SetupTest() {
	if err := testutils.TruncateTables(r.T(), r.client, "edges", "entities"); err != nil {
		r.T().Fatal(err)
	}
}

func (r *EdgeRepositoryTestSuite) TestConformance() {
	suite.Run(r.T(), &graphtest.EdgeStoreSuite{
		NewStore: func() graph.EdgeStore {
			if err := testutils.TruncateTables(r.T(), r.client, "edges"); err != nil {
				r.T().Fatal(err)
			}
			return r.repository
		},
	})
}

func (r *EdgeRepositoryTestSuite) TestUpsertEdgeOverwritesProperties() {
	key := graph.EdgeKey{Source: graphtest.TableA, Destination: graphtest.TableB, Type: graphtest.DownstreamOf}

	r.Require().NoError(r.repository.UpsertEdge(r.ctx, graph.Edge{
		Source: key.Source, Destination: key.Destination, Type: key.Type,
		Properties: map[string]interface{}{"query": "select 1", "owner": "team-a"},
	}))
	r.Require().NoError(r.repository.UpsertEdge(r.ctx, graph.Edge{
		Source: key.Source, Destination: key.Destination, Type: key.Type,
		Properties: map[string]interface{}{"query": "select 2"},
	}))

	edge, err := r.repository.GetEdge(r.ctx, key)
	r.Require().NoError(err)
	testutils.AssertEqual(r.T(), graph.Edge{
		Source:      key.Source,
		Destination: key.Destination,
		Type:        key.Type,
		Properties:  map[string]interface{}{"query": "select 2"},
	}, edge)
}

func (r *EdgeRepositoryTestSuite) TestGetEdgeNotFound() {
	_, err := r.repository.GetEdge(r.ctx, graph.EdgeKey{Source: graphtest.TableA, Destination: graphtest.TableC, Type: graphtest.HasOwner})
	r.ErrorIs(err, graph.ErrNotFound)
	r.EqualError(err, "could not find edge (urn:bigquery:table:a)-[HasOwner]->(urn:bigquery:table:c)")
}

func (r *EdgeRepositoryTestSuite) TestUpsertEdgeRegistersEndpoints() {
	r.Require().NoError(r.repository.UpsertEdge(r.ctx, graph.Edge{Source: graphtest.JobX, Destination: graphtest.TableA, Type: graphtest.Produces}))
	// a self loop lists the same endpoint twice
	r.Require().NoError(r.repository.UpsertEdge(r.ctx, graph.Edge{Source: graphtest.TableA, Destination: graphtest.TableA, Type: graphtest.DownstreamOf}))

	for _, urn := range []graph.URN{graphtest.JobX, graphtest.TableA} {
		exists, err := r.entities.Exists(r.ctx, urn)
		r.Require().NoError(err)
		r.True(exists, urn)
	}

	ent, err := r.entities.Get(r.ctx, graphtest.JobX)
	r.Require().NoError(err)
	r.Equal("job", ent.Type)

	// registering endpoints keeps attributes set through the entity registry
	r.Require().NoError(r.entities.Upsert(r.ctx, graph.Entity{URN: graphtest.TableB, Attributes: map[string]interface{}{"owner": "team-a"}}))
	r.Require().NoError(r.repository.UpsertEdge(r.ctx, graph.Edge{Source: graphtest.TableA, Destination: graphtest.TableB, Type: graphtest.DownstreamOf}))
	ent, err = r.entities.Get(r.ctx, graphtest.TableB)
	r.Require().NoError(err)
	r.Equal(map[string]interface{}{"owner": "team-a"}, ent.Attributes)
}

func (r *EdgeRepositoryTestSuite) TestGetLineageThroughService() {
	svc, err := graph.NewService(graph.ServiceDeps{
		Store:    r.repository,
		Entities: r.entities,
		Registry: graph.NewLineageRegistry(graph.LineageSpec{Type: graphtest.DownstreamOf}),
		MaxHops:  10,
		Logger:   log.NewNoop(),
	})
	r.Require().NoError(err)

	r.Require().NoError(svc.UpsertEdge(r.ctx, graph.Edge{Source: graphtest.TableA, Destination: graphtest.TableB, Type: graphtest.DownstreamOf}))
	r.Require().NoError(svc.UpsertEdge(r.ctx, graph.Edge{Source: graphtest.TableB, Destination: graphtest.TableC, Type: graphtest.DownstreamOf}))

	res, err := svc.GetLineage(r.ctx, graphtest.TableA, graph.LineageQuery{
		Direction: graph.LineageDirectionDownstream,
		Count:     10,
		MaxHops:   2,
	})
	r.Require().NoError(err)
	r.Equal(2, res.Total)
	r.Equal(2, res.Count)
	r.Equal(graphtest.TableB, res.Relationships[0].URN)
	r.Equal(1, res.Relationships[0].Degree)
	r.Equal(graphtest.TableC, res.Relationships[1].URN)
	r.Equal(2, res.Relationships[1].Degree)

	upstream, err := svc.GetLineage(r.ctx, graphtest.TableC, graph.LineageQuery{
		Direction: graph.LineageDirectionUpstream,
		Count:     10,
		MaxHops:   2,
	})
	r.Require().NoError(err)
	r.Equal(2, upstream.Total)

	_, err = svc.GetLineage(r.ctx, graphtest.TableD, graph.LineageQuery{
		Direction: graph.LineageDirectionDownstream,
		Count:     10,
		MaxHops:   2,
	})
	r.ErrorIs(err, graph.ErrNotFound)
}

func (r *EdgeRepositoryTestSuite) TestFindNeighborsInvalidDirection() {
	_, err := r.repository.FindNeighbors(r.ctx, graph.NeighborQuery{
		Node:   graphtest.TableA,
		Filter: graph.RelationshipFilter{Direction: "SIDEWAYS"},
	})
	r.ErrorIs(err, graph.ErrInvalidArgument)
}

func (r *EdgeRepositoryTestSuite) TestFindNeighborsCancelled() {
	ctx, cancel := context.WithCancel(r.ctx)
	cancel()

	_, err := r.repository.FindNeighbors(ctx, graph.NeighborQuery{
		Node:   graphtest.TableA,
		Filter: graph.NewRelationshipFilter(graph.DirectionOutgoing),
	})
	r.ErrorIs(err, context.Canceled)
}

func TestEdgeRepository(t *testing.T) {
	suite.Run(t, &EdgeRepositoryTestSuite{})
}

func TestNewEdgeRepository(t *testing.T) {
	_, err := postgres.NewEdgeRepository(nil)
	if err == nil {
		t.Fatal("expected error for nil client")
	}
}
