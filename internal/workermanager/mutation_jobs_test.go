package workermanager_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goto/lineage/core/graph"
	"github.com/goto/lineage/internal/testutils"
	"github.com/goto/lineage/internal/workermanager"
	"github.com/goto/lineage/internal/workermanager/mocks"
	"github.com/goto/lineage/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ctx = context.Background()

	sampleEdge = graph.Edge{
		Source:      "urn:bigquery:table:a",
		Destination: "urn:bigquery:table:b",
		Type:        "DownstreamOf",
		Properties:  map[string]interface{}{"job": "etl"},
	}
	sampleFilter = graph.NewRelationshipFilter(graph.DirectionUndirected, graph.RelationshipTypeAll)
)

func TestManager_EnqueueJobs(t *testing.T) {
	cases := []struct {
		name        string
		enqueue     func(m *workermanager.Manager) error
		jobType     string
		payload     interface{}
		enqueueErr  error
		expectedErr string
	}{
		{
			name:    "UpsertEdge",
			enqueue: func(m *workermanager.Manager) error { return m.EnqueueUpsertEdgeJob(ctx, sampleEdge) },
			jobType: "upsert-edge",
			payload: sampleEdge,
		},
		{
			name:        "UpsertEdgeFailure",
			enqueue:     func(m *workermanager.Manager) error { return m.EnqueueUpsertEdgeJob(ctx, sampleEdge) },
			jobType:     "upsert-edge",
			payload:     sampleEdge,
			enqueueErr:  errors.New("fail"),
			expectedErr: "enqueue upsert-edge job: fail",
		},
		{
			name:    "RemoveEdge",
			enqueue: func(m *workermanager.Manager) error { return m.EnqueueRemoveEdgeJob(ctx, sampleEdge.Key()) },
			jobType: "remove-edge",
			payload: sampleEdge.Key(),
		},
		{
			name: "RemoveNode",
			enqueue: func(m *workermanager.Manager) error {
				return m.EnqueueRemoveNodeJob(ctx, sampleEdge.Source, sampleFilter)
			},
			jobType: "remove-node",
			payload: workermanager.RemoveNodePayload{URN: sampleEdge.Source, Filter: sampleFilter},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrkr := mocks.NewWorker(t)
			wrkr.EXPECT().
				Enqueue(ctx, worker.JobSpec{
					Type:    tc.jobType,
					Payload: testutils.Marshal(t, tc.payload),
				}).
				Return(tc.enqueueErr)

			mgr := workermanager.NewWithWorker(wrkr, workermanager.Deps{})
			err := tc.enqueue(mgr)
			if tc.expectedErr != "" {
				assert.ErrorContains(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestManager_EnqueueRejectsInvalidMutations(t *testing.T) {
	mgr := workermanager.NewWithWorker(mocks.NewWorker(t), workermanager.Deps{})

	err := mgr.EnqueueUpsertEdgeJob(ctx, graph.Edge{Source: "urn:bigquery:table:a"})
	assert.ErrorIs(t, err, graph.ErrInvalidArgument)

	err = mgr.EnqueueRemoveEdgeJob(ctx, graph.EdgeKey{})
	assert.ErrorIs(t, err, graph.ErrInvalidArgument)

	err = mgr.EnqueueRemoveNodeJob(ctx, sampleEdge.Source, graph.RelationshipFilter{Direction: graph.DirectionOutgoing})
	assert.ErrorIs(t, err, graph.ErrInvalidArgument)

	err = mgr.EnqueueRemoveNodeJob(ctx, "", sampleFilter)
	assert.ErrorIs(t, err, graph.ErrInvalidArgument)
}

func TestManager_ApplyJobs(t *testing.T) {
	storeErr := &graph.StoreError{Op: "upsert edge", Err: errors.New("connection refused")}
	invalidErr := graph.InvalidArgumentError{Op: "upsert edge", Err: errors.New("bad")}

	cases := []struct {
		name      string
		setup     func(g *mocks.GraphMutator)
		apply     func(m *workermanager.Manager) error
		retryable bool
		failed    bool
	}{
		{
			name: "UpsertEdge",
			setup: func(g *mocks.GraphMutator) {
				g.EXPECT().UpsertEdge(ctx, sampleEdge).Return(nil)
			},
			apply: func(m *workermanager.Manager) error {
				return m.ApplyUpsertEdge(ctx, worker.JobSpec{Payload: testutils.Marshal(t, sampleEdge)})
			},
		},
		{
			name: "UpsertEdgeStoreUnavailable",
			setup: func(g *mocks.GraphMutator) {
				g.EXPECT().UpsertEdge(ctx, sampleEdge).Return(storeErr)
			},
			apply: func(m *workermanager.Manager) error {
				return m.ApplyUpsertEdge(ctx, worker.JobSpec{Payload: testutils.Marshal(t, sampleEdge)})
			},
			retryable: true,
			failed:    true,
		},
		{
			name: "UpsertEdgeInvalid",
			setup: func(g *mocks.GraphMutator) {
				g.EXPECT().UpsertEdge(ctx, sampleEdge).Return(invalidErr)
			},
			apply: func(m *workermanager.Manager) error {
				return m.ApplyUpsertEdge(ctx, worker.JobSpec{Payload: testutils.Marshal(t, sampleEdge)})
			},
			failed: true,
		},
		{
			name: "UpsertEdgeUndecodable",
			apply: func(m *workermanager.Manager) error {
				return m.ApplyUpsertEdge(ctx, worker.JobSpec{Payload: []byte("{")})
			},
			failed: true,
		},
		{
			name: "RemoveEdge",
			setup: func(g *mocks.GraphMutator) {
				g.EXPECT().RemoveEdge(ctx, sampleEdge.Key()).Return(nil)
			},
			apply: func(m *workermanager.Manager) error {
				return m.ApplyRemoveEdge(ctx, worker.JobSpec{Payload: testutils.Marshal(t, sampleEdge.Key())})
			},
		},
		{
			name: "RemoveNode",
			setup: func(g *mocks.GraphMutator) {
				g.EXPECT().RemoveEdgesFromNode(ctx, sampleEdge.Source, sampleFilter).Return(2, nil)
			},
			apply: func(m *workermanager.Manager) error {
				return m.ApplyRemoveNode(ctx, worker.JobSpec{Payload: testutils.Marshal(t,
					workermanager.RemoveNodePayload{URN: sampleEdge.Source, Filter: sampleFilter})})
			},
		},
		{
			name: "RemoveNodePartialFailure",
			setup: func(g *mocks.GraphMutator) {
				g.EXPECT().RemoveEdgesFromNode(ctx, sampleEdge.Source, sampleFilter).
					Return(1, &graph.RemoveNodeError{Node: sampleEdge.Source, Removed: 1, Err: errors.New("timeout")})
			},
			apply: func(m *workermanager.Manager) error {
				return m.ApplyRemoveNode(ctx, worker.JobSpec{Payload: testutils.Marshal(t,
					workermanager.RemoveNodePayload{URN: sampleEdge.Source, Filter: sampleFilter})})
			},
			retryable: true,
			failed:    true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := mocks.NewGraphMutator(t)
			if tc.setup != nil {
				tc.setup(g)
			}

			mgr := workermanager.NewWithWorker(mocks.NewWorker(t), workermanager.Deps{Graph: g})
			err := tc.apply(mgr)
			if !tc.failed {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tc.retryable, worker.IsRetryable(err))
		})
	}
}
