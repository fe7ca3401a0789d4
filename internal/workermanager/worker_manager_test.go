package workermanager_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/goto/lineage/core/graph"
	"github.com/goto/lineage/internal/store/memory"
	"github.com/goto/lineage/internal/testutils"
	"github.com/goto/lineage/internal/workermanager"
	"github.com/goto/lineage/internal/workermanager/mocks"
	"github.com/goto/lineage/pkg/worker/pgq"
	"github.com/goto/salt/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestManager_Run(t *testing.T) {
	cases := []struct {
		name        string
		runErr      error
		expectedErr string
	}{
		{name: "Success"},
		{
			name:        "Failure",
			runErr:      errors.New("fail"),
			expectedErr: "fail",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrkr := mocks.NewWorker(t)
			for _, typ := range []string{"upsert-edge", "remove-edge", "remove-node"} {
				wrkr.EXPECT().
					Register(typ, mock.AnythingOfType("worker.JobHandler")).
					Return(nil).
					Once()
			}
			wrkr.EXPECT().Run(ctx).Return(tc.runErr)

			mgr := workermanager.NewWithWorker(wrkr, workermanager.Deps{})
			err := mgr.Run(ctx)
			if tc.expectedErr != "" {
				assert.ErrorContains(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mgr.Close())
		})
	}
}

func TestManager_RunRegisterFailure(t *testing.T) {
	wrkr := mocks.NewWorker(t)
	wrkr.EXPECT().Register(mock.Anything, mock.Anything).Return(errors.New("duplicate"))

	mgr := workermanager.NewWithWorker(wrkr, workermanager.Deps{})
	assert.ErrorContains(t, mgr.Run(ctx), "run async worker: init: duplicate")
}

func TestManager_AppliesQueuedMutations(t *testing.T) {
	logger := log.NewNoop()
	port, err := testutils.RunTestPG(t, logger)
	require.NoError(t, err)

	pgqCfg := pgq.Config{
		Host:     testutils.PGHost,
		Port:     port,
		Name:     testutils.PGName,
		Username: testutils.PGUsername,
		Password: testutils.PGPassword,
	}
	db, err := sql.Open("pgx", pgqCfg.ConnectionString())
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, testutils.RunMigrations(t, db))

	t.Run("InvalidConfig", func(t *testing.T) {
		cfg := pgqCfg
		cfg.Port = 1

		mgr, err := workermanager.New(ctx, workermanager.Deps{
			Config: workermanager.Config{WorkerCount: 1, PollInterval: time.Second, PGQ: cfg},
		})
		assert.ErrorContains(t, err, "new worker manager: new pgq processor")
		assert.Nil(t, mgr)
	})

	t.Run("Success", func(t *testing.T) {
		store := memory.NewEdgeStore()
		svc, err := graph.NewService(graph.ServiceDeps{Store: store, Logger: logger})
		require.NoError(t, err)

		mgr, err := workermanager.New(ctx, workermanager.Deps{
			Config: workermanager.Config{
				WorkerCount:  1,
				PollInterval: 100 * time.Millisecond,
				PGQ:          pgqCfg,
			},
			Graph:  svc,
			Logger: logger,
		})
		require.NoError(t, err)
		defer mgr.Close()

		other := graph.Edge{Source: sampleEdge.Destination, Destination: "urn:bigquery:table:c", Type: "DownstreamOf"}
		require.NoError(t, mgr.EnqueueUpsertEdgeJob(ctx, sampleEdge))
		require.NoError(t, mgr.EnqueueUpsertEdgeJob(ctx, other))

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- mgr.Run(runCtx) }()

		assert.Eventually(t, func() bool { return store.Len() == 2 }, 10*time.Second, 50*time.Millisecond)

		require.NoError(t, mgr.EnqueueRemoveNodeJob(ctx, sampleEdge.Destination, sampleFilter))
		assert.Eventually(t, func() bool { return store.Len() == 0 }, 10*time.Second, 50*time.Millisecond)

		cancel()
		assert.NoError(t, <-done)
	})
}
