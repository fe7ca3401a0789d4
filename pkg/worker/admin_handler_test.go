package worker_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goto/lineage/pkg/worker"
	"github.com/goto/lineage/pkg/worker/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAdminHandler(t *testing.T) {
	cases := []struct {
		name         string
		method       string
		target       string
		body         string
		setup        func(m *mocks.DeadJobManager)
		expectedCode int
		expectedBody string
	}{
		{
			name:   "Stats",
			method: http.MethodGet,
			target: "/stats",
			setup: func(m *mocks.DeadJobManager) {
				m.EXPECT().Stats(mock.Anything).Return([]worker.JobTypeStats{{Type: "upsert-edge", Active: 2, Dead: 1}}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[{"type":"upsert-edge","active":2,"dead":1}]`,
		},
		{
			name:   "StatsFailure",
			method: http.MethodGet,
			target: "/stats",
			setup: func(m *mocks.DeadJobManager) {
				m.EXPECT().Stats(mock.Anything).Return(nil, errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"db down"}`,
		},
		{
			name:   "DeadJobsDefaultsPaging",
			method: http.MethodGet,
			target: "/dead-jobs?size=-1&offset=abc",
			setup: func(m *mocks.DeadJobManager) {
				m.EXPECT().DeadJobs(mock.Anything, 20, 0).Return(nil, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:   "DeadJobsPaging",
			method: http.MethodGet,
			target: "/dead-jobs?size=5&offset=10",
			setup: func(m *mocks.DeadJobManager) {
				m.EXPECT().DeadJobs(mock.Anything, 5, 10).Return([]worker.Job{}, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:         "DeadJobsWrongMethod",
			method:       http.MethodPost,
			target:       "/dead-jobs",
			expectedCode: http.StatusMethodNotAllowed,
			expectedBody: `{"error":"method not allowed"}`,
		},
		{
			name:   "Resurrect",
			method: http.MethodPost,
			target: "/dead-jobs/resurrect",
			body:   `{"job_ids":["a","b"]}`,
			setup: func(m *mocks.DeadJobManager) {
				m.EXPECT().Resurrect(mock.Anything, []string{"a", "b"}).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name:         "ResurrectWithoutIDs",
			method:       http.MethodPost,
			target:       "/dead-jobs/resurrect",
			body:         `{"job_ids":[]}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"no job IDs specified"}`,
		},
		{
			name:   "ClearFailure",
			method: http.MethodPost,
			target: "/dead-jobs/clear",
			body:   `{"job_ids":["a"]}`,
			setup: func(m *mocks.DeadJobManager) {
				m.EXPECT().ClearDeadJobs(mock.Anything, []string{"a"}).Return(errors.New("locked"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"locked"}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mgr := mocks.NewDeadJobManager(t)
			if tc.setup != nil {
				tc.setup(mgr)
			}

			req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			worker.AdminHandler(mgr).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
		})
	}
}
