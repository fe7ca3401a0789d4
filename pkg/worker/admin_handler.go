package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	statsPath          = "/stats"
	deadJobsPath       = "/dead-jobs"
	resurrectJobsPath  = "/dead-jobs/resurrect"
	clearDeadJobsPath  = "/dead-jobs/clear"
	defaultDeadJobPage = 20
)

type jobIDsRequest struct {
	JobIDs []string `json:"job_ids"`
}

// AdminHandler exposes queue statistics and dead job management over
// JSON:
//
//	GET  /stats
//	GET  /dead-jobs?size=20&offset=0
//	POST /dead-jobs/resurrect {"job_ids": [...]}
//	POST /dead-jobs/clear     {"job_ids": [...]}
func AdminHandler(mgr DeadJobManager) http.Handler {
	mux := http.NewServeMux()
	route := func(path, operation string, h http.HandlerFunc) {
		mux.Handle(path, otelhttp.NewHandler(otelhttp.WithRouteTag(path, h), operation))
	}

	route(statsPath, "job_stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}

		stats, err := mgr.Stats(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	})

	route(deadJobsPath, "list_dead_jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}

		size, err := strconv.Atoi(r.URL.Query().Get("size"))
		if err != nil || size <= 0 {
			size = defaultDeadJobPage
		}
		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		if err != nil || offset < 0 {
			offset = 0
		}

		jobs, err := mgr.DeadJobs(r.Context(), size, offset)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, err)
			return
		}
		if jobs == nil {
			jobs = []Job{}
		}
		writeJSON(w, http.StatusOK, jobs)
	})

	route(resurrectJobsPath, "resurrect_jobs", jobIDsHandler(mgr.Resurrect))
	route(clearDeadJobsPath, "clear_dead_jobs", jobIDsHandler(mgr.ClearDeadJobs))

	return mux
}

func jobIDsHandler(fn func(context.Context, []string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}

		var req jobIDsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}
		if len(req.JobIDs) == 0 {
			writeJSON(w, http.StatusBadRequest, errors.New("no job IDs specified"))
			return
		}

		if err := fn(r.Context(), req.JobIDs); err != nil {
			writeJSON(w, http.StatusInternalServerError, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	if err, ok := v.(error); ok {
		v = map[string]string{"error": err.Error()}
	}

	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encode response failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
