package workermw

import (
	"context"
	"sort"
	"time"

	"github.com/goto/lineage/pkg/worker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	enqueueDurnHistogram    = "lineage.worker.jobs.enqueue.duration"
	dequeueLatencyHistogram = "lineage.worker.job.dequeue.latency"
	processDurnHistogram    = "lineage.worker.job.process.duration"
)

const (
	attrJobTypes     = attribute.Key("job.types")
	attrJobType      = attribute.Key("job.type")
	attrOpSuccess    = attribute.Key("operation.success")
	attrJobAttemptNo = attribute.Key("job.attempt_number")
	attrJobStatus    = attribute.Key("job.status")
)

// JobProcessorInstrumentation records enqueue duration, how long ready
// jobs waited before pickup, and how long each attempt took.
type JobProcessorInstrumentation struct {
	next worker.JobProcessor

	enqueueDurn    metric.Float64Histogram
	dequeueLatency metric.Float64Histogram
	processDurn    metric.Float64Histogram
}

// WithJobProcessorInstrumentation wraps processors using the global meter
// provider.
func WithJobProcessorInstrumentation() func(worker.JobProcessor) worker.JobProcessor {
	meter := otel.Meter("github.com/goto/lineage/pkg/worker/workermw")
	return func(next worker.JobProcessor) worker.JobProcessor {
		return NewJobProcessorInstrumentation(next, meter)
	}
}

func NewJobProcessorInstrumentation(next worker.JobProcessor, meter metric.Meter) *JobProcessorInstrumentation {
	enqueueDurn, err := meter.Float64Histogram(enqueueDurnHistogram, metric.WithUnit("ms"))
	handleOtelErr(err)

	dequeueLatency, err := meter.Float64Histogram(dequeueLatencyHistogram, metric.WithUnit("ms"))
	handleOtelErr(err)

	processDurn, err := meter.Float64Histogram(processDurnHistogram, metric.WithUnit("ms"))
	handleOtelErr(err)

	return &JobProcessorInstrumentation{
		next:           next,
		enqueueDurn:    enqueueDurn,
		dequeueLatency: dequeueLatency,
		processDurn:    processDurn,
	}
}

func (mw *JobProcessorInstrumentation) Enqueue(ctx context.Context, jobs ...worker.Job) (err error) {
	defer func(start time.Time) {
		record(ctx, mw.enqueueDurn, sinceMillis(start),
			attrJobTypes.StringSlice(jobTypes(jobs)),
			attrOpSuccess.Bool(err == nil),
		)
	}(time.Now())

	return mw.next.Enqueue(ctx, jobs...)
}

func (mw *JobProcessorInstrumentation) Process(ctx context.Context, types []string, fn worker.JobExecutorFunc) error {
	return mw.next.Process(ctx, types, func(ctx context.Context, job worker.Job) (result worker.Job) {
		start := time.Now()
		record(ctx, mw.dequeueLatency, sinceMillis(job.RunAt), attrJobType.String(job.Type))

		defer func() {
			record(ctx, mw.processDurn, sinceMillis(start),
				attrJobType.String(job.Type),
				attrJobAttemptNo.Int(result.AttemptsDone),
				attrJobStatus.String(jobStatus(result)),
				attrOpSuccess.Bool(result.Status == worker.StatusDone),
			)
		}()

		return fn(ctx, job)
	})
}

func record(ctx context.Context, h metric.Float64Histogram, v float64, attrs ...attribute.KeyValue) {
	if h == nil {
		return
	}
	h.Record(ctx, v, metric.WithAttributes(attrs...))
}

func sinceMillis(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}

func jobTypes(jobs []worker.Job) []string {
	seen := make(map[string]struct{}, len(jobs))
	types := make([]string, 0, len(jobs))
	for _, j := range jobs {
		if _, ok := seen[j.Type]; ok {
			continue
		}
		seen[j.Type] = struct{}{}
		types = append(types, j.Type)
	}
	sort.Strings(types)
	return types
}

func jobStatus(j worker.Job) string {
	if j.Status == worker.StatusPending {
		return "retry"
	}
	return string(j.Status)
}

func handleOtelErr(err error) {
	if err != nil {
		otel.Handle(err)
	}
}
