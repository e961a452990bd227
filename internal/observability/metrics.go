package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the orchestration counters. Constructed against an injected
// Registerer so independent hosts (and tests) never share collector state.
type Metrics struct {
	ActivityAttempts *prometheus.CounterVec
	ActivityRetries  *prometheus.CounterVec
	ActivityFailures *prometheus.CounterVec
	WorkflowRuns     *prometheus.CounterVec
	QueuePublishes   prometheus.Counter
}

// New registers the orchestration collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ActivityAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conveyor_activity_attempts_total",
			Help: "Activity invocation attempts, including retries.",
		}, []string{"activity"}),
		ActivityRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conveyor_activity_retries_total",
			Help: "Activity attempts that were retried after an infrastructure failure.",
		}, []string{"activity"}),
		ActivityFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conveyor_activity_failures_total",
			Help: "Terminal activity failures by class (business or infra).",
		}, []string{"activity", "class"}),
		WorkflowRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "conveyor_workflow_runs_total",
			Help: "Workflow runs by type and terminal status.",
		}, []string{"workflow", "status"}),
		QueuePublishes: factory.NewCounter(prometheus.CounterOpts{
			Name: "conveyor_queue_publishes_total",
			Help: "Messages published to result streams.",
		}),
	}
}
