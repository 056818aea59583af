package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// TaskRunsTotal counts accepted run requests
	TaskRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_task_runs_total",
			Help: "Total number of accepted task runs",
		},
		[]string{"task_type", "trigger"},
	)

	// TaskRunRejectedTotal counts run requests refused because the task was running
	TaskRunRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_task_run_rejected_total",
			Help: "Total number of run requests rejected with AlreadyRunning",
		},
	)

	// TaskStatusReportsTotal counts executor status reports by resulting status
	TaskStatusReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_task_status_reports_total",
			Help: "Total number of executor status reports",
		},
		[]string{"status", "verification"},
	)

	// TaskDispatchErrorsTotal counts failed hand-offs to the executor
	TaskDispatchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_task_dispatch_errors_total",
			Help: "Total number of failed dispatches to the task executor",
		},
		[]string{"executor"},
	)

	// DispatchQueueDepth reports jobs waiting for a dispatcher worker
	DispatchQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_dispatch_queue_depth",
			Help: "Number of jobs waiting in the dispatcher queue",
		},
	)

	// ProbeChecksTotal counts data source connection tests by type and result
	ProbeChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_datasource_probe_total",
			Help: "Total number of data source connection tests",
		},
		[]string{"type", "result"},
	)

	// ScheduledTasks reports tasks registered with the cron scheduler
	ScheduledTasks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_scheduled_tasks",
			Help: "Number of tasks with an active cron schedule",
		},
	)
)

func setupTaskMetrics(registry *prometheus.Registry) {
	registry.MustRegister(
		TaskRunsTotal,
		TaskRunRejectedTotal,
		TaskStatusReportsTotal,
		TaskDispatchErrorsTotal,
		DispatchQueueDepth,
		ProbeChecksTotal,
		ScheduledTasks,
	)
}
