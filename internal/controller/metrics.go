package controller

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	reconcileDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "keycloak",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation loops in seconds",
			// Buckets chosen to capture fast reconciles and longer tail up to 60s.
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"namespace", "name", "controller"},
	)

	reconcileErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "keycloak",
			Name:      "reconcile_errors_total",
			Help:      "Total number of reconciliation errors",
		},
		[]string{"namespace", "name", "controller", "reason"},
	)

	readyInstancesGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "keycloak",
			Name:      "ready_instances",
			Help:      "Number of ready Keycloak server instances",
		},
		[]string{"namespace", "name"},
	)

	migrationInProgressGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "keycloak",
			Name:      "migration_in_progress",
			Help:      "Whether an image migration scale-down is in progress (1 = yes)",
		},
		[]string{"namespace", "name"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		reconcileDurationHistogram,
		reconcileErrorsTotal,
		readyInstancesGauge,
		migrationInProgressGauge,
	)
}

// ReconcileMetrics provides helpers to record reconcile-level metrics for a
// specific controller and Keycloak instance.
type ReconcileMetrics struct {
	namespace  string
	name       string
	controller string
}

// NewReconcileMetrics creates a new ReconcileMetrics instance.
func NewReconcileMetrics(namespace, name, controller string) *ReconcileMetrics {
	return &ReconcileMetrics{
		namespace:  namespace,
		name:       name,
		controller: controller,
	}
}

// ObserveDuration records the duration of a reconcile loop in seconds.
func (m *ReconcileMetrics) ObserveDuration(durationSeconds float64) {
	reconcileDurationHistogram.
		WithLabelValues(m.namespace, m.name, m.controller).
		Observe(durationSeconds)
}

// IncrementError increments the reconcile error counter with the given reason.
// Reason values should be low-cardinality strings (for example, "KubernetesAPIError").
func (m *ReconcileMetrics) IncrementError(reason string) {
	reconcileErrorsTotal.
		WithLabelValues(m.namespace, m.name, m.controller, reason).
		Inc()
}

// InstanceMetrics provides helpers to record per-instance state metrics.
type InstanceMetrics struct {
	namespace string
	name      string
}

// NewInstanceMetrics creates a new InstanceMetrics instance.
func NewInstanceMetrics(namespace, name string) *InstanceMetrics {
	return &InstanceMetrics{
		namespace: namespace,
		name:      name,
	}
}

// SetReadyInstances records the number of ready Keycloak servers.
func (m *InstanceMetrics) SetReadyInstances(readyInstances int32) {
	readyInstancesGauge.
		WithLabelValues(m.namespace, m.name).
		Set(float64(readyInstances))
}

// SetMigrationInProgress records whether the migration scale-down is active.
func (m *InstanceMetrics) SetMigrationInProgress(inProgress bool) {
	value := 0.0
	if inProgress {
		value = 1.0
	}
	migrationInProgressGauge.
		WithLabelValues(m.namespace, m.name).
		Set(value)
}

// Clear removes all per-instance metrics. This should be called when the
// Keycloak object is deleted to avoid leaving stale series behind.
func (m *InstanceMetrics) Clear() {
	readyInstancesGauge.
		DeleteLabelValues(m.namespace, m.name)
	migrationInProgressGauge.
		DeleteLabelValues(m.namespace, m.name)
}
