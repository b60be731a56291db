/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics registers the controller's Prometheus series against the
// controller-runtime metrics registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	crmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	namespace = "node_condition_tainter"
	subsystem = "reconciler"
)

var (
	// ReconcilesTotal counts reconcile outcomes by result.
	ReconcilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reconciles_total",
			Help:      "Total number of node reconciliations by result.",
		},
		[]string{"result"},
	)

	// ReconcileDuration records how long a single reconcile took.
	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reconcile_duration_seconds",
			Help:      "Time spent computing and applying a single node reconciliation.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// QueueDepth reports the current length of the work queue.
	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_depth",
			Help:      "Number of node names currently queued for reconciliation.",
		},
	)
)

func init() {
	crmetrics.Registry.MustRegister(ReconcilesTotal, ReconcileDuration, QueueDepth)
}

// Result labels for ReconcilesTotal.
const (
	ResultNoOp     = "noop"
	ResultApplied  = "applied"
	ResultConflict = "conflict"
	ResultError    = "error"
	ResultDropped  = "dropped"
)
