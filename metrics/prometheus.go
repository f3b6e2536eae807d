// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// Package metrics implements queue.Metrics on top of
// prometheus/client_golang, the instrumentation backend this codebase's
// sibling corpus uses throughout its services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/beaconkit/beacon-transporter/internal/queue"
)

// Prometheus implements queue.Metrics, registering its collectors against
// the given registerer. Pass prometheus.DefaultRegisterer to expose these
// alongside a process's other metrics.
type Prometheus struct {
	queueOpenSeconds prometheus.Histogram
	pushTotal        *prometheus.CounterVec
	replayTotal      *prometheus.CounterVec
	notifyThrottled  prometheus.Counter
}

// NewPrometheus builds and registers the collectors under reg. namespace
// prefixes every metric name (e.g. "beacon_transporter_queue_push_total").
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	p := &Prometheus{
		queueOpenSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "open_duration_seconds",
			Help:      "Time taken to open the persistence queue's durable store.",
			Buckets:   prometheus.DefBuckets,
		}),
		pushTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "push_total",
			Help:      "Entries pushed to the persistence queue, by outcome.",
		}, []string{"outcome"}),
		replayTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "replay_total",
			Help:      "Replay attempts issued from the persistence queue, by outcome.",
		}, []string{"outcome"}),
		notifyThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "notify_throttled_total",
			Help:      "Notify calls dropped because a replay burst was already within its throttle window.",
		}),
	}

	reg.MustRegister(p.queueOpenSeconds, p.pushTotal, p.replayTotal, p.notifyThrottled)
	return p
}

var _ queue.Metrics = (*Prometheus)(nil)

func (p *Prometheus) RecordQueueOpen(durationMs int64) {
	p.queueOpenSeconds.Observe(float64(durationMs) / 1000)
}

func (p *Prometheus) RecordPush(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	p.pushTotal.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) RecordReplay(outcome string) {
	p.replayTotal.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) RecordNotifyThrottled() {
	p.notifyThrottled.Inc()
}
