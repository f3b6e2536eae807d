// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package queue

// Metrics is the optional instrumentation collaborator standing in for
// spec §3's `measure` hooks (originally performance.mark/measure around
// the durable store's open and drain steps).
type Metrics interface {
	RecordQueueOpen(durationMs int64)
	RecordPush(success bool)
	RecordReplay(outcome string) // "success", "reenqueue", or "drop"
	RecordNotifyThrottled()
}

// NoOpMetrics discards everything; the default when no Metrics is wired.
var NoOpMetrics Metrics = noOpMetrics{}

type noOpMetrics struct{}

func (noOpMetrics) RecordQueueOpen(int64)    {}
func (noOpMetrics) RecordPush(bool)          {}
func (noOpMetrics) RecordReplay(string)      {}
func (noOpMetrics) RecordNotifyThrottled()   {}
