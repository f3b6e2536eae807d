// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// Package sweep periodically compacts the ordered-log store. bbolt never
// shrinks its backing file on delete, so a long-lived process that churns
// through many replay/evict cycles accumulates free pages; sweep.Job
// reclaims them on a schedule instead of requiring an operator restart.
package sweep

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.etcd.io/bbolt"

	"github.com/beaconkit/beacon-transporter/internal/logging"
)

// Job runs bbolt's online compaction (copy live pages into a fresh file,
// then swap it in) on a cron schedule.
type Job struct {
	cron   *cron.Cron
	path   string
	logger logging.Logger
	open   func(path string) (*bbolt.DB, error)
}

// New builds a Job that compacts the bbolt file at path according to
// schedule (standard 5-field cron syntax, e.g. "0 3 * * *" for daily at
// 03:00). The queue's Engine must be closed before Start and reopened
// after Stop, since compaction needs exclusive access to the file.
func New(path, schedule string, logger logging.Logger) (*Job, error) {
	if logger == nil {
		logger = logging.NoOp
	}
	j := &Job{
		cron:   cron.New(),
		path:   path,
		logger: logger,
		open:   func(p string) (*bbolt.DB, error) { return bbolt.Open(p, 0o600, nil) },
	}
	if _, err := j.cron.AddFunc(schedule, j.runOnce); err != nil {
		return nil, fmt.Errorf("sweep: invalid schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start launches the cron scheduler in the background.
func (j *Job) Start() { j.cron.Start() }

// Stop halts the scheduler and waits for any in-flight compaction to
// finish.
func (j *Job) Stop() { <-j.cron.Stop().Done() }

// RunOnce performs a single compaction immediately, without involving the
// cron scheduler. Used by beacon-cli's one-shot "compact --once" mode.
func (j *Job) RunOnce() { j.runOnce() }

func (j *Job) runOnce() {
	tmp := j.path + ".compact"
	src, err := j.open(j.path)
	if err != nil {
		j.logger.Debug(nil, "sweep: open source failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer src.Close()

	dst, err := j.open(tmp)
	if err != nil {
		j.logger.Debug(nil, "sweep: open destination failed", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := bbolt.Compact(dst, src, 0); err != nil {
		dst.Close()
		j.logger.Debug(nil, "sweep: compact failed", map[string]interface{}{"error": err.Error()})
		return
	}
	dst.Close()
	src.Close()

	if err := replaceFile(tmp, j.path); err != nil {
		j.logger.Debug(nil, "sweep: swap failed", map[string]interface{}{"error": err.Error()})
	}
}
