// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package cliui

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"
)

// Spinner wraps a terminal spinner shown while opening or draining the
// store, something that briefly blocks on disk or network I/O.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner builds a Spinner writing to w with message as its suffix.
func NewSpinner(message string, w io.Writer) *Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	s.FinalMSG = ""
	return &Spinner{s: s}
}

func (s *Spinner) Start() { s.s.Start() }
func (s *Spinner) Stop()  { s.s.Stop() }

// Done stops the spinner and leaves a one-line summary in its place.
func (s *Spinner) Done(message string) {
	s.s.FinalMSG = fmt.Sprintf("✅ %s\n", message)
	s.s.Stop()
}

// ProgressBar renders progress over a bounded count of entries, used when
// peek walks a large queue.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// NewProgressBar builds a bar over total items, writing to w.
func NewProgressBar(total int64, description string, w io.Writer) *ProgressBar {
	bar := progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() { fmt.Fprint(w, "\n") }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &ProgressBar{bar: bar}
}

func (pb *ProgressBar) Add(n int) error { return pb.bar.Add(n) }
func (pb *ProgressBar) Finish() error   { return pb.bar.Finish() }
