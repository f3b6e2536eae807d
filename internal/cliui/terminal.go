// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package cliui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Interactive reports whether stdin is a real terminal — beacon-cli skips
// the confirmation prompt and assumes --force when it isn't (e.g. piped
// into a script or CI).
func Interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
