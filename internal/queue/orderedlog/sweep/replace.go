// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package sweep

import (
	"fmt"
	"os"
)

// replaceFile atomically swaps tmp into place at dst, mirroring the
// write-tmp-then-rename discipline used throughout this codebase for
// crash-safe file updates.
func replaceFile(tmp, dst string) error {
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s -> %s: %w", tmp, dst, err)
	}
	return nil
}
