// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"bytes"
	"compress/gzip"
)

// gzipBody compresses the UTF-8 bytes of body. Go strings are always
// UTF-8, so there is no separate encode-to-bytes step the way a browser's
// TextEncoder requires.
func gzipBody(body string) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(body)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
