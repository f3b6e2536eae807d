// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package beacon

import (
	"context"

	"github.com/beaconkit/beacon-transporter/internal/transport"
	"github.com/beaconkit/beacon-transporter/result"
)

// XHR performs a single POST with no in-memory retry and no persistence —
// the minimal-environment fallback spec §6.1 calls out for a host with no
// usable beacon/fetch stack. headers is optional. It sends through the
// default transport strategy, so a network-level failure is resent once
// without keepalive; a non-2xx response is never resent.
func XHR(ctx context.Context, url, body string, headers map[string]string) result.Result {
	return transport.New().Send(ctx, transport.Request{URL: url, Body: body, Headers: headers})
}
