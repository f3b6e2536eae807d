// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package beacon

import (
	"context"

	"github.com/beaconkit/beacon-transporter/internal/queue"
	"github.com/beaconkit/beacon-transporter/internal/transport"
	"github.com/beaconkit/beacon-transporter/result"
)

// transportSender adapts *transport.Transport to queue.Sender so the
// replay loop in internal/queue can issue HTTP requests without that
// package importing internal/transport directly.
type transportSender struct {
	t *transport.Transport
}

func (s transportSender) Send(ctx context.Context, req queue.SendRequest) queue.SendResult {
	res := s.t.Send(ctx, transport.Request{
		URL:      req.URL,
		Body:     req.Body,
		Headers:  req.Headers,
		Compress: req.Compress,
	})
	return queue.SendResult{
		Succeeded:  res.Type == result.Success || res.Type == result.Unknown,
		IsNetwork:  res.Type == result.Network,
		StatusCode: res.StatusCode,
		HasStatus:  res.HasStatusCode,
	}
}
