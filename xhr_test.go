// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package beacon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beaconkit/beacon-transporter/result"
)

func TestXHR_NoRetrySinglePost(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	res := XHR(context.Background(), srv.URL, "payload", nil)

	assert.Equal(t, result.Response, res.Type)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Equal(t, 1, hits, "XHR must never retry on its own")
}
