// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestBuild_NoHeaderNameUnchanged(t *testing.T) {
	caller := map[string]string{"x-foo": "bar"}
	got := Build(caller, "", 1, intPtr(502))
	assert.Equal(t, caller, got)
}

func TestBuild_AttemptZeroUnchanged(t *testing.T) {
	caller := map[string]string{"x-foo": "bar"}
	got := Build(caller, "x-retry-context", 0, nil)
	assert.Equal(t, caller, got)
}

func TestBuild_FirstRetryHasAttemptNoErrorCode(t *testing.T) {
	got := Build(nil, "x-retry-context", 1, nil)
	require.Contains(t, got, "x-retry-context")
	assert.JSONEq(t, `{"attempt":1}`, got["x-retry-context"])
}

func TestBuild_SubsequentRetryCarriesErrorCode(t *testing.T) {
	got := Build(map[string]string{"x-foo": "bar"}, "x-retry-context", 2, intPtr(429))
	assert.JSONEq(t, `{"attempt":2,"errorCode":429}`, got["x-retry-context"])
	assert.Equal(t, "bar", got["x-foo"], "caller headers must be preserved")
}

func TestBuild_DoesNotMutateCallerHeaders(t *testing.T) {
	caller := map[string]string{"x-foo": "bar"}
	_ = Build(caller, "x-retry-context", 1, nil)
	assert.Len(t, caller, 1, "caller map must not be mutated")
}
