// Copyright (c) 2026 Beaconkit
// SPDX-License-Identifier: MPL-2.0

// Package transport wraps the host's HTTP facilities behind stateless
// functions that classify every outcome into the result taxonomy. It never
// retries on its own behalf except for the single keepalive-body-size
// workaround described in spec §4.1; the in-memory and persistence retry
// policies live one layer up, in the beacon package.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beaconkit/beacon-transporter/internal/header"
	"github.com/beaconkit/beacon-transporter/internal/logging"
	"github.com/beaconkit/beacon-transporter/internal/resilience"
	"github.com/beaconkit/beacon-transporter/result"
)

// KeepaliveBodyLimit is the 64 KiB cap browsers impose on keepalive fetch
// request bodies. Bodies at or under this size use the keepalive-enabled
// client directly; larger bodies skip straight to the non-keepalive retry.
const KeepaliveBodyLimit = 64 * 1024

// maxStatusTextLen caps how much of a 2xx response body is drained before
// the body is closed. Non-2xx bodies are not read at all: their diagnostic
// text is the response status line.
const maxStatusTextLen = 4096

// FireAndForgetSender is the Go stand-in for navigator.sendBeacon: a
// synchronous, best-effort handoff whose delivery outcome is never
// observed. It returns true when the handoff was accepted.
type FireAndForgetSender interface {
	Send(url, body string, headers map[string]string) bool
}

// ConnectivityProbe is the Go stand-in for navigator.onLine.
type ConnectivityProbe interface {
	Online() bool
}

// AlwaysOnline is the default ConnectivityProbe: Go processes don't get a
// reliable host-level offline signal the way a browser tab does.
type AlwaysOnline struct{}

func (AlwaysOnline) Online() bool { return true }

// Request is a single send attempt's parameters.
type Request struct {
	URL      string
	Body     string
	Headers  map[string]string
	Compress bool
}

// Transport selects KeepaliveStrategy or FallbackStrategy at construction
// time and exposes a single Send entry point.
type Transport struct {
	client       *http.Client
	nonKeepalive *http.Client
	sender       FireAndForgetSender
	breaker      *resilience.Breaker
	logger       logging.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient overrides the keepalive-capable client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) { t.client = c }
}

// WithFireAndForgetSender selects FallbackStrategy: the sender is tried
// before falling back to a plain POST.
func WithFireAndForgetSender(s FireAndForgetSender) Option {
	return func(t *Transport) { t.sender = s }
}

// WithBreaker wraps every send attempt in a circuit breaker.
func WithBreaker(b *resilience.Breaker) Option {
	return func(t *Transport) { t.breaker = b }
}

// WithLogger attaches the debug sink collaborator.
func WithLogger(l logging.Logger) Option {
	return func(t *Transport) { t.logger = l }
}

// New builds a Transport. With no options it behaves as KeepaliveStrategy
// over the default HTTP transport, with a 30s timeout on each request.
func New(opts ...Option) *Transport {
	t := &Transport{
		client:       &http.Client{Timeout: 30 * time.Second},
		nonKeepalive: &http.Client{Timeout: 30 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}},
		logger:       logging.NoOp,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send dispatches one request and classifies the outcome. It never panics
// and never returns a Go error to the caller — failures are encoded in the
// returned Result.
func (t *Transport) Send(ctx context.Context, req Request) result.Result {
	if t.sender != nil {
		return t.sendFallback(ctx, req)
	}
	return t.sendKeepalive(ctx, req)
}

// sendKeepalive implements KeepaliveStrategy from spec §4.1: attempt with
// the keepalive-capable client; on a thrown (non-HTTP) failure, retry once
// with keepalive disabled. A body already over the 64 KiB cap skips
// straight to the non-keepalive client.
func (t *Transport) sendKeepalive(ctx context.Context, req Request) result.Result {
	if len(req.Body) <= KeepaliveBodyLimit {
		res, retriable := t.attempt(ctx, t.client, req)
		if !retriable {
			return res
		}
		t.logger.Debug(ctx, "keepalive attempt failed, retrying without keepalive", map[string]interface{}{
			"url": req.URL,
		})
	}
	res, _ := t.attempt(ctx, t.nonKeepalive, req)
	return res
}

// sendFallback implements FallbackStrategy from spec §4.1.
func (t *Transport) sendFallback(_ context.Context, req Request) result.Result {
	accepted := func() (ok bool) {
		defer func() {
			if recover() != nil {
				ok = false
			}
		}()
		return t.sender.Send(req.URL, req.Body, req.Headers)
	}()
	if accepted {
		return result.Unobserved()
	}

	res, _ := t.attempt(context.Background(), t.client, req)
	return res
}

// attempt performs one HTTP round trip through client and classifies it.
// The second return value is true only for a thrown/network failure on the
// keepalive client, signaling the caller should retry without keepalive.
func (t *Transport) attempt(ctx context.Context, client *http.Client, req Request) (result.Result, bool) {
	httpReq, err := t.buildRequest(ctx, req)
	if err != nil {
		return result.TransportError(err.Error()), false
	}

	doCall := func() (*http.Response, error) { return client.Do(httpReq) }

	var resp *http.Response
	if t.breaker != nil {
		err = t.breaker.Execute(func() error {
			var callErr error
			resp, callErr = doCall()
			return callErr
		})
		if err == resilience.ErrOpenState {
			return result.TransportError("circuit open"), client == t.client
		}
	} else {
		resp, err = doCall()
	}

	if err != nil {
		msg := err.Error()
		t.logger.Debug(ctx, "request failed", map[string]interface{}{"url": req.URL, "error": msg})
		return result.TransportError(msg), client == t.client
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxStatusTextLen))
		return result.OK(resp.StatusCode), false
	}

	statusText := resp.Status
	if statusText == "" {
		statusText = http.StatusText(resp.StatusCode)
	}
	return result.HTTPError(resp.StatusCode, statusText), false
}

func (t *Transport) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	bodyBytes := []byte(req.Body)
	contentEncoding := ""

	if req.Compress {
		compressed, err := gzipBody(req.Body)
		if err != nil {
			return nil, fmt.Errorf("compress body: %w", err)
		}
		bodyBytes = compressed
		contentEncoding = header.GzipEncoding
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}

	contentTypeSet := false
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
		if equalFoldHeader(k, header.ContentType) {
			contentTypeSet = true
		}
	}
	if !contentTypeSet {
		httpReq.Header.Set(header.ContentType, header.DefaultContentType)
	}
	if contentEncoding != "" {
		httpReq.Header.Set(header.ContentEncoding, contentEncoding)
	}

	return httpReq, nil
}

func equalFoldHeader(a, b string) bool {
	return http.CanonicalHeaderKey(a) == http.CanonicalHeaderKey(b)
}
