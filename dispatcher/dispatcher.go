// SPDX-License-Identifier: LGPL-3.0-or-later

// Package dispatcher implements the node dispatcher (spec.md §4.D): fans
// a request out to every bootstrap node URL, collects a quorum of
// responses, classifies success/failure, and retries the whole batch up
// to a configured tolerance.
package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/sage-x-project/lit-coordinator/internal/logger"
	"github.com/sage-x-project/lit-coordinator/internal/metrics"
	"github.com/sage-x-project/lit-coordinator/literr"
)

// RequestBuilder constructs the request body to send to a specific node
// URL. Callers close over whatever per-request state (session sigs,
// js params, auth method) they need.
type RequestBuilder func(url string) (interface{}, error)

// NodeCaller performs the actual network call for one node, given its
// URL, the built request body and the batch's requestId. It is the
// dispatcher's one seam onto the transport layer (spec.md §6 "HTTP
// transport").
type NodeCaller func(ctx context.Context, url string, requestID string, body interface{}) (interface{}, error)

// NodeError records why a single node's call failed, for the per-node
// diagnostics spec.md §4.D and §7 require on quorum failure.
type NodeError struct {
	URL string
	Err error
}

// Result is the outcome of a dispatched batch.
type Result struct {
	RequestID string
	Values    []interface{}
	Errors    []NodeError
}

// Config configures a Dispatcher instance.
type Config struct {
	// NodeURLs is the bootstrap set of node URLs to fan out to.
	NodeURLs []string
	// MinNodeCount is the quorum threshold k.
	MinNodeCount int
	// RetryTolerance is the number of whole-batch retries permitted
	// before a quorum shortfall becomes final.
	RetryTolerance int
	// PerNodeTimeout bounds a single node's call; zero means no
	// per-node deadline beyond the caller's context.
	PerNodeTimeout time.Duration
	Log            logger.Logger
}

// Dispatcher fans requests out to a fixed node set per spec.md §4.D.
type Dispatcher struct {
	nodeURLs       []string
	minNodeCount   int
	retryTolerance int
	perNodeTimeout time.Duration
	log            logger.Logger
}

// New builds a Dispatcher from cfg.
func New(cfg Config) *Dispatcher {
	log := cfg.Log
	if log == nil {
		log = logger.Default()
	}
	return &Dispatcher{
		nodeURLs:       cfg.NodeURLs,
		minNodeCount:   cfg.MinNodeCount,
		retryTolerance: cfg.RetryTolerance,
		perNodeTimeout: cfg.PerNodeTimeout,
		log:            log,
	}
}

// NodeURLs returns the dispatcher's configured bootstrap node set.
func (d *Dispatcher) NodeURLs() []string {
	return d.nodeURLs
}

// Dispatch fans a request out to every node in urls (the dispatcher's
// full node set, or a caller-narrowed subset for targeted execution —
// spec.md §4.K), waits for quorum, and retries the whole batch on
// shortfall up to retryTolerance times.
func (d *Dispatcher) Dispatch(ctx context.Context, urls []string, build RequestBuilder, call NodeCaller) (*Result, error) {
	if len(urls) == 0 {
		return nil, literr.New(literr.InvalidArgumentException, "dispatcher: no node URLs")
	}

	requestID := uuid.NewString()
	metrics.DispatchesInitiated.Inc()
	timer := prometheus.NewTimer(metrics.DispatchDuration)
	defer timer.ObserveDuration()

	var result *Result
	var lastErr error

	for attempt := 0; attempt <= d.retryTolerance; attempt++ {
		result, lastErr = d.dispatchOnce(ctx, urls, requestID, build, call)
		if lastErr == nil {
			metrics.DispatchOutcomes.WithLabelValues("quorum_reached").Inc()
			return result, nil
		}

		if attempt < d.retryTolerance {
			metrics.DispatchRetries.Inc()
			d.log.Warn("dispatcher: quorum shortfall, retrying batch",
				logger.String("requestId", requestID),
				logger.Int("attempt", attempt+1),
				logger.Error(lastErr),
			)
		}
	}

	metrics.DispatchOutcomes.WithLabelValues("quorum_failed").Inc()
	return nil, lastErr
}

func (d *Dispatcher) dispatchOnce(ctx context.Context, urls []string, requestID string, build RequestBuilder, call NodeCaller) (*Result, error) {
	values := make([]interface{}, 0, len(urls))
	nodeErrs := make([]NodeError, 0)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)

	for _, url := range urls {
		url := url
		g.Go(func() error {
			body, err := build(url)
			if err != nil {
				mu.Lock()
				nodeErrs = append(nodeErrs, NodeError{URL: url, Err: err})
				mu.Unlock()
				return nil
			}

			callCtx := gctx
			var cancel context.CancelFunc
			if d.perNodeTimeout > 0 {
				callCtx, cancel = context.WithTimeout(gctx, d.perNodeTimeout)
				defer cancel()
			}

			value, err := call(callCtx, url, requestID, body)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				nodeErrs = append(nodeErrs, NodeError{URL: url, Err: err})
				metrics.NodeCallErrors.WithLabelValues(url).Inc()
				return nil
			}
			values = append(values, value)
			return nil
		})
	}

	// The goroutines above never return an error (all node-side failures
	// are captured as NodeError instead), so Wait only waits for the batch.
	// Cancellation of the parent context is read from ctx itself and
	// discards any partial per-node responses.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, literr.Wrap(literr.UnknownError, err, "dispatcher: batch cancelled").WithRequestID(requestID)
	}

	n := len(urls)
	if len(values) >= d.minNodeCount {
		return &Result{RequestID: requestID, Values: values, Errors: nodeErrs}, nil
	}

	if len(nodeErrs) > n-d.minNodeCount {
		return nil, literr.Newf(literr.UnknownError,
			"dispatcher: quorum not reached: %d succeeded, %d failed, need %d of %d",
			len(values), len(nodeErrs), d.minNodeCount, n).WithRequestID(requestID)
	}

	return nil, literr.Newf(literr.UnknownError,
		"dispatcher: quorum not reached: %d succeeded, need %d of %d",
		len(values), d.minNodeCount, n).WithRequestID(requestID)
}
