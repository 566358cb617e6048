package dispatcher

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestDispatchSucceedsOnQuorum(t *testing.T) {
	d := New(Config{
		NodeURLs:     []string{"http://a", "http://b", "http://c"},
		MinNodeCount: 2,
	})

	build := func(url string) (interface{}, error) { return url, nil }
	call := func(ctx context.Context, url string, requestID string, body interface{}) (interface{}, error) {
		if url == "http://c" {
			return nil, fmt.Errorf("node unreachable")
		}
		return body, nil
	}

	result, err := d.Dispatch(context.Background(), d.NodeURLs(), build, call)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if result.RequestID == "" {
		t.Fatal("expected non-empty requestId")
	}
	if len(result.Values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(result.Values))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 node error, got %d", len(result.Errors))
	}
}

func TestDispatchFailsBelowQuorum(t *testing.T) {
	d := New(Config{
		NodeURLs:     []string{"http://a", "http://b", "http://c"},
		MinNodeCount: 3,
	})

	build := func(url string) (interface{}, error) { return url, nil }
	call := func(ctx context.Context, url string, requestID string, body interface{}) (interface{}, error) {
		if url == "http://c" {
			return nil, fmt.Errorf("node unreachable")
		}
		return body, nil
	}

	_, err := d.Dispatch(context.Background(), d.NodeURLs(), build, call)
	if err == nil {
		t.Fatal("expected quorum error")
	}
}

func TestDispatchRetriesUntilToleranceExhausted(t *testing.T) {
	var attempts int32

	d := New(Config{
		NodeURLs:       []string{"http://a", "http://b", "http://c"},
		MinNodeCount:   3,
		RetryTolerance: 2,
	})

	build := func(url string) (interface{}, error) { return url, nil }
	call := func(ctx context.Context, url string, requestID string, body interface{}) (interface{}, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, fmt.Errorf("always fails")
	}

	_, err := d.Dispatch(context.Background(), d.NodeURLs(), build, call)
	if err == nil {
		t.Fatal("expected final error after retries exhausted")
	}
	// 3 attempts (initial + 2 retries) * 3 nodes each.
	if got := atomic.LoadInt32(&attempts); got != 9 {
		t.Fatalf("expected 9 total calls, got %d", got)
	}
}

func TestDispatchSucceedsAfterRetry(t *testing.T) {
	var callNum int32

	d := New(Config{
		NodeURLs:       []string{"http://a", "http://b", "http://c"},
		MinNodeCount:   3,
		RetryTolerance: 1,
	})

	build := func(url string) (interface{}, error) { return url, nil }
	call := func(ctx context.Context, url string, requestID string, body interface{}) (interface{}, error) {
		n := atomic.AddInt32(&callNum, 1)
		// Fail every node on the first attempt (calls 1-3), succeed on retry.
		if n <= 3 {
			return nil, fmt.Errorf("transient failure")
		}
		return body, nil
	}

	result, err := d.Dispatch(context.Background(), d.NodeURLs(), build, call)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(result.Values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(result.Values))
	}
}

func TestDispatchRejectsEmptyURLList(t *testing.T) {
	d := New(Config{NodeURLs: []string{"http://a"}, MinNodeCount: 1})

	build := func(url string) (interface{}, error) { return url, nil }
	call := func(ctx context.Context, url string, requestID string, body interface{}) (interface{}, error) {
		return body, nil
	}

	if _, err := d.Dispatch(context.Background(), nil, build, call); err == nil {
		t.Fatal("expected error for empty URL list")
	}
}
