package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/relayq/relayq/common"
	"github.com/relayq/relayq/pkg/logger"
	"github.com/relayq/relayq/pkg/relaylib"
)

func floatPtr(f float64) *float64 { return &f }

func httpSubmission(link string, delay float64) *common.Submission {
	return &common.Submission{
		Title:    "ping",
		Address:  &common.SubmissionAddress{Type: "http", Link: link},
		Settings: &common.SubmissionSettings{Time: floatPtr(delay)},
	}
}

func TestSubmitAndFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	b := New(ctx, logger.NewNopLogger(), &Options{
		PollInterval: 20 * time.Millisecond,
		HTTPClient:   srv.Client(),
	})

	task, err := b.Submit(httpSubmission(srv.URL+"/x", 0))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if task.ID() == "" {
		t.Fatal("expected an id")
	}

	deadlineFor := func(cond func() bool) {
		t.Helper()
		for i := 0; i < 100; i++ {
			if cond() {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
		t.Fatal("condition not reached in time")
	}

	deadlineFor(func() bool { return atomic.LoadInt32(&hits) == 1 })
	deadlineFor(func() bool { return b.PendingCount() == 0 })
}

func TestSubmitValidationFailureLeavesStoreUnchanged(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := New(ctx, logger.NewNopLogger(), nil)

	_, err := b.Submit(&common.Submission{Title: ""})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !relaylib.IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if b.PendingCount() != 0 {
		t.Errorf("store mutated by rejected submission: %d pending", b.PendingCount())
	}
}

func TestTaskNotFiredBeforeDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	b := New(ctx, logger.NewNopLogger(), &Options{
		PollInterval: 20 * time.Millisecond,
		HTTPClient:   srv.Client(),
	})

	if _, err := b.Submit(httpSubmission(srv.URL, 3600)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	time.Sleep(300 * time.Millisecond)

	if atomic.LoadInt32(&hits) != 0 {
		t.Fatal("task fired before its deadline")
	}
	if b.PendingCount() != 1 {
		t.Errorf("PendingCount = %d, want 1", b.PendingCount())
	}
}

func TestFailedDispatchStillConsumesTask(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock := logger.NewMockLogger()
	b := New(ctx, mock, &Options{PollInterval: 20 * time.Millisecond})

	// Nothing listens on the discard port; dispatch must fail but the
	// task must still be removed.
	_, err := b.Submit(&common.Submission{
		Title:    "doomed",
		Address:  &common.SubmissionAddress{Type: "socket", Link: "127.0.0.1:9"},
		Settings: &common.SubmissionSettings{Time: floatPtr(0)},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var warned bool
	for i := 0; i < 100; i++ {
		if len(mock.Warnings()) > 0 {
			warned = true
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if !warned {
		t.Fatal("expected a dispatch warning")
	}
	if !strings.Contains(mock.Warnings()[0], "dispatch") {
		t.Errorf("warning = %q", mock.Warnings()[0])
	}
	if b.PendingCount() != 0 {
		t.Errorf("failed task still pending: %d", b.PendingCount())
	}
}

// TestConcurrentSubmitsNeverLoseOrDoubleFire is the core at-most-once
// property test: N concurrent producers, every task fires exactly once.
func TestConcurrentSubmitsNeverLoseOrDoubleFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	hitsPerPath := make(map[string]int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hitsPerPath[r.URL.Path]++
		mu.Unlock()
	}))
	defer srv.Close()

	b := New(ctx, logger.NewNopLogger(), &Options{
		PollInterval: 10 * time.Millisecond,
		HTTPClient:   srv.Client(),
	})

	const producers = 8
	const perProducer = 5
	var wg sync.WaitGroup
	errCh := make(chan error, producers*perProducer)
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				path := "/" + string(rune('a'+p)) + string(rune('0'+i))
				if _, err := b.Submit(httpSubmission(srv.URL+path, 0.05)); err != nil {
					errCh <- err
				}
			}
		}(p)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("Submit: %v", err)
	}

	var done bool
	for i := 0; i < 200; i++ {
		mu.Lock()
		n := len(hitsPerPath)
		mu.Unlock()
		if n == producers*perProducer && b.PendingCount() == 0 {
			done = true
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !done {
		t.Fatalf("not all tasks fired: %d pending", b.PendingCount())
	}

	mu.Lock()
	defer mu.Unlock()
	for path, n := range hitsPerPath {
		if n != 1 {
			t.Errorf("task %s fired %d times, want exactly 1", path, n)
		}
	}
}

func TestDebugLogsPendingListing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock := logger.NewMockLogger()
	b := New(ctx, mock, &Options{Debug: true})

	if _, err := b.Submit(httpSubmission("http://example.test/x", 3600)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var found bool
	for _, line := range mock.InfoCalls {
		if strings.Contains(line, "pending tasks (1)") {
			found = true
		}
	}
	if !found {
		t.Errorf("debug listing missing, info calls: %v", mock.InfoCalls)
	}
}
