// Package broker wires the relayq core together: the validating task
// factory, the pending-task store, the deadline scheduler, and the
// dispatcher. Process startup constructs exactly one Broker and hands it
// to every transport adapter; there is no hidden global instance.
package broker

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/relayq/relayq/common"
	"github.com/relayq/relayq/internal/scheduler"
	"github.com/relayq/relayq/pkg/logger"
	"github.com/relayq/relayq/pkg/relaylib"
)

// Options configures a Broker.
type Options struct {
	// PollInterval bounds the scheduling slack: a due task fires at
	// most this long after its deadline. Zero selects the scheduler
	// default.
	PollInterval time.Duration

	// Debug enables the pending-task listing logged after each
	// accepted submission.
	Debug bool

	// HTTPClient overrides the dispatch HTTP client, mainly for tests.
	HTTPClient *http.Client
}

// Broker accepts submissions from concurrent producers and fires each
// accepted task exactly once at or after its deadline.
type Broker struct {
	l     logger.Logger
	store *relaylib.Store
	sched *scheduler.Scheduler
	disp  *relaylib.Dispatcher
	ctx   context.Context
	debug bool
}

// New creates a Broker and starts its scheduler goroutine. The
// scheduler and all in-flight dispatches stop when ctx is cancelled.
func New(ctx context.Context, l logger.Logger, opts *Options) *Broker {
	if opts == nil {
		opts = &Options{}
	}
	b := &Broker{
		l:     l,
		store: relaylib.NewStore(),
		disp:  relaylib.NewDispatcher(l, opts.HTTPClient),
		ctx:   ctx,
		debug: opts.Debug,
	}
	b.sched = scheduler.New(ctx, opts.PollInterval, b.onDue)
	return b
}

// Submit validates an untrusted submission and, on success, stores the
// resulting task and schedules its deadline. Safe for concurrent use by
// many producers.
func (b *Broker) Submit(sub *common.Submission) (*relaylib.Task, error) {
	t, err := relaylib.NewTask(sub, time.Now())
	if err != nil {
		return nil, err
	}
	b.store.Add(t)
	b.sched.Add(scheduler.Event{TaskID: t.ID(), Deadline: t.Deadline()})
	b.l.Info("task %s (%s) accepted, fires at %s", t.ID(), t.Title(), t.Deadline().Format(time.RFC3339))
	if b.debug {
		b.logPending()
	}
	return t, nil
}

// onDue runs on the scheduler goroutine. The atomic Take is the
// at-most-once guard; the network call itself runs on its own goroutine
// so one slow target never delays other due tasks.
func (b *Broker) onDue(id string) {
	t, ok := b.store.Take(id)
	if !ok {
		// Already consumed by an earlier pass.
		return
	}
	relaylib.SafeGo(b.l, "dispatch "+id, func() {
		if err := b.disp.Dispatch(b.ctx, t); err != nil {
			// Fire-once: the task stays consumed, failure or not.
			b.l.Warning("%v", err)
			return
		}
		b.l.Info("task %s dispatched to %s %s", t.ID(), t.Kind(), t.Address())
	})
}

// Pending returns a snapshot of the tasks still waiting to fire.
func (b *Broker) Pending() []*relaylib.Task {
	return b.store.Snapshot()
}

// PendingCount returns the number of tasks still waiting to fire.
func (b *Broker) PendingCount() int {
	return b.store.Len()
}

func (b *Broker) logPending() {
	pending := b.store.Snapshot()
	lines := make([]string, 0, len(pending))
	for _, t := range pending {
		lines = append(lines, "- "+t.String())
	}
	b.l.Info("pending tasks (%d):\n%s", len(pending), strings.Join(lines, "\n"))
}
