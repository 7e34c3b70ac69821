package scheduler

import (
	"container/heap"
	"context"
	"time"
)

// DefaultMaxSleep bounds how long the scheduler goroutine sleeps between
// wake-ups when no nearer deadline exists.
const DefaultMaxSleep = time.Second

// Event is one pending deadline in the scheduler heap. The scheduler
// tracks only the id; the store keeps the task itself.
type Event struct {
	TaskID   string
	Deadline time.Time
}

// Scheduler wakes when the nearest deadline is due and reports the due
// task ids to its owner. It runs for the whole process lifetime on one
// background goroutine.
type Scheduler struct {
	addChan    chan Event
	removeChan chan string
	ctx        context.Context
	maxSleep   time.Duration
}

// New creates and starts a Scheduler. onDue is invoked on the scheduler
// goroutine for every event whose deadline has arrived; it must not
// block on network I/O. maxSleep <= 0 selects DefaultMaxSleep. The
// goroutine exits when ctx is cancelled.
func New(ctx context.Context, maxSleep time.Duration, onDue func(taskID string)) *Scheduler {
	if maxSleep <= 0 {
		maxSleep = DefaultMaxSleep
	}
	s := &Scheduler{
		addChan:    make(chan Event, 64),
		removeChan: make(chan string, 64),
		ctx:        ctx,
		maxSleep:   maxSleep,
	}
	go s.run(onDue)
	return s
}

// Add enqueues a deadline event.
func (s *Scheduler) Add(e Event) {
	select {
	case s.addChan <- e:
	case <-s.ctx.Done():
	}
}

// Remove drops a pending event by task id. Unknown ids are ignored.
func (s *Scheduler) Remove(taskID string) {
	select {
	case s.removeChan <- taskID:
	case <-s.ctx.Done():
	}
}

// run is the scheduler goroutine. It keeps the deadline min-heap and a
// timer armed for the nearest deadline, capped at maxSleep.
func (s *Scheduler) run(onDue func(string)) {
	h := &deadlineHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			// Nothing pending, block on the channels alone.
			return nil
		}
		dur := time.Until((*h)[0].Deadline)
		if dur > s.maxSleep {
			dur = s.maxSleep
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case e := <-s.addChan:
			heapPush(h, e)
			timerCh = resetTimer()

		case id := <-s.removeChan:
			heapRemoveByID(h, id)
			timerCh = resetTimer()

		case <-timerCh:
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].Deadline.After(now) {
				e := heapPop(h)
				onDue(e.TaskID)
			}
			timerCh = resetTimer()
		}
	}
}
