package scheduler

import (
	"testing"
	"time"
)

func TestHeapPopOrdering(t *testing.T) {
	h := &deadlineHeap{}

	now := time.Now()
	heapPush(h, Event{TaskID: "late", Deadline: now.Add(3 * time.Hour)})
	heapPush(h, Event{TaskID: "early", Deadline: now.Add(1 * time.Hour)})
	heapPush(h, Event{TaskID: "mid", Deadline: now.Add(2 * time.Hour)})

	for _, want := range []string{"early", "mid", "late"} {
		e := heapPop(h)
		if e.TaskID != want {
			t.Errorf("popped %s, want %s", e.TaskID, want)
		}
	}
}

func TestHeapEqualDeadlines(t *testing.T) {
	h := &deadlineHeap{}
	at := time.Now().Add(time.Hour)

	for _, id := range []string{"a", "b", "c"} {
		heapPush(h, Event{TaskID: id, Deadline: at})
	}

	seen := map[string]bool{}
	for h.Len() > 0 {
		e := heapPop(h)
		if seen[e.TaskID] {
			t.Errorf("duplicate pop for %s", e.TaskID)
		}
		seen[e.TaskID] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct events, got %d", len(seen))
	}
}

func TestHeapRemoveByID(t *testing.T) {
	h := &deadlineHeap{}
	now := time.Now()
	heapPush(h, Event{TaskID: "a", Deadline: now.Add(1 * time.Hour)})
	heapPush(h, Event{TaskID: "b", Deadline: now.Add(2 * time.Hour)})
	heapPush(h, Event{TaskID: "c", Deadline: now.Add(3 * time.Hour)})

	if !heapRemoveByID(h, "b") {
		t.Error("expected removal of b to succeed")
	}
	if heapRemoveByID(h, "nope") {
		t.Error("removal of unknown id should report false")
	}

	if first := heapPop(h); first.TaskID != "a" {
		t.Errorf("popped %s, want a", first.TaskID)
	}
	if second := heapPop(h); second.TaskID != "c" {
		t.Errorf("popped %s, want c", second.TaskID)
	}
}
