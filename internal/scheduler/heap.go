package scheduler

import "container/heap"

// deadlineHeap implements container/heap.Interface over Events, ordered
// by Deadline (earliest first).
type deadlineHeap []Event

func (h deadlineHeap) Len() int           { return len(h) }
func (h deadlineHeap) Less(i, j int) bool { return h[i].Deadline.Before(h[j].Deadline) }
func (h deadlineHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *deadlineHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// heapPush adds an Event, maintaining the heap invariant.
func heapPush(h *deadlineHeap, e Event) {
	heap.Push(h, e)
}

// heapPop removes and returns the Event with the earliest Deadline.
// Panics on an empty heap.
func heapPop(h *deadlineHeap) Event {
	return heap.Pop(h).(Event)
}

// heapRemoveByID removes the first Event with the given task id and
// reports whether it was found.
func heapRemoveByID(h *deadlineHeap, taskID string) bool {
	for i, e := range *h {
		if e.TaskID == taskID {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
