// Package scheduler decides when pending relayq tasks become due. It
// runs a single goroutine over a min-heap of deadlines and sleeps until
// the nearest one, with a configurable max-sleep cap so clock steps and
// system sleep cannot stall it indefinitely. The cap doubles as the
// scheduling-slack bound: a task fires at most one cap interval after
// its deadline, and never before it.
//
// The scheduler holds no task state of its own. When a deadline
// arrives it invokes the registered onDue callback with the task id;
// the owner performs the atomic remove-from-store and dispatch, which
// is what keeps dispatch at-most-once.
package scheduler
