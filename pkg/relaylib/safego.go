package relaylib

import (
	"runtime/debug"

	"github.com/relayq/relayq/pkg/logger"
)

// SafeGo runs fn in a goroutine with panic recovery. A panic inside one
// dispatch must never take down the scheduler loop or other handlers; it
// is logged with a stack trace and the goroutine exits.
func SafeGo(l logger.Logger, context string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if l != nil {
					l.Error("panic [%s]: %v\n%s", context, r, debug.Stack())
				}
			}
		}()
		fn()
	}()
}
