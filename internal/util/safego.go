// safego.go — Panic-recovering goroutine launcher.
package util

import (
	"runtime/debug"

	"go.uber.org/zap"
)

// SafeGo launches fn in a goroutine with deferred panic recovery. A panic
// is logged and swallowed: background work (the metrics endpoint, sink
// publishes) should be survivable so the main analysis pass still
// completes. A nil logger is replaced with a no-op one.
func SafeGo(log *zap.Logger, fn func()) {
	if log == nil {
		log = zap.NewNop()
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in background goroutine",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
			}
		}()
		fn()
	}()
}
