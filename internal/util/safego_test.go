// safego_test.go — Tests for SafeGo panic recovery wrapper.
package util

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSafeGoNormalExecution(t *testing.T) {
	var done sync.WaitGroup
	done.Add(1)
	executed := false

	SafeGo(zap.NewNop(), func() {
		executed = true
		done.Done()
	})

	done.Wait()
	if !executed {
		t.Error("SafeGo did not execute the function")
	}
}

// waitForLogs polls until the observer has seen at least one entry.
func waitForLogs(t *testing.T, logs *observer.ObservedLogs) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if logs.Len() > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("SafeGo did not log the panic within timeout")
}

func TestSafeGoPanicRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	SafeGo(zap.New(core), func() {
		panic("test panic")
	})

	waitForLogs(t, logs)
	entry := logs.All()[0]
	if entry.Message != "panic in background goroutine" {
		t.Fatalf("logged message = %q", entry.Message)
	}
}

func TestSafeGoNilPanicRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	SafeGo(zap.New(core), func() {
		panic(nil)
	})

	waitForLogs(t, logs)
}

func TestSafeGoNilLogger(t *testing.T) {
	recovered := make(chan struct{})

	SafeGo(nil, func() {
		defer close(recovered)
		panic("still recovered")
	})

	select {
	case <-recovered:
	case <-time.After(2 * time.Second):
		t.Fatal("SafeGo goroutine did not recover from panic within timeout")
	}
}
