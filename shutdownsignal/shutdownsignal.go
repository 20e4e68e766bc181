// Package shutdownsignal translates external termination signals
// (SIGINT, SIGTERM) into a single call to a Shutdowner's Shutdown method,
// mirroring the engine's own signal-handling note: keep the handler
// minimal, hop to a normal goroutine, call Shutdown from there.
package shutdownsignal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Shutdowner is the narrow view of the Manager this package needs.
type Shutdowner interface {
	Shutdown()
}

// Watch installs a signal handler for SIGINT and SIGTERM that calls
// target.Shutdown() exactly once, even if the signal arrives more than
// once. It returns a cancel function that stops watching; ctx cancellation
// also stops watching.
func Watch(ctx context.Context, target Shutdowner) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	var once sync.Once
	done := make(chan struct{})

	go func() {
		select {
		case <-ch:
			once.Do(target.Shutdown)
		case <-ctx.Done():
		case <-done:
		}
		signal.Stop(ch)
	}()

	return func() { close(done) }
}
