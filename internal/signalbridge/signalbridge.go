// Package signalbridge forwards terminal signals aimed at the wrapper
// process to a running backend child, per spec.md §4.6. It observes but
// never owns the child: install and cleanup are scoped to the lifetime of
// one Task Executor invocation.
package signalbridge

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// process is the narrow slice of *os.Process the bridge needs, so tests can
// fake it without spawning a real child.
type process interface {
	Signal(os.Signal) error
}

// ExitCodeForSignal maps a forwarded OS signal to the conventional
// 128+signum exit code, per spec.md §4.6. Signals with no conventional
// mapping fall back to 130 (the generic interrupted code).
func ExitCodeForSignal(sig os.Signal) int {
	switch sig {
	case syscall.SIGHUP:
		return 128 + 1
	case syscall.SIGINT, os.Interrupt:
		return 128 + 2
	case syscall.SIGQUIT:
		return 128 + 3
	case syscall.SIGTERM:
		return 128 + 15
	default:
		return 130
	}
}

// watchedSignals is the fixed set the bridge forwards: interrupt, terminate,
// and hangup where the platform supports it.
var watchedSignals = []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}

// Watch installs a signal handler for the lifetime of one execution,
// forwarding the first interrupt/terminate/hangup it observes to proc and
// invoking onSignal exactly once with it. Installation is idempotent in the
// sense spec.md §4.6 requires: each call owns an independent handler and
// channel, so concurrent executions never interfere with one another; the
// returned stop func removes this handler's registration from
// signal.Notify's global dispatch table without touching any other
// execution's handler.
//
// proc may be nil (e.g. spawn hasn't completed yet); the signal is then
// still observed and onSignal still fires, but nothing is forwarded.
func Watch(proc process, onSignal func(os.Signal)) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, watchedSignals...)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-ch:
			if proc != nil {
				_ = proc.Signal(sig)
			}
			if onSignal != nil {
				onSignal(sig)
			}
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}
