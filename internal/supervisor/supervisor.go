// Package supervisor runs long-lived goroutines so that a panic is logged
// instead of silently killing the process, and optionally ends the process.
package supervisor

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
)

type Policy struct {
	// ExitOnPanic terminates the process after logging a panic.
	ExitOnPanic bool
}

type Supervisor struct {
	log    *slog.Logger
	policy Policy
	exit   func(code int)

	wg sync.WaitGroup
}

func New(log *slog.Logger, policy Policy) *Supervisor {
	return &Supervisor{log: log, policy: policy, exit: os.Exit}
}

// Go runs fn in its own goroutine. A returned error is logged; a panic is
// logged with its stack and, under ExitOnPanic, exits with status 1.
func (s *Supervisor) Go(name string, fn func() error) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer s.recover(name)

		if err := fn(); err != nil {
			s.log.Error("supervised task failed", "task", name, "err", err)
		}
	}()
}

// Wait blocks until every task started with Go has returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

func (s *Supervisor) recover(name string) {
	r := recover()
	if r == nil {
		return
	}

	s.log.Error("supervised task panicked",
		"task", name,
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	)

	if s.policy.ExitOnPanic {
		s.exit(1)
	}
}
