package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rifqimaruf/We-are-Cooked/internal/catalog"
	"github.com/rifqimaruf/We-are-Cooked/internal/config"
)

func TestLoopFinalizesWhenTimerExpires(t *testing.T) {
	cfg := config.Default()
	cfg.RoundSeconds = 0
	s := testStateWith(cfg, catalog.Seed(), 50)
	s.Begin(time.Now(), []string{"a", "b"})

	var broadcasts atomic.Int32
	finished := make(chan struct{})
	l := StartLoop(s, func() { broadcasts.Add(1) }, func() { close(finished) })

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not finish an already-expired round")
	}
	<-l.done

	if got := s.Timer(); got != 0 {
		t.Fatalf("expected timer 0 after finish, got %d", got)
	}
	if got := s.Outcome(); got != OutcomeLose {
		t.Fatalf("expected lose outcome at zero score, got %q", got)
	}
	if broadcasts.Load() == 0 {
		t.Fatal("the final state must be broadcast before the loop exits")
	}
}

func TestLoopStopIsCooperative(t *testing.T) {
	s := testState(51)
	s.Begin(time.Now(), []string{"a", "b"})

	l := StartLoop(s, func() {}, nil)
	done := make(chan struct{})
	go func() {
		l.Stop()
		l.Stop() // idempotent
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return within its bound")
	}

	select {
	case <-l.done:
	case <-time.After(time.Second):
		t.Fatal("loop goroutine did not exit after Stop")
	}
}
