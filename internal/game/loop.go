package game

import (
	"log"
	"runtime/debug"
	"sync"
	"time"
)

// Loop drives one round: a polling goroutine that advances the timer, runs
// fusion detection, the doorprize machine and order replenishment each tick,
// and triggers broadcasts at a coarser cadence. It terminates on its own when
// the timer reaches zero, or cooperatively via Stop.
type Loop struct {
	state     *State
	tick      time.Duration
	cadence   time.Duration
	broadcast func()
	onFinish  func()

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartLoop arms and starts the round loop. broadcast is invoked at the
// snapshot cadence; onFinish once, after the final broadcast at timer zero.
func StartLoop(s *State, broadcast, onFinish func()) *Loop {
	l := &Loop{
		state:     s,
		tick:      s.cfg.TickInterval,
		cadence:   s.cfg.BroadcastInterval,
		broadcast: broadcast,
		onFinish:  onFinish,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in round loop: %v\nStack trace:\n%s", r, debug.Stack())
		}
	}()

	log.Printf("round loop started (%d seconds)", l.state.Timer())
	var lastBroadcast time.Time

	for {
		select {
		case <-l.stop:
			log.Println("round loop stopped")
			return
		default:
		}

		now := time.Now()
		remaining := l.state.Tick(now)

		if now.Sub(lastBroadcast) >= l.cadence {
			l.broadcast()
			lastBroadcast = now
		}

		if remaining <= 0 {
			l.state.Finalize()
			l.broadcast()
			log.Printf("round finished: score=%d outcome=%s", l.state.Score(), l.state.Outcome())
			if l.onFinish != nil {
				l.onFinish()
			}
			return
		}

		time.Sleep(l.tick)
	}
}

const stopTimeout = time.Second

// Stop signals the loop and waits up to a bounded timeout for it to exit. A
// loop that does not stop in time is abandoned rather than blocking shutdown.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	select {
	case <-l.done:
	case <-time.After(stopTimeout):
		log.Printf("round loop did not stop within %v, abandoning", stopTimeout)
	}
}
