package game

import (
	"testing"
	"time"

	"github.com/rifqimaruf/We-are-Cooked/internal/config"
)

func TestStationContainsEdges(t *testing.T) {
	st := Station{X: 2, Y: 3}
	size := 2

	cases := []struct {
		cx, cy int
		want   bool
	}{
		{2, 3, true},
		{3, 4, true},
		{3, 3, true},
		{4, 3, false},
		{2, 5, false},
		{1, 3, false},
	}
	for _, tc := range cases {
		if got := st.contains(tc.cx, tc.cy, size); got != tc.want {
			t.Fatalf("contains(%d,%d) = %v, want %v", tc.cx, tc.cy, got, tc.want)
		}
	}
}

func TestStationLayoutNeverOverlaps(t *testing.T) {
	size := config.Default().StationSize
	for seed := int64(0); seed < 100; seed++ {
		s := testState(seed)
		s.mu.Lock()
		s.initStationsLocked()
		all := append(append([]Station(nil), s.fusionStations...), s.enterStation)
		s.mu.Unlock()

		for i := 0; i < len(all); i++ {
			for j := i + 1; j < len(all); j++ {
				if all[i].overlaps(all[j], size) {
					t.Fatalf("seed %d: stations %v and %v overlap", seed, all[i], all[j])
				}
			}
		}
	}
}

func TestStationPlacementStaysInGrid(t *testing.T) {
	cfg := config.Default()
	for seed := int64(0); seed < 50; seed++ {
		s := testState(seed)
		s.mu.Lock()
		s.initStationsLocked()
		all := append(append([]Station(nil), s.fusionStations...), s.enterStation)
		s.mu.Unlock()

		for _, st := range all {
			if st.X < 0 || st.X+cfg.StationSize > cfg.GridWidth ||
				st.Y < 0 || st.Y+cfg.StationSize > cfg.GridHeight {
				t.Fatalf("seed %d: station %v exceeds the grid", seed, st)
			}
		}
	}
}

func TestDoorprizeSpawnsAfterDelay(t *testing.T) {
	s := testState(20)
	now := time.Now()
	setLayout(s, []Station{{X: 2, Y: 2}}, Station{X: 10, Y: 8})

	s.mu.Lock()
	s.doorprizeIdleSince = now
	s.nextDoorprizeDelay = 10 * time.Second
	s.advanceDoorprizeLocked(now.Add(5 * time.Second))
	early := s.doorprize
	s.advanceDoorprizeLocked(now.Add(11 * time.Second))
	late := s.doorprize
	s.mu.Unlock()

	if early != nil {
		t.Fatal("doorprize must not spawn before its delay")
	}
	if late == nil {
		t.Fatal("doorprize must spawn once the delay elapses")
	}
}

func TestDoorprizeAwardsOncePerPlayer(t *testing.T) {
	s := testState(21)
	now := time.Now()
	setLayout(s, []Station{{X: 2, Y: 2}}, Station{X: 20, Y: 8})
	placePlayer(s, "p1", "Rice", 5.5, 5.5)

	s.mu.Lock()
	st := Station{X: 5, Y: 5}
	s.doorprize = &st
	s.doorprizeActiveAt = now
	s.advanceDoorprizeLocked(now)
	first := s.score
	s.advanceDoorprizeLocked(now.Add(time.Second))
	second := s.score
	s.mu.Unlock()

	cfg := config.Default()
	if first < cfg.DoorprizeScoreMin || first > cfg.DoorprizeScoreMax {
		t.Fatalf("bonus %d outside configured range [%d,%d]", first, cfg.DoorprizeScoreMin, cfg.DoorprizeScoreMax)
	}
	if second != first {
		t.Fatalf("a repeat visit must award nothing, score went %d -> %d", first, second)
	}
}

func TestDoorprizeExpiresAndReschedules(t *testing.T) {
	s := testState(22)
	now := time.Now()
	setLayout(s, []Station{{X: 2, Y: 2}}, Station{X: 20, Y: 8})

	duration := time.Duration(config.Default().DoorprizeDuration) * time.Second

	s.mu.Lock()
	st := Station{X: 5, Y: 5}
	s.doorprize = &st
	s.doorprizeActiveAt = now
	s.doorprizeVisited["p1"] = true
	s.advanceDoorprizeLocked(now.Add(duration))
	gone := s.doorprize
	visited := len(s.doorprizeVisited)
	delay := s.nextDoorprizeDelay
	s.mu.Unlock()

	if gone != nil {
		t.Fatal("doorprize must despawn after its duration")
	}
	if visited != 0 {
		t.Fatal("visited set must reset for the next activation")
	}
	min := time.Duration(config.Default().DoorprizeSpawnMin) * time.Second
	max := time.Duration(config.Default().DoorprizeSpawnMax) * time.Second
	if delay < min || delay > max {
		t.Fatalf("next spawn delay %v outside [%v,%v]", delay, min, max)
	}
}

func TestDoorprizeRemainingTime(t *testing.T) {
	s := testState(23)
	now := time.Now()

	s.mu.Lock()
	if got := s.doorprizeRemainingLocked(now); got != 0 {
		t.Fatalf("absent doorprize must report 0 remaining, got %v", got)
	}
	st := Station{X: 5, Y: 5}
	s.doorprize = &st
	s.doorprizeActiveAt = now
	got := s.doorprizeRemainingLocked(now.Add(time.Second))
	s.mu.Unlock()

	want := float64(config.Default().DoorprizeDuration - 1)
	if got != want {
		t.Fatalf("expected %v seconds remaining, got %v", want, got)
	}
}

func TestVisualEventsExpire(t *testing.T) {
	s := testState(24)
	s.mu.Lock()
	s.pushEventLocked("fusion", map[string]any{"recipe": "Onigiri"})
	s.expireEventsLocked(time.Now())
	fresh := len(s.events)
	s.expireEventsLocked(time.Now().Add(eventTTL + time.Second))
	stale := len(s.events)
	s.mu.Unlock()

	if fresh != 1 {
		t.Fatalf("fresh event must survive expiry, got %d events", fresh)
	}
	if stale != 0 {
		t.Fatalf("event older than the TTL must be dropped, got %d events", stale)
	}
}

func TestSafeSpawnAvoidsStations(t *testing.T) {
	s := testState(25)
	setLayout(s, []Station{{X: 2, Y: 2}, {X: 14, Y: 6}}, Station{X: 20, Y: 0})

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < 200; i++ {
		x, y := s.safeSpawnLocked()
		if s.onAnyStationLocked(int(x), int(y)) {
			t.Fatalf("spawn %d landed on a station at (%v,%v)", i, x, y)
		}
	}
}
