package game

import (
	"time"

	"github.com/google/uuid"
)

// Station is a fixed-footprint zone anchored at its top-left cell. All
// stations share the configured footprint size.
type Station struct {
	X, Y int
}

// contains reports whether a grid cell falls inside the footprint, inclusive
// of the top-left corner, exclusive of top-left plus size.
func (st Station) contains(cx, cy int, size int) bool {
	return cx >= st.X && cx < st.X+size && cy >= st.Y && cy < st.Y+size
}

func (st Station) overlaps(other Station, size int) bool {
	return st.X < other.X+size && other.X < st.X+size &&
		st.Y < other.Y+size && other.Y < st.Y+size
}

const placementRetries = 50

// initStationsLocked randomizes the round's persistent layout: the configured
// number of fusion stations plus one ingredient-reassignment station, none
// overlapping.
func (s *State) initStationsLocked() {
	s.fusionStations = s.fusionStations[:0]
	var placed []Station
	for i := 0; i < s.cfg.FusionStations; i++ {
		st := s.placeStationLocked(placed)
		s.fusionStations = append(s.fusionStations, st)
		placed = append(placed, st)
	}
	s.enterStation = s.placeStationLocked(placed)

	s.doorprize = nil
	s.doorprizeVisited = make(map[string]bool)
}

// placeStationLocked finds a spot whose footprint avoids the already-placed
// stations. After the retry budget it gives up and returns the origin rather
// than spinning forever.
func (s *State) placeStationLocked(placed []Station) Station {
	maxX := s.cfg.GridWidth - s.cfg.StationSize
	maxY := s.cfg.GridHeight - s.cfg.StationSize
	for attempt := 0; attempt < placementRetries; attempt++ {
		st := Station{X: s.rng.Intn(maxX + 1), Y: s.rng.Intn(maxY + 1)}
		clear := true
		for _, other := range placed {
			if st.overlaps(other, s.cfg.StationSize) {
				clear = false
				break
			}
		}
		if clear {
			return st
		}
	}
	return Station{X: 0, Y: 0}
}

// onFusionStationLocked reports whether the cell lies on any fusion station.
func (s *State) onFusionStationLocked(cx, cy int) bool {
	for _, st := range s.fusionStations {
		if st.contains(cx, cy, s.cfg.StationSize) {
			return true
		}
	}
	return false
}

// onAnyStationLocked covers fusion, reassignment and the active doorprize.
// Used to keep respawn positions off every footprint.
func (s *State) onAnyStationLocked(cx, cy int) bool {
	if s.onFusionStationLocked(cx, cy) {
		return true
	}
	if s.enterStation.contains(cx, cy, s.cfg.StationSize) {
		return true
	}
	if s.doorprize != nil && s.doorprize.contains(cx, cy, s.cfg.StationSize) {
		return true
	}
	return false
}

// advanceDoorprizeLocked drives the bonus-station state machine:
// absent -> active after the randomized delay, active -> absent after the
// fixed duration with the next delay rescheduled. While active, each player's
// first visit in this activation grants a one-time random bonus.
func (s *State) advanceDoorprizeLocked(now time.Time) {
	if s.doorprize == nil {
		if now.Sub(s.doorprizeIdleSince) >= s.nextDoorprizeDelay {
			st := s.placeStationLocked(append(append([]Station(nil), s.fusionStations...), s.enterStation))
			s.doorprize = &st
			s.doorprizeActiveAt = now
			s.doorprizeVisited = make(map[string]bool)
		}
		return
	}

	if now.Sub(s.doorprizeActiveAt) >= time.Duration(s.cfg.DoorprizeDuration)*time.Second {
		s.doorprize = nil
		s.doorprizeVisited = make(map[string]bool)
		s.doorprizeIdleSince = now
		s.nextDoorprizeDelay = s.randomSecondsLocked(s.cfg.DoorprizeSpawnMin, s.cfg.DoorprizeSpawnMax)
		return
	}

	for id, p := range s.players {
		if s.doorprizeVisited[id] {
			continue
		}
		cx, cy := cellOf(p)
		if !s.doorprize.contains(cx, cy, s.cfg.StationSize) {
			continue
		}
		bonus := s.cfg.DoorprizeScoreMin + s.rng.Intn(s.cfg.DoorprizeScoreMax-s.cfg.DoorprizeScoreMin+1)
		s.score += bonus
		s.doorprizeVisited[id] = true
		s.pushEventLocked("doorprize", map[string]any{
			"player_id": id,
			"bonus":     bonus,
		})
	}
}

// doorprizeRemainingLocked returns the active window's remaining seconds,
// zero when absent.
func (s *State) doorprizeRemainingLocked(now time.Time) float64 {
	if s.doorprize == nil {
		return 0
	}
	remaining := time.Duration(s.cfg.DoorprizeDuration)*time.Second - now.Sub(s.doorprizeActiveAt)
	if remaining < 0 {
		return 0
	}
	return remaining.Seconds()
}

const eventTTL = 5 * time.Second

// visualEvent pairs a wire event with its creation time for expiry.
type visualEvent struct {
	id   string
	kind string
	data map[string]any
	at   time.Time
}

// pushEventLocked queues a client-side effect hint. Events are informational
// and expire after a few seconds so late pollers don't replay stale effects.
func (s *State) pushEventLocked(kind string, data map[string]any) {
	s.events = append(s.events, visualEvent{
		id:   uuid.NewString()[:8],
		kind: kind,
		data: data,
		at:   time.Now(),
	})
}

func (s *State) expireEventsLocked(now time.Time) {
	kept := s.events[:0]
	for _, e := range s.events {
		if now.Sub(e.at) < eventTTL {
			kept = append(kept, e)
		}
	}
	s.events = kept
}
