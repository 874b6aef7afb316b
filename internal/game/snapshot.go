package game

import (
	"time"

	"github.com/rifqimaruf/We-are-Cooked/internal/protocol"
)

// Snapshot serializes the whole state under the lock, so a snapshot is always
// internally consistent. Client identity and lobby fields are filled in by
// the hub; this covers everything the simulation owns.
func (s *State) Snapshot(now time.Time) protocol.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make(map[string]protocol.PlayerSnapshot, len(s.players))
	for id, p := range s.players {
		players[id] = protocol.PlayerSnapshot{
			Ingredient: p.Ingredient,
			Pos:        [2]float64{p.X, p.Y},
			TargetPos:  [2]float64{p.TargetX, p.TargetY},
		}
	}

	orders := make([]protocol.OrderSnapshot, 0, len(s.orders))
	for _, o := range s.orders {
		if o.Fulfilled {
			continue
		}
		orders = append(orders, protocol.OrderSnapshot{
			Name:        o.Name,
			Price:       o.Price,
			Ingredients: append([]string(nil), o.Ingredients...),
		})
	}

	stations := make([][2]int, 0, len(s.fusionStations))
	for _, st := range s.fusionStations {
		stations = append(stations, [2]int{st.X, st.Y})
	}

	var doorprize *[2]int
	if s.doorprize != nil {
		doorprize = &[2]int{s.doorprize.X, s.doorprize.Y}
	}

	events := make([]protocol.VisualEvent, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, protocol.VisualEvent{ID: e.id, Type: e.kind, Data: e.data})
	}

	return protocol.Snapshot{
		Players:                players,
		Orders:                 orders,
		Score:                  s.score,
		Timer:                  s.timer,
		FusionStations:         stations,
		EnterStation:           [2]int{s.enterStation.X, s.enterStation.Y},
		DoorprizeStation:       doorprize,
		DoorprizeRemainingTime: s.doorprizeRemainingLocked(now),
		Outcome:                s.outcome,
		VisualEvents:           events,
	}
}
