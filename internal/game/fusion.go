package game

import (
	"log"

	"github.com/rifqimaruf/We-are-Cooked/internal/catalog"
)

// fusionEvent is one confirmed match, collected during detection and applied
// afterwards. The two-phase split keeps the scan from mutating the very
// collections it iterates, and guarantees an order is never fulfilled twice
// nor a player consumed by two fusions in one pass.
type fusionEvent struct {
	recipe    catalog.Recipe
	cellX     int
	cellY     int
	playerIDs []string
	orderName string
}

// detectFusionsLocked scans the grid for co-located players on fusion
// stations whose combined ingredients satisfy an active order. Orders are
// tried in queue order, so the first-registered order wins ties, and at most
// one fusion fires per cell per tick.
func (s *State) detectFusionsLocked() []fusionEvent {
	cells := make(map[[2]int][]*Player)
	for _, p := range s.players {
		cx, cy := cellOf(p)
		cells[[2]int{cx, cy}] = append(cells[[2]int{cx, cy}], p)
	}

	claimed := make(map[string]bool)
	var events []fusionEvent

	for cell, group := range cells {
		if len(group) < 2 || !s.onFusionStationLocked(cell[0], cell[1]) {
			continue
		}

		// Bucket the cell's unclaimed players by carried ingredient.
		available := make(map[string][]*Player)
		free := 0
		for _, p := range group {
			if claimed[p.ID] {
				continue
			}
			available[p.Ingredient] = append(available[p.Ingredient], p)
			free++
		}
		if free < 2 {
			continue
		}

		for _, order := range s.orders {
			if order.Fulfilled {
				continue
			}

			// Greedy match: one distinct player per required ingredient unit.
			// Duplicates in the requirement consume multiple carriers of the
			// same ingredient.
			taken := make(map[string]int)
			var matched []*Player
			complete := true
			for _, required := range order.Ingredients {
				bucket := available[required]
				if taken[required] >= len(bucket) {
					complete = false
					break
				}
				matched = append(matched, bucket[taken[required]])
				taken[required]++
			}
			if !complete {
				continue
			}

			// Defensive re-check against the catalog before committing.
			names := make([]string, len(matched))
			ids := make([]string, len(matched))
			for i, p := range matched {
				names[i] = p.Ingredient
				ids[i] = p.ID
			}
			recipe, ok := s.catalog.Lookup(names)
			if !ok || recipe.Name != order.Name {
				continue
			}

			events = append(events, fusionEvent{
				recipe:    recipe,
				cellX:     cell[0],
				cellY:     cell[1],
				playerIDs: ids,
				orderName: order.Name,
			})
			order.Fulfilled = true
			for _, p := range matched {
				claimed[p.ID] = true
				// Pull the player out of this cell's pool so a second order
				// cannot also count them.
				bucket := available[p.Ingredient]
				for i, q := range bucket {
					if q.ID == p.ID {
						available[p.Ingredient] = append(bucket[:i], bucket[i+1:]...)
						break
					}
				}
			}
			break // one fusion per cell per tick
		}
	}
	return events
}

// applyFusionsLocked commits detected fusions: score, player consumption and
// respawn, order queue cleanup, and effect events for the clients.
func (s *State) applyFusionsLocked(events []fusionEvent) {
	if len(events) == 0 {
		s.dropFulfilledLocked()
		return
	}

	for _, ev := range events {
		s.score += ev.recipe.Price
		log.Printf("fusion: %s at (%d,%d) by %d players, +%d", ev.recipe.Name, ev.cellX, ev.cellY, len(ev.playerIDs), ev.recipe.Price)

		for _, id := range ev.playerIDs {
			prev := ""
			if p, ok := s.players[id]; ok {
				prev = p.Ingredient
				delete(s.players, id)
			}
			x, y := s.safeSpawnLocked()
			s.players[id] = &Player{
				ID:         id,
				Ingredient: s.pickIngredientLocked(prev),
				X:          x, Y: y,
				TargetX: x, TargetY: y,
			}
		}

		s.pushEventLocked("fusion", map[string]any{
			"recipe": ev.recipe.Name,
			"price":  ev.recipe.Price,
			"pos":    []int{ev.cellX, ev.cellY},
		})
	}

	s.dropFulfilledLocked()
}

// dropFulfilledLocked removes fulfilled orders and, if the queue emptied with
// players still in the round, regenerates immediately.
func (s *State) dropFulfilledLocked() {
	kept := s.orders[:0]
	for _, o := range s.orders {
		if !o.Fulfilled {
			kept = append(kept, o)
		}
	}
	s.orders = kept
	if len(s.orders) == 0 && len(s.players) > 0 {
		s.generateOrdersLocked(len(s.players))
	}
}

const safeSpawnRetries = 50

// safeSpawnLocked finds a respawn cell off every station footprint, falling
// back to the origin after the retry budget.
func (s *State) safeSpawnLocked() (float64, float64) {
	for attempt := 0; attempt < safeSpawnRetries; attempt++ {
		cx := s.rng.Intn(s.cfg.GridWidth)
		cy := s.rng.Intn(s.cfg.GridHeight)
		if !s.onAnyStationLocked(cx, cy) {
			return float64(cx), float64(cy)
		}
	}
	return 0, 0
}
