package game

import (
	"math/rand"
	"time"

	"github.com/rifqimaruf/We-are-Cooked/internal/catalog"
	"github.com/rifqimaruf/We-are-Cooked/internal/config"
)

// Shared white-box fixtures: deterministic rng, hand-placed stations and
// players so matching scenarios don't depend on layout randomization.

func testState(seed int64) *State {
	return testStateWith(config.Default(), catalog.Seed(), seed)
}

func testStateWith(cfg config.Config, cat *catalog.Catalog, seed int64) *State {
	return New(cfg, cat, rand.New(rand.NewSource(seed)))
}

// armRound arms the timer and pushes the interval spawners far into the
// future, so a tick exercises only the systems a test stages explicitly.
func armRound(s *State, now time.Time, seconds int) {
	s.mu.Lock()
	s.roundEnd = now.Add(time.Duration(seconds) * time.Second)
	s.timer = seconds
	s.lastOrderSpawn = now
	s.nextOrderDelay = time.Hour
	s.doorprizeIdleSince = now
	s.nextDoorprizeDelay = time.Hour
	s.mu.Unlock()
}

func setLayout(s *State, fusion []Station, enter Station) {
	s.mu.Lock()
	s.fusionStations = append([]Station(nil), fusion...)
	s.enterStation = enter
	s.mu.Unlock()
}

func placePlayer(s *State, id, ingredient string, x, y float64) {
	s.mu.Lock()
	s.players[id] = &Player{ID: id, Ingredient: ingredient, X: x, Y: y, TargetX: x, TargetY: y}
	s.mu.Unlock()
}

func setOrders(s *State, recipes ...catalog.Recipe) {
	s.mu.Lock()
	s.orders = nil
	for _, r := range recipes {
		s.orders = append(s.orders, &Order{
			Name:        r.Name,
			Price:       r.Price,
			Ingredients: append([]string(nil), r.Ingredients...),
		})
	}
	s.mu.Unlock()
}

func mustRecipe(cat *catalog.Catalog, ingredients ...string) catalog.Recipe {
	r, ok := cat.Lookup(ingredients)
	if !ok {
		panic("fixture recipe missing from catalog")
	}
	return r
}

func playerView(s *State, id string) (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}
