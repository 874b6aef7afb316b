package game

import (
	"testing"
	"time"

	"github.com/rifqimaruf/We-are-Cooked/internal/catalog"
	"github.com/rifqimaruf/We-are-Cooked/internal/config"
)

func TestFusionFulfillsMatchingOrder(t *testing.T) {
	s := testState(1)
	now := time.Now()
	setLayout(s, []Station{{X: 2, Y: 2}}, Station{X: 10, Y: 8})
	armRound(s, now, 300)

	cat := catalog.Seed()
	nigiri := mustRecipe(cat, "Salmon", "Rice")
	onigiri := mustRecipe(cat, "Rice", "Seaweed")
	setOrders(s, nigiri, onigiri)

	placePlayer(s, "p1", "Salmon", 2.4, 2.7)
	placePlayer(s, "p2", "Rice", 2.9, 2.1)

	s.Tick(now)

	if got := s.Score(); got != nigiri.Price {
		t.Fatalf("expected score %d after fusion, got %d", nigiri.Price, got)
	}
	orders := s.Orders()
	if len(orders) != 1 || orders[0].Name != onigiri.Name {
		t.Fatalf("expected only %s left in the queue, got %+v", onigiri.Name, orders)
	}

	for _, id := range []string{"p1", "p2"} {
		p, ok := playerView(s, id)
		if !ok {
			t.Fatalf("player %s should respawn after fusing", id)
		}
		s.mu.Lock()
		onStation := s.onAnyStationLocked(int(p.X), int(p.Y))
		s.mu.Unlock()
		if onStation {
			t.Fatalf("player %s respawned on a station at (%v,%v)", id, p.X, p.Y)
		}
	}
	if p, _ := playerView(s, "p1"); p.Ingredient == "Salmon" {
		t.Fatal("respawned player kept its consumed ingredient")
	}
	if p, _ := playerView(s, "p2"); p.Ingredient == "Rice" {
		t.Fatal("respawned player kept its consumed ingredient")
	}
}

func TestFusionRequiresFusionStation(t *testing.T) {
	s := testState(2)
	now := time.Now()
	setLayout(s, []Station{{X: 2, Y: 2}}, Station{X: 10, Y: 8})
	armRound(s, now, 300)

	cat := catalog.Seed()
	setOrders(s, mustRecipe(cat, "Salmon", "Rice"))

	// Co-located but on plain floor.
	placePlayer(s, "p1", "Salmon", 6.2, 6.5)
	placePlayer(s, "p2", "Rice", 6.8, 6.1)

	s.Tick(now)

	if got := s.Score(); got != 0 {
		t.Fatalf("expected no score off-station, got %d", got)
	}
	if p, _ := playerView(s, "p1"); p.Ingredient != "Salmon" {
		t.Fatal("player should be untouched without a fusion")
	}
}

func TestFusionOrderNeverFulfilledTwice(t *testing.T) {
	s := testState(3)
	now := time.Now()
	setLayout(s, []Station{{X: 2, Y: 2}, {X: 14, Y: 6}}, Station{X: 20, Y: 0})
	armRound(s, now, 300)

	cat := catalog.Seed()
	nigiri := mustRecipe(cat, "Salmon", "Rice")
	onigiri := mustRecipe(cat, "Rice", "Seaweed")
	setOrders(s, nigiri, onigiri)

	// Two cells could each satisfy the same order this tick.
	placePlayer(s, "p1", "Salmon", 2.1, 2.1)
	placePlayer(s, "p2", "Rice", 2.6, 2.4)
	placePlayer(s, "p3", "Salmon", 14.1, 6.1)
	placePlayer(s, "p4", "Rice", 14.6, 6.4)

	s.Tick(now)

	if got := s.Score(); got != nigiri.Price {
		t.Fatalf("one order must pay out exactly once, got score %d", got)
	}
}

func TestFusionOnePerCellPerTick(t *testing.T) {
	s := testState(4)
	now := time.Now()
	setLayout(s, []Station{{X: 2, Y: 2}}, Station{X: 10, Y: 8})
	armRound(s, now, 300)

	cat := catalog.Seed()
	sashimi := mustRecipe(cat, "Salmon")
	shrimp := mustRecipe(cat, "Shrimp")
	setOrders(s, sashimi, shrimp)

	// Both single-ingredient orders are satisfiable in the same cell, but only
	// the first in queue order may fire this tick.
	placePlayer(s, "p1", "Salmon", 2.2, 2.2)
	placePlayer(s, "p2", "Shrimp", 2.7, 2.7)

	s.Tick(now)

	if got := s.Score(); got != sashimi.Price {
		t.Fatalf("expected only the first order (%d) this tick, got score %d", sashimi.Price, got)
	}
	orders := s.Orders()
	if len(orders) != 1 || orders[0].Name != shrimp.Name {
		t.Fatalf("expected %s still queued, got %+v", shrimp.Name, orders)
	}
}

func TestFusionDuplicateIngredientNeedsDistinctCarriers(t *testing.T) {
	cat := catalog.New([]catalog.Recipe{
		{Name: "Double Rice", Price: 400, Tier: 2, Ingredients: []string{"Rice", "Rice"}},
	}, []string{"Rice", "Salmon"})

	cfg := config.Default()
	s := testStateWith(cfg, cat, 5)
	now := time.Now()
	setLayout(s, []Station{{X: 2, Y: 2}}, Station{X: 10, Y: 8})
	armRound(s, now, 300)
	setOrders(s, mustRecipe(cat, "Rice", "Rice"))

	// One Rice carrier is not enough for a {Rice, Rice} requirement.
	placePlayer(s, "p1", "Rice", 2.2, 2.2)
	placePlayer(s, "p2", "Salmon", 2.7, 2.7)
	s.Tick(now)
	if got := s.Score(); got != 0 {
		t.Fatalf("a duplicated requirement must not match a single carrier, got score %d", got)
	}

	placePlayer(s, "p3", "Rice", 2.5, 2.5)
	s.Tick(now)
	if got := s.Score(); got != 400 {
		t.Fatalf("two Rice carriers should fuse Double Rice, got score %d", got)
	}
}

func TestFusionEmptiedQueueRegenerates(t *testing.T) {
	s := testState(6)
	now := time.Now()
	setLayout(s, []Station{{X: 2, Y: 2}}, Station{X: 10, Y: 8})
	armRound(s, now, 300)

	cat := catalog.Seed()
	setOrders(s, mustRecipe(cat, "Salmon", "Rice"))

	placePlayer(s, "p1", "Salmon", 2.2, 2.2)
	placePlayer(s, "p2", "Rice", 2.7, 2.7)

	s.Tick(now)

	if len(s.Orders()) == 0 {
		t.Fatal("queue must regenerate immediately when fulfilled down to empty")
	}
}
