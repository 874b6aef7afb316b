package game

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rifqimaruf/We-are-Cooked/internal/catalog"
	"github.com/rifqimaruf/We-are-Cooked/internal/config"
	"github.com/rifqimaruf/We-are-Cooked/internal/protocol"
)

// Player is one connected chef on the grid. Position is continuous; station
// checks truncate to the integer cell.
type Player struct {
	ID         string
	Ingredient string
	X, Y       float64
	TargetX    float64
	TargetY    float64
}

// Order is a wanted recipe. Fulfilled orders are dropped from the queue at
// the end of the fusion pass, never matched twice.
type Order struct {
	Name        string
	Price       int
	Ingredients []string
	Fulfilled   bool
}

// Outcomes recorded when the round timer reaches zero.
const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
)

// State is the aggregate root: players, orders, stations, score and timer,
// all guarded by one mutex. Every mutating operation and every snapshot read
// takes the lock, so broadcasts never observe a half-applied fusion.
type State struct {
	mu      sync.Mutex
	cfg     config.Config
	catalog *catalog.Catalog
	rng     *rand.Rand

	players map[string]*Player
	orders  []*Order
	score   int
	timer   int
	outcome string

	fusionStations []Station
	enterStation   Station

	doorprize          *Station
	doorprizeActiveAt  time.Time
	doorprizeIdleSince time.Time
	nextDoorprizeDelay time.Duration
	doorprizeVisited   map[string]bool

	lastOrderSpawn time.Time
	nextOrderDelay time.Duration

	roundEnd time.Time

	events []visualEvent
}

// New builds an empty (lobby) state. Begin arms it for a round.
func New(cfg config.Config, cat *catalog.Catalog, rng *rand.Rand) *State {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &State{
		cfg:              cfg,
		catalog:          cat,
		rng:              rng,
		players:          make(map[string]*Player),
		timer:            cfg.RoundSeconds,
		doorprizeVisited: make(map[string]bool),
	}
}

// Begin arms the state for a new round: randomized station layout, an initial
// order queue sized to the roster, players spawned with ingredients drawn
// from the pending orders' requirements, and spawn timers started.
func (s *State) Begin(now time.Time, clientIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initStationsLocked()
	s.generateOrdersLocked(len(clientIDs))
	s.lastOrderSpawn = now
	s.nextOrderDelay = s.randomSecondsLocked(s.cfg.OrderIntervalMin, s.cfg.OrderIntervalMax)

	// First doorprize spawns one full delay after round start.
	s.doorprizeIdleSince = now
	s.nextDoorprizeDelay = s.randomSecondsLocked(s.cfg.DoorprizeSpawnMin, s.cfg.DoorprizeSpawnMax)

	s.assignPlayersLocked(clientIDs)

	s.roundEnd = now.Add(time.Duration(s.cfg.RoundSeconds) * time.Second)
	s.timer = s.cfg.RoundSeconds
}

// assignPlayersLocked spawns one player per client. Ingredients come from the
// shuffled pool of order requirements first, so the opening queue is always
// winnable, then uniformly from the full set.
func (s *State) assignPlayersLocked(clientIDs []string) {
	var pool []string
	for _, o := range s.orders {
		pool = append(pool, o.Ingredients...)
	}
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	ids := append([]string(nil), clientIDs...)
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	all := s.catalog.Ingredients()
	for _, id := range ids {
		var ingredient string
		if len(pool) > 0 {
			ingredient, pool = pool[0], pool[1:]
		} else {
			ingredient = all[s.rng.Intn(len(all))]
		}
		x := float64(s.rng.Intn(s.cfg.GridWidth))
		y := float64(s.rng.Intn(s.cfg.GridHeight))
		s.players[id] = &Player{ID: id, Ingredient: ingredient, X: x, Y: y, TargetX: x, TargetY: y}
	}
}

// AddPlayer registers a player mid-round (late join). Ingredient biases
// toward current order needs the same way respawns do.
func (s *State) AddPlayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	x := float64(s.rng.Intn(s.cfg.GridWidth))
	y := float64(s.rng.Intn(s.cfg.GridHeight))
	s.players[id] = &Player{
		ID:         id,
		Ingredient: s.pickIngredientLocked(""),
		X:          x, Y: y,
		TargetX: x, TargetY: y,
	}
}

// RemovePlayer drops a player. Removing an unknown id is a no-op.
func (s *State) RemovePlayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	delete(s.doorprizeVisited, id)
}

// PlayerCount returns the number of live players.
func (s *State) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// MovePlayer shifts a player one speed step and clamps to the grid. Moving an
// unknown or already-consumed id is a no-op.
func (s *State) MovePlayer(id, direction string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return
	}
	x, y := p.X, p.Y
	switch direction {
	case protocol.DirUp:
		y -= s.cfg.PlayerSpeed
	case protocol.DirDown:
		y += s.cfg.PlayerSpeed
	case protocol.DirLeft:
		x -= s.cfg.PlayerSpeed
	case protocol.DirRight:
		x += s.cfg.PlayerSpeed
	default:
		return
	}
	p.X = clamp(x, 0, float64(s.cfg.GridWidth-1))
	p.Y = clamp(y, 0, float64(s.cfg.GridHeight-1))
	p.TargetX, p.TargetY = p.X, p.Y
}

// CanChangeIngredient reports whether the player currently stands on the
// ingredient-reassignment station.
func (s *State) CanChangeIngredient(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return false
	}
	cx, cy := cellOf(p)
	return s.enterStation.contains(cx, cy, s.cfg.StationSize)
}

// ChangeIngredient swaps the player's ingredient for a random different one.
// Independent of the fusion and order systems.
func (s *State) ChangeIngredient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return
	}
	old := p.Ingredient
	p.Ingredient = s.randomIngredientLocked(old)
	s.pushEventLocked("ingredient_change", map[string]any{
		"player_id":      id,
		"old_ingredient": old,
		"new_ingredient": p.Ingredient,
	})
}

// Timer returns the remaining round seconds.
func (s *State) Timer() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer
}

// Score returns the cumulative round score.
func (s *State) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Outcome returns the recorded end-of-round result, empty while playing.
func (s *State) Outcome() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Tick advances one simulation step: timer, fusion detection and processing,
// doorprize lifecycle, and interval-based order replenishment. Returns the
// remaining whole seconds; zero means the round is over and the caller should
// finalize.
func (s *State) Tick(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := int(math.Ceil(s.roundEnd.Sub(now).Seconds()))
	if remaining < 0 {
		remaining = 0
	}
	s.timer = remaining

	events := s.detectFusionsLocked()
	s.applyFusionsLocked(events)

	s.advanceDoorprizeLocked(now)

	if now.Sub(s.lastOrderSpawn) >= s.nextOrderDelay && len(s.players) > 0 {
		s.generateOrdersLocked(len(s.players))
		s.lastOrderSpawn = now
		s.nextOrderDelay = s.randomSecondsLocked(s.cfg.OrderIntervalMin, s.cfg.OrderIntervalMax)
	}

	s.expireEventsLocked(now)
	return remaining
}

// Finalize records the score-vs-threshold outcome once the timer hits zero.
func (s *State) Finalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = 0
	if s.score >= s.cfg.WinScoreThreshold {
		s.outcome = OutcomeWin
	} else {
		s.outcome = OutcomeLose
	}
}

// pickIngredientLocked draws an ingredient for a (re)spawned player: with the
// configured probability, uniform among the distinct ingredients still needed
// by unfulfilled orders (excluding the previous one); otherwise uniform over
// the full set excluding the previous one.
func (s *State) pickIngredientLocked(exclude string) string {
	if s.rng.Float64() < s.cfg.NeededIngredientBias {
		needed := make(map[string]bool)
		for _, o := range s.orders {
			if o.Fulfilled {
				continue
			}
			for _, ing := range o.Ingredients {
				if ing != exclude {
					needed[ing] = true
				}
			}
		}
		if len(needed) > 0 {
			names := make([]string, 0, len(needed))
			for ing := range needed {
				names = append(names, ing)
			}
			sort.Strings(names)
			return names[s.rng.Intn(len(names))]
		}
	}
	return s.randomIngredientLocked(exclude)
}

func (s *State) randomIngredientLocked(exclude string) string {
	all := s.catalog.Ingredients()
	candidates := make([]string, 0, len(all))
	for _, ing := range all {
		if ing != exclude {
			candidates = append(candidates, ing)
		}
	}
	if len(candidates) == 0 {
		return exclude
	}
	return candidates[s.rng.Intn(len(candidates))]
}

func (s *State) randomSecondsLocked(min, max int) time.Duration {
	span := float64(max - min)
	return time.Duration((float64(min) + s.rng.Float64()*span) * float64(time.Second))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func cellOf(p *Player) (int, int) {
	return int(p.X), int(p.Y)
}
