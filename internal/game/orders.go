package game

import "github.com/rifqimaruf/We-are-Cooked/internal/catalog"

// GenerateOrders is the locked entry point, used at round start and by tests.
func (s *State) GenerateOrders(activePlayers int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generateOrdersLocked(activePlayers)
}

// generateOrdersLocked tops the queue up to the active-order cap. Candidate
// recipes are filtered to those reachable with the current player count; if
// none qualify the full catalog is used instead, so order generation never
// stalls. Zero active players clears the queue.
func (s *State) generateOrdersLocked(activePlayers int) {
	if activePlayers == 0 {
		s.orders = nil
		return
	}

	room := s.cfg.MaxActiveOrders - len(s.orders)
	if room <= 0 {
		return
	}

	candidates := s.catalog.RecipesWithAtMost(activePlayers)
	if len(candidates) == 0 {
		candidates = s.catalog.Recipes()
	}

	// Avoid queuing the same dish twice while there is still variety left.
	active := make(map[string]bool, len(s.orders))
	for _, o := range s.orders {
		active[o.Name] = true
	}
	fresh := make([]catalog.Recipe, 0, len(candidates))
	for _, r := range candidates {
		if !active[r.Name] {
			fresh = append(fresh, r)
		}
	}
	if len(fresh) == 0 {
		fresh = candidates
	}

	s.rng.Shuffle(len(fresh), func(i, j int) { fresh[i], fresh[j] = fresh[j], fresh[i] })
	if room > len(fresh) {
		room = len(fresh)
	}
	for _, r := range fresh[:room] {
		s.orders = append(s.orders, &Order{
			Name:        r.Name,
			Price:       r.Price,
			Ingredients: append([]string(nil), r.Ingredients...),
		})
	}
}

// Orders returns a copy of the unfulfilled queue, for tests and diagnostics.
func (s *State) Orders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		if !o.Fulfilled {
			out = append(out, *o)
		}
	}
	return out
}
