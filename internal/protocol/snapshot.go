package protocol

// Snapshot is the full serialized game state pushed to every client. The
// protocol is state-sync: a missed snapshot self-heals on the next one.
type Snapshot struct {
	ClientID               string                    `json:"client_id,omitempty"`
	Players                map[string]PlayerSnapshot `json:"players"`
	Orders                 []OrderSnapshot           `json:"orders"`
	Score                  int                       `json:"score"`
	Timer                  int                       `json:"timer"`
	FusionStations         [][2]int                  `json:"fusion_stations"`
	EnterStation           [2]int                    `json:"enter_station"`
	DoorprizeStation       *[2]int                   `json:"doorprize_station"`
	DoorprizeRemainingTime float64                   `json:"doorprize_remaining_time"`
	ClientsInfo            map[string]ClientInfo     `json:"clients_info"`
	GameStarted            bool                      `json:"game_started"`
	Outcome                string                    `json:"outcome,omitempty"`
	VisualEvents           []VisualEvent             `json:"visual_events"`
}

type PlayerSnapshot struct {
	Ingredient string     `json:"ingredient"`
	Pos        [2]float64 `json:"pos"`
	TargetPos  [2]float64 `json:"target_pos"`
}

type OrderSnapshot struct {
	Name        string   `json:"name"`
	Price       int      `json:"price"`
	Ingredients []string `json:"ingredients"`
}

type ClientInfo struct {
	Username string `json:"username"`
	Ready    bool   `json:"ready"`
}

// VisualEvent carries client-side effect playback hints (fusion flashes,
// ingredient change sounds). Informational only, never authoritative.
type VisualEvent struct {
	ID   string         `json:"id"`
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}
