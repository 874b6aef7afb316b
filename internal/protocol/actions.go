package protocol

import (
	"encoding/json"
	"fmt"
)

// Movement directions as sent by clients.
const (
	DirUp    = "UP"
	DirDown  = "DOWN"
	DirLeft  = "LEFT"
	DirRight = "RIGHT"
)

// Action is the decoded form of one client message. Dispatch switches on the
// concrete type, so adding an action without handling it fails to compile at
// the switch rather than falling through an untyped map.
type Action interface {
	isAction()
}

type Move struct {
	Direction string
}

type ToggleReady struct{}

type SetUsername struct {
	Username string
}

type StartGame struct{}

type Restart struct{}

type ReturnToLobby struct{}

type ChangeIngredient struct{}

func (Move) isAction()             {}
func (ToggleReady) isAction()      {}
func (SetUsername) isAction()      {}
func (StartGame) isAction()        {}
func (Restart) isAction()          {}
func (ReturnToLobby) isAction()    {}
func (ChangeIngredient) isAction() {}

// rawAction is the superset of fields any action message may carry.
type rawAction struct {
	Action    string `json:"action"`
	Direction string `json:"direction,omitempty"`
	Username  string `json:"username,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
}

// DecodeAction parses one client message. The returned client id is empty on
// the stream transport (identity comes from the connection) and set on the
// polling transport (identity travels in the payload).
func DecodeAction(data []byte) (Action, string, error) {
	var raw rawAction
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, "", fmt.Errorf("malformed action message: %w", err)
	}
	switch raw.Action {
	case "move":
		switch raw.Direction {
		case DirUp, DirDown, DirLeft, DirRight:
		default:
			return nil, raw.ClientID, fmt.Errorf("unknown move direction %q", raw.Direction)
		}
		return Move{Direction: raw.Direction}, raw.ClientID, nil
	case "toggle_ready":
		return ToggleReady{}, raw.ClientID, nil
	case "set_username":
		return SetUsername{Username: raw.Username}, raw.ClientID, nil
	case "start_game":
		return StartGame{}, raw.ClientID, nil
	case "restart":
		return Restart{}, raw.ClientID, nil
	case "return_to_lobby":
		return ReturnToLobby{}, raw.ClientID, nil
	case "change_ingredient":
		return ChangeIngredient{}, raw.ClientID, nil
	default:
		return nil, raw.ClientID, fmt.Errorf("unknown action %q", raw.Action)
	}
}

// EncodeAction is the client-side counterpart, kept here so tests and any Go
// client speak the exact same shapes.
func EncodeAction(a Action) ([]byte, error) {
	var raw rawAction
	switch v := a.(type) {
	case Move:
		raw.Action = "move"
		raw.Direction = v.Direction
	case ToggleReady:
		raw.Action = "toggle_ready"
	case SetUsername:
		raw.Action = "set_username"
		raw.Username = v.Username
	case StartGame:
		raw.Action = "start_game"
	case Restart:
		raw.Action = "restart"
	case ReturnToLobby:
		raw.Action = "return_to_lobby"
	case ChangeIngredient:
		raw.Action = "change_ingredient"
	default:
		return nil, fmt.Errorf("unencodable action %T", a)
	}
	return json.Marshal(raw)
}
