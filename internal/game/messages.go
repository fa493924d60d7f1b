package game

import (
	"buzzer/internal/model"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformedCommand = errors.New("malformed command")
	ErrUnknownCommand   = errors.New("unknown command type")
)

// Command is a decoded inbound message. The set of implementations is closed.
type Command interface {
	commandType() string
}

type (
	StartGame    struct{}
	EndGame      struct{}
	Buzz         struct{}
	HostReady    struct{}
	HostSkip     struct{}
	HostContinue struct{}

	HostChoice struct {
		CategoryIndex int
		QuestionIndex int
	}

	HostChecked struct {
		Correct bool
	}

	// Heartbeat is the client's echo of a DoHeartbeat, carrying the client
	// clock at the moment it was received
	Heartbeat struct {
		HBID  model.HeartbeatID
		TRecv model.UnixMs
	}

	// LatencyOfHeartbeat is the client's own round-trip estimate for HBID
	LatencyOfHeartbeat struct {
		HBID model.HeartbeatID
		TLat uint64
	}
)

func (StartGame) commandType() string          { return "StartGame" }
func (EndGame) commandType() string            { return "EndGame" }
func (Buzz) commandType() string               { return "Buzz" }
func (HostReady) commandType() string          { return "HostReady" }
func (HostSkip) commandType() string           { return "HostSkip" }
func (HostContinue) commandType() string       { return "HostContinue" }
func (HostChoice) commandType() string         { return "HostChoice" }
func (HostChecked) commandType() string        { return "HostChecked" }
func (Heartbeat) commandType() string          { return "Heartbeat" }
func (LatencyOfHeartbeat) commandType() string { return "LatencyOfHeartbeat" }

// CommandName returns the wire tag of cmd
func CommandName(cmd Command) string {
	return cmd.commandType()
}

// IsHostCommand reports whether cmd may only be issued by the host
func IsHostCommand(cmd Command) bool {
	switch cmd.(type) {
	case StartGame, EndGame, HostReady, HostChoice, HostChecked, HostSkip, HostContinue:
		return true
	}
	return false
}

// ShouldWitness reports whether the state broadcast caused by cmd must be
// delivered with latency compensation
func ShouldWitness(cmd Command) bool {
	_, ok := cmd.(HostReady)
	return ok
}

// DecodeCommand parses an internally tagged command, e.g.
// {"type":"HostChoice","categoryIndex":2,"questionIndex":3}
func DecodeCommand(data []byte) (Command, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}

	switch env.Type {
	case "StartGame":
		return StartGame{}, nil
	case "EndGame":
		return EndGame{}, nil
	case "Buzz":
		return Buzz{}, nil
	case "HostReady":
		return HostReady{}, nil
	case "HostSkip":
		return HostSkip{}, nil
	case "HostContinue":
		return HostContinue{}, nil
	case "HostChoice":
		var body struct {
			CategoryIndex *int `json:"categoryIndex"`
			QuestionIndex *int `json:"questionIndex"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		if body.CategoryIndex == nil || body.QuestionIndex == nil {
			return nil, fmt.Errorf("%w: HostChoice requires categoryIndex and questionIndex", ErrMalformedCommand)
		}
		return HostChoice{CategoryIndex: *body.CategoryIndex, QuestionIndex: *body.QuestionIndex}, nil
	case "HostChecked":
		var body struct {
			Correct *bool `json:"correct"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		if body.Correct == nil {
			return nil, fmt.Errorf("%w: HostChecked requires correct", ErrMalformedCommand)
		}
		return HostChecked{Correct: *body.Correct}, nil
	case "Heartbeat":
		var body struct {
			HBID  *model.HeartbeatID `json:"hbid"`
			TRecv *model.UnixMs      `json:"tDohbRecv"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		if body.HBID == nil || body.TRecv == nil {
			return nil, fmt.Errorf("%w: Heartbeat requires hbid and tDohbRecv", ErrMalformedCommand)
		}
		return Heartbeat{HBID: *body.HBID, TRecv: *body.TRecv}, nil
	case "LatencyOfHeartbeat":
		var body struct {
			HBID *model.HeartbeatID `json:"hbid"`
			TLat *uint64            `json:"tLat"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		if body.HBID == nil || body.TLat == nil {
			return nil, fmt.Errorf("%w: LatencyOfHeartbeat requires hbid and tLat", ErrMalformedCommand)
		}
		return LatencyOfHeartbeat{HBID: *body.HBID, TLat: *body.TLat}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedCommand)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Type)
}

// Event is an outbound message. The set of implementations is closed.
type Event interface {
	eventName() string
}

type (
	// Witness wraps an event whose delivery was delayed per recipient
	Witness struct {
		Msg Event
	}

	DoHeartbeat struct {
		HBID  model.HeartbeatID `json:"hbid"`
		TSent model.UnixMs      `json:"t_sent"`
	}

	GotHeartbeat struct {
		HBID model.HeartbeatID `json:"hbid"`
	}

	PlayerList struct {
		Players []model.Player
	}

	NewPlayer struct {
		PlayerID model.PlayerID    `json:"pid"`
		Token    model.PlayerToken `json:"token"`
	}

	GameStateEvent struct {
		State           model.GameState  `json:"state"`
		Categories      []model.Category `json:"categories"`
		Players         []model.Player   `json:"players"`
		CurrentQuestion *QuestionRef     `json:"currentQuestion"`
		CurrentBuzzer   *model.PlayerID  `json:"currentBuzzer"`
		Winner          *model.PlayerID  `json:"winner"`
	}

	PlayerState struct {
		PlayerID model.PlayerID `json:"pid"`
		Buzzed   bool           `json:"buzzed"`
		Score    int32          `json:"score"`
		CanBuzz  bool           `json:"canBuzz"`
	}

	PlayerBuzzed struct {
		PlayerID model.PlayerID `json:"pid"`
		Name     string         `json:"name"`
	}
)

func (Witness) eventName() string        { return "Witness" }
func (DoHeartbeat) eventName() string    { return "DoHeartbeat" }
func (GotHeartbeat) eventName() string   { return "GotHeartbeat" }
func (PlayerList) eventName() string     { return "PlayerList" }
func (NewPlayer) eventName() string      { return "NewPlayer" }
func (GameStateEvent) eventName() string { return "GameState" }
func (PlayerState) eventName() string    { return "PlayerState" }
func (PlayerBuzzed) eventName() string   { return "PlayerBuzzed" }

// EventName returns the wire tag of ev
func EventName(ev Event) string {
	return ev.eventName()
}

// EncodeEvent serializes ev externally tagged, e.g. {"GotHeartbeat":{"hbid":7}}
func EncodeEvent(ev Event) ([]byte, error) {
	var body any
	switch e := ev.(type) {
	case Witness:
		if e.Msg == nil {
			return nil, errors.New("witness without message")
		}
		inner, err := EncodeEvent(e.Msg)
		if err != nil {
			return nil, err
		}
		body = struct {
			Msg json.RawMessage `json:"msg"`
		}{Msg: inner}
	case PlayerList:
		players := e.Players
		if players == nil {
			players = []model.Player{}
		}
		body = players
	case GameStateEvent:
		if e.Categories == nil {
			e.Categories = []model.Category{}
		}
		if e.Players == nil {
			e.Players = []model.Player{}
		}
		body = e
	default:
		body = ev
	}
	return json.Marshal(map[string]any{ev.eventName(): body})
}

// QuestionRef locates a question on the board. On the wire it is the
// pair [categoryIndex, questionIndex].
type QuestionRef struct {
	Category int
	Question int
}

func (q QuestionRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{q.Category, q.Question})
}

func (q *QuestionRef) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	q.Category, q.Question = pair[0], pair[1]
	return nil
}
