package game

import (
	"buzzer/internal/model"
	"slices"
)

// Addressed is an event for exactly one player
type Addressed struct {
	PlayerID model.PlayerID
	Event    Event
}

// RoomResponse is the addressed set of events produced by one command.
// Responses compose by concatenating each destination list.
type RoomResponse struct {
	ToHost    []Event
	ToPlayers []Event
	ToPlayer  []Addressed
}

// NewResponse returns an empty response
func NewResponse() RoomResponse {
	return RoomResponse{}
}

// BroadcastState sends ev to the host and to every player
func BroadcastState(ev Event) RoomResponse {
	return RoomResponse{
		ToHost:    []Event{ev},
		ToPlayers: []Event{ev},
	}
}

// ToHost sends ev to the host only
func ToHost(ev Event) RoomResponse {
	return RoomResponse{ToHost: []Event{ev}}
}

// ToPlayer sends ev to a single player
func ToPlayer(pid model.PlayerID, ev Event) RoomResponse {
	return RoomResponse{ToPlayer: []Addressed{{PlayerID: pid, Event: ev}}}
}

// Merge appends other's lists after r's. Neither operand is modified.
func (r RoomResponse) Merge(other RoomResponse) RoomResponse {
	return RoomResponse{
		ToHost:    slices.Concat(r.ToHost, other.ToHost),
		ToPlayers: slices.Concat(r.ToPlayers, other.ToPlayers),
		ToPlayer:  slices.Concat(r.ToPlayer, other.ToPlayer),
	}
}

// IsEmpty reports whether the response addresses nobody
func (r RoomResponse) IsEmpty() bool {
	return len(r.ToHost) == 0 && len(r.ToPlayers) == 0 && len(r.ToPlayer) == 0
}

// Len is the total number of events across all lists
func (r RoomResponse) Len() int {
	return len(r.ToHost) + len(r.ToPlayers) + len(r.ToPlayer)
}
