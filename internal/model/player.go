package model

// Player is the persistent profile of a participant in a room
type Player struct {
	ID     PlayerID    `json:"pid"`
	Name   string      `json:"name"`
	Score  int32       `json:"score"` // may go negative
	Buzzed bool        `json:"buzzed"`
	Token  PlayerToken `json:"-"` // only sent to its owner via NewPlayer
}

// NewPlayer creates a player with a zero score
func NewPlayer(id PlayerID, name string, token PlayerToken) Player {
	return Player{
		ID:    id,
		Name:  name,
		Token: token,
	}
}
