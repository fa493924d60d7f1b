package model

import "time"

// Standing is one player's final position
type Standing struct {
	PlayerID PlayerID `json:"pid"`
	Name     string   `json:"name"`
	Score    int32    `json:"score"`
	Rank     int      `json:"rank"`
}

// GameResult is the archived outcome of a finished room
type GameResult struct {
	RoomCode  RoomCode   `json:"roomCode"`
	Winner    *PlayerID  `json:"winner"`
	Standings []Standing `json:"standings"`
	EndedAt   time.Time  `json:"endedAt"`
}
