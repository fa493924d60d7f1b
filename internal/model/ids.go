package model

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// roomCodeChars omits I and O so codes are easy to read aloud and type
const (
	roomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	roomCodeLen   = 6
)

// RoomCode is the human-shareable key of a room (e.g. "AFKRTW")
type RoomCode string

// roomCodeByteLimit is the largest multiple of len(roomCodeChars) that fits
// in a byte; bytes at or above it are discarded so every letter is equally
// likely
const roomCodeByteLimit = 256 - 256%len(roomCodeChars)

// GenerateRoomCode creates a random 6-char code from the restricted charset
func GenerateRoomCode() (RoomCode, error) {
	return generateRoomCode(rand.Reader)
}

func generateRoomCode(src io.Reader) (RoomCode, error) {
	code := make([]byte, 0, roomCodeLen)
	buf := make([]byte, roomCodeLen*2)
	for len(code) < roomCodeLen {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= roomCodeByteLimit {
				continue
			}
			code = append(code, roomCodeChars[int(b)%len(roomCodeChars)])
			if len(code) == roomCodeLen {
				break
			}
		}
	}
	return RoomCode(code), nil
}

// ParseRoomCode normalizes user input; codes are matched case-insensitively
func ParseRoomCode(s string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(s)))
}

func (c RoomCode) String() string {
	return string(c)
}

// HostToken proves the bearer created the room
type HostToken uuid.UUID

// GenerateHostToken creates a random UUID v4 token
func GenerateHostToken() HostToken {
	return HostToken(uuid.New())
}

// ParseHostToken parses the canonical UUID form of a host token
func ParseHostToken(s string) (HostToken, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return HostToken{}, err
	}
	return HostToken(id), nil
}

func (t HostToken) String() string {
	return uuid.UUID(t).String()
}

func (t HostToken) MarshalText() ([]byte, error) {
	return uuid.UUID(t).MarshalText()
}

func (t *HostToken) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(t).UnmarshalText(data)
}

// PlayerToken is the secret handed to a player on first join. It is
// presented together with the player id to reconnect.
type PlayerToken uuid.UUID

// GeneratePlayerToken creates a random UUID v4 token
func GeneratePlayerToken() PlayerToken {
	return PlayerToken(uuid.New())
}

// ParsePlayerToken parses the canonical UUID form of a player token
func ParsePlayerToken(s string) (PlayerToken, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PlayerToken{}, err
	}
	return PlayerToken(id), nil
}

func (t PlayerToken) String() string {
	return uuid.UUID(t).String()
}

func (t PlayerToken) MarshalText() ([]byte, error) {
	return uuid.UUID(t).MarshalText()
}

func (t *PlayerToken) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(t).UnmarshalText(data)
}

// PlayerID identifies a player within one room. Ids start at 1 and are
// never reused while the room lives.
type PlayerID uint32

// UnixMs is milliseconds since the unix epoch, or a delta thereof
type UnixMs = uint64

// HeartbeatID correlates the messages of one heartbeat exchange
type HeartbeatID = uint32
