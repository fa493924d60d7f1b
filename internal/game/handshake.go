package game

import (
	"buzzer/internal/model"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxPlayerNameLen bounds display names in runes
const MaxPlayerNameLen = 32

var ErrInvalidCredentials = errors.New("invalid or ambiguous credentials")

// IdentityKind tells who is behind a connection
type IdentityKind int

const (
	IdentityHost IdentityKind = iota + 1
	IdentityExistingPlayer
	IdentityNewPlayer
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityHost:
		return "host"
	case IdentityExistingPlayer:
		return "existing_player"
	case IdentityNewPlayer:
		return "new_player"
	}
	return "unknown"
}

// Credentials are the raw values presented when connecting
type Credentials struct {
	Token      string
	PlayerID   string
	PlayerName string
}

// Identity is the result of a successful handshake
type Identity struct {
	Kind     IdentityKind
	PlayerID model.PlayerID
	Name     string
	Token    model.PlayerToken // set once a new player has joined
}

// Sender is the id passed to HandleCommand: nil for the host
func (id Identity) Sender() *model.PlayerID {
	if id.Kind == IdentityHost {
		return nil
	}
	pid := id.PlayerID
	return &pid
}

// Authenticate resolves credentials to exactly one identity:
//
//	playerID+token      an existing player whose id and token match
//	token               the host, when it equals the room's host token
//	playerName          a new player
//
// Anything else, including a token combined with a bare name, is rejected.
func (r *Room) Authenticate(c Credentials) (Identity, error) {
	token := strings.TrimSpace(c.Token)
	rawID := strings.TrimSpace(c.PlayerID)
	name := strings.TrimSpace(c.PlayerName)

	switch {
	case rawID != "":
		n, err := strconv.ParseUint(rawID, 10, 32)
		if err != nil || token == "" {
			return Identity{}, ErrInvalidCredentials
		}
		pt, err := model.ParsePlayerToken(token)
		if err != nil {
			return Identity{}, ErrInvalidCredentials
		}
		p := r.Player(model.PlayerID(n))
		if p == nil || p.Player.Token != pt {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{Kind: IdentityExistingPlayer, PlayerID: p.Player.ID, Name: p.Player.Name}, nil

	case token != "":
		if name != "" {
			return Identity{}, ErrInvalidCredentials
		}
		ht, err := model.ParseHostToken(token)
		if err != nil || ht != r.HostToken {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{Kind: IdentityHost}, nil

	case name != "":
		if utf8.RuneCountInString(name) > MaxPlayerNameLen {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{Kind: IdentityNewPlayer, Name: name}, nil
	}
	return Identity{}, ErrInvalidCredentials
}
