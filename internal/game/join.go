package game

import (
	"buzzer/internal/model"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrPlayerNotFound = errors.New("player not found")

// Join registers an authenticated connection and queues its initial
// events. For a new player the returned identity carries the assigned id.
func (r *Room) Join(id Identity, mb Mailbox) (Identity, error) {
	switch id.Kind {
	case IdentityHost:
		r.registerHost(mb)
		return id, nil
	case IdentityExistingPlayer:
		if err := r.reconnectPlayer(id.PlayerID, mb); err != nil {
			return Identity{}, err
		}
		return id, nil
	case IdentityNewPlayer:
		p := r.addPlayer(id.Name, mb)
		return Identity{Kind: IdentityNewPlayer, PlayerID: p.ID, Name: p.Name, Token: p.Token}, nil
	}
	return Identity{}, fmt.Errorf("unknown identity kind %d", id.Kind)
}

func (r *Room) registerHost(mb Mailbox) {
	r.Host = NewHostEntry(mb)
	r.logger.Info("Host registered", zap.Int("players", len(r.Players)))

	r.Host.Deliver(r.PlayerListEvent())
	if r.State != model.StateStart {
		r.Host.Deliver(r.GameStateEvent())
	}
}

func (r *Room) reconnectPlayer(pid model.PlayerID, mb Mailbox) error {
	p := r.Player(pid)
	if p == nil {
		return fmt.Errorf("%w: %d", ErrPlayerNotFound, pid)
	}
	p.Replace(mb)
	r.logger.Info("Player reconnected", zap.Uint32("player_id", uint32(pid)))

	p.Deliver(p.stateEvent(r.State))
	if r.State != model.StateStart {
		p.Deliver(r.GameStateEvent())
	}
	return nil
}

func (r *Room) addPlayer(name string, mb Mailbox) model.Player {
	r.lastPlayerID++
	player := model.NewPlayer(r.lastPlayerID, name, model.GeneratePlayerToken())
	entry := NewPlayerEntry(player, mb)
	r.Players = append(r.Players, entry)

	r.logger.Info("Player joined",
		zap.Uint32("player_id", uint32(player.ID)),
		zap.String("player_name", name),
		zap.Int("players", len(r.Players)))

	entry.Deliver(NewPlayer{PlayerID: player.ID, Token: player.Token})
	entry.Deliver(entry.stateEvent(r.State))

	if r.State != model.StateStart {
		state := r.GameStateEvent()
		if r.Host != nil {
			r.Host.Deliver(state)
		}
		for _, p := range r.Players {
			p.Deliver(state)
		}
	}
	if r.Host != nil {
		r.Host.Deliver(r.PlayerListEvent())
	}
	return player
}
