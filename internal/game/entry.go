package game

import (
	"buzzer/internal/model"
	"errors"
)

// DefaultMailboxSize is the outbound buffer of one connection
const DefaultMailboxSize = 64

var ErrMailboxFull = errors.New("mailbox full or detached")

// Mailbox is the outbound queue of one live connection. Sends never block:
// a full or nil mailbox drops the event.
type Mailbox chan Event

// NewMailbox creates a buffered mailbox
func NewMailbox(size int) Mailbox {
	return make(Mailbox, size)
}

// Deliver enqueues ev, reporting false when it was dropped
func (m Mailbox) Deliver(ev Event) bool {
	if m == nil {
		return false
	}
	select {
	case m <- ev:
		return true
	default:
		return false
	}
}

// HostEntry is the host's live connection
type HostEntry struct {
	mailbox Mailbox
}

// NewHostEntry wraps the host's mailbox
func NewHostEntry(mb Mailbox) *HostEntry {
	return &HostEntry{mailbox: mb}
}

// Deliver sends ev to the host
func (h *HostEntry) Deliver(ev Event) bool {
	return h.mailbox.Deliver(ev)
}

// PlayerEntry is a player's profile plus its current connection. The
// mailbox is swapped on reconnect; the previous one is simply abandoned.
type PlayerEntry struct {
	Player  model.Player
	mailbox Mailbox
	tracker *LatencyTracker
}

// NewPlayerEntry binds player to mb
func NewPlayerEntry(player model.Player, mb Mailbox) *PlayerEntry {
	return &PlayerEntry{
		Player:  player,
		mailbox: mb,
		tracker: NewLatencyTracker(),
	}
}

// Deliver sends ev to the player's current mailbox
func (e *PlayerEntry) Deliver(ev Event) bool {
	return e.mailbox.Deliver(ev)
}

// Replace supersedes the current mailbox
func (e *PlayerEntry) Replace(mb Mailbox) {
	e.mailbox = mb
}

// Mailbox returns the current mailbox
func (e *PlayerEntry) Mailbox() Mailbox {
	return e.mailbox
}

// Latency is the player's mean measured latency in milliseconds
func (e *PlayerEntry) Latency() uint32 {
	return e.tracker.Latency()
}

// Tracker exposes the latency bookkeeping
func (e *PlayerEntry) Tracker() *LatencyTracker {
	return e.tracker
}

// Heartbeat sends a fresh DoHeartbeat and records it only once it was
// queued
func (e *PlayerEntry) Heartbeat() (model.HeartbeatID, error) {
	tSent := nowMillis()
	hbid := e.tracker.NextID(tSent)
	if !e.mailbox.Deliver(DoHeartbeat{HBID: hbid, TSent: tSent}) {
		return hbid, ErrMailboxFull
	}
	e.tracker.RecordSent(hbid, tSent)
	return hbid, nil
}

// canBuzz is whether the player may buzz in state s
func (e *PlayerEntry) canBuzz(s model.GameState) bool {
	return s == model.StateWaitingForBuzz && !e.Player.Buzzed
}

func (e *PlayerEntry) stateEvent(s model.GameState) PlayerState {
	return PlayerState{
		PlayerID: e.Player.ID,
		Buzzed:   e.Player.Buzzed,
		Score:    e.Player.Score,
		CanBuzz:  e.canBuzz(s),
	}
}
