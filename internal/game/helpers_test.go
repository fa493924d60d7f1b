package game

import (
	"buzzer/internal/model"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRoom() *Room {
	room := NewRoom("TEST", model.GenerateHostToken(), nil)
	room.Categories = []model.Category{
		{
			Title: "Test Category",
			Questions: []model.Question{
				{Prompt: "What is 2+2?", Answer: "4", Value: 200},
				{Prompt: "What is 6*2?", Answer: "12", Value: 400},
			},
		},
	}
	return room
}

func addTestPlayer(room *Room, name string) *PlayerEntry {
	p := room.addPlayer(name, NewMailbox(DefaultMailboxSize))
	return room.Player(p.ID)
}

func pid(id model.PlayerID) *model.PlayerID {
	return &id
}

// drain empties a mailbox without blocking
func drain(mb Mailbox) []Event {
	var out []Event
	for {
		select {
		case ev := <-mb:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func findEvent[T Event](t *testing.T, events []Event) T {
	t.Helper()
	for _, ev := range events {
		if e, ok := ev.(T); ok {
			return e
		}
	}
	var zero T
	require.Failf(t, "event not found", "no %T among %d events", zero, len(events))
	return zero
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 11, 8, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
