package game

import (
	"buzzer/internal/model"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultRoomTTL is how long a room may sit idle before the sweep evicts it
const DefaultRoomTTL = 30 * time.Minute

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
)

// Registry maps room codes to rooms. One mutex guards the whole map and is
// held for the full duration of every room access, which is what makes
// each command atomic with respect to every other command.
type Registry struct {
	mu     sync.Mutex
	rooms  map[model.RoomCode]*Room
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewRegistry creates an empty registry with DefaultRoomTTL
func NewRegistry(logger *zap.Logger) *Registry {
	return NewRegistryWithTTL(DefaultRoomTTL, logger)
}

// NewRegistryWithTTL creates an empty registry evicting rooms idle for
// longer than ttl
func NewRegistryWithTTL(ttl time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		rooms:  make(map[model.RoomCode]*Room),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// TTL is the idle threshold used by CleanupInactive
func (g *Registry) TTL() time.Duration {
	return g.ttl
}

// Create inserts a new room in the Start state
func (g *Registry) Create(code model.RoomCode, hostToken model.HostToken, categories []model.Category) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.rooms[code]; ok {
		return ErrRoomExists
	}
	room := NewRoom(code, hostToken, g.logger)
	room.now = g.now
	room.LastActivity = g.now()
	room.Categories = model.CloneCategories(categories)
	g.rooms[code] = room

	g.logger.Info("Room created", zap.String("room_code", code.String()), zap.Int("categories", len(categories)))
	return nil
}

// WithRoom runs fn with exclusive access to the room. fn must not block:
// every other room waits on the same lock.
func (g *Registry) WithRoom(code model.RoomCode, fn func(*Room) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[code]
	if !ok {
		return ErrRoomNotFound
	}
	return fn(room)
}

// Contains reports whether code names a live room
func (g *Registry) Contains(code model.RoomCode) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.rooms[code]
	return ok
}

// Remove deletes a room, reporting whether it existed
func (g *Registry) Remove(code model.RoomCode) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.rooms[code]
	delete(g.rooms, code)
	return ok
}

// Len is the number of live rooms
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// Codes lists live room codes in sorted order
func (g *Registry) Codes() []model.RoomCode {
	g.mu.Lock()
	defer g.mu.Unlock()

	codes := make([]model.RoomCode, 0, len(g.rooms))
	for code := range g.rooms {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// CleanupInactive evicts every room whose last activity is strictly older
// than now-TTL and returns the evicted codes
func (g *Registry) CleanupInactive(now time.Time) []model.RoomCode {
	threshold := now.Add(-g.ttl)

	g.mu.Lock()
	defer g.mu.Unlock()

	var evicted []model.RoomCode
	for code, room := range g.rooms {
		if room.LastActivity.Before(threshold) {
			delete(g.rooms, code)
			evicted = append(evicted, code)
		}
	}

	if len(evicted) == 0 {
		g.logger.Debug("No inactive rooms to clean up")
	} else {
		g.logger.Info("Cleaned up inactive rooms", zap.Int("count", len(evicted)), zap.Int("remaining", len(g.rooms)))
	}
	return evicted
}
