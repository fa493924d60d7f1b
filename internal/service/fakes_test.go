package service

import (
	"buzzer/internal/cache"
	"buzzer/internal/events"
	"buzzer/internal/model"
	"buzzer/internal/repository"
	"context"
	"errors"
	"strconv"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

type fakeBoardRepo struct {
	mu     sync.Mutex
	boards map[string]*model.Board
	nextID int
	err    error
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{boards: make(map[string]*model.Board)}
}

func (r *fakeBoardRepo) Create(_ context.Context, board *model.Board) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.nextID++
	board.ID = strconv.Itoa(r.nextID)
	stored := *board
	r.boards[board.ID] = &stored
	return board.ID, nil
}

func (r *fakeBoardRepo) GetByID(_ context.Context, id string) (*model.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if _, err := strconv.Atoi(id); err != nil {
		return nil, repository.ErrInvalidBoardID
	}
	b, ok := r.boards[id]
	if !ok {
		return nil, nil
	}
	out := *b
	out.Categories = model.CloneCategories(b.Categories)
	return &out, nil
}

func (r *fakeBoardRepo) GetByAuthorID(_ context.Context, authorID string) ([]*model.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Board{}
	for _, b := range r.boards {
		if b.AuthorID == authorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBoardRepo) Update(_ context.Context, board *model.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boards[board.ID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	b.Title = board.Title
	b.Categories = board.Categories
	return nil
}

func (r *fakeBoardRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.boards[id]
	delete(r.boards, id)
	return ok, nil
}

type fakeResultCache struct {
	mu      sync.Mutex
	results map[model.RoomCode]*model.GameResult
	err     error
}

func newFakeResultCache() *fakeResultCache {
	return &fakeResultCache{results: make(map[model.RoomCode]*model.GameResult)}
}

func (c *fakeResultCache) SaveResult(_ context.Context, result *model.GameResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.results[result.RoomCode] = result
	return nil
}

func (c *fakeResultCache) GetResult(_ context.Context, code model.RoomCode) (*model.GameResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[code], nil
}

func (c *fakeResultCache) GetTop(context.Context, model.RoomCode, int) ([]cache.LeaderboardEntry, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeResultCache) Delete(_ context.Context, code model.RoomCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.results, code)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.RoomEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.RoomEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) kinds() []events.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Kind, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Kind
	}
	return out
}
