package rest

import (
	"buzzer/internal/cache"
	"buzzer/internal/model"
	"buzzer/internal/repository"
	"context"
	"strconv"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
)

type memBoardRepo struct {
	mu     sync.Mutex
	boards map[string]model.Board
	nextID int
}

func newMemBoardRepo() *memBoardRepo {
	return &memBoardRepo{boards: make(map[string]model.Board)}
}

func (r *memBoardRepo) Create(_ context.Context, board *model.Board) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	board.ID = strconv.Itoa(r.nextID)
	r.boards[board.ID] = *board
	return board.ID, nil
}

func (r *memBoardRepo) GetByID(_ context.Context, id string) (*model.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := strconv.Atoi(id); err != nil {
		return nil, repository.ErrInvalidBoardID
	}
	b, ok := r.boards[id]
	if !ok {
		return nil, nil
	}
	b.Categories = model.CloneCategories(b.Categories)
	return &b, nil
}

func (r *memBoardRepo) GetByAuthorID(_ context.Context, authorID string) ([]*model.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Board
	for _, b := range r.boards {
		if b.AuthorID == authorID {
			b := b
			out = append(out, &b)
		}
	}
	return out, nil
}

func (r *memBoardRepo) Update(_ context.Context, board *model.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.boards[board.ID]
	if !ok {
		return mongo.ErrNoDocuments
	}
	existing.Title = board.Title
	existing.Categories = model.CloneCategories(board.Categories)
	r.boards[board.ID] = existing
	return nil
}

func (r *memBoardRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.boards[id]; !ok {
		return false, nil
	}
	delete(r.boards, id)
	return true, nil
}

type memResultCache struct {
	mu        sync.Mutex
	results   map[model.RoomCode]*model.GameResult
	lastLimit int
}

func newMemResultCache() *memResultCache {
	return &memResultCache{results: make(map[model.RoomCode]*model.GameResult)}
}

func (c *memResultCache) SaveResult(_ context.Context, result *model.GameResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[result.RoomCode] = result
	return nil
}

func (c *memResultCache) GetResult(_ context.Context, code model.RoomCode) (*model.GameResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[code], nil
}

func (c *memResultCache) GetTop(_ context.Context, code model.RoomCode, limit int) ([]cache.LeaderboardEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastLimit = limit
	result, ok := c.results[code]
	if !ok {
		return nil, nil
	}
	var out []cache.LeaderboardEntry
	for i, s := range result.Standings {
		if i == limit {
			break
		}
		out = append(out, cache.LeaderboardEntry{PlayerID: s.PlayerID, Name: s.Name, Score: s.Score, Rank: s.Rank})
	}
	return out, nil
}

func (c *memResultCache) Delete(_ context.Context, code model.RoomCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.results, code)
	return nil
}
