package cache

import (
	"buzzer/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultResultTTL is how long finished games stay readable
const DefaultResultTTL = 24 * time.Hour

// ResultCache archives finished games in Redis: the full result as JSON plus
// a score ZSET and a name hash for the leaderboard
type ResultCache interface {
	SaveResult(ctx context.Context, result *model.GameResult) error
	GetResult(ctx context.Context, code model.RoomCode) (*model.GameResult, error)
	GetTop(ctx context.Context, code model.RoomCode, limit int) ([]LeaderboardEntry, error)
	Delete(ctx context.Context, code model.RoomCode) error
}

// LeaderboardEntry represents a single leaderboard entry
type LeaderboardEntry struct {
	PlayerID model.PlayerID `json:"pid"`
	Name     string         `json:"name"`
	Score    int32          `json:"score"`
	Rank     int            `json:"rank"`
}

type resultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a new result cache
func NewResultCache(client *redis.Client, ttl time.Duration) ResultCache {
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	return &resultCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *resultCache) key(code model.RoomCode) string {
	return fmt.Sprintf("result:%s", code)
}

func (c *resultCache) lbKey(code model.RoomCode) string {
	return fmt.Sprintf("result:%s:lb", code)
}

func (c *resultCache) namesKey(code model.RoomCode) string {
	return fmt.Sprintf("result:%s:names", code)
}

func (c *resultCache) SaveResult(ctx context.Context, result *model.GameResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	code := result.RoomCode
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key(code), data, c.ttl)
		pipe.Del(ctx, c.lbKey(code), c.namesKey(code))
		if len(result.Standings) == 0 {
			return nil
		}

		members := make([]redis.Z, len(result.Standings))
		names := make(map[string]any, len(result.Standings))
		for i, s := range result.Standings {
			member := strconv.FormatUint(uint64(s.PlayerID), 10)
			members[i] = redis.Z{Score: float64(s.Score), Member: member}
			names[member] = s.Name
		}
		pipe.ZAdd(ctx, c.lbKey(code), members...)
		pipe.HSet(ctx, c.namesKey(code), names)
		pipe.Expire(ctx, c.lbKey(code), c.ttl)
		pipe.Expire(ctx, c.namesKey(code), c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save result %s: %w", code, err)
	}
	return nil
}

func (c *resultCache) GetResult(ctx context.Context, code model.RoomCode) (*model.GameResult, error) {
	data, err := c.client.Get(ctx, c.key(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result model.GameResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *resultCache) GetTop(ctx context.Context, code model.RoomCode, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return []LeaderboardEntry{}, nil
	}
	results, err := c.client.ZRevRangeWithScores(ctx, c.lbKey(code), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []LeaderboardEntry{}, nil
	}

	members := make([]string, len(results))
	for i, z := range results {
		members[i] = z.Member.(string)
	}
	names, err := c.client.HMGet(ctx, c.namesKey(code), members...).Result()
	if err != nil {
		return nil, err
	}

	scores := make([]int32, len(results))
	for i, z := range results {
		scores[i] = int32(z.Score)
	}
	ranks := competitionRanks(scores)

	entries := make([]LeaderboardEntry, len(results))
	for i, member := range members {
		pid, err := strconv.ParseUint(member, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("corrupt leaderboard member %q: %w", member, err)
		}
		name, _ := names[i].(string)
		entries[i] = LeaderboardEntry{
			PlayerID: model.PlayerID(pid),
			Name:     name,
			Score:    scores[i],
			Rank:     ranks[i],
		}
	}
	return entries, nil
}

func (c *resultCache) Delete(ctx context.Context, code model.RoomCode) error {
	return c.client.Del(ctx, c.key(code), c.lbKey(code), c.namesKey(code)).Err()
}

// competitionRanks ranks descending scores so that equal scores share a rank
// (1, 1, 3)
func competitionRanks(scores []int32) []int {
	ranks := make([]int, len(scores))
	for i := range scores {
		if i > 0 && scores[i] == scores[i-1] {
			ranks[i] = ranks[i-1]
		} else {
			ranks[i] = i + 1
		}
	}
	return ranks
}
