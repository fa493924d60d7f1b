package service

import (
	"buzzer/internal/cache"
	"buzzer/internal/events"
	"buzzer/internal/game"
	"buzzer/internal/model"
	"buzzer/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// maxCodeAttempts bounds retries when a generated room code is taken
const maxCodeAttempts = 10

var ErrCodeExhausted = errors.New("could not generate a unique room code")

// CreateRoomRequest carries either inline categories or a stored board id.
// Both may be omitted, leaving the room without questions.
type CreateRoomRequest struct {
	Categories []model.Category `json:"categories"`
	BoardID    string           `json:"boardId"`
}

// CreateRoomResponse is returned to the room creator
type CreateRoomResponse struct {
	RoomCode  model.RoomCode  `json:"room_code"`
	HostToken model.HostToken `json:"host_token"`
}

// RoomSummary is a read-only view of a live room
type RoomSummary struct {
	Code          model.RoomCode  `json:"roomCode"`
	State         model.GameState `json:"state"`
	Players       int             `json:"players"`
	HostConnected bool            `json:"hostConnected"`
	LastActivity  time.Time       `json:"lastActivity"`
}

// HeartbeatReport describes one heartbeat round for a room
type HeartbeatReport struct {
	Players int              `json:"players"`
	Sent    int              `json:"sent"`
	Failed  []model.PlayerID `json:"failed"`
}

// RoomService handles room lifecycle operations on top of the registry
type RoomService struct {
	registry  *game.Registry
	boardRepo repository.BoardRepo
	results   cache.ResultCache
	publisher events.Publisher
	logger    *zap.Logger

	newCode func() (model.RoomCode, error)
	now     func() time.Time
}

// NewRoomService creates a new room service. boardRepo and results may be
// nil, disabling board lookup and result archiving.
func NewRoomService(
	registry *game.Registry,
	boardRepo repository.BoardRepo,
	results cache.ResultCache,
	publisher events.Publisher,
	logger *zap.Logger,
) *RoomService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{
		registry:  registry,
		boardRepo: boardRepo,
		results:   results,
		publisher: publisher,
		logger:    logger,
		newCode:   model.GenerateRoomCode,
		now:       time.Now,
	}
}

// CreateRoom opens a room in the Start state and returns its credentials
func (s *RoomService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*CreateRoomResponse, error) {
	categories := req.Categories
	if len(categories) > 0 {
		if err := ValidateCategories(categories); err != nil {
			return nil, err
		}
	}
	if req.BoardID != "" {
		board, err := s.loadBoard(ctx, req.BoardID)
		if err != nil {
			return nil, err
		}
		categories = board.Categories
	}

	token := model.GenerateHostToken()
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate room code: %w", err)
		}

		if s.archived(ctx, code) {
			s.logger.Debug("Room code has an archived result, retrying", zap.String("room_code", code.String()), zap.Int("attempt", attempt))
			continue
		}

		err = s.registry.Create(code, token, categories)
		if errors.Is(err, game.ErrRoomExists) {
			s.logger.Debug("Room code collision, retrying", zap.String("room_code", code.String()), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		s.publish(ctx, events.RoomEvent{Kind: events.KindCreated, RoomCode: code, At: s.now()})
		return &CreateRoomResponse{RoomCode: code, HostToken: token}, nil
	}
	return nil, ErrCodeExhausted
}

// archived reports whether code still has a result in the archive. Reusing
// it would overwrite that result when the new game ends.
func (s *RoomService) archived(ctx context.Context, code model.RoomCode) bool {
	if s.results == nil {
		return false
	}
	res, err := s.results.GetResult(ctx, code)
	if err != nil {
		s.logger.Warn("Result lookup failed during code generation", zap.String("room_code", code.String()), zap.Error(err))
		return false
	}
	return res != nil
}

func (s *RoomService) loadBoard(ctx context.Context, id string) (*model.Board, error) {
	if s.boardRepo == nil {
		return nil, ErrBoardNotFound
	}
	board, err := s.boardRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrInvalidBoardID) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	if board == nil {
		return nil, ErrBoardNotFound
	}
	return board, nil
}

// Authenticate checks credentials against a room without joining it, so a
// connection can be refused before the upgrade
func (s *RoomService) Authenticate(code model.RoomCode, creds game.Credentials) (game.Identity, error) {
	var id game.Identity
	err := s.registry.WithRoom(code, func(room *game.Room) error {
		var err error
		id, err = room.Authenticate(creds)
		return err
	})
	return id, err
}

// Connect authenticates and joins in one critical section, binding mb as
// the connection's mailbox
func (s *RoomService) Connect(code model.RoomCode, creds game.Credentials, mb game.Mailbox) (game.Identity, error) {
	var id game.Identity
	err := s.registry.WithRoom(code, func(room *game.Room) error {
		auth, err := room.Authenticate(creds)
		if err != nil {
			return err
		}
		id, err = room.Join(auth, mb)
		if err != nil {
			return err
		}
		room.Touch()
		return nil
	})
	return id, err
}

// HandleCommand applies one inbound command and delivers its response. A
// transition into GameEnd archives the result once the lock is released.
func (s *RoomService) HandleCommand(ctx context.Context, code model.RoomCode, cmd game.Command, sender *model.PlayerID) error {
	var result *model.GameResult
	err := s.registry.WithRoom(code, func(room *game.Room) error {
		before := room.State
		resp := room.HandleCommand(cmd, sender)
		if game.ShouldWitness(cmd) && !resp.IsEmpty() {
			room.BroadcastWitness(room.GameStateEvent())
		}
		room.Touch()
		room.Dispatch(resp)

		if before != model.StateGameEnd && room.State == model.StateGameEnd {
			r := room.Result()
			result = &r
		}
		return nil
	})
	if err != nil {
		return err
	}

	if result != nil {
		s.archive(ctx, result)
	}
	return nil
}

func (s *RoomService) archive(ctx context.Context, result *model.GameResult) {
	if s.results != nil {
		if err := s.results.SaveResult(ctx, result); err != nil {
			s.logger.Error("Failed to archive result", zap.String("room_code", result.RoomCode.String()), zap.Error(err))
		}
	}
	s.publish(ctx, events.RoomEvent{Kind: events.KindEnded, RoomCode: result.RoomCode, At: result.EndedAt, Result: result})
}

func (s *RoomService) publish(ctx context.Context, ev events.RoomEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("Failed to publish room event",
			zap.String("room_code", ev.RoomCode.String()),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err))
	}
}

// Heartbeat sends one DoHeartbeat to every player of the room
func (s *RoomService) Heartbeat(code model.RoomCode) (*HeartbeatReport, error) {
	report := &HeartbeatReport{Failed: []model.PlayerID{}}
	err := s.registry.WithRoom(code, func(room *game.Room) error {
		report.Players = len(room.Players)
		for _, p := range room.Players {
			if _, err := p.Heartbeat(); err != nil {
				report.Failed = append(report.Failed, p.Player.ID)
				continue
			}
			report.Sent++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Summary describes a live room
func (s *RoomService) Summary(code model.RoomCode) (*RoomSummary, error) {
	var summary *RoomSummary
	err := s.registry.WithRoom(code, func(room *game.Room) error {
		summary = &RoomSummary{
			Code:          room.Code,
			State:         room.State,
			Players:       len(room.Players),
			HostConnected: room.Host != nil,
			LastActivity:  room.LastActivity,
		}
		return nil
	})
	return summary, err
}

// Sweep evicts idle rooms once and returns their codes
func (s *RoomService) Sweep(ctx context.Context) []model.RoomCode {
	evicted := s.registry.CleanupInactive(s.now())
	for _, code := range evicted {
		s.publish(ctx, events.RoomEvent{Kind: events.KindEvicted, RoomCode: code, At: s.now()})
	}
	return evicted
}

// RunSweeper sweeps every interval until ctx is cancelled
func (s *RoomService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Room sweeper started", zap.Duration("interval", interval), zap.Duration("ttl", s.registry.TTL()))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Room sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// RunHeartbeats runs a heartbeat round for every room each interval until
// ctx is cancelled
func (s *RoomService) RunHeartbeats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, code := range s.registry.Codes() {
				report, err := s.Heartbeat(code)
				if err != nil {
					continue // evicted since Codes
				}
				if len(report.Failed) > 0 {
					s.logger.Debug("Heartbeat not queued for some players",
						zap.String("room_code", code.String()),
						zap.Int("failed", len(report.Failed)))
				}
			}
		}
	}
}
