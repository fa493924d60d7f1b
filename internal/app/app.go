package app

import (
	"buzzer/internal/cache"
	"buzzer/internal/config"
	"buzzer/internal/events"
	"buzzer/internal/game"
	"buzzer/internal/repository"
	"buzzer/internal/service"
	"buzzer/internal/transport/rest"
	"buzzer/internal/transport/ws"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// Deps are the external clients the app is built on
type Deps struct {
	Mongo     *mongo.Client
	Redis     *redis.Client
	Publisher events.Publisher
}

type App struct {
	cfg    *config.Config
	logger *zap.Logger
	deps   Deps

	Registry     *game.Registry
	BoardRepo    repository.BoardRepo
	ResultCache  cache.ResultCache
	RoomService  *service.RoomService
	BoardService *service.BoardService
	AuthService  *service.AuthService
	Handler      http.Handler
}

// Connect dials MongoDB, Redis and, when configured, NATS
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Deps, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return Deps{}, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return Deps{}, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("db", cfg.MongoDB))

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		mongoClient.Disconnect(ctx)
		return Deps{}, fmt.Errorf("failed to ping Redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr()))

	var pub events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			rdb.Close()
			mongoClient.Disconnect(ctx)
			return Deps{}, err
		}
		pub = np
		logger.Info("connected to NATS", zap.String("url", cfg.NATSURL))
	} else {
		logger.Info("NATS_URL not set, lifecycle events disabled")
	}

	return Deps{Mongo: mongoClient, Redis: rdb, Publisher: pub}, nil
}

// New wires repositories, caches, services and the HTTP router
func New(cfg *config.Config, logger *zap.Logger, deps Deps) *App {
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}

	registry := game.NewRegistryWithTTL(cfg.RoomTTL, logger)
	boardRepo := repository.NewBoardRepo(deps.Mongo.Database(cfg.MongoDB))
	results := cache.NewResultCache(deps.Redis, cfg.ResultTTL)

	authSvc := service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret)
	boardSvc := service.NewBoardService(boardRepo)
	roomSvc := service.NewRoomService(registry, boardRepo, results, deps.Publisher, logger)

	handler := rest.NewRouter(&rest.Container{
		AuthService:    authSvc,
		BoardService:   boardSvc,
		RoomService:    roomSvc,
		Results:        results,
		WSHandler:      ws.NewHandler(roomSvc, logger),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		StaticDir:      cfg.StaticDir,
	})

	return &App{
		cfg:          cfg,
		logger:       logger,
		deps:         deps,
		Registry:     registry,
		BoardRepo:    boardRepo,
		ResultCache:  results,
		RoomService:  roomSvc,
		BoardService: boardSvc,
		AuthService:  authSvc,
		Handler:      handler,
	}
}

// RunBackground starts the room sweeper and the heartbeat round. Both stop
// when ctx is cancelled; a non-positive interval disables its loop.
func (a *App) RunBackground(ctx context.Context) {
	if a.cfg.SweepInterval > 0 {
		go a.RoomService.RunSweeper(ctx, a.cfg.SweepInterval)
	}
	if a.cfg.HeartbeatInterval > 0 {
		go a.RoomService.RunHeartbeats(ctx, a.cfg.HeartbeatInterval)
	} else {
		a.logger.Warn("periodic heartbeats disabled")
	}
}

// Close releases the external clients
func (a *App) Close(ctx context.Context) {
	if err := a.deps.Publisher.Close(); err != nil {
		a.logger.Warn("publisher close failed", zap.Error(err))
	}
	if a.deps.Redis != nil {
		if err := a.deps.Redis.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if a.deps.Mongo != nil {
		if err := a.deps.Mongo.Disconnect(ctx); err != nil {
			a.logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}
}
