package main

import (
	"buzzer/internal/config"
	"buzzer/internal/logging"
	"buzzer/internal/model"
	"buzzer/internal/repository"
	"buzzer/internal/service"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	file := flag.String("file", "", "YAML file with boards to insert (default: built-in sample board)")
	author := flag.String("author", "", "admin id recorded as the board author (default: derived from ADMIN_USERNAME)")
	flag.Parse()

	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *author == "" {
		*author = service.AdminIDFor(cfg.AdminUsername)
	}

	boards := []*model.Board{sampleBoard()}
	if *file != "" {
		boards, err = loadBoardFile(*file)
		if err != nil {
			logger.Fatal("failed to load boards", zap.String("file", *file), zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	boardSvc := service.NewBoardService(repository.NewBoardRepo(client.Database(cfg.MongoDB)))

	created := 0
	for _, board := range boards {
		id, err := boardSvc.Create(ctx, *author, board)
		if err != nil {
			logger.Error("failed to insert board", zap.String("title", board.Title), zap.Error(err))
			continue
		}
		created++
		logger.Info("created board",
			zap.String("id", id),
			zap.String("title", board.Title),
			zap.Int("categories", len(board.Categories)),
		)
	}

	logger.Info("seed finished", zap.Int("created", created), zap.Int("total", len(boards)), zap.String("author", *author))
	if created < len(boards) {
		os.Exit(1)
	}
}
