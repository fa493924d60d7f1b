package service

import (
	"buzzer/internal/model"
	"buzzer/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrBoardNotFound = errors.New("board not found")
	ErrInvalidBoard  = errors.New("invalid board")
	ErrNotBoardOwner = errors.New("board belongs to another admin")
)

// BoardService handles board CRUD operations
type BoardService struct {
	boardRepo repository.BoardRepo
}

// NewBoardService creates a new board service
func NewBoardService(boardRepo repository.BoardRepo) *BoardService {
	return &BoardService{
		boardRepo: boardRepo,
	}
}

// Create validates and stores a new board for authorID
func (s *BoardService) Create(ctx context.Context, authorID string, board *model.Board) (string, error) {
	if err := ValidateCategories(board.Categories); err != nil {
		return "", err
	}
	if strings.TrimSpace(board.Title) == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidBoard)
	}
	board.AuthorID = authorID
	for i := range board.Categories {
		for j := range board.Categories[i].Questions {
			board.Categories[i].Questions[j].Answered = false
		}
	}
	return s.boardRepo.Create(ctx, board)
}

// GetByID retrieves a board by ID
func (s *BoardService) GetByID(ctx context.Context, id string) (*model.Board, error) {
	board, err := s.boardRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrInvalidBoardID) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, err
	}
	if board == nil {
		return nil, ErrBoardNotFound
	}
	return board, nil
}

// GetByAuthorID retrieves all boards for an admin
func (s *BoardService) GetByAuthorID(ctx context.Context, authorID string) ([]*model.Board, error) {
	return s.boardRepo.GetByAuthorID(ctx, authorID)
}

// Update replaces title and categories of a board owned by authorID
func (s *BoardService) Update(ctx context.Context, authorID string, board *model.Board) error {
	existing, err := s.GetByID(ctx, board.ID)
	if err != nil {
		return err
	}
	if existing.AuthorID != authorID {
		return ErrNotBoardOwner
	}
	if err := ValidateCategories(board.Categories); err != nil {
		return err
	}
	if strings.TrimSpace(board.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidBoard)
	}

	err = s.boardRepo.Update(ctx, board)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrBoardNotFound
	}
	return err
}

// Delete removes a board owned by authorID
func (s *BoardService) Delete(ctx context.Context, authorID, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorID != authorID {
		return ErrNotBoardOwner
	}

	deleted, err := s.boardRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrBoardNotFound
	}
	return nil
}

// ValidateCategories requires at least one category, at least one
// question per category and values no larger than model.MaxQuestionValue
func ValidateCategories(categories []model.Category) error {
	if len(categories) == 0 {
		return fmt.Errorf("%w: at least one category is required", ErrInvalidBoard)
	}
	for i, c := range categories {
		if len(c.Questions) == 0 {
			return fmt.Errorf("%w: category %d has no questions", ErrInvalidBoard, i)
		}
		for j, q := range c.Questions {
			if q.Value > model.MaxQuestionValue {
				return fmt.Errorf("%w: question %d of category %d is worth more than %d", ErrInvalidBoard, j, i, model.MaxQuestionValue)
			}
		}
	}
	return nil
}
