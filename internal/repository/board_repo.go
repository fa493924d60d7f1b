package repository

import (
	"buzzer/internal/model"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrInvalidBoardID = errors.New("invalid board id")

// BoardRepo handles MongoDB operations for boards
type BoardRepo interface {
	Create(ctx context.Context, board *model.Board) (string, error)
	GetByID(ctx context.Context, id string) (*model.Board, error)
	GetByAuthorID(ctx context.Context, authorID string) ([]*model.Board, error)
	Update(ctx context.Context, board *model.Board) error
	Delete(ctx context.Context, id string) (bool, error)
}

type boardRepo struct {
	collection *mongo.Collection
}

// NewBoardRepo creates a new board repository
func NewBoardRepo(db *mongo.Database) BoardRepo {
	return &boardRepo{
		collection: db.Collection("boards"),
	}
}

func (r *boardRepo) Create(ctx context.Context, board *model.Board) (string, error) {
	board.ID = ""
	board.CreatedAt = time.Now()
	board.UpdatedAt = board.CreatedAt

	result, err := r.collection.InsertOne(ctx, board)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	board.ID = oid.Hex()
	return board.ID, nil
}

func (r *boardRepo) GetByID(ctx context.Context, id string) (*model.Board, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidBoardID
	}

	var board model.Board
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&board)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	board.ID = id
	return &board, nil
}

func (r *boardRepo) GetByAuthorID(ctx context.Context, authorID string) ([]*model.Board, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"authorId": authorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	boards := []*model.Board{}
	if err := cursor.All(ctx, &boards); err != nil {
		return nil, err
	}
	return boards, nil
}

// Update rewrites title and categories. The _id is immutable so the
// document is patched rather than replaced.
func (r *boardRepo) Update(ctx context.Context, board *model.Board) error {
	oid, err := primitive.ObjectIDFromHex(board.ID)
	if err != nil {
		return ErrInvalidBoardID
	}

	board.UpdatedAt = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":      board.Title,
		"categories": board.Categories,
		"updatedAt":  board.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *boardRepo) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrInvalidBoardID
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
