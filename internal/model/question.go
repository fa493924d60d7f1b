package model

import "time"

// MaxQuestionValue caps the points a single question may carry
const MaxQuestionValue = 1_000_000

// Question is one clue on the board
type Question struct {
	Prompt   string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
	Value    uint32 `json:"value" bson:"value"`
	Answered bool   `json:"answered" bson:"answered"` // set during play, never reverted
}

// Category is a titled column of questions
type Category struct {
	Title     string     `json:"title" bson:"title"`
	Questions []Question `json:"questions" bson:"questions"`
}

// Board is a persistent set of categories authored by an admin
type Board struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	AuthorID   string     `json:"authorId" bson:"authorId"`
	Title      string     `json:"title" bson:"title"`
	Categories []Category `json:"categories" bson:"categories"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// CloneCategories deep-copies categories so a room can mark questions
// answered without touching the source board
func CloneCategories(src []Category) []Category {
	if src == nil {
		return nil
	}
	out := make([]Category, len(src))
	for i, c := range src {
		out[i] = Category{
			Title:     c.Title,
			Questions: append([]Question(nil), c.Questions...),
		}
	}
	return out
}
