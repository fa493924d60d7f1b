package main

import (
	"buzzer/internal/model"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// boardFile is the on-disk layout accepted by -file
type boardFile struct {
	Boards []boardEntry `yaml:"boards"`
}

type boardEntry struct {
	Title      string         `yaml:"title"`
	Categories []categoryEntry `yaml:"categories"`
}

type categoryEntry struct {
	Title     string         `yaml:"title"`
	Questions []questionEntry `yaml:"questions"`
}

type questionEntry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Value    uint32 `yaml:"value"`
}

func loadBoardFile(path string) ([]*model.Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open board file: %w", err)
	}
	defer f.Close()
	return parseBoards(f)
}

func parseBoards(r io.Reader) ([]*model.Board, error) {
	var file boardFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse board file: %w", err)
	}
	if len(file.Boards) == 0 {
		return nil, fmt.Errorf("board file contains no boards")
	}

	boards := make([]*model.Board, 0, len(file.Boards))
	for _, b := range file.Boards {
		board := &model.Board{Title: b.Title}
		for _, c := range b.Categories {
			cat := model.Category{Title: c.Title}
			for _, q := range c.Questions {
				cat.Questions = append(cat.Questions, model.Question{
					Prompt: q.Question,
					Answer: q.Answer,
					Value:  q.Value,
				})
			}
			board.Categories = append(board.Categories, cat)
		}
		boards = append(boards, board)
	}
	return boards, nil
}

// sampleBoard is inserted when no -file is given
func sampleBoard() *model.Board {
	return &model.Board{
		Title: "Madison Trivia Night",
		Categories: []model.Category{
			{
				Title: "Badger Traditions",
				Questions: []model.Question{
					{Prompt: "This song is played between the third and fourth quarters at Camp Randall.", Answer: "Jump Around", Value: 100},
					{Prompt: "The name of the UW mascot.", Answer: "Bucky Badger", Value: 200},
					{Prompt: "Lake on whose shore the Memorial Union terrace sits.", Answer: "Lake Mendota", Value: 300},
				},
			},
			{
				Title: "Computer Science",
				Questions: []model.Question{
					{Prompt: "The HTTP status code for Not Found.", Answer: "404", Value: 100},
					{Prompt: "Protocol upgraded from HTTP to give a full-duplex channel.", Answer: "WebSocket", Value: 200},
					{Prompt: "The language whose mascot is a gopher.", Answer: "Go", Value: 300},
				},
			},
			{
				Title: "Geography",
				Questions: []model.Question{
					{Prompt: "The longest river in Africa.", Answer: "The Nile", Value: 100},
					{Prompt: "The capital of Wisconsin.", Answer: "Madison", Value: 200},
					{Prompt: "The smallest country by area.", Answer: "Vatican City", Value: 300},
				},
			},
		},
	}
}
