package model

// GameState is the phase a room is in
type GameState string

const (
	StateStart           GameState = "start"
	StateSelection       GameState = "selection"
	StateQuestionReading GameState = "questionReading"
	StateWaitingForBuzz  GameState = "waitingForBuzz"
	StateAnswer          GameState = "answer"
	StateAnswerReveal    GameState = "answerReveal"
	StateGameEnd         GameState = "gameEnd"
)

// Valid reports whether s is one of the known states
func (s GameState) Valid() bool {
	switch s {
	case StateStart, StateSelection, StateQuestionReading, StateWaitingForBuzz,
		StateAnswer, StateAnswerReveal, StateGameEnd:
		return true
	}
	return false
}
