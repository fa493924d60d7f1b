package game

import (
	"buzzer/internal/model"
	"math"
	"time"

	"go.uber.org/zap"
)

// Room owns one game. It is not safe for concurrent use; every access goes
// through the Registry, which holds a single lock for the duration of one
// command.
type Room struct {
	Code       model.RoomCode
	HostToken  model.HostToken
	State      model.GameState
	Host       *HostEntry
	Players    []*PlayerEntry
	Categories []model.Category

	// CurrentQuestion stays set through AnswerReveal so clients can show the
	// answer; HostContinue clears it
	CurrentQuestion *QuestionRef
	CurrentBuzzer   *model.PlayerID
	Winner          *model.PlayerID // meaningful in GameEnd only

	LastActivity time.Time

	lastPlayerID model.PlayerID
	logger       *zap.Logger
	now          func() time.Time
	schedule     func(time.Duration, func())
}

// NewRoom creates a room in the Start state with no players
func NewRoom(code model.RoomCode, hostToken model.HostToken, logger *zap.Logger) *Room {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Room{
		Code:      code,
		HostToken: hostToken,
		State:     model.StateStart,
		logger:    logger.With(zap.String("room_code", code.String())),
		now:       time.Now,
		schedule:  afterFunc,
	}
	r.LastActivity = r.now()
	return r
}

// Touch records activity so the sweep keeps the room alive
func (r *Room) Touch() {
	r.LastActivity = r.now()
}

// Player returns the entry for pid, or nil
func (r *Room) Player(pid model.PlayerID) *PlayerEntry {
	for _, p := range r.Players {
		if p.Player.ID == pid {
			return p
		}
	}
	return nil
}

// HandleCommand applies cmd on behalf of sender (nil for the host) and
// returns the events to deliver. Commands whose preconditions do not hold
// are stale: they change nothing and return an empty response.
func (r *Room) HandleCommand(cmd Command, sender *model.PlayerID) RoomResponse {
	if IsHostCommand(cmd) && sender != nil {
		r.logger.Debug("Ignoring host command from player",
			zap.String("command", CommandName(cmd)),
			zap.Uint32("player_id", uint32(*sender)))
		return NewResponse()
	}

	switch c := cmd.(type) {
	case StartGame:
		return r.handleStartGame()
	case HostChoice:
		return r.handleHostChoice(c)
	case HostReady:
		return r.handleHostReady()
	case Buzz:
		return r.handleBuzz(sender)
	case HostChecked:
		return r.handleHostChecked(c.Correct)
	case HostSkip:
		return r.handleHostSkip()
	case HostContinue:
		return r.handleHostContinue()
	case EndGame:
		return r.handleEndGame()
	case Heartbeat:
		return r.handleHeartbeat(c, sender)
	case LatencyOfHeartbeat:
		return r.handleLatencyOfHeartbeat(c, sender)
	}
	return NewResponse()
}

// Start|Selection -> Selection
func (r *Room) handleStartGame() RoomResponse {
	if r.State != model.StateStart && r.State != model.StateSelection {
		return NewResponse()
	}
	r.State = model.StateSelection
	r.logger.Info("Game started", zap.Int("players", len(r.Players)))
	return r.stateResponse()
}

// Selection -> QuestionReading, only for an existing unanswered question
func (r *Room) handleHostChoice(c HostChoice) RoomResponse {
	if r.State != model.StateSelection {
		return NewResponse()
	}
	q := r.question(c.CategoryIndex, c.QuestionIndex)
	if q == nil || q.Answered {
		r.logger.Debug("Ignoring choice of missing or answered question",
			zap.Int("category_index", c.CategoryIndex),
			zap.Int("question_index", c.QuestionIndex))
		return NewResponse()
	}

	r.CurrentQuestion = &QuestionRef{Category: c.CategoryIndex, Question: c.QuestionIndex}
	r.CurrentBuzzer = nil
	r.resetBuzzed()
	r.State = model.StateQuestionReading
	return r.stateResponse()
}

// QuestionReading -> WaitingForBuzz
func (r *Room) handleHostReady() RoomResponse {
	if r.State != model.StateQuestionReading || r.CurrentQuestion == nil {
		return NewResponse()
	}
	r.State = model.StateWaitingForBuzz
	return r.stateResponse()
}

// WaitingForBuzz -> Answer for the first eligible player to get here
func (r *Room) handleBuzz(sender *model.PlayerID) RoomResponse {
	if r.State != model.StateWaitingForBuzz || sender == nil {
		return NewResponse()
	}
	p := r.Player(*sender)
	if p == nil || p.Player.Buzzed {
		return NewResponse()
	}

	r.logger.Info("Player buzzed in",
		zap.Uint32("player_id", uint32(p.Player.ID)),
		zap.String("player_name", p.Player.Name))

	p.Player.Buzzed = true
	pid := p.Player.ID
	r.CurrentBuzzer = &pid
	r.State = model.StateAnswer

	return ToHost(PlayerBuzzed{PlayerID: pid, Name: p.Player.Name}).
		Merge(r.stateResponse())
}

// Answer -> Selection | GameEnd | WaitingForBuzz
func (r *Room) handleHostChecked(correct bool) RoomResponse {
	if r.State != model.StateAnswer || r.CurrentQuestion == nil || r.CurrentBuzzer == nil {
		return NewResponse()
	}
	q := r.question(r.CurrentQuestion.Category, r.CurrentQuestion.Question)
	if q == nil {
		return NewResponse()
	}

	if buzzer := r.Player(*r.CurrentBuzzer); buzzer != nil {
		delta := int64(q.Value)
		if !correct {
			delta = -delta
		}
		buzzer.Player.Score = addScore(buzzer.Player.Score, delta)
		r.logger.Info("Answer checked",
			zap.Uint32("player_id", uint32(buzzer.Player.ID)),
			zap.Bool("correct", correct),
			zap.Int32("score", buzzer.Player.Score))
	}

	if !correct && r.anyCanBuzz() {
		r.CurrentBuzzer = nil
		r.State = model.StateWaitingForBuzz
		return r.stateResponse()
	}

	q.Answered = true
	r.CurrentQuestion = nil
	r.CurrentBuzzer = nil
	r.advance()
	return r.stateResponse()
}

// QuestionReading|WaitingForBuzz|Answer -> AnswerReveal, score untouched
func (r *Room) handleHostSkip() RoomResponse {
	if r.CurrentQuestion == nil {
		return NewResponse()
	}
	switch r.State {
	case model.StateQuestionReading, model.StateWaitingForBuzz, model.StateAnswer:
	default:
		return NewResponse()
	}

	r.logger.Info("Host skipped question",
		zap.Int("category_index", r.CurrentQuestion.Category),
		zap.Int("question_index", r.CurrentQuestion.Question))

	if q := r.question(r.CurrentQuestion.Category, r.CurrentQuestion.Question); q != nil {
		q.Answered = true
	}
	r.State = model.StateAnswerReveal
	return r.stateResponse()
}

// AnswerReveal -> Selection | GameEnd
func (r *Room) handleHostContinue() RoomResponse {
	if r.State != model.StateAnswerReveal {
		return NewResponse()
	}
	r.CurrentQuestion = nil
	r.CurrentBuzzer = nil
	r.resetBuzzed()
	r.advance()

	r.logger.Debug("Continuing after answer reveal", zap.String("next_state", string(r.State)))
	return r.stateResponse()
}

// any -> GameEnd
func (r *Room) handleEndGame() RoomResponse {
	r.determineWinner()
	r.State = model.StateGameEnd
	return r.stateResponse()
}

func (r *Room) handleHeartbeat(c Heartbeat, sender *model.PlayerID) RoomResponse {
	if sender == nil {
		return NewResponse()
	}
	p := r.Player(*sender)
	if p == nil || !p.tracker.RecordReceipt(c.HBID, c.TRecv) {
		return NewResponse()
	}
	return ToPlayer(p.Player.ID, GotHeartbeat{HBID: c.HBID})
}

func (r *Room) handleLatencyOfHeartbeat(c LatencyOfHeartbeat, sender *model.PlayerID) RoomResponse {
	if sender == nil {
		return NewResponse()
	}
	p := r.Player(*sender)
	if p == nil {
		return NewResponse()
	}
	if sample, ok := p.tracker.RecordLatency(c.HBID, clampUint32(c.TLat)); ok {
		r.logger.Debug("Updated player latency",
			zap.Uint32("player_id", uint32(p.Player.ID)),
			zap.Uint32("hbid", c.HBID),
			zap.Uint32("sample", sample),
			zap.Uint32("latency", p.Latency()))
	}
	return NewResponse()
}

// advance leaves a finished question for Selection, or ends the game when
// the board is exhausted
func (r *Room) advance() {
	if r.hasRemainingQuestions() {
		r.State = model.StateSelection
		return
	}
	r.determineWinner()
	r.State = model.StateGameEnd
}

// determineWinner picks the unique top scorer; a tie at the top means no
// winner
func (r *Room) determineWinner() {
	r.Winner = nil
	if len(r.Players) == 0 {
		r.logger.Debug("No players, no winner")
		return
	}

	best := r.Players[0].Player.Score
	for _, p := range r.Players[1:] {
		best = max(best, p.Player.Score)
	}

	var top []*PlayerEntry
	for _, p := range r.Players {
		if p.Player.Score == best {
			top = append(top, p)
		}
	}

	if len(top) != 1 {
		r.logger.Info("Game ended in a tie", zap.Int("tie_count", len(top)), zap.Int32("score", best))
		return
	}
	pid := top[0].Player.ID
	r.Winner = &pid
	r.logger.Info("Winner determined",
		zap.Uint32("player_id", uint32(pid)),
		zap.String("player_name", top[0].Player.Name),
		zap.Int32("score", best))
}

// addScore applies delta, saturating at the int32 bounds
func addScore(score int32, delta int64) int32 {
	return int32(max(math.MinInt32, min(math.MaxInt32, int64(score)+delta)))
}

func (r *Room) question(cat, q int) *model.Question {
	if cat < 0 || cat >= len(r.Categories) {
		return nil
	}
	questions := r.Categories[cat].Questions
	if q < 0 || q >= len(questions) {
		return nil
	}
	return &questions[q]
}

func (r *Room) hasRemainingQuestions() bool {
	for _, c := range r.Categories {
		for _, q := range c.Questions {
			if !q.Answered {
				return true
			}
		}
	}
	return false
}

func (r *Room) anyCanBuzz() bool {
	for _, p := range r.Players {
		if !p.Player.Buzzed {
			return true
		}
	}
	return false
}

func (r *Room) resetBuzzed() {
	for _, p := range r.Players {
		p.Player.Buzzed = false
	}
}

func (r *Room) players() []model.Player {
	out := make([]model.Player, len(r.Players))
	for i, p := range r.Players {
		out[i] = p.Player
	}
	return out
}

// GameStateEvent snapshots the full game state
func (r *Room) GameStateEvent() GameStateEvent {
	ev := GameStateEvent{
		State:      r.State,
		Categories: model.CloneCategories(r.Categories),
		Players:    r.players(),
	}
	if r.CurrentQuestion != nil {
		q := *r.CurrentQuestion
		ev.CurrentQuestion = &q
	}
	if r.CurrentBuzzer != nil {
		b := *r.CurrentBuzzer
		ev.CurrentBuzzer = &b
	}
	if r.Winner != nil {
		w := *r.Winner
		ev.Winner = &w
	}
	return ev
}

// PlayerListEvent lists every player in join order
func (r *Room) PlayerListEvent() PlayerList {
	return PlayerList{Players: r.players()}
}

// stateResponse broadcasts the game state and tells each player whether it
// can buzz right now
func (r *Room) stateResponse() RoomResponse {
	resp := BroadcastState(r.GameStateEvent())
	for _, p := range r.Players {
		resp = resp.Merge(ToPlayer(p.Player.ID, p.stateEvent(r.State)))
	}
	return resp
}

// Dispatch delivers resp to the current mailboxes. Undeliverable events are
// dropped.
func (r *Room) Dispatch(resp RoomResponse) {
	dropped := 0
	if r.Host != nil {
		for _, ev := range resp.ToHost {
			if !r.Host.Deliver(ev) {
				dropped++
			}
		}
	}
	for _, ev := range resp.ToPlayers {
		for _, p := range r.Players {
			if !p.Deliver(ev) {
				dropped++
			}
		}
	}
	for _, a := range resp.ToPlayer {
		if p := r.Player(a.PlayerID); p != nil && !p.Deliver(a.Event) {
			dropped++
		}
	}
	if dropped > 0 {
		r.logger.Debug("Dropped undeliverable events", zap.Int("count", dropped))
	}
}

// Result summarizes the standings, ranked by score
func (r *Room) Result() model.GameResult {
	standings := make([]model.Standing, len(r.Players))
	for i, p := range r.Players {
		standings[i] = model.Standing{
			PlayerID: p.Player.ID,
			Name:     p.Player.Name,
			Score:    p.Player.Score,
		}
	}
	rankStandings(standings)

	res := model.GameResult{
		RoomCode:  r.Code,
		Standings: standings,
		EndedAt:   r.now(),
	}
	if r.Winner != nil {
		w := *r.Winner
		res.Winner = &w
	}
	return res
}
