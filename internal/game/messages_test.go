package game

import (
	"buzzer/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Command
		err      error
	}{
		{name: "StartGame", input: `{"type":"StartGame"}`, expected: StartGame{}},
		{name: "EndGame", input: `{"type":"EndGame"}`, expected: EndGame{}},
		{name: "Buzz", input: `{"type":"Buzz"}`, expected: Buzz{}},
		{name: "HostReady", input: `{"type":"HostReady"}`, expected: HostReady{}},
		{name: "HostSkip", input: `{"type":"HostSkip"}`, expected: HostSkip{}},
		{name: "HostContinue", input: `{"type":"HostContinue"}`, expected: HostContinue{}},
		{
			name:     "HostChoice",
			input:    `{"type":"HostChoice","categoryIndex":2,"questionIndex":3}`,
			expected: HostChoice{CategoryIndex: 2, QuestionIndex: 3},
		},
		{name: "HostChecked", input: `{"type":"HostChecked","correct":true}`, expected: HostChecked{Correct: true}},
		{name: "HostChecked false", input: `{"type":"HostChecked","correct":false}`, expected: HostChecked{}},
		{
			name:     "Heartbeat",
			input:    `{"type":"Heartbeat","hbid":1042,"tDohbRecv":1700000000050}`,
			expected: Heartbeat{HBID: 1042, TRecv: 1_700_000_000_050},
		},
		{
			name:     "LatencyOfHeartbeat",
			input:    `{"type":"LatencyOfHeartbeat","hbid":1042,"tLat":120}`,
			expected: LatencyOfHeartbeat{HBID: 1042, TLat: 120},
		},
		{name: "extra fields ignored", input: `{"type":"Buzz","extra":1}`, expected: Buzz{}},
		{name: "unknown type", input: `{"type":"Dance"}`, err: ErrUnknownCommand},
		{name: "missing type", input: `{}`, err: ErrMalformedCommand},
		{name: "not json", input: `buzz`, err: ErrMalformedCommand},
		{name: "HostChoice missing index", input: `{"type":"HostChoice","categoryIndex":1}`, err: ErrMalformedCommand},
		{name: "HostChecked missing correct", input: `{"type":"HostChecked"}`, err: ErrMalformedCommand},
		{name: "Heartbeat wrong type", input: `{"type":"Heartbeat","hbid":"x","tDohbRecv":1}`, err: ErrMalformedCommand},
		{name: "LatencyOfHeartbeat missing tLat", input: `{"type":"LatencyOfHeartbeat","hbid":1}`, err: ErrMalformedCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeCommand([]byte(tt.input))
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.Nil(t, cmd)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cmd)
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	token, err := model.ParsePlayerToken("3f1b0c8e-2d44-4e8b-9a55-2f1c9c1d7e10")
	require.NoError(t, err)
	winner := model.PlayerID(2)

	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{name: "GotHeartbeat", event: GotHeartbeat{HBID: 7}, expected: `{"GotHeartbeat":{"hbid":7}}`},
		{
			name:     "DoHeartbeat",
			event:    DoHeartbeat{HBID: 42, TSent: 1_700_000_000_042},
			expected: `{"DoHeartbeat":{"hbid":42,"t_sent":1700000000042}}`,
		},
		{
			name:     "NewPlayer",
			event:    NewPlayer{PlayerID: 1, Token: token},
			expected: `{"NewPlayer":{"pid":1,"token":"3f1b0c8e-2d44-4e8b-9a55-2f1c9c1d7e10"}}`,
		},
		{
			name:     "PlayerList omits tokens",
			event:    PlayerList{Players: []model.Player{model.NewPlayer(1, "AJ", token)}},
			expected: `{"PlayerList":[{"pid":1,"name":"AJ","score":0,"buzzed":false}]}`,
		},
		{name: "empty PlayerList", event: PlayerList{}, expected: `{"PlayerList":[]}`},
		{
			name:     "PlayerState",
			event:    PlayerState{PlayerID: 3, Buzzed: true, Score: -200, CanBuzz: false},
			expected: `{"PlayerState":{"pid":3,"buzzed":true,"score":-200,"canBuzz":false}}`,
		},
		{
			name:     "PlayerBuzzed",
			event:    PlayerBuzzed{PlayerID: 3, Name: "Sam"},
			expected: `{"PlayerBuzzed":{"pid":3,"name":"Sam"}}`,
		},
		{
			name:     "GameState",
			event:    GameStateEvent{State: model.StateGameEnd, CurrentQuestion: &QuestionRef{Category: 1, Question: 4}, Winner: &winner},
			expected: `{"GameState":{"state":"gameEnd","categories":[],"players":[],"currentQuestion":[1,4],"currentBuzzer":null,"winner":2}}`,
		},
		{
			name:     "Witness",
			event:    Witness{Msg: GotHeartbeat{HBID: 9}},
			expected: `{"Witness":{"msg":{"GotHeartbeat":{"hbid":9}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeEvent(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestEncodeEmptyWitness(t *testing.T) {
	_, err := EncodeEvent(Witness{})
	assert.Error(t, err)
}

func TestCommandClassification(t *testing.T) {
	host := []Command{StartGame{}, EndGame{}, HostReady{}, HostChoice{}, HostChecked{}, HostSkip{}, HostContinue{}}
	for _, cmd := range host {
		assert.True(t, IsHostCommand(cmd), CommandName(cmd))
	}
	for _, cmd := range []Command{Buzz{}, Heartbeat{}, LatencyOfHeartbeat{}} {
		assert.False(t, IsHostCommand(cmd), CommandName(cmd))
	}

	assert.True(t, ShouldWitness(HostReady{}))
	assert.False(t, ShouldWitness(HostChoice{}))
	assert.False(t, ShouldWitness(Buzz{}))
}

func TestResponseMerge(t *testing.T) {
	a := ToHost(PlayerBuzzed{PlayerID: 1})
	b := BroadcastState(GotHeartbeat{HBID: 1}).Merge(ToPlayer(2, GotHeartbeat{HBID: 2}))

	merged := a.Merge(b)

	assert.Equal(t, []Event{PlayerBuzzed{PlayerID: 1}, GotHeartbeat{HBID: 1}}, merged.ToHost)
	assert.Equal(t, []Event{GotHeartbeat{HBID: 1}}, merged.ToPlayers)
	assert.Equal(t, []Addressed{{PlayerID: 2, Event: GotHeartbeat{HBID: 2}}}, merged.ToPlayer)
	assert.Equal(t, 4, merged.Len())
	assert.Len(t, a.ToHost, 1, "operands are not modified")
	assert.True(t, NewResponse().Merge(NewResponse()).IsEmpty())
}
