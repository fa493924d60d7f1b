package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	seen := make(map[RoomCode]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateRoomCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(roomCodeChars, c), "unexpected char %q in %s", c, code)
		}
		seen[code] = true
	}
	// 24^6 codes; 200 draws colliding more than a handful of times means a broken generator
	assert.Greater(t, len(seen), 195)
}

func TestGenerateRoomCodeDiscardsBiasedBytes(t *testing.T) {
	// 240..255 would map onto the first 16 letters a second time
	src := bytes.NewReader([]byte{
		255, 0, 240, 1, 250, 23, 239, 24, 47, 2, 241, 3,
	})

	code, err := generateRoomCode(src)
	require.NoError(t, err)

	// kept bytes: 0 1 23 239 24 47 -> A B Z Z A Z
	assert.Equal(t, RoomCode("ABZZAZ"), code)
}

func TestGenerateRoomCodeShortSource(t *testing.T) {
	_, err := generateRoomCode(bytes.NewReader([]byte{250, 251, 252}))
	assert.Error(t, err)
}

func TestRoomCodeLettersAreUniform(t *testing.T) {
	counts := make(map[rune]int)
	for i := 0; i < 2000; i++ {
		code, err := GenerateRoomCode()
		require.NoError(t, err)
		for _, c := range code {
			counts[c]++
		}
	}
	// 12000 letters over 24 symbols: 500 expected each
	require.Len(t, counts, len(roomCodeChars))
	for c, n := range counts {
		assert.InDelta(t, 500, n, 150, "letter %q", c)
	}
}

func TestParseRoomCode(t *testing.T) {
	tests := []struct {
		in   string
		want RoomCode
	}{
		{"abcdef", "ABCDEF"},
		{"  XyZwVu ", "XYZWVU"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRoomCode(tt.in), "input %q", tt.in)
	}
}

func TestTokensEncodeAsCanonicalUUID(t *testing.T) {
	host := GenerateHostToken()
	raw, err := json.Marshal(host)
	require.NoError(t, err)
	assert.Equal(t, `"`+host.String()+`"`, string(raw))

	parsed, err := ParseHostToken(host.String())
	require.NoError(t, err)
	assert.Equal(t, host, parsed)

	_, err = ParsePlayerToken("not-a-uuid")
	assert.Error(t, err)

	assert.NotEqual(t, GeneratePlayerToken(), GeneratePlayerToken())
}

func TestPlayerTokenNotSerialized(t *testing.T) {
	p := NewPlayer(3, "Ada", GeneratePlayerToken())

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	assert.JSONEq(t, `{"pid":3,"name":"Ada","score":0,"buzzed":false}`, string(raw))
}

func TestCloneCategoriesIsDeep(t *testing.T) {
	src := []Category{{Title: "A", Questions: []Question{{Prompt: "q", Value: 100}}}}

	clone := CloneCategories(src)
	clone[0].Questions[0].Answered = true

	assert.False(t, src[0].Questions[0].Answered)
	assert.Nil(t, CloneCategories(nil))
}

func TestGameStateValid(t *testing.T) {
	for _, s := range []GameState{StateStart, StateSelection, StateQuestionReading, StateWaitingForBuzz, StateAnswer, StateAnswerReveal, StateGameEnd} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, GameState("lobby").Valid())
}
