package ws

import (
	"buzzer/internal/game"
	"buzzer/internal/model"
	"buzzer/internal/service"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	server  *httptest.Server
	roomSvc *service.RoomService
	room    *service.CreateRoomResponse
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	roomSvc := service.NewRoomService(game.NewRegistry(nil), nil, nil, nil, nil)
	room, err := roomSvc.CreateRoom(context.Background(), service.CreateRoomRequest{
		Categories: []model.Category{{
			Title:     "Test Category",
			Questions: []model.Question{{Prompt: "What is 2+2?", Answer: "4", Value: 200}, {Prompt: "6*2?", Answer: "12", Value: 400}},
		}},
	})
	require.NoError(t, err)

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/rooms/{code}/ws", NewHandler(roomSvc, nil).ServeRoom)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &testServer{server: server, roomSvc: roomSvc, room: room}
}

func (s *testServer) url(code model.RoomCode, params url.Values) string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http") +
		fmt.Sprintf("/api/v1/rooms/%s/ws?%s", code, params.Encode())
}

func (s *testServer) dial(t *testing.T, params url.Values) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(s.url(s.room.RoomCode, params), nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readEvent reads frames until one tagged name arrives
func readEvent(t *testing.T, conn *websocket.Conn, name string) json.RawMessage {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		var frame map[string]json.RawMessage
		require.NoError(t, conn.ReadJSON(&frame))
		if body, ok := frame[name]; ok {
			return body
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

func TestHandshakeRejections(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		code   model.RoomCode
		params url.Values
		status int
	}{
		{name: "unknown room", code: "NOROOM", params: url.Values{"playerName": {"AJ"}}, status: http.StatusNotFound},
		{name: "no credentials", code: s.room.RoomCode, params: url.Values{}, status: http.StatusUnauthorized},
		{name: "wrong host token", code: s.room.RoomCode, params: url.Values{"token": {model.GenerateHostToken().String()}}, status: http.StatusUnauthorized},
		{name: "unknown player", code: s.room.RoomCode, params: url.Values{"token": {model.GeneratePlayerToken().String()}, "playerID": {"7"}}, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(s.url(tt.code, tt.params), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestFullRoundOverWebSocket(t *testing.T) {
	s := newTestServer(t)

	host := s.dial(t, url.Values{"token": {s.room.HostToken.String()}})
	assert.JSONEq(t, `[]`, string(readEvent(t, host, "PlayerList")))

	player := s.dial(t, url.Values{"playerName": {"AJ"}})
	var joined struct {
		PID   model.PlayerID `json:"pid"`
		Token string         `json:"token"`
	}
	require.NoError(t, json.Unmarshal(readEvent(t, player, "NewPlayer"), &joined))
	assert.Equal(t, model.PlayerID(1), joined.PID)
	readEvent(t, player, "PlayerState")

	var list []model.Player
	require.NoError(t, json.Unmarshal(readEvent(t, host, "PlayerList"), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "AJ", list[0].Name)

	send(t, host, `{"type":"StartGame"}`)
	readEvent(t, player, "GameState")
	send(t, host, `{"type":"HostChoice","categoryIndex":0,"questionIndex":1}`)
	readEvent(t, player, "GameState")
	send(t, host, `{"type":"HostReady"}`)

	witness := readEvent(t, player, "Witness")
	assert.Contains(t, string(witness), `"waitingForBuzz"`)

	send(t, player, `{"type":"Buzz"}`)
	var buzzed struct {
		PID  model.PlayerID `json:"pid"`
		Name string         `json:"name"`
	}
	require.NoError(t, json.Unmarshal(readEvent(t, host, "PlayerBuzzed"), &buzzed))
	assert.Equal(t, "AJ", buzzed.Name)

	send(t, host, `{"type":"HostChecked","correct":true}`)
	var state struct {
		State   model.GameState `json:"state"`
		Players []model.Player  `json:"players"`
	}
	require.NoError(t, json.Unmarshal(readEvent(t, host, "GameState"), &state))
	for state.State != model.StateSelection {
		require.NoError(t, json.Unmarshal(readEvent(t, host, "GameState"), &state))
	}
	require.Len(t, state.Players, 1)
	assert.Equal(t, int32(400), state.Players[0].Score)

	t.Run("reconnect keeps score", func(t *testing.T) {
		player.Close()
		again := s.dial(t, url.Values{"token": {joined.Token}, "playerID": {"1"}})

		var ps struct {
			Score   int32 `json:"score"`
			CanBuzz bool  `json:"canBuzz"`
		}
		require.NoError(t, json.Unmarshal(readEvent(t, again, "PlayerState"), &ps))
		assert.Equal(t, int32(400), ps.Score)
		readEvent(t, again, "GameState")
	})
}

func TestMalformedCommandKeepsSession(t *testing.T) {
	s := newTestServer(t)
	host := s.dial(t, url.Values{"host_token": {s.room.HostToken.String()}})
	readEvent(t, host, "PlayerList")

	send(t, host, `not json`)
	send(t, host, `{"type":"Dance"}`)
	send(t, host, `{"type":"StartGame"}`)

	var state struct {
		State model.GameState `json:"state"`
	}
	require.NoError(t, json.Unmarshal(readEvent(t, host, "GameState"), &state))
	assert.Equal(t, model.StateSelection, state.State)
}

func TestHeartbeatOverWebSocket(t *testing.T) {
	s := newTestServer(t)
	player := s.dial(t, url.Values{"playerName": {"AJ"}})
	readEvent(t, player, "PlayerState")

	report, err := s.roomSvc.Heartbeat(s.room.RoomCode)
	require.NoError(t, err)
	require.Equal(t, 1, report.Sent)

	var hb struct {
		HBID  uint32 `json:"hbid"`
		TSent uint64 `json:"t_sent"`
	}
	require.NoError(t, json.Unmarshal(readEvent(t, player, "DoHeartbeat"), &hb))

	send(t, player, fmt.Sprintf(`{"type":"Heartbeat","hbid":%d,"tDohbRecv":%d}`, hb.HBID, hb.TSent+20))
	var got struct {
		HBID uint32 `json:"hbid"`
	}
	require.NoError(t, json.Unmarshal(readEvent(t, player, "GotHeartbeat"), &got))
	assert.Equal(t, hb.HBID, got.HBID)
}

func TestRoomCodeIsCaseInsensitive(t *testing.T) {
	s := newTestServer(t)
	code := model.RoomCode(strings.ToLower(s.room.RoomCode.String()))

	conn, _, err := websocket.DefaultDialer.Dial(s.url(code, url.Values{"playerName": {"AJ"}}), nil)
	require.NoError(t, err)
	defer conn.Close()
	readEvent(t, conn, "NewPlayer")
}
