package ws

import (
	"buzzer/internal/game"
	"buzzer/internal/model"
	"buzzer/internal/service"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler runs one session loop per WebSocket connection
type Handler struct {
	roomSvc *service.RoomService
	logger  *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(roomSvc *service.RoomService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		roomSvc: roomSvc,
		logger:  logger,
	}
}

// credentialsFrom reads ?token=&playerID=&playerName=; host_token is
// accepted as an alias for token
func credentialsFrom(r *http.Request) game.Credentials {
	q := r.URL.Query()
	token := q.Get("token")
	if token == "" {
		token = q.Get("host_token")
	}
	return game.Credentials{
		Token:      token,
		PlayerID:   q.Get("playerID"),
		PlayerName: q.Get("playerName"),
	}
}

// RoomCode normalizes the {code} path variable
func RoomCode(r *http.Request) model.RoomCode {
	return model.ParseRoomCode(mux.Vars(r)["code"])
}

// ServeRoom handles GET /api/v1/rooms/{code}/ws
func (h *Handler) ServeRoom(w http.ResponseWriter, r *http.Request) {
	code := RoomCode(r)
	creds := credentialsFrom(r)
	logger := h.logger.With(zap.String("room_code", code.String()))

	if _, err := h.roomSvc.Authenticate(code, creds); err != nil {
		if errors.Is(err, game.ErrRoomNotFound) {
			http.Error(w, "Room does not exist", http.StatusNotFound)
			return
		}
		logger.Info("Rejected WebSocket handshake", zap.Error(err))
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade error", zap.Error(err))
		return
	}

	mb := game.NewMailbox(game.DefaultMailboxSize)
	id, err := h.roomSvc.Connect(code, creds, mb)
	if err != nil {
		// the room was evicted or the player vanished since the check above
		logger.Info("Session setup failed after upgrade", zap.Error(err))
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = wsConn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		wsConn.Close()
		return
	}

	logger = logger.With(zap.Stringer("identity", id.Kind), zap.Uint32("player_id", uint32(id.PlayerID)))
	logger.Info("WebSocket session started")

	ctx, cancel := context.WithCancel(context.Background())
	go h.writePump(ctx, wsConn, mb, logger)
	go h.readPump(ctx, cancel, wsConn, code, id, logger)
}

func (h *Handler) readPump(ctx context.Context, cancel context.CancelFunc, wsConn *websocket.Conn, code model.RoomCode, id game.Identity, logger *zap.Logger) {
	defer func() {
		cancel()
		wsConn.Close()
		logger.Info("WebSocket session ended")
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket error", zap.Error(err))
			}
			return
		}
		if msgType != websocket.TextMessage {
			logger.Warn("Unexpected binary message")
			continue
		}
		wsConn.SetReadDeadline(time.Now().Add(pongWait))

		cmd, err := game.DecodeCommand(data)
		if err != nil {
			logger.Warn("Failed to parse command", zap.Error(err))
			continue
		}

		err = h.roomSvc.HandleCommand(ctx, code, cmd, id.Sender())
		if errors.Is(err, game.ErrRoomNotFound) {
			logger.Info("Room lost, closing session")
			return
		}
		if err != nil {
			logger.Error("Failed to handle command", zap.String("command", game.CommandName(cmd)), zap.Error(err))
		}
	}
}

func (h *Handler) writePump(ctx context.Context, wsConn *websocket.Conn, mb game.Mailbox, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			wsConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case ev := <-mb:
			data, err := game.EncodeEvent(ev)
			if err != nil {
				logger.Error("Failed to encode event", zap.String("event", game.EventName(ev)), zap.Error(err))
				continue
			}

			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
