package handler

import (
	"buzzer/internal/game"
	"buzzer/internal/model"
	"buzzer/internal/service"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	roomSvc *service.RoomService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomSvc *service.RoomService) *RoomHandler {
	return &RoomHandler{
		roomSvc: roomSvc,
	}
}

func roomCode(r *http.Request) model.RoomCode {
	return model.ParseRoomCode(mux.Vars(r)["code"])
}

// Create handles POST /api/v1/rooms/create
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRoomRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.roomSvc.CreateRoom(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrBoardNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, service.ErrInvalidBoard):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.roomSvc.Summary(roomCode(r))
	if errors.Is(err, game.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// CPR handles GET /api/v1/rooms/{code}/cpr. It asks every player for a
// heartbeat and answers in plain text.
func (h *RoomHandler) CPR(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	report, err := h.roomSvc.Heartbeat(code)
	if err != nil {
		if !errors.Is(err, game.ErrRoomNotFound) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "Err, %v", err)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Err, Room %s does not exist", code)
		return
	}

	fmt.Fprintf(w, "Ok, requested %d heartbeats, %d failed immediately", report.Players, len(report.Failed))
}
