package handler

import (
	"buzzer/internal/model"
	"buzzer/internal/service"
	"buzzer/internal/transport/rest/middleware"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// BoardHandler handles board endpoints
type BoardHandler struct {
	boardSvc *service.BoardService
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(boardSvc *service.BoardService) *BoardHandler {
	return &BoardHandler{boardSvc: boardSvc}
}

// BoardRequest is the request body for creating or updating a board
type BoardRequest struct {
	Title      string           `json:"title"`
	Categories []model.Category `json:"categories"`
}

// Create handles POST /api/v1/boards
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetAdminID(r.Context())
	if adminID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req BoardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	board := &model.Board{Title: req.Title, Categories: req.Categories}
	id, err := h.boardSvc.Create(r.Context(), adminID, board)
	if err != nil {
		writeBoardError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// List handles GET /api/v1/boards
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetAdminID(r.Context())
	if adminID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	boards, err := h.boardSvc.GetByAuthorID(r.Context(), adminID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"boards": boards})
}

// Get handles GET /api/v1/boards/{boardId}
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	board, err := h.boardSvc.GetByID(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		writeBoardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, board)
}

// Update handles PUT /api/v1/boards/{boardId}
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetAdminID(r.Context())
	if adminID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req BoardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	board := &model.Board{ID: mux.Vars(r)["boardId"], Title: req.Title, Categories: req.Categories}
	if err := h.boardSvc.Update(r.Context(), adminID, board); err != nil {
		writeBoardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete handles DELETE /api/v1/boards/{boardId}
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetAdminID(r.Context())
	if adminID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.boardSvc.Delete(r.Context(), adminID, mux.Vars(r)["boardId"]); err != nil {
		writeBoardError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeBoardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBoardNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotBoardOwner):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidBoard):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
