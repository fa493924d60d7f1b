package handler

import (
	"buzzer/internal/cache"
	"net/http"
	"strconv"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// ResultHandler serves archived game results
type ResultHandler struct {
	results cache.ResultCache
}

// NewResultHandler creates a new result handler
func NewResultHandler(results cache.ResultCache) *ResultHandler {
	return &ResultHandler{results: results}
}

// Get handles GET /api/v1/results/{code}
func (h *ResultHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.results.GetResult(r.Context(), roomCode(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "result not found")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Leaderboard handles GET /api/v1/results/{code}/leaderboard?limit=N
func (h *ResultHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries, err := h.results.GetTop(r.Context(), roomCode(r), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
	})
}
