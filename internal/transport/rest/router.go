package rest

import (
	"buzzer/internal/cache"
	"buzzer/internal/service"
	"buzzer/internal/transport/rest/handler"
	"buzzer/internal/transport/rest/middleware"
	"buzzer/internal/transport/ws"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService  *service.AuthService
	BoardService *service.BoardService
	RoomService  *service.RoomService
	Results      cache.ResultCache
	WSHandler    *ws.Handler

	// AllowedOrigins is sent as Access-Control-Allow-Origin; empty means "*".
	AllowedOrigins string
	// StaticDir, when set, is served for every unmatched path.
	StaticDir string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	boardHandler := handler.NewBoardHandler(c.BoardService)
	roomHandler := handler.NewRoomHandler(c.RoomService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Server is up"))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/create", roomHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/rooms/{code}", roomHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{code}/cpr", roomHandler.CPR).Methods("GET", "OPTIONS")

	// WebSocket route (credentials in query params)
	v1.HandleFunc("/rooms/{code}/ws", c.WSHandler.ServeRoom).Methods("GET")

	if c.Results != nil {
		resultHandler := handler.NewResultHandler(c.Results)
		v1.HandleFunc("/results/{code}", resultHandler.Get).Methods("GET", "OPTIONS")
		v1.HandleFunc("/results/{code}/leaderboard", resultHandler.Leaderboard).Methods("GET", "OPTIONS")
	}

	// Admin routes (require admin auth)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/boards", boardHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/boards", boardHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/boards/{boardId}", boardHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/boards/{boardId}", boardHandler.Update).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/boards/{boardId}", boardHandler.Delete).Methods("DELETE", "OPTIONS")

	if c.StaticDir != "" {
		r.PathPrefix("/").Handler(spaHandler{dir: c.StaticDir}).Methods("GET", "HEAD")
	}

	return r
}

// spaHandler serves files from dir and falls back to index.html for
// paths that do not exist on disk.
type spaHandler struct {
	dir string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.dir, filepath.Clean("/"+r.URL.Path))
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
		return
	}
	http.ServeFile(w, r, path)
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
