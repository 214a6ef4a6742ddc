package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/soundroom/soundroom/internal/config"
	"github.com/soundroom/soundroom/internal/database"
	"github.com/soundroom/soundroom/internal/server"
	"github.com/soundroom/soundroom/internal/services"
)

type App struct {
	log            *log.Logger
	db             database.SoundroomRepository
	rooms          *services.RoomService
	queue          *services.QueueService
	sync           *server.SyncServer
	mux            *http.Server
	signingKey     []byte
	allowedOrigins []string
}

func NewApp(mux *http.ServeMux, logger *log.Logger, sync *server.SyncServer, rooms *services.RoomService,
	queue *services.QueueService, db database.SoundroomRepository, cfg *config.Config) *App {
	s := &App{
		log:            logger,
		db:             db,
		rooms:          rooms,
		queue:          queue,
		sync:           sync,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("POST /api/users/signup", s.signup)
	mux.HandleFunc("POST /api/users/signin", s.signin)
	mux.Handle("/api/users", s.authMiddleware(s.account))
	mux.Handle("GET /api/users/current-room", s.authMiddleware(s.currentRoom))
	mux.Handle("POST /api/rooms", s.authMiddleware(s.createRoom))
	mux.Handle("POST /api/rooms/join", s.authMiddleware(s.joinRoom))
	mux.Handle("PUT /api/rooms/leave", s.authMiddleware(s.leaveRoom))
	mux.Handle("DELETE /api/rooms/{id}", s.authMiddleware(s.deleteRoom))
	mux.Handle("GET /api/rooms/{id}", s.authMiddleware(s.getRoom))
	mux.Handle("GET /api/rooms/{id}/is-admin", s.authMiddleware(s.isAdmin))
	mux.Handle("POST /api/songs", s.authMiddleware(s.addSong))
	mux.Handle("DELETE /api/songs", s.authMiddleware(s.removeSong))
	mux.Handle("PUT /api/songs/move-to-top", s.authMiddleware(s.moveSongToTop))
	mux.Handle("GET /api/songs", s.authMiddleware(s.getQueue))
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *App) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *App) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
