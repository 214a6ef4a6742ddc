package api

import (
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soundroom/soundroom/internal/server"
	"github.com/soundroom/soundroom/internal/services"
)

const closeWriteWait = 10 * time.Second

// serveWs upgrades the connection, authenticates it with the token and
// room id query parameters and hands it to the coordinator. A failed
// authentication closes the socket with a policy violation code before
// any message exchange.
func (s *App) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	user, roomId, err := s.authenticateWS(r)
	if err != nil {
		s.log.Println("ws auth:", err)

		reason := "authentication failed"
		switch {
		case errors.Is(err, errRoomRequired):
			reason = "room id required"
		case errors.Is(err, errUserNotFound):
			reason = "invalid user"
		case errors.Is(err, services.ErrRoomNotFound):
			reason = "room not found"
		}

		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
			time.Now().Add(closeWriteWait),
		)
		conn.Close()
		return
	}

	client := server.NewClient(user, roomId, conn, s.sync, s.log)

	s.sync.Register(client)
	go client.Write()
	go client.Read()
}
