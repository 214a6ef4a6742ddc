package api

import (
	"database/sql"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soundroom/soundroom/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWs(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()

	wsUrl := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(wsUrl, nil)
	require.NoError(t, err, "expected the websocket upgrade to succeed")
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg), "expected a frame on the wire")
	return msg
}

func Test_serveWs_AuthFailures(t *testing.T) {
	db := &database.MockSoundroomRepository{}
	db.On("GetAccountById", 1).Return(database.User{Id: 1, CurrentRoomId: 10}, nil)
	db.On("GetAccountById", 99).Return(database.User{}, sql.ErrNoRows)
	db.On("GetRoom", 44).Return(database.Room{}, sql.ErrNoRows)

	app, mux := newTestApp(t, db)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	token, err := app.createJwtForSession(1, time.Hour)
	require.NoError(t, err)
	goneToken, err := app.createJwtForSession(99, time.Hour)
	require.NoError(t, err)

	tt := []struct {
		name   string
		query  string
		reason string
	}{
		{name: "missing token", query: "room_id=10", reason: "authentication failed"},
		{name: "missing room id", query: "token=" + token, reason: "room id required"},
		{name: "deleted user", query: "token=" + goneToken + "&room_id=44", reason: "invalid user"},
		{name: "unknown room", query: "token=" + token + "&room_id=44", reason: "room not found"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			conn := dialWs(t, srv, tc.query)

			_, _, err := conn.ReadMessage()
			var closeErr *websocket.CloseError
			require.ErrorAs(t, err, &closeErr, "expected the server to close the connection")
			assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code, "expected a policy violation close code")
			assert.Equal(t, tc.reason, closeErr.Text)
		})
	}
}

func Test_serveWs_Session(t *testing.T) {
	db := &database.MockSoundroomRepository{}
	db.On("GetAccountById", 1).Return(database.User{Id: 1, Name: "owner", CurrentRoomId: 10}, nil)
	db.On("GetAccountById", 2).Return(database.User{Id: 2, Name: "member", CurrentRoomId: 10}, nil)
	db.On("GetRoom", 10).Return(database.Room{Id: 10, OwnerId: 1, Members: []int64{1, 2}}, nil)
	db.On("ListSongs", 10).Return([]database.QueuedSong{{Id: 1, RoomId: 10, VideoId: "abc", AddedAt: 100}}, nil)

	app, mux := newTestApp(t, db)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ownerToken, err := app.createJwtForSession(1, time.Hour)
	require.NoError(t, err)
	memberToken, err := app.createJwtForSession(2, time.Hour)
	require.NoError(t, err)

	ownerConn := dialWs(t, srv, "token="+ownerToken+"&room_id=10")
	state := readFrame(t, ownerConn)
	assert.Equal(t, "ROOM_STATE", state["type"], "expected a snapshot on admission")
	assert.Equal(t, true, state["isAdmin"])
	assert.Equal(t, float64(10), state["roomId"])
	require.Len(t, state["queue"], 1)

	memberConn := dialWs(t, srv, "token="+memberToken+"&room_id=10")
	state = readFrame(t, memberConn)
	assert.Equal(t, "ROOM_STATE", state["type"])
	assert.Equal(t, false, state["isAdmin"], "expected a non-owner not flagged as admin")

	// A progress report fans out to the room but never echoes to its sender.
	require.NoError(t, memberConn.WriteJSON(map[string]any{
		"type": "PROGRESS_UPDATE", "progress": 0.5, "duration": 180, "currentTime": 90,
	}))
	msg := readFrame(t, ownerConn)
	assert.Equal(t, "PROGRESS_UPDATE", msg["type"])
	assert.Equal(t, 0.5, msg["progress"])

	// Player state reaches everyone including the sender; for the member
	// it must arrive as the next frame, proving the progress report was
	// not echoed back.
	require.NoError(t, memberConn.WriteJSON(map[string]any{"type": "PLAYER_STATE", "isPlaying": true}))
	msg = readFrame(t, memberConn)
	assert.Equal(t, "PLAYER_STATE", msg["type"], "expected no echo of the sender's own progress report")
	msg = readFrame(t, ownerConn)
	assert.Equal(t, "PLAYER_STATE", msg["type"])
	assert.Equal(t, true, msg["isPlaying"])
}
