package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soundroom/soundroom/internal/database"
	"github.com/soundroom/soundroom/internal/testutil"
	"github.com/soundroom/soundroom/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConnPair upgrades a real websocket over a loopback server and
// returns both ends.
func newTestConnPair(t *testing.T) (serverConn, clientConn *websocket.Conn) {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	wsUrl := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, resp, err := websocket.DefaultDialer.Dial(wsUrl, nil)
	require.NoError(t, err, "expected websocket dial to succeed")
	resp.Body.Close()
	t.Cleanup(func() { clientConn.Close() })

	select {
	case serverConn = <-connCh:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the server side of the connection")
	}
	t.Cleanup(func() { serverConn.Close() })

	return serverConn, clientConn
}

func newTestConn(t *testing.T) *websocket.Conn {
	t.Helper()
	serverConn, _ := newTestConnPair(t)
	return serverConn
}

func Test_queueMessage(t *testing.T) {
	ss := newTestSyncServer(t, &database.MockSoundroomRepository{})

	t.Run("enqueues while the buffer has room", func(t *testing.T) {
		c := NewClient(types.User{Id: 1}, 10, nil, ss, testutil.TestLogger(t))
		assert.True(t, c.queueMessage([]byte("a")), "expected enqueue to succeed")
		assert.Equal(t, []byte("a"), <-c.send)
	})

	t.Run("reports false when the buffer is full", func(t *testing.T) {
		c := NewClient(types.User{Id: 1}, 10, nil, ss, testutil.TestLogger(t))
		c.send = make(chan []byte, 1)
		require.True(t, c.queueMessage([]byte("a")))
		assert.False(t, c.queueMessage([]byte("b")), "expected enqueue to fail on a full buffer")
	})

	t.Run("reports false after the client stopped", func(t *testing.T) {
		c := NewClient(types.User{Id: 1}, 10, nil, ss, testutil.TestLogger(t))
		c.cleanup()
		assert.False(t, c.queueMessage([]byte("a")), "expected enqueue to fail after stop")
	})
}

func Test_cleanupRunsOnce(t *testing.T) {
	db := &database.MockSoundroomRepository{}
	db.On("ListSongs", 10).Return([]database.QueuedSong{}, nil)
	db.On("GetRoom", 10).Return(database.Room{Id: 10, OwnerId: 1}, nil)

	ss := newTestSyncServer(t, db)
	c := NewClient(types.User{Id: 1}, 10, newTestConn(t), ss, testutil.TestLogger(t))
	ss.Register(c)
	receiveMessage(t, c)

	c.close()
	assert.Empty(t, ss.membersOf(10), "expected the client unregistered")
	// A second close must not panic on the already-closed stop channel.
	c.close()
}

func Test_WritePump(t *testing.T) {
	ss := newTestSyncServer(t, &database.MockSoundroomRepository{})
	serverConn, clientConn := newTestConnPair(t)
	c := NewClient(types.User{Id: 1}, 10, serverConn, ss, testutil.TestLogger(t))

	go c.Write()
	require.True(t, c.queueMessage([]byte(`{"type":"SONG_ENDED"}`)))

	clientConn.SetReadDeadline(time.Now().Add(time.Second))
	msgType, data, err := clientConn.ReadMessage()
	require.NoError(t, err, "expected the queued frame on the wire")
	assert.Equal(t, websocket.TextMessage, msgType)
	assert.JSONEq(t, `{"type":"SONG_ENDED"}`, string(data))

	c.close()
}

func Test_ReadPump(t *testing.T) {
	db := &database.MockSoundroomRepository{}
	db.On("ListSongs", 10).Return([]database.QueuedSong{}, nil)
	db.On("GetRoom", 10).Return(database.Room{Id: 10, OwnerId: 1}, nil)

	ss := newTestSyncServer(t, db)
	logger := testutil.TestLogger(t)

	receiver := NewClient(types.User{Id: 1}, 10, nil, ss, logger)
	ss.Register(receiver)
	receiveMessage(t, receiver)

	serverConn, clientConn := newTestConnPair(t)
	sender := NewClient(types.User{Id: 2}, 10, serverConn, ss, logger)
	ss.Register(sender)
	receiveMessage(t, sender)

	go sender.Read()

	// Malformed frames are skipped, not fatal.
	require.NoError(t, clientConn.WriteMessage(websocket.TextMessage, []byte("not json")))
	require.NoError(t, clientConn.WriteJSON(map[string]any{"type": TypePlayerState, "isPlaying": true}))

	msg := receiveMessage(t, receiver)
	assert.Equal(t, TypePlayerState, msg["type"], "expected the event dispatched to the room")
	assert.Equal(t, true, msg["isPlaying"])

	// Closing the peer ends the pump and unregisters the client.
	clientConn.Close()
	assert.Eventually(t, func() bool {
		return len(ss.membersOf(10)) == 1
	}, time.Second, 10*time.Millisecond, "expected the sender unregistered after disconnect")
}
