package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soundroom/soundroom/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one live, authenticated connection. It belongs to exactly one
// user and one room for its lifetime.
type Client struct {
	conn   *websocket.Conn
	server *SyncServer
	log    *log.Logger
	user   types.User
	roomId int
	send   chan []byte
	stop   chan struct{}
	// cleanup must run exactly once even on abnormal disconnect
	cleanupOnce sync.Once
}

func NewClient(user types.User, roomId int, conn *websocket.Conn, ss *SyncServer, l *log.Logger) *Client {
	return &Client{
		conn:   conn,
		server: ss,
		log:    l,
		user:   user,
		roomId: roomId,
		send:   make(chan []byte, 256),
		stop:   make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Printf("write pump exiting for user %d", c.user.Id)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}

			if !c.sendMessage(websocket.TextMessage, msg) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Printf("read pump exiting for user %d", c.user.Id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Println("error parsing message:", err)
			continue
		}

		c.server.Dispatch(c, &msg)
	}
}

// queueMessage enqueues a serialized message for delivery without
// blocking; it reports false when the client's buffer is full or the
// client is stopping.
func (c *Client) queueMessage(msg []byte) bool {
	select {
	case c.send <- msg:
	case <-c.stop:
		return false
	default:
		c.log.Printf("send buffer full for user %d", c.user.Id)
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

// close forces the connection down; the read pump's cleanup path runs the
// directory removal.
func (c *Client) close() {
	c.cleanup()
	c.conn.Close()
}

func (c *Client) cleanup() {
	c.cleanupOnce.Do(func() {
		c.server.Unregister(c)
		close(c.stop)
	})
}
