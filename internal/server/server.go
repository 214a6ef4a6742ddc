package server

import (
	"fmt"
	"log"
	"sync"

	"github.com/soundroom/soundroom/internal/services"
	"github.com/soundroom/soundroom/internal/stats"
)

// Metric names registered with the stats provider.
const (
	StatActiveConnections = "ActiveConnections"
	StatActiveRooms       = "ActiveRooms"
	StatMessagesBroadcast = "MessagesBroadcast"
	StatDroppedMessages   = "DroppedMessages"
)

// SyncServer is the room session coordinator: it owns the directory of
// live connections per room, fans events out to room members and routes
// inbound playback events.
type SyncServer struct {
	log   *log.Logger
	rooms *services.RoomService
	queue *services.QueueService
	stats stats.StatsProvider

	// mu guards conns and every roomConns.clients set.
	mu    sync.RWMutex
	conns map[int]*roomConns
}

type roomConns struct {
	// dispatchMu serializes event processing for the room: one event's
	// mutate-then-broadcast sequence completes before the next begins.
	dispatchMu sync.Mutex
	clients    map[*Client]struct{}
}

func NewSyncServer(logger *log.Logger, rooms *services.RoomService, queue *services.QueueService, sp stats.StatsProvider) *SyncServer {
	sp.RegisterMetric(StatActiveConnections)
	sp.RegisterMetric(StatActiveRooms)
	sp.RegisterMetric(StatMessagesBroadcast)
	sp.RegisterMetric(StatDroppedMessages)

	return &SyncServer{
		log:   logger,
		rooms: rooms,
		queue: queue,
		stats: sp,
		conns: make(map[int]*roomConns),
	}
}

// Register admits an authenticated connection into its room's set and
// sends it the ROOM_STATE snapshot so a late joiner catches up without
// waiting for the next event.
func (ss *SyncServer) Register(c *Client) {
	ss.mu.Lock()
	rc, ok := ss.conns[c.roomId]
	if !ok {
		rc = &roomConns{clients: make(map[*Client]struct{})}
		ss.conns[c.roomId] = rc
		ss.stats.Incr(StatActiveRooms)
	}
	rc.clients[c] = struct{}{}
	ss.mu.Unlock()

	ss.stats.Incr(StatActiveConnections)
	ss.log.Printf("user %d connected to room %d", c.user.Id, c.roomId)

	ss.sendRoomState(c)
}

// Unregister removes the connection from its room's set and drops the
// room entry entirely once the set is empty. Safe to call more than once.
func (ss *SyncServer) Unregister(c *Client) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	rc, ok := ss.conns[c.roomId]
	if !ok {
		return
	}
	if _, ok := rc.clients[c]; !ok {
		return
	}

	delete(rc.clients, c)
	ss.stats.Decr(StatActiveConnections)
	ss.log.Printf("user %d disconnected from room %d", c.user.Id, c.roomId)

	if len(rc.clients) == 0 {
		delete(ss.conns, c.roomId)
		ss.stats.Decr(StatActiveRooms)
		ss.log.Printf("room %d has no connections, removing entry", c.roomId)
	}
}

// membersOf snapshots the room's connection set. An unknown room yields
// an empty slice, not an error.
func (ss *SyncServer) membersOf(roomId int) []*Client {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rc, ok := ss.conns[roomId]
	if !ok {
		return nil
	}

	clients := make([]*Client, 0, len(rc.clients))
	for c := range rc.clients {
		clients = append(clients, c)
	}
	return clients
}

// Broadcast serializes the message once and delivers it to every
// connection in the room except those belonging to excludeUserId (zero
// means no exclusion). Delivery failures are isolated per connection.
func (ss *SyncServer) Broadcast(roomId int, v any, excludeUserId int) {
	data, err := serializeMessage(v)
	if err != nil {
		ss.log.Println("failed to serialize broadcast message:", err)
		return
	}

	for _, c := range ss.membersOf(roomId) {
		if excludeUserId != 0 && c.user.Id == excludeUserId {
			continue
		}

		if !c.queueMessage(data) {
			ss.log.Printf("dropped message for user %d in room %d", c.user.Id, roomId)
			ss.stats.Incr(StatDroppedMessages)
			continue
		}
		ss.stats.Incr(StatMessagesBroadcast)
	}
}

// Dispatch handles one inbound event from a connection. Events of the
// same room are processed to completion one at a time.
func (ss *SyncServer) Dispatch(c *Client, msg *ClientMessage) {
	ss.mu.RLock()
	rc, ok := ss.conns[c.roomId]
	ss.mu.RUnlock()
	if !ok {
		ss.log.Printf("dispatch for unknown room %d", c.roomId)
		return
	}

	rc.dispatchMu.Lock()
	defer rc.dispatchMu.Unlock()

	out, excludeSender, refreshQueue := routeEvent(msg)
	switch {
	case refreshQueue:
		if err := ss.broadcastQueue(c.roomId); err != nil {
			ss.log.Println("queue refresh:", err)
		}
	case out != nil:
		excludeUserId := 0
		if excludeSender {
			excludeUserId = c.user.Id
		}
		ss.Broadcast(c.roomId, out, excludeUserId)
	default:
		ss.log.Printf("unknown message type %q from user %d", msg.Type, c.user.Id)
	}
}

func (ss *SyncServer) broadcastQueue(roomId int) error {
	queue, err := ss.queue.ListQueue(roomId)
	if err != nil {
		return fmt.Errorf("list queue for room %d: %w", roomId, err)
	}

	ss.Broadcast(roomId, newQueueUpdate(queue), 0)
	return nil
}

// NotifyQueueUpdate re-reads the room's queue and broadcasts it. It is
// the entry point for HTTP mutations that changed the queue.
func (ss *SyncServer) NotifyQueueUpdate(roomId int) {
	if err := ss.broadcastQueue(roomId); err != nil {
		ss.log.Println("notify queue update:", err)
	}
}

// NotifyRoomClosed tells every member the room was disbanded, then tears
// down the room's directory entry and closes its connections.
func (ss *SyncServer) NotifyRoomClosed(roomId int) {
	ss.Broadcast(roomId, newRoomClosed(roomId), 0)

	for _, c := range ss.membersOf(roomId) {
		c.close()
	}
}

func (ss *SyncServer) sendRoomState(c *Client) {
	queue, err := ss.queue.ListQueue(c.roomId)
	if err != nil {
		ss.log.Println("room state queue:", err)
	}

	isAdmin, err := ss.rooms.IsAdmin(c.user.Id, c.roomId)
	if err != nil {
		ss.log.Println("room state admin check:", err)
	}

	data, err := serializeMessage(newRoomState(queue, isAdmin, c.roomId))
	if err != nil {
		ss.log.Println("failed to serialize room state:", err)
		return
	}

	if !c.queueMessage(data) {
		ss.log.Printf("failed to send room state to user %d", c.user.Id)
	}
}

// Shutdown closes every live connection.
func (ss *SyncServer) Shutdown() {
	ss.log.Println("closing all connections")

	ss.mu.RLock()
	var clients []*Client
	for _, rc := range ss.conns {
		for c := range rc.clients {
			clients = append(clients, c)
		}
	}
	ss.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}
