package server

import (
	"encoding/json"

	"github.com/soundroom/soundroom/internal/types"
)

// Inbound event types.
const (
	TypePlayerState    = "PLAYER_STATE"
	TypeSeekTo         = "SEEK_TO"
	TypeSongChanged    = "SONG_CHANGED"
	TypeSongEnded      = "SONG_ENDED"
	TypeQueueUpdate    = "QUEUE_UPDATE"
	TypeProgressUpdate = "PROGRESS_UPDATE"
	TypeAdminAction    = "ADMIN_ACTION"
)

// Outbound-only event types.
const (
	TypeRoomState  = "ROOM_STATE"
	TypeRoomClosed = "ROOM_CLOSED"
)

// ClientMessage is the flat inbound envelope: one JSON object per message,
// discriminated by Type. Fields not belonging to the type are ignored.
type ClientMessage struct {
	Type        string          `json:"type"`
	IsPlaying   bool            `json:"isPlaying"`
	CurrentTime float64         `json:"currentTime"`
	Song        json.RawMessage `json:"song"`
	Progress    float64         `json:"progress"`
	Duration    float64         `json:"duration"`
	Action      string          `json:"action"`
	SongId      int             `json:"songId"`
}

type playerStateMsg struct {
	Type      string `json:"type"`
	IsPlaying bool   `json:"isPlaying"`
}

type seekToMsg struct {
	Type        string  `json:"type"`
	CurrentTime float64 `json:"currentTime"`
}

type songChangedMsg struct {
	Type string          `json:"type"`
	Song json.RawMessage `json:"song"`
}

type songEndedMsg struct {
	Type string `json:"type"`
}

type progressUpdateMsg struct {
	Type        string  `json:"type"`
	Progress    float64 `json:"progress"`
	Duration    float64 `json:"duration"`
	CurrentTime float64 `json:"currentTime"`
}

type adminActionMsg struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	SongId int    `json:"songId,omitempty"`
}

type queueUpdateMsg struct {
	Type  string             `json:"type"`
	Queue []types.QueuedSong `json:"queue"`
}

type roomStateMsg struct {
	Type    string             `json:"type"`
	Queue   []types.QueuedSong `json:"queue"`
	IsAdmin bool               `json:"isAdmin"`
	RoomId  int                `json:"roomId"`
}

type roomClosedMsg struct {
	Type   string `json:"type"`
	RoomId int    `json:"roomId"`
}

func newQueueUpdate(queue []types.QueuedSong) queueUpdateMsg {
	if queue == nil {
		queue = []types.QueuedSong{}
	}
	return queueUpdateMsg{Type: TypeQueueUpdate, Queue: queue}
}

func newRoomState(queue []types.QueuedSong, isAdmin bool, roomId int) roomStateMsg {
	if queue == nil {
		queue = []types.QueuedSong{}
	}
	return roomStateMsg{
		Type:    TypeRoomState,
		Queue:   queue,
		IsAdmin: isAdmin,
		RoomId:  roomId,
	}
}

func newRoomClosed(roomId int) roomClosedMsg {
	return roomClosedMsg{Type: TypeRoomClosed, RoomId: roomId}
}

func serializeMessage(v any) ([]byte, error) {
	return json.Marshal(v)
}
