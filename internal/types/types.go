package types

import (
	"time"
)

// NoRoom is the sentinel value of a user's CurrentRoomId meaning the user
// is not a member of any room.
const NoRoom = -1

type User struct {
	Id            int       `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	Password      string    `json:"-"`
	CurrentRoomId int       `json:"current_room_id"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

type Room struct {
	Id        int       `json:"id"`
	OwnerId   int       `json:"owner_id"`
	Password  string    `json:"password,omitempty"`
	Members   []int64   `json:"members"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// QueuedSong is one entry of a room's FIFO queue. AddedAt is an ordering
// key in epoch milliseconds, not a display timestamp: queue order is
// ascending AddedAt and reordering rewrites it.
type QueuedSong struct {
	Id        int    `json:"id"`
	RoomId    int    `json:"roomId"`
	UserId    int    `json:"userId"`
	VideoId   string `json:"videoId"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Thumbnail string `json:"thumbnail"`
	AddedAt   int64  `json:"addedAt"`
}
