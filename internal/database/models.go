package database

import "time"

type User struct {
	Id            int
	Name          string
	Email         string
	PasswordHash  string
	CurrentRoomId int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Room struct {
	Id        int
	OwnerId   int
	Password  string
	Members   []int64
	CreatedAt time.Time
}

type QueuedSong struct {
	Id        int
	RoomId    int
	UserId    int
	VideoId   string
	Title     string
	Channel   string
	Thumbnail string
	AddedAt   int64
}

type CreateAccountParams struct {
	Name         string
	Email        string
	PasswordHash string
}

type UpdateAccountParams struct {
	UserId       int
	Name         string
	PasswordHash string
}

type CreateRoomParams struct {
	OwnerId  int
	Password string
}

type CreateSongParams struct {
	RoomId    int
	UserId    int
	VideoId   string
	Title     string
	Channel   string
	Thumbnail string
	AddedAt   int64
}
