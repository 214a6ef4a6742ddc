package services

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrAlreadyInRoom = errors.New("already in another room")
	ErrNotInRoom     = errors.New("not in a room")
	ErrRoomNotFound  = errors.New("room not found")
	ErrWrongPassword = errors.New("incorrect password")
	ErrForbidden     = errors.New("only the room owner may do this")
	ErrEmptyQueue    = errors.New("queue is empty")
	ErrSongNotFound  = errors.New("song not found in queue")
	// ErrQueueConflict means no ordering slot is left between the playing
	// song and the second in line; the caller should retry after the
	// queue advances.
	ErrQueueConflict = errors.New("no ordering slot available")
)
