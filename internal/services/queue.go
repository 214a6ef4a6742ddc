package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/soundroom/soundroom/internal/database"
	"github.com/soundroom/soundroom/internal/types"
)

// reorderStep is how far (in milliseconds) a reordered song is placed
// ahead of the current second-in-line song.
const reorderStep = 1000

// QueueService is the queue store: a persisted FIFO of songs per room,
// ordered by ascending AddedAt key.
type QueueService struct {
	log *log.Logger
	db  database.SoundroomRepository
}

func NewQueueService(logger *log.Logger, db database.SoundroomRepository) *QueueService {
	return &QueueService{log: logger, db: db}
}

type TrackParams struct {
	VideoId   string `json:"videoId"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Thumbnail string `json:"thumbnail"`
}

func (qs *QueueService) AddSong(userId int, track TrackParams) (types.QueuedSong, error) {
	user, err := qs.db.GetAccountById(userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.QueuedSong{}, ErrUserNotFound
		}
		return types.QueuedSong{}, fmt.Errorf("get account: %w", err)
	}

	if user.CurrentRoomId == types.NoRoom {
		return types.QueuedSong{}, ErrNotInRoom
	}

	song, err := qs.db.CreateSong(database.CreateSongParams{
		RoomId:    user.CurrentRoomId,
		UserId:    user.Id,
		VideoId:   track.VideoId,
		Title:     track.Title,
		Channel:   track.Channel,
		Thumbnail: track.Thumbnail,
		AddedAt:   time.Now().UnixMilli(),
	})
	if err != nil {
		return types.QueuedSong{}, fmt.Errorf("create song: %w", err)
	}

	return toSong(song), nil
}

// RemoveFirstSong pops the earliest-queued song of the caller's room and
// returns it together with the remaining queue.
func (qs *QueueService) RemoveFirstSong(userId int) (types.QueuedSong, []types.QueuedSong, error) {
	user, err := qs.db.GetAccountById(userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.QueuedSong{}, nil, ErrUserNotFound
		}
		return types.QueuedSong{}, nil, fmt.Errorf("get account: %w", err)
	}

	if user.CurrentRoomId == types.NoRoom {
		return types.QueuedSong{}, nil, ErrNotInRoom
	}

	first, err := qs.db.FirstSong(user.CurrentRoomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.QueuedSong{}, nil, ErrEmptyQueue
		}
		return types.QueuedSong{}, nil, fmt.Errorf("first song: %w", err)
	}

	if err := qs.db.DeleteSong(first.Id); err != nil {
		return types.QueuedSong{}, nil, fmt.Errorf("delete song: %w", err)
	}

	queue, err := qs.ListQueue(user.CurrentRoomId)
	if err != nil {
		return types.QueuedSong{}, nil, err
	}

	return toSong(first), queue, nil
}

func (qs *QueueService) ListQueue(roomId int) ([]types.QueuedSong, error) {
	songs, err := qs.db.ListSongs(roomId)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}

	queue := make([]types.QueuedSong, len(songs))
	for i, song := range songs {
		queue[i] = toSong(song)
	}

	return queue, nil
}

// MoveToTop promotes a song to second-in-line. Position one is treated as
// "now playing" and is never displaced, so a song already first or second
// is left alone and reported as not moved.
func (qs *QueueService) MoveToTop(requesterId, songId int) ([]types.QueuedSong, bool, error) {
	user, err := qs.db.GetAccountById(requesterId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrUserNotFound
		}
		return nil, false, fmt.Errorf("get account: %w", err)
	}

	if user.CurrentRoomId == types.NoRoom {
		return nil, false, ErrNotInRoom
	}

	room, err := qs.db.GetRoom(user.CurrentRoomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrRoomNotFound
		}
		return nil, false, fmt.Errorf("get room: %w", err)
	}

	if room.OwnerId != requesterId {
		return nil, false, ErrForbidden
	}

	songs, err := qs.db.ListSongs(room.Id)
	if err != nil {
		return nil, false, fmt.Errorf("list songs: %w", err)
	}

	idx := -1
	for i, song := range songs {
		if song.Id == songId {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, false, ErrSongNotFound
	}

	queue := make([]types.QueuedSong, len(songs))
	for i, song := range songs {
		queue[i] = toSong(song)
	}

	// Already playing or already next up.
	if idx <= 1 {
		return queue, false, nil
	}

	first, second := songs[0], songs[1]
	newAddedAt := second.AddedAt - reorderStep
	if newAddedAt <= first.AddedAt {
		// The gap between playing and next-up is smaller than the
		// step; bisect it instead of jumping ahead of the playing song.
		newAddedAt = first.AddedAt + (second.AddedAt-first.AddedAt)/2
		if newAddedAt <= first.AddedAt || newAddedAt >= second.AddedAt {
			return nil, false, ErrQueueConflict
		}
	}

	if err := qs.db.UpdateSongAddedAt(songId, newAddedAt); err != nil {
		return nil, false, fmt.Errorf("update song order: %w", err)
	}

	updated, err := qs.ListQueue(room.Id)
	if err != nil {
		return nil, false, err
	}

	return updated, true, nil
}

func toSong(song database.QueuedSong) types.QueuedSong {
	return types.QueuedSong{
		Id:        song.Id,
		RoomId:    song.RoomId,
		UserId:    song.UserId,
		VideoId:   song.VideoId,
		Title:     song.Title,
		Channel:   song.Channel,
		Thumbnail: song.Thumbnail,
		AddedAt:   song.AddedAt,
	}
}
