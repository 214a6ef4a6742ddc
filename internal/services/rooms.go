package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/soundroom/soundroom/internal/database"
	"github.com/soundroom/soundroom/internal/types"
)

// RoomService is the room registry: it owns room lifecycle and the
// one-room-per-user invariant. It never broadcasts; callers are expected
// to notify the coordinator after a successful mutation.
type RoomService struct {
	log *log.Logger
	db  database.SoundroomRepository
}

func NewRoomService(logger *log.Logger, db database.SoundroomRepository) *RoomService {
	return &RoomService{log: logger, db: db}
}

// LeaveResult reports what a leave did so the caller knows which
// notification to send to the remaining members.
type LeaveResult struct {
	RoomId    int
	Disbanded bool
}

func (rs *RoomService) CreateRoom(ownerId int, password string) (types.Room, error) {
	user, err := rs.db.GetAccountById(ownerId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Room{}, ErrUserNotFound
		}
		return types.Room{}, fmt.Errorf("get account: %w", err)
	}

	if user.CurrentRoomId != types.NoRoom {
		return types.Room{}, ErrAlreadyInRoom
	}

	room, err := rs.db.CreateRoom(database.CreateRoomParams{
		OwnerId:  ownerId,
		Password: password,
	})
	if err != nil {
		return types.Room{}, fmt.Errorf("create room: %w", err)
	}

	return toRoom(room), nil
}

func (rs *RoomService) JoinRoom(userId, roomId int, password string) (types.Room, error) {
	room, err := rs.db.GetRoom(roomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Room{}, ErrRoomNotFound
		}
		return types.Room{}, fmt.Errorf("get room: %w", err)
	}

	if room.Password != "" && room.Password != password {
		return types.Room{}, ErrWrongPassword
	}

	user, err := rs.db.GetAccountById(userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Room{}, ErrUserNotFound
		}
		return types.Room{}, fmt.Errorf("get account: %w", err)
	}

	if user.CurrentRoomId != types.NoRoom && user.CurrentRoomId != roomId {
		return types.Room{}, ErrAlreadyInRoom
	}

	// Re-joining the room you are already in is not an error.
	if user.CurrentRoomId == roomId {
		return toRoom(room), nil
	}

	if err := rs.db.AddRoomMember(roomId, userId); err != nil {
		return types.Room{}, fmt.Errorf("add member: %w", err)
	}

	if err := rs.db.SetCurrentRoom(userId, roomId); err != nil {
		return types.Room{}, fmt.Errorf("set current room: %w", err)
	}

	room.Members = append(room.Members, int64(userId))
	return toRoom(room), nil
}

func (rs *RoomService) LeaveRoom(userId int) (LeaveResult, error) {
	user, err := rs.db.GetAccountById(userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LeaveResult{}, ErrUserNotFound
		}
		return LeaveResult{}, fmt.Errorf("get account: %w", err)
	}

	if user.CurrentRoomId == types.NoRoom {
		return LeaveResult{}, ErrNotInRoom
	}

	room, err := rs.db.GetRoom(user.CurrentRoomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The room row is gone; reset the user's stale membership
			// before reporting the error.
			if resetErr := rs.db.SetCurrentRoom(userId, types.NoRoom); resetErr != nil {
				rs.log.Println("reset stale current room:", resetErr)
			}
			return LeaveResult{}, ErrRoomNotFound
		}
		return LeaveResult{}, fmt.Errorf("get room: %w", err)
	}

	if room.OwnerId == userId {
		if err := rs.db.DisbandRoom(room.Id); err != nil {
			return LeaveResult{}, fmt.Errorf("disband room: %w", err)
		}
		return LeaveResult{RoomId: room.Id, Disbanded: true}, nil
	}

	if err := rs.db.RemoveRoomMember(room.Id, userId); err != nil {
		return LeaveResult{}, fmt.Errorf("remove member: %w", err)
	}

	if err := rs.db.SetCurrentRoom(userId, types.NoRoom); err != nil {
		return LeaveResult{}, fmt.Errorf("set current room: %w", err)
	}

	return LeaveResult{RoomId: room.Id, Disbanded: false}, nil
}

// DisbandRoom is the owner-only DELETE path; it shares the leave-as-owner
// semantics.
func (rs *RoomService) DisbandRoom(roomId, requesterId int) error {
	room, err := rs.db.GetRoom(roomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("get room: %w", err)
	}

	if room.OwnerId != requesterId {
		return ErrForbidden
	}

	if err := rs.db.DisbandRoom(room.Id); err != nil {
		return fmt.Errorf("disband room: %w", err)
	}

	return nil
}

func (rs *RoomService) GetRoom(roomId int) (types.Room, error) {
	room, err := rs.db.GetRoom(roomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Room{}, ErrRoomNotFound
		}
		return types.Room{}, fmt.Errorf("get room: %w", err)
	}

	return toRoom(room), nil
}

func (rs *RoomService) IsAdmin(userId, roomId int) (bool, error) {
	room, err := rs.db.GetRoom(roomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrRoomNotFound
		}
		return false, fmt.Errorf("get room: %w", err)
	}

	return room.OwnerId == userId, nil
}

// CurrentRoom returns the user's room id, or types.NoRoom.
func (rs *RoomService) CurrentRoom(userId int) (int, error) {
	user, err := rs.db.GetAccountById(userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.NoRoom, ErrUserNotFound
		}
		return types.NoRoom, fmt.Errorf("get account: %w", err)
	}

	return user.CurrentRoomId, nil
}

func toRoom(room database.Room) types.Room {
	return types.Room{
		Id:        room.Id,
		OwnerId:   room.OwnerId,
		Password:  room.Password,
		Members:   room.Members,
		CreatedAt: room.CreatedAt,
	}
}
