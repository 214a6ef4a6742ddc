package services

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/soundroom/soundroom/internal/database"
	"github.com/soundroom/soundroom/internal/testutil"
	"github.com/soundroom/soundroom/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoomService(t *testing.T, db database.SoundroomRepository) *RoomService {
	return NewRoomService(testutil.TestLogger(t), db)
}

func Test_CreateRoom(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetAccountById", 1).Return(database.User{Id: 1, CurrentRoomId: types.NoRoom}, nil)
		db.On("CreateRoom", database.CreateRoomParams{OwnerId: 1, Password: "abc12"}).
			Return(database.Room{Id: 10, OwnerId: 1, Password: "abc12", Members: []int64{1}}, nil)

		rs := newTestRoomService(t, db)
		room, err := rs.CreateRoom(1, "abc12")
		require.NoError(t, err, "expected create room to succeed")
		assert.Equal(t, 10, room.Id, "expected room id from repository")
		assert.Equal(t, 1, room.OwnerId, "expected owner to be the creator")
		assert.Equal(t, []int64{1}, room.Members, "expected owner to be sole member")
		db.AssertExpectations(t)
	})

	t.Run("already in a room", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetAccountById", 1).Return(database.User{Id: 1, CurrentRoomId: 7}, nil)

		rs := newTestRoomService(t, db)
		_, err := rs.CreateRoom(1, "")
		assert.ErrorIs(t, err, ErrAlreadyInRoom, "expected ErrAlreadyInRoom")
		db.AssertNotCalled(t, "CreateRoom")
	})

	t.Run("user not found", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetAccountById", 99).Return(database.User{}, sql.ErrNoRows)

		rs := newTestRoomService(t, db)
		_, err := rs.CreateRoom(99, "")
		assert.ErrorIs(t, err, ErrUserNotFound, "expected ErrUserNotFound")
	})
}

func Test_JoinRoom(t *testing.T) {
	room := database.Room{Id: 10, OwnerId: 1, Password: "abc12", Members: []int64{1}}

	t.Run("success", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetRoom", 10).Return(room, nil)
		db.On("GetAccountById", 2).Return(database.User{Id: 2, CurrentRoomId: types.NoRoom}, nil)
		db.On("AddRoomMember", 10, 2).Return(nil)
		db.On("SetCurrentRoom", 2, 10).Return(nil)

		rs := newTestRoomService(t, db)
		joined, err := rs.JoinRoom(2, 10, "abc12")
		require.NoError(t, err, "expected join to succeed")
		assert.Contains(t, joined.Members, int64(2), "expected joiner in member set")
		db.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetRoom", 10).Return(room, nil)

		rs := newTestRoomService(t, db)
		_, err := rs.JoinRoom(3, 10, "nope")
		assert.ErrorIs(t, err, ErrWrongPassword, "expected ErrWrongPassword")
		db.AssertNotCalled(t, "AddRoomMember")
		db.AssertNotCalled(t, "SetCurrentRoom")
	})

	t.Run("room not found", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetRoom", 44).Return(database.Room{}, sql.ErrNoRows)

		rs := newTestRoomService(t, db)
		_, err := rs.JoinRoom(2, 44, "")
		assert.ErrorIs(t, err, ErrRoomNotFound, "expected ErrRoomNotFound")
	})

	t.Run("already in another room", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetRoom", 10).Return(room, nil)
		db.On("GetAccountById", 2).Return(database.User{Id: 2, CurrentRoomId: 33}, nil)

		rs := newTestRoomService(t, db)
		_, err := rs.JoinRoom(2, 10, "abc12")
		assert.ErrorIs(t, err, ErrAlreadyInRoom, "expected ErrAlreadyInRoom")
	})

	t.Run("re-join own room is not an error", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetRoom", 10).Return(room, nil)
		db.On("GetAccountById", 1).Return(database.User{Id: 1, CurrentRoomId: 10}, nil)

		rs := newTestRoomService(t, db)
		joined, err := rs.JoinRoom(1, 10, "abc12")
		require.NoError(t, err, "expected idempotent re-join to succeed")
		assert.Equal(t, 10, joined.Id, "expected room to be returned")
		db.AssertNotCalled(t, "AddRoomMember")
	})
}

func Test_LeaveRoom(t *testing.T) {
	t.Run("not in a room", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetAccountById", 2).Return(database.User{Id: 2, CurrentRoomId: types.NoRoom}, nil)

		rs := newTestRoomService(t, db)
		_, err := rs.LeaveRoom(2)
		assert.ErrorIs(t, err, ErrNotInRoom, "expected ErrNotInRoom")
	})

	t.Run("owner leave disbands the room", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetAccountById", 1).Return(database.User{Id: 1, CurrentRoomId: 10}, nil)
		db.On("GetRoom", 10).Return(database.Room{Id: 10, OwnerId: 1, Members: []int64{1, 2, 3}}, nil)
		db.On("DisbandRoom", 10).Return(nil)

		rs := newTestRoomService(t, db)
		res, err := rs.LeaveRoom(1)
		require.NoError(t, err, "expected owner leave to succeed")
		assert.True(t, res.Disbanded, "expected disband result")
		assert.Equal(t, 10, res.RoomId, "expected room id in result")
		db.AssertExpectations(t)
		db.AssertNotCalled(t, "RemoveRoomMember")
	})

	t.Run("member leave keeps the room", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetAccountById", 2).Return(database.User{Id: 2, CurrentRoomId: 10}, nil)
		db.On("GetRoom", 10).Return(database.Room{Id: 10, OwnerId: 1, Members: []int64{1, 2}}, nil)
		db.On("RemoveRoomMember", 10, 2).Return(nil)
		db.On("SetCurrentRoom", 2, types.NoRoom).Return(nil)

		rs := newTestRoomService(t, db)
		res, err := rs.LeaveRoom(2)
		require.NoError(t, err, "expected member leave to succeed")
		assert.False(t, res.Disbanded, "expected no disband")
		db.AssertExpectations(t)
		db.AssertNotCalled(t, "DisbandRoom")
	})

	t.Run("stale room resets membership", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetAccountById", 2).Return(database.User{Id: 2, CurrentRoomId: 10}, nil)
		db.On("GetRoom", 10).Return(database.Room{}, sql.ErrNoRows)
		db.On("SetCurrentRoom", 2, types.NoRoom).Return(nil)

		rs := newTestRoomService(t, db)
		_, err := rs.LeaveRoom(2)
		assert.ErrorIs(t, err, ErrRoomNotFound, "expected ErrRoomNotFound")
		db.AssertCalled(t, "SetCurrentRoom", 2, types.NoRoom)
	})

	t.Run("disband failure surfaces", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetAccountById", 1).Return(database.User{Id: 1, CurrentRoomId: 10}, nil)
		db.On("GetRoom", 10).Return(database.Room{Id: 10, OwnerId: 1}, nil)
		db.On("DisbandRoom", 10).Return(errors.New("db down"))

		rs := newTestRoomService(t, db)
		_, err := rs.LeaveRoom(1)
		assert.Error(t, err, "expected error when disband fails")
	})
}

func Test_DisbandRoom(t *testing.T) {
	t.Run("forbidden for non-owner", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetRoom", 10).Return(database.Room{Id: 10, OwnerId: 1}, nil)

		rs := newTestRoomService(t, db)
		err := rs.DisbandRoom(10, 2)
		assert.ErrorIs(t, err, ErrForbidden, "expected ErrForbidden")
		db.AssertNotCalled(t, "DisbandRoom")
	})

	t.Run("owner may disband", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetRoom", 10).Return(database.Room{Id: 10, OwnerId: 1}, nil)
		db.On("DisbandRoom", 10).Return(nil)

		rs := newTestRoomService(t, db)
		require.NoError(t, rs.DisbandRoom(10, 1), "expected owner disband to succeed")
		db.AssertExpectations(t)
	})

	t.Run("room not found", func(t *testing.T) {
		db := &database.MockSoundroomRepository{}
		db.On("GetRoom", 44).Return(database.Room{}, sql.ErrNoRows)

		rs := newTestRoomService(t, db)
		assert.ErrorIs(t, rs.DisbandRoom(44, 1), ErrRoomNotFound, "expected ErrRoomNotFound")
	})
}

func Test_IsAdmin(t *testing.T) {
	db := &database.MockSoundroomRepository{}
	db.On("GetRoom", 10).Return(database.Room{Id: 10, OwnerId: 1}, nil)

	rs := newTestRoomService(t, db)

	isAdmin, err := rs.IsAdmin(1, 10)
	require.NoError(t, err)
	assert.True(t, isAdmin, "expected owner to be admin")

	isAdmin, err = rs.IsAdmin(2, 10)
	require.NoError(t, err)
	assert.False(t, isAdmin, "expected non-owner not to be admin")
}

func Test_CurrentRoom(t *testing.T) {
	db := &database.MockSoundroomRepository{}
	db.On("GetAccountById", 1).Return(database.User{Id: 1, CurrentRoomId: 10}, nil)
	db.On("GetAccountById", 2).Return(database.User{Id: 2, CurrentRoomId: types.NoRoom}, nil)

	rs := newTestRoomService(t, db)

	roomId, err := rs.CurrentRoom(1)
	require.NoError(t, err)
	assert.Equal(t, 10, roomId, "expected current room id")

	roomId, err = rs.CurrentRoom(2)
	require.NoError(t, err)
	assert.Equal(t, types.NoRoom, roomId, "expected sentinel for user without room")
}
