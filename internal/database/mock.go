package database

import (
	"github.com/stretchr/testify/mock"
)

type MockSoundroomRepository struct {
	mock.Mock
}

func (m *MockSoundroomRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockSoundroomRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockSoundroomRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockSoundroomRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockSoundroomRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockSoundroomRepository) SetCurrentRoom(accountId, roomId int) error {
	args := m.Called(accountId, roomId)
	return args.Error(0)
}
func (m *MockSoundroomRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockSoundroomRepository) GetRoom(roomId int) (Room, error) {
	args := m.Called(roomId)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockSoundroomRepository) AddRoomMember(roomId, accountId int) error {
	args := m.Called(roomId, accountId)
	return args.Error(0)
}
func (m *MockSoundroomRepository) RemoveRoomMember(roomId, accountId int) error {
	args := m.Called(roomId, accountId)
	return args.Error(0)
}
func (m *MockSoundroomRepository) DisbandRoom(roomId int) error {
	args := m.Called(roomId)
	return args.Error(0)
}
func (m *MockSoundroomRepository) CreateSong(params CreateSongParams) (QueuedSong, error) {
	args := m.Called(params)
	return args.Get(0).(QueuedSong), args.Error(1)
}
func (m *MockSoundroomRepository) ListSongs(roomId int) ([]QueuedSong, error) {
	args := m.Called(roomId)
	if songs, ok := args.Get(0).([]QueuedSong); ok {
		return songs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockSoundroomRepository) FirstSong(roomId int) (QueuedSong, error) {
	args := m.Called(roomId)
	return args.Get(0).(QueuedSong), args.Error(1)
}
func (m *MockSoundroomRepository) DeleteSong(songId int) error {
	args := m.Called(songId)
	return args.Error(0)
}
func (m *MockSoundroomRepository) UpdateSongAddedAt(songId int, addedAt int64) error {
	args := m.Called(songId, addedAt)
	return args.Error(0)
}
