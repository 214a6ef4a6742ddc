package database

type SoundroomRepository interface {
	Ping() error

	CreateAccount(params CreateAccountParams) (User, error)
	UpdateAccount(params UpdateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	SetCurrentRoom(accountId, roomId int) error

	CreateRoom(params CreateRoomParams) (Room, error)
	GetRoom(roomId int) (Room, error)
	AddRoomMember(roomId, accountId int) error
	RemoveRoomMember(roomId, accountId int) error
	DisbandRoom(roomId int) error

	CreateSong(params CreateSongParams) (QueuedSong, error)
	ListSongs(roomId int) ([]QueuedSong, error)
	FirstSong(roomId int) (QueuedSong, error)
	DeleteSong(songId int) error
	UpdateSongAddedAt(songId int, addedAt int64) error
}
