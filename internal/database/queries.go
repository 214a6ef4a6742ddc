package database

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

func (db *PgSoundroomRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (name, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, name, email, current_room_id, created_at, updated_at",
		params.Name,
		params.Email,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Name,
		&u.Email,
		&u.CurrentRoomId,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgSoundroomRepository) UpdateAccount(params UpdateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"UPDATE accounts SET name = $2, password_hash = $3, updated_at = $4 "+
			"WHERE id = $1 RETURNING id, name, email, current_room_id, created_at, updated_at",
		params.UserId,
		params.Name,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Name,
		&u.Email,
		&u.CurrentRoomId,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgSoundroomRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, current_room_id, created_at, updated_at "+
			"FROM accounts WHERE id = $1 LIMIT 1",
		accountId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CurrentRoomId,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgSoundroomRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, email, password_hash, current_room_id, created_at, updated_at "+
			"FROM accounts WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CurrentRoomId,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgSoundroomRepository) SetCurrentRoom(accountId, roomId int) error {
	_, err := db.conn.Exec(
		"UPDATE accounts SET current_room_id = $2, updated_at = $3 WHERE id = $1",
		accountId,
		roomId,
		time.Now().UTC(),
	)

	return err
}

func (db *PgSoundroomRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Room{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res := tx.QueryRow(
		"INSERT INTO rooms (owner_id, password, members, created_at) "+
			"VALUES ($1, $2, ARRAY[$1::bigint], $3) RETURNING id, owner_id, password, members, created_at",
		params.OwnerId,
		params.Password,
		time.Now().UTC(),
	)

	var room Room
	err = res.Scan(
		&room.Id,
		&room.OwnerId,
		&room.Password,
		pq.Array(&room.Members),
		&room.CreatedAt,
	)
	if err != nil {
		return Room{}, err
	}

	_, err = tx.Exec(
		"UPDATE accounts SET current_room_id = $2, updated_at = $3 WHERE id = $1",
		params.OwnerId,
		room.Id,
		time.Now().UTC(),
	)
	if err != nil {
		return Room{}, err
	}

	if err = tx.Commit(); err != nil {
		return Room{}, fmt.Errorf("commit create room: %w", err)
	}

	return room, nil
}

func (db *PgSoundroomRepository) GetRoom(roomId int) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT id, owner_id, password, members, created_at FROM rooms "+
			"WHERE id = $1 LIMIT 1",
		roomId,
	)

	var room Room
	err := row.Scan(
		&room.Id,
		&room.OwnerId,
		&room.Password,
		pq.Array(&room.Members),
		&room.CreatedAt,
	)

	return room, err
}

// AddRoomMember appends the account to the room's member list unless it is
// already present.
func (db *PgSoundroomRepository) AddRoomMember(roomId, accountId int) error {
	_, err := db.conn.Exec(
		"UPDATE rooms SET members = array_append(members, $2::bigint) "+
			"WHERE id = $1 AND NOT members @> ARRAY[$2::bigint]",
		roomId,
		accountId,
	)

	return err
}

func (db *PgSoundroomRepository) RemoveRoomMember(roomId, accountId int) error {
	_, err := db.conn.Exec(
		"UPDATE rooms SET members = array_remove(members, $2::bigint) WHERE id = $1",
		roomId,
		accountId,
	)

	return err
}

// DisbandRoom deletes the room, its queued songs and resets every member's
// current room in a single transaction so a broadcast never follows a
// partial commit.
func (db *PgSoundroomRepository) DisbandRoom(roomId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DELETE FROM song_queue WHERE room_id = $1", roomId); err != nil {
		return fmt.Errorf("delete songs: %w", err)
	}

	if _, err = tx.Exec(
		"UPDATE accounts SET current_room_id = -1, updated_at = $2 WHERE current_room_id = $1",
		roomId,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("reset members: %w", err)
	}

	if _, err = tx.Exec("DELETE FROM rooms WHERE id = $1", roomId); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit disband: %w", err)
	}

	return nil
}

// CreateSong inserts a queue entry. The ordering key is the greater of the
// caller-supplied timestamp and the room's current maximum plus one, so
// keys stay strictly increasing per room even when the wall clock stalls.
func (db *PgSoundroomRepository) CreateSong(params CreateSongParams) (QueuedSong, error) {
	res := db.conn.QueryRow(
		"INSERT INTO song_queue (room_id, user_id, video_id, title, channel, thumbnail, added_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, GREATEST($7::bigint, "+
			"(SELECT COALESCE(MAX(added_at), 0) + 1 FROM song_queue WHERE room_id = $1))) "+
			"RETURNING id, room_id, user_id, video_id, title, channel, thumbnail, added_at",
		params.RoomId,
		params.UserId,
		params.VideoId,
		params.Title,
		params.Channel,
		params.Thumbnail,
		params.AddedAt,
	)

	var song QueuedSong
	err := res.Scan(
		&song.Id,
		&song.RoomId,
		&song.UserId,
		&song.VideoId,
		&song.Title,
		&song.Channel,
		&song.Thumbnail,
		&song.AddedAt,
	)

	return song, err
}

func (db *PgSoundroomRepository) ListSongs(roomId int) ([]QueuedSong, error) {
	rows, err := db.conn.Query(
		"SELECT id, room_id, user_id, video_id, title, channel, thumbnail, added_at "+
			"FROM song_queue WHERE room_id = $1 ORDER BY added_at ASC",
		roomId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []QueuedSong
	for rows.Next() {
		var song QueuedSong
		err := rows.Scan(
			&song.Id,
			&song.RoomId,
			&song.UserId,
			&song.VideoId,
			&song.Title,
			&song.Channel,
			&song.Thumbnail,
			&song.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}

		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return songs, nil
}

func (db *PgSoundroomRepository) FirstSong(roomId int) (QueuedSong, error) {
	row := db.conn.QueryRow(
		"SELECT id, room_id, user_id, video_id, title, channel, thumbnail, added_at "+
			"FROM song_queue WHERE room_id = $1 ORDER BY added_at ASC LIMIT 1",
		roomId,
	)

	var song QueuedSong
	err := row.Scan(
		&song.Id,
		&song.RoomId,
		&song.UserId,
		&song.VideoId,
		&song.Title,
		&song.Channel,
		&song.Thumbnail,
		&song.AddedAt,
	)

	return song, err
}

func (db *PgSoundroomRepository) DeleteSong(songId int) error {
	_, err := db.conn.Exec("DELETE FROM song_queue WHERE id = $1", songId)
	return err
}

func (db *PgSoundroomRepository) UpdateSongAddedAt(songId int, addedAt int64) error {
	_, err := db.conn.Exec(
		"UPDATE song_queue SET added_at = $2 WHERE id = $1",
		songId,
		addedAt,
	)

	return err
}
