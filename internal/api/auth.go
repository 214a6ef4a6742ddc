package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/soundroom/soundroom/internal/services"
	"github.com/soundroom/soundroom/internal/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	userIdClaim = "user-id"
	expClaim    = "exp"

	defaultJwtExpiration = time.Hour * 24
)

type contextKey string

const userIdKey contextKey = "user-id"

func WithUserId(ctx context.Context, userId int) context.Context {
	return context.WithValue(ctx, userIdKey, userId)
}

func UserId(ctx context.Context) (int, bool) {
	userId, ok := ctx.Value(userIdKey).(int)

	return userId, ok
}

// Connection-time authentication failures for the realtime endpoint.
var (
	errRoomRequired    = errors.New("room id required")
	errUnauthenticated = errors.New("invalid or missing token")
	errUserNotFound    = errors.New("user no longer exists")
)

func hashPassword(passwd string) (string, error) {
	passwdHash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	return string(passwdHash), err
}

func verifyPassword(passwdHash, passwd string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(passwdHash), []byte(passwd))
	return err == nil
}

func (s *App) createJwtForSession(userId int, exp time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim: userId,
		expClaim:    time.Now().Add(exp).Unix(),
	})

	return token.SignedString(s.signingKey)
}

func (s *App) verifyToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return token, nil
}

func (s *App) extractUserIdFromToken(tokenString string) (int, error) {
	token, err := s.verifyToken(tokenString)
	if err != nil {
		return 0, fmt.Errorf("verify token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	userId, ok := claims[userIdClaim].(float64)
	if !ok {
		return 0, fmt.Errorf("invalid user id claim")
	}

	return int(userId), nil
}

// bearerToken extracts the credential from an Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("no authorization header")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", fmt.Errorf("malformed authorization header")
	}

	return token, nil
}

// authenticateWS validates a realtime connection attempt: both the room
// id and the bearer credential are required, the credential must resolve
// to an existing user and the room must exist. Any failure means the
// caller terminates the connection before any message exchange.
func (s *App) authenticateWS(r *http.Request) (types.User, int, error) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		return types.User{}, 0, errUnauthenticated
	}

	roomIdStr := r.URL.Query().Get("room_id")
	if roomIdStr == "" {
		return types.User{}, 0, errRoomRequired
	}
	roomId, err := strconv.Atoi(roomIdStr)
	if err != nil {
		return types.User{}, 0, errRoomRequired
	}

	userId, err := s.extractUserIdFromToken(tokenString)
	if err != nil {
		return types.User{}, 0, fmt.Errorf("%w: %v", errUnauthenticated, err)
	}

	dbUser, err := s.db.GetAccountById(userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, 0, errUserNotFound
		}
		return types.User{}, 0, fmt.Errorf("get account: %w", err)
	}

	if _, err := s.rooms.GetRoom(roomId); err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			return types.User{}, 0, services.ErrRoomNotFound
		}
		return types.User{}, 0, fmt.Errorf("get room: %w", err)
	}

	user := types.User{
		Id:            dbUser.Id,
		Name:          dbUser.Name,
		Email:         dbUser.Email,
		CurrentRoomId: dbUser.CurrentRoomId,
		CreatedAt:     dbUser.CreatedAt,
		UpdatedAt:     dbUser.UpdatedAt,
	}

	return user, roomId, nil
}
