package auth

import (
	"context"
	"time"

	"brgygo/internal"
	"brgygo/internal/utils"
	"brgygo/pkg/types"
)

type sessionBackend interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) bool
	Delete(ctx context.Context, key string) error
}

// Session keeps the refresh token server side. The browser only holds its id.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	RefreshToken string    `json:"refreshToken"`
	CreatedAt    time.Time `json:"createdAt"`
}

type SessionStore struct {
	backend sessionBackend
	ttl     time.Duration
}

func NewSessionStore(backend sessionBackend, ttl time.Duration) *SessionStore {
	return &SessionStore{backend: backend, ttl: ttl}
}

func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func (s *SessionStore) Create(ctx context.Context, userID, refreshToken string) (*Session, error) {
	session := &Session{
		ID:           utils.SessionID(),
		UserID:       userID,
		RefreshToken: refreshToken,
		CreatedAt:    time.Now(),
	}

	if err := s.backend.SetJSON(ctx, key(session.ID), session, s.ttl); err != nil {
		return nil, err
	}

	return session, nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, types.ErrSessionNotFound
	}

	var session Session
	if !s.backend.GetJSON(ctx, key(sessionID), &session) {
		return nil, types.ErrSessionNotFound
	}

	return &session, nil
}

// Touch slides the session expiry forward. It reports false when the session is gone.
func (s *SessionStore) Touch(ctx context.Context, sessionID string) bool {
	return s.backend.Expire(ctx, key(sessionID), s.ttl)
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.backend.Delete(ctx, key(sessionID))
}

func key(sessionID string) string {
	return internal.REDIS_SESSION_PREFIX + sessionID
}
