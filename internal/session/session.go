// Package session keeps per-visitor server state: the signed-in identity and
// one-shot flash messages. Records live in a Store keyed by an opaque id and
// expire at a fixed time set when they are created.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned by stores for unknown or expired ids.
var ErrSessionNotFound = errors.New("session not found")

// Flash kinds used by the handlers.
const (
	FlashSuccess = "success"
	FlashFailure = "failure"
	FlashDanger  = "danger"
)

// Flash is a read-once status message.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Session is the server-side record behind a session cookie.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	dirty bool
}

// Store persists sessions.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// New starts an anonymous session that expires maxAge from now.
func New(maxAge time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(maxAge),
		dirty:     true,
	}
}

// Expired reports whether the absolute expiry has passed.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Authenticated reports whether a user is bound to the session.
func (s *Session) Authenticated() bool {
	return s.UserID != ""
}

// ClearUser drops the bound identity, for a user that no longer exists.
func (s *Session) ClearUser() {
	s.UserID = ""
	s.dirty = true
}

// AddFlash queues a message for the next rendered response.
func (s *Session) AddFlash(kind, message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: message})
	s.dirty = true
}

// TakeFlashes drains the queued messages grouped by kind, preserving order within a kind.
func (s *Session) TakeFlashes() map[string][]string {
	if len(s.Flashes) == 0 {
		return map[string][]string{}
	}
	out := make(map[string][]string)
	for _, f := range s.Flashes {
		out[f.Kind] = append(out[f.Kind], f.Message)
	}
	s.Flashes = nil
	s.dirty = true
	return out
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool {
	return s.dirty
}

func (s *Session) clone() *Session {
	cp := *s
	cp.Flashes = append([]Flash(nil), s.Flashes...)
	cp.dirty = false
	return &cp
}
