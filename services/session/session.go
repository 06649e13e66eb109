// Package session provides the injected, TTL-evicting session store the
// dialogue layer keys its conversation state by. Nothing in the booking core
// reads it; it exists so no caller has to fall back to module-level maps.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// State is the dialogue-layer snapshot stored per session id.
type State struct {
	SessionID     string            `json:"sessionId"`
	UserID        string            `json:"userId,omitempty"`
	Stage         string            `json:"stage,omitempty"`
	Data          map[string]string `json:"data,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	LastUpdatedAt time.Time         `json:"lastUpdatedAt"`
}

// Store is a TTL-backed session store keyed by session id. Save refreshes the
// TTL; expired sessions behave exactly like deleted ones.
type Store interface {
	Get(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, state *State) error
	Delete(ctx context.Context, sessionID string) error
}
