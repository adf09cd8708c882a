package ports

import (
	"context"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
)

// SessionStore is the persisted session store: durable key/value storage
// holding the access token, refresh token and last-known user JSON for each
// session ID. Implementations must write and clear the three values as one
// unit; a partially present record is reported as absent.
type SessionStore interface {
	// Save persists a complete record, replacing any prior one.
	Save(ctx context.Context, sessionID string, rec domain.SessionRecord) error
	// Load returns the record for sessionID, or domain.ErrSessionNotFound
	// when no complete record exists.
	Load(ctx context.Context, sessionID string) (domain.SessionRecord, error)
	// Clear removes every persisted value for sessionID. Clearing an absent
	// session is not an error.
	Clear(ctx context.Context, sessionID string) error
}
