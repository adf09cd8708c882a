package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/klinik-sejahtera/clinic-portal/internal/core/domain"
)

const (
	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldUser         = "user"

	// expiredGraceTTL bounds sessions whose refresh token has already
	// expired: the record stays briefly so the next resume revokes it
	// cleanly instead of lingering for the full fallback window.
	expiredGraceTTL = time.Minute
)

// SessionStore is the persisted session store backed by Redis. Each session
// is one hash keyed by session ID, so the access token, refresh token, and
// user JSON are always written and removed as a unit.
type SessionStore struct {
	client      *redis.Client
	fallbackTTL time.Duration
}

// NewSessionStore creates a SessionStore. Sessions expire when the refresh
// token does; fallbackTTL bounds sessions whose refresh token carries no
// readable expiry.
func NewSessionStore(client *redis.Client, fallbackTTL time.Duration) *SessionStore {
	if fallbackTTL <= 0 {
		fallbackTTL = 7 * 24 * time.Hour
	}
	return &SessionStore{client: client, fallbackTTL: fallbackTTL}
}

func (s *SessionStore) key(sessionID string) string {
	return "session:" + sessionID
}

// Save writes the complete record in a single transaction and refreshes the
// key's TTL.
func (s *SessionStore) Save(ctx context.Context, sessionID string, rec domain.SessionRecord) error {
	if !rec.Complete() {
		return fmt.Errorf("session save: incomplete record")
	}

	ttl := s.fallbackTTL
	if exp, ok := domain.TokenExpiry(rec.RefreshToken); ok {
		until := time.Until(exp)
		if until <= 0 {
			until = expiredGraceTTL
		}
		if until < ttl {
			ttl = until
		}
	}

	key := s.key(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		fieldAccessToken:  rec.AccessToken,
		fieldRefreshToken: rec.RefreshToken,
		fieldUser:         rec.UserJSON,
	})
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Load returns the persisted record. A missing or partial hash reports
// domain.ErrSessionNotFound; the presence of all three fields together is
// the only shape the store vouches for.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (domain.SessionRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("session load: %w", err)
	}

	rec := domain.SessionRecord{
		AccessToken:  fields[fieldAccessToken],
		RefreshToken: fields[fieldRefreshToken],
		UserJSON:     fields[fieldUser],
	}
	if !rec.Complete() {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	return rec, nil
}

// Clear removes the session hash. Clearing an absent session succeeds.
func (s *SessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
