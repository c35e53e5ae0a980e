// Package services – IdempotencyService
//
// IdempotencyService remembers which chat message a (caller, scope, key)
// triple produced so a retried write returns the original row instead of
// recording a duplicate turn.
package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/hackathon-backend/internal/repo"
)

// DefaultIdempotencyTTL applies when IdempotencyService.TTL is zero.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyService stores and resolves idempotency keys.
type IdempotencyService struct {
	DB    *gorm.DB
	TTL   time.Duration
	Clock func() time.Time
}

// Lookup returns the message id remembered for the key, if still valid.
// A missing or expired key is a miss, not an error.
func (s *IdempotencyService) Lookup(ctx context.Context, callerID, scope, key string, now time.Time) (uint, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, callerID, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, storage(err, nil)
	}
	return rec.MessageID, true, nil
}

// Remember binds key to messageID. A concurrent request that already stored
// the key wins; that is not an error.
func (s *IdempotencyService) Remember(ctx context.Context, callerID, scope, key string, messageID uint) error {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, callerID, scope, key, messageID, http.StatusCreated, ttl)
	if err == nil || errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return storage(err, nil)
}

// Purge deletes expired keys and returns how many were removed.
func (s *IdempotencyService) Purge(ctx context.Context) (int64, error) {
	n, err := repo.PurgeExpiredIdempotency(ctx, s.DB, nowUTC(s.Clock))
	if err != nil {
		return 0, storage(err, nil)
	}
	return n, nil
}

// RunPurger calls Purge every interval until ctx is done.
func (s *IdempotencyService) RunPurger(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	lg := zerolog.Ctx(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.Purge(ctx)
			if err != nil {
				lg.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				lg.Debug().Int64("removed", n).Msg("idempotency keys purged")
			}
		}
	}
}
