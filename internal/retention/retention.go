package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Execer is the subset of pgxpool.Pool used by the purge.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PurgeStaleInvites deletes invites that were used, or that expired, more
// than retentionDays ago. Active invites are never touched. Safe to run
// repeatedly.
//
// Returns the number of rows deleted.
func PurgeStaleInvites(ctx context.Context, db Execer, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retention days must be positive, got %d", retentionDays)
	}

	tag, err := db.Exec(ctx, `
		DELETE FROM form_invites
		WHERE (used_at IS NOT NULL AND used_at < NOW() - INTERVAL '1 day' * $1)
		   OR (expires_at IS NOT NULL AND expires_at < NOW() - INTERVAL '1 day' * $1)
	`, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale invites: %w", err)
	}

	return tag.RowsAffected(), nil
}

// RunRetentionJob purges stale invites and logs the result. Called by the
// cron scheduler and the purge-invites admin command.
func RunRetentionJob(ctx context.Context, db Execer, inviteDays int) error {
	log.Info().
		Int("invite_retention_days", inviteDays).
		Msg("Starting retention job")

	startTime := time.Now()

	deleted, err := PurgeStaleInvites(ctx, db, inviteDays)
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge stale invites")
		return fmt.Errorf("invite cleanup failed: %w", err)
	}

	log.Info().
		Int64("invites_deleted", deleted).
		Dur("duration", time.Since(startTime)).
		Msg("Retention job completed")

	return nil
}
