package library

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/andrewpaige1/cardbox-api/apperr"
)

// errStaleVersion aborts a transaction whose version claim lost to a
// concurrent writer.
var errStaleVersion = errors.New("stale version")

// transact runs fn in a transaction and retries it when a version claim
// fails. Errors that are not already domain errors are reported as internal.
func (l *Library) transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return l.retry(ctx, func() error {
		return l.db.WithContext(ctx).Transaction(fn)
	})
}

// retry calls attempt until it succeeds, fails with something other than a
// stale version, or runs out of attempts.
func (l *Library) retry(ctx context.Context, attempt func() error) error {
	for n := 1; ; n++ {
		err := attempt()
		if err == nil {
			return nil
		}
		if !errors.Is(err, errStaleVersion) {
			return apperr.FromDB(err, "Not found")
		}
		if n >= l.maxAttempts {
			return apperr.Wrap(apperr.Conflict, "Concurrent modification, please retry", err)
		}
		if ctx.Err() != nil {
			return apperr.Wrap(apperr.Internal, "request cancelled", ctx.Err())
		}
		slog.WarnContext(ctx, "retrying transaction after concurrent modification", "attempt", n)
	}
}

// claimVersion bumps the version of the row with the given id, provided it
// still has the version the caller read. model selects the table.
func claimVersion(tx *gorm.DB, model any, id uint, version int) error {
	res := tx.Model(model).
		Where("id = ? AND version = ?", id, version).
		UpdateColumns(map[string]any{
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return apperr.FromDB(res.Error, "")
	}
	if res.RowsAffected == 0 {
		return errStaleVersion
	}
	return nil
}
