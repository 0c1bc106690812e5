// Package background runs periodic maintenance against the account store.
package background

import (
	"context"
	"log/slog"
	"time"
)

// BanSweeper periodically deletes ban rows whose unban time has passed, so
// the ban tables do not grow without bound under a low wrong-password
// threshold.
type BanSweeper struct {
	store    ExpiredBanStore
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

type ExpiredBanStore interface {
	DeleteExpiredBans(ctx context.Context) (int64, error)
}

func NewBanSweeper(store ExpiredBanStore, logger *slog.Logger, interval time.Duration) *BanSweeper {
	return &BanSweeper{
		store:    store,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or the context ends. One
// sweep runs immediately on startup.
func (bs *BanSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(bs.interval)
	defer ticker.Stop()

	bs.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			bs.runSweep(ctx)
		case <-bs.stopCh:
			bs.logger.Info("ban sweeper stopped")
			return
		case <-ctx.Done():
			bs.logger.Info("ban sweeper context cancelled")
			return
		}
	}
}

func (bs *BanSweeper) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := bs.store.DeleteExpiredBans(sweepCtx)
	if err != nil {
		bs.logger.Error("failed to sweep expired bans", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		bs.logger.Info("expired ban sweep completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the sweeper to stop.
func (bs *BanSweeper) Stop() {
	close(bs.stopCh)
}
