package leaderboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// Snapshot is one point-in-time view of the board. The scan across user
// records is not transactional; a check-in committing mid-scan shows up on
// the next refresh.
type Snapshot struct {
	Leaders    []domain.User
	Ranked     []domain.User
	ComputedAt time.Time
}

// Cache recomputes the board on a fixed interval and after local
// mutations, and serves the latest snapshot to handlers.
type Cache struct {
	users    domain.UserRepository
	logger   zerolog.Logger
	interval time.Duration

	mu   sync.RWMutex
	snap Snapshot
}

// NewCache creates a cache refreshing every interval.
func NewCache(users domain.UserRepository, logger zerolog.Logger, interval time.Duration) *Cache {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Cache{users: users, logger: logger, interval: interval}
}

// Refresh recomputes the snapshot from a fresh read of all user records.
func (c *Cache) Refresh(ctx context.Context) error {
	all, err := c.users.ListAll(ctx)
	if err != nil {
		return err
	}
	snap := Snapshot{
		Leaders:    Leaders(all),
		Ranked:     Ranked(all),
		ComputedAt: time.Now(),
	}
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return nil
}

// Snapshot returns the latest computed board.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Run refreshes the board on the configured interval until ctx is
// cancelled. A failed refresh keeps the previous snapshot.
func (c *Cache) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	if err := c.Refresh(ctx); err != nil {
		c.logger.Error().Err(err).Msg("initial leaderboard refresh failed")
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Error().Err(err).Msg("leaderboard refresh failed")
			}
		}
	}
}
