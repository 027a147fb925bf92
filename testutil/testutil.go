// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/inkblog/config"
)

// Clock is a manual clock that advances one second on every reading, so
// consecutive writes always get strictly increasing timestamps.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the current reading and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// NewDB opens a migrated SQLite database in a temp dir, driven by clock.
func NewDB(t *testing.T, clock *Clock) *gorm.DB {
	t.Helper()
	if clock == nil {
		clock = NewClock()
	}

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := config.Open(sqlite.Open(config.SQLiteDSN(path)), &gorm.Config{
		Logger:  logger.Discard,
		NowFunc: clock.Now,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
