//go:build integration

package containers

import (
	"context"
	"sync"
	"testing"

	"accredis/internal/platform/postgres"
)

// Manager shares one container of each kind across the suites of a test
// binary. Ryuk reaps them when the binary exits.
type Manager struct {
	pgOnce    sync.Once
	pg        *PostgresContainer
	pgErr     error
	redisOnce sync.Once
	redis     *RedisContainer
}

var (
	managerOnce sync.Once
	manager     *Manager
)

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	managerOnce.Do(func() { manager = &Manager{} })
	return manager
}

// GetPostgres starts PostgreSQL on first use and applies the schema.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.pgOnce.Do(func() {
		m.pg = startPostgres(t)
		if m.pg != nil {
			m.pgErr = postgres.Migrate(context.Background(), m.pg.DB)
		}
	})
	if m.pg == nil {
		t.Fatal("postgres container unavailable")
	}
	if m.pgErr != nil {
		t.Fatalf("migrate postgres: %v", m.pgErr)
	}
	return m.pg
}

// GetRedis starts Redis on first use.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.redisOnce.Do(func() {
		m.redis = startRedis(t)
	})
	if m.redis == nil {
		t.Fatal("redis container unavailable")
	}
	return m.redis
}
