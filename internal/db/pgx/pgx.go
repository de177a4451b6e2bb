// Package pgx manages the single PostgreSQL connection pool used by the
// store, behind a lazily-initialized, mutex-guarded singleton, in the
// same shape as the teacher repository's database manager.
package pgx

import (
	"context"
	"fmt"
	"sync"

	"github.com/turahe/kuha-go/config"
	"github.com/turahe/kuha-go/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DatabaseManager owns the connection pool and its lifecycle.
type DatabaseManager struct {
	pool *pgxpool.Pool
	mu   sync.RWMutex
}

var (
	defaultManager *DatabaseManager
	managerOnce    sync.Once
)

// GetDefaultManager returns the process-wide database manager instance.
func GetDefaultManager() *DatabaseManager {
	managerOnce.Do(func() {
		defaultManager = &DatabaseManager{}
	})
	return defaultManager
}

// InitPgConnectionPool initializes the connection pool with thread-safe
// lazy initialization, matching the config's postgres section.
func InitPgConnectionPool(postgresConfig config.Postgres) error {
	return GetDefaultManager().Init(postgresConfig)
}

func connString(postgresConfig config.Postgres) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable search_path=%s",
		postgresConfig.Host,
		postgresConfig.Port,
		postgresConfig.Username,
		postgresConfig.Password,
		postgresConfig.Database,
		postgresConfig.Schema,
	)
}

// Init opens the connection pool if it is not already open.
func (dm *DatabaseManager) Init(postgresConfig config.Postgres) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.pool != nil {
		return nil
	}

	connConfig, err := pgxpool.ParseConfig(connString(postgresConfig))
	if err != nil {
		if logger.Log != nil {
			logger.Log.Error("Failed to parse postgres config", zap.Error(err))
		}
		return err
	}

	if postgresConfig.MaxConnections > 0 {
		connConfig.MaxConns = postgresConfig.MaxConnections
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), connConfig)
	if err != nil {
		if logger.Log != nil {
			logger.Log.Error("Failed to create connection pool", zap.Error(err))
		}
		return err
	}

	dm.pool = pool
	if logger.Log != nil {
		logger.Log.Info("PostgreSQL connection pool initialized successfully")
	}
	return nil
}

// GetPool returns the connection pool, which may be nil if Init has not
// been called yet.
func (dm *DatabaseManager) GetPool() *pgxpool.Pool {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.pool
}

// GetPgxPool returns the process-wide connection pool, initializing it
// from config if necessary.
func GetPgxPool() *pgxpool.Pool {
	manager := GetDefaultManager()
	if manager.GetPool() == nil {
		if err := manager.Init(config.GetConfig().Postgres); err != nil {
			if logger.Log != nil {
				logger.Log.Error("Failed to initialize default connection pool", zap.Error(err))
			}
			return nil
		}
	}
	return manager.GetPool()
}

// InitSchema creates the configured schema if it does not exist and
// points the connection's search_path at it.
func InitSchema(ctx context.Context, postgresConfig config.Postgres, schema string) error {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		postgresConfig.Host,
		postgresConfig.Port,
		postgresConfig.Username,
		postgresConfig.Password,
		postgresConfig.Database,
	)

	pgConn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return err
	}
	defer pgConn.Close(ctx)

	if _, err := pgConn.Exec(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
		return err
	}
	_, err = pgConn.Exec(ctx, fmt.Sprintf(`SET search_path TO %s`, schema))
	return err
}

// ClosePgxPool closes the process-wide connection pool.
func ClosePgxPool() {
	manager := GetDefaultManager()
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if manager.pool != nil {
		manager.pool.Close()
		manager.pool = nil
		if logger.Log != nil {
			logger.Log.Info("PostgreSQL connection pool closed")
		}
	}
}

// HealthCheck verifies the pool can serve a connection and respond to a
// ping.
func HealthCheck(ctx context.Context) error {
	pool := GetPgxPool()
	if pool == nil {
		return fmt.Errorf("connection pool is not initialized")
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for health check: %w", err)
	}
	defer conn.Release()
	return conn.Ping(ctx)
}
