package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Domenick1991/restobooking/config"
	"github.com/Domenick1991/restobooking/internal/cache"
	"github.com/Domenick1991/restobooking/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

// OpenBackend connects the collection store named by cfg.Storage.Driver.
// The returned func releases the connection and is never nil.
func OpenBackend(ctx context.Context, cfg *config.Config) (repository.Backend, func(), error) {
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
	case DriverFile, "":
		backend, err := repository.NewFileBackend(cfg.Storage.DataDir)
		if err != nil {
			return nil, noop, err
		}
		return backend, func() { _ = backend.Close() }, nil

	case DriverMemory:
		return repository.NewMemoryBackend(), noop, nil

	case DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		backend := repository.NewPGBackend(pool)
		if err := backend.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ensure schema: %w", err)
		}
		return backend, pool.Close, nil

	case DriverRedis:
		client := cache.NewRedisClient(cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		return repository.NewRedisBackend(client, cfg.Storage.KeyPrefix), func() { _ = client.Close() }, nil

	case DriverSQLite:
		if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, noop, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		return openGorm(sqlite.Open(cfg.Storage.SQLitePath))

	case DriverMySQL:
		return openGorm(mysql.Open(cfg.MySQL.DSN()))

	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openGorm(dialector gorm.Dialector) (repository.Backend, func(), error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, func() {}, fmt.Errorf("open %s: %w", dialector.Name(), err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	backend, err := repository.NewGormBackend(db)
	if err != nil {
		closeDB()
		return nil, func() {}, fmt.Errorf("migrate %s: %w", dialector.Name(), err)
	}
	return backend, closeDB, nil
}
