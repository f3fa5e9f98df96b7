package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Driver names a slot store backend.
type Driver string

const (
	DriverFile     Driver = "file"
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverS3       Driver = "s3"
)

// Valid reports whether d names a known backend.
func (d Driver) Valid() bool {
	switch d {
	case DriverFile, DriverMemory, DriverSQLite, DriverPostgres, DriverS3:
		return true
	}
	return false
}

// Options selects and configures a backend.
type Options struct {
	Driver          Driver
	Dir             string // file driver
	SQLitePath      string
	PostgresDSN     string
	S3              S3Config
	RetryMaxElapsed time.Duration // remote drivers only
}

// Open builds the slot store described by opts. Remote backends
// (postgres, s3) are wrapped in a RetryingStore.
func Open(ctx context.Context, opts Options, log *logger.Logger) (domain.SlotStore, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverFile
	}
	log = log.Named("storage")

	switch driver {
	case DriverFile:
		return NewFileStore(opts.Dir, log)
	case DriverMemory:
		return NewMemoryStore(log), nil
	case DriverSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath, log)
	case DriverPostgres:
		s, err := NewPostgresStore(ctx, opts.PostgresDSN, log)
		if err != nil {
			return nil, err
		}
		return NewRetryingStore(s, opts.RetryMaxElapsed, log), nil
	case DriverS3:
		s, err := NewS3Store(ctx, opts.S3, log)
		if err != nil {
			return nil, err
		}
		return NewRetryingStore(s, opts.RetryMaxElapsed, log), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
