package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// schemaLockKey serializes migrations across replicas starting together.
const schemaLockKey int64 = 0x626f6f6b696e67

type releaseFunc func(ctx context.Context) error

// lockSchema blocks until the session-level advisory lock is held or ctx
// ends. The lock lives on a pinned connection, released with it.
func lockSchema(ctx context.Context, db *sql.DB) (releaseFunc, error) {
	if db == nil {
		return nil, errors.New("schema lock requires database handle")
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("pin lock connection: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", schemaLockKey); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("acquire schema lock: %w", err)
	}

	return func(ctx context.Context) error {
		defer conn.Close()
		var released bool
		if err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", schemaLockKey).Scan(&released); err != nil {
			return fmt.Errorf("release schema lock: %w", err)
		}
		if !released {
			return errors.New("schema lock was not held by this session")
		}
		return nil
	}, nil
}
