// internal/database/retry.go
package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RetryConfig bounds the transaction runner: at most MaxAttempts attempts,
// sleeping BaseDelay doubled per attempt and capped at MaxDelay.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
	}
}

// WithRetryingTransaction runs fn inside a database transaction and retries
// the whole unit on transient failures (serialization conflicts, deadlocks,
// dropped connections). Each attempt gets a fresh transaction handle, so fn
// must re-read any state it depends on and must not close over entities
// loaded before the first attempt. Business errors are returned immediately,
// and a committed transaction is never re-run.
func WithRetryingTransaction(ctx context.Context, db *gorm.DB, cfg RetryConfig, fn func(tx *gorm.DB) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	delay := cfg.BaseDelay
	var err error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err = db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}

		if !IsTransient(err) || attempt == cfg.MaxAttempts {
			return err
		}

		logrus.WithError(err).WithField("attempt", attempt).
			Warn("Transient database failure, retrying transaction")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return err
}

// IsTransient reports whether err is worth retrying against a fresh
// transaction. Only connectivity loss and datastore-level concurrency
// failures qualify; everything else is treated as terminal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03", // lock_not_available
			"57014", // query_canceled (statement timeout)
			"53300", // too_many_connections
			"08000", "08003", "08006": // connection failures
			return true
		}
	}

	return false
}
