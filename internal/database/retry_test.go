// internal/database/retry_test.go
package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

type fakeNetError struct{}

func (fakeNetError) Error() string   { return "connection reset" }
func (fakeNetError) Timeout() bool   { return true }
func (fakeNetError) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("cart is empty")))
	assert.False(t, IsTransient(gorm.ErrRecordNotFound))

	assert.True(t, IsTransient(driver.ErrBadConn))
	assert.True(t, IsTransient(io.EOF))
	assert.True(t, IsTransient(fmt.Errorf("query: %w", driver.ErrBadConn)))

	var netErr net.Error = fakeNetError{}
	assert.True(t, IsTransient(netErr))

	assert.True(t, IsTransient(&pq.Error{Code: "40001"}))
	assert.True(t, IsTransient(&pq.Error{Code: "40P01"}))
	assert.True(t, IsTransient(&pq.Error{Code: "08006"}))
	assert.False(t, IsTransient(&pq.Error{Code: "23505"})) // unique_violation is terminal
}

func TestWithRetryingTransactionBusinessErrorNotRetried(t *testing.T) {
	db := openTestDB(t)
	cfg := RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}

	businessErr := errors.New("coupon is expired")
	attempts := 0
	err := WithRetryingTransaction(context.Background(), db, cfg, func(tx *gorm.DB) error {
		attempts++
		return businessErr
	})

	assert.ErrorIs(t, err, businessErr)
	assert.Equal(t, 1, attempts)
}

func TestWithRetryingTransactionRetriesTransient(t *testing.T) {
	db := openTestDB(t)
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	attempts := 0
	err := WithRetryingTransaction(context.Background(), db, cfg, func(tx *gorm.DB) error {
		attempts++
		if attempts < 3 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryingTransactionBoundedAttempts(t *testing.T) {
	db := openTestDB(t)
	cfg := RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	attempts := 0
	err := WithRetryingTransaction(context.Background(), db, cfg, func(tx *gorm.DB) error {
		attempts++
		return &pq.Error{Code: "40P01"}
	})

	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryingTransactionHonorsContext(t *testing.T) {
	db := openTestDB(t)
	cfg := RetryConfig{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond, MaxDelay: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := WithRetryingTransaction(ctx, db, cfg, func(tx *gorm.DB) error {
		attempts++
		return &pq.Error{Code: "40001"}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, attempts, 2)
}
