package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffRetry(t *testing.T) {
	RetryInterval = 10 * time.Millisecond
	i := 0
	f := func() error {
		i++
		if i < 4 {
			return errors.New("xxx")
		}
		return nil
	}
	assert.Nil(t, BackoffRetry(context.Background(), "test", 10, f))
	assert.Equal(t, 4, i)
}

func TestBackoffRetryExhausted(t *testing.T) {
	RetryInterval = time.Millisecond
	i := 0
	err := BackoffRetry(context.Background(), "test", 3, func() error {
		i++
		return errors.New("always")
	})
	assert.EqualError(t, err, "always")
	assert.Equal(t, 3, i)
}

func TestBackoffRetryCanceled(t *testing.T) {
	RetryInterval = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	i := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	err := BackoffRetry(ctx, "test", 3, func() error {
		i++
		return errors.New("always")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, i)
}
