package utils

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// RetryInterval is the first wait of BackoffRetry, doubled after every failure
var RetryInterval = time.Second

// RetryTask .
type RetryTask struct {
	ctx         context.Context
	cancel      context.CancelFunc
	name        string
	Func        func() error
	MaxAttempts int
}

// NewRetryTask .
func NewRetryTask(ctx context.Context, name string, maxAttempts int, f func() error) *RetryTask {
	// make sure to execute at least once
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &RetryTask{
		ctx:         ctx,
		cancel:      cancel,
		name:        name,
		MaxAttempts: maxAttempts,
		Func:        f,
	}
}

// Run start running retry task
func (r *RetryTask) Run() error {
	defer r.Stop()

	var err error
	interval := RetryInterval
	timer := time.NewTimer(0)
	defer timer.Stop()

	for i := 0; i < r.MaxAttempts; i++ {
		select {
		case <-r.ctx.Done():
			log.Debugf("[RetryTask] %s abort", r.name)
			return r.ctx.Err()
		case <-timer.C:
			if err = r.Func(); err == nil {
				return nil
			}
			if i == r.MaxAttempts-1 {
				break
			}
			log.Warnf("[RetryTask] %s failed: %v, will retry after %v", r.name, err, interval)
			timer.Reset(interval)
			interval *= 2
		}
	}
	return err
}

// Stop stops running task
func (r *RetryTask) Stop() {
	r.cancel()
}

// BackoffRetry retries up to `maxAttempts` times, and the interval will grow exponentially
func BackoffRetry(ctx context.Context, name string, maxAttempts int, f func() error) error {
	retryTask := NewRetryTask(ctx, name, maxAttempts, f)
	defer retryTask.Stop()
	return retryTask.Run()
}
