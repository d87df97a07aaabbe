package utils

import (
	"context"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// WritePid write pid
func WritePid(path string) {
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		log.Panicf("Save pid file failed %s", err)
	}
}

// WithTimeout runs a function with given timeout, a zero timeout means no timeout
func WithTimeout(ctx context.Context, timeout time.Duration, f func(ctx2 context.Context)) {
	if timeout <= 0 {
		f(ctx)
		return
	}
	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	f(ctx2)
}

// SleepContext sleeps d or until ctx is done, reports whether the full sleep elapsed
func SleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Atoi parses s, falling back to def when s is empty or not a number
func Atoi(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// RemovePid removes the pid file written by WritePid
func RemovePid(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warnf("Remove pid file failed %s", err)
	}
}
