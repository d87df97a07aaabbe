//go:build linux
// +build linux

package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyWakesMonitor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "web.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	// polling alone would never see the line within the test timeout
	m, rec := startMonitor(t, path, WithPollInterval(time.Hour), WithNotify(true))
	waitReopens(t, m, 1)
	appendTo(t, path, "henry LoggedIn\n")

	waitTexts(t, rec, "Keyword alert: henry LoggedIn")
}

func TestWatchFileFiltersByName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "web.log")

	wake, cleanup, err := watchFile(path)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), []byte("x\n"), 0644))
	select {
	case <-wake:
		t.Fatal("woken by an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
	select {
	case <-wake:
	case <-time.After(3 * time.Second):
		t.Fatal("no wakeup for the watched file")
	}

	// cleanup is idempotent
	cleanup()
	assert.NotNil(t, wake)
}

func TestEventsMention(t *testing.T) {
	assert.False(t, eventsMention(nil, "web.log"))
	assert.Equal(t, "web.log", eventName([]byte("web.log\x00\x00\x00")))
	assert.Equal(t, "web.log", eventName([]byte("web.log")))
}
