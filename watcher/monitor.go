package watcher

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/balusreekanth/LogCast/broadcast"
	"github.com/balusreekanth/LogCast/common"
	"github.com/balusreekanth/LogCast/metrics"
	"github.com/balusreekanth/LogCast/types"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// maxLineSize caps a line still waiting for its newline
const maxLineSize = 1 << 20

// Fanout delivers a message to every subscriber
type Fanout interface {
	Broadcast(msg types.Message) broadcast.Result
}

// AlertWriter receives a copy of every alert
type AlertWriter interface {
	Write(alert *types.Alert) error
}

// Status is a point-in-time view of the monitor
type Status struct {
	Path    string `json:"path"`
	Keyword string `json:"keyword"`
	Open    bool   `json:"open"`
	Waiting bool   `json:"waiting"`
	Inode   uint64 `json:"inode"`
	Offset  int64  `json:"offset"`
	Reopens int    `json:"reopens"`
	Alerts  int    `json:"alerts"`
}

// Monitor tails one file and broadcasts an alert for every line containing the keyword.
// Content present when the file is (re)opened is skipped, only appended lines are read.
type Monitor struct {
	path         string
	keyword      string
	hostname     string
	pollInterval time.Duration
	notify       bool
	fanout       Fanout
	writers      []AlertWriter

	file    *os.File
	info    os.FileInfo
	reader  *bufio.Reader
	offset  int64
	pending string

	sync.Mutex
	status Status
}

// Option .
type Option func(*Monitor)

// WithPollInterval .
func WithPollInterval(d time.Duration) Option {
	return func(m *Monitor) { m.pollInterval = d }
}

// WithNotify toggles filesystem notifications as an early wakeup
func WithNotify(enabled bool) Option {
	return func(m *Monitor) { m.notify = enabled }
}

// WithWriters adds alert forwards
func WithWriters(writers ...AlertWriter) Option {
	return func(m *Monitor) { m.writers = append(m.writers, writers...) }
}

// WithHostname is stamped on forwarded alerts
func WithHostname(hostname string) Option {
	return func(m *Monitor) { m.hostname = hostname }
}

// NewMonitor .
func NewMonitor(path, keyword string, fanout Fanout, opts ...Option) *Monitor {
	m := &Monitor{
		path:         path,
		keyword:      keyword,
		pollInterval: time.Second,
		notify:       true,
		fanout:       fanout,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.status = Status{Path: path, Keyword: keyword}
	return m
}

// Status .
func (m *Monitor) Status() Status {
	m.Lock()
	defer m.Unlock()
	return m.status
}

func (m *Monitor) updateStatus(f func(*Status)) {
	m.Lock()
	defer m.Unlock()
	f(&m.status)
}

// Run tails until ctx is done. Errors are logged and retried, they never end the loop.
func (m *Monitor) Run(ctx context.Context) {
	log.Infof("[watcher] watching '%s' for keyword '%s'", m.path, m.keyword)
	defer log.Infof("[watcher] stop watching '%s'", m.path)
	defer m.closeFile()

	var wake <-chan struct{}
	if m.notify {
		c, cleanup, err := watchFile(m.path)
		if err != nil {
			log.Warnf("[watcher] file notifications unavailable, polling every %v: %v", m.pollInterval, err)
		} else {
			wake = c
			defer cleanup()
		}
	}

	for ctx.Err() == nil {
		progressed, err := m.tick()
		switch {
		case err != nil:
			log.Errorf("[watcher] Error watching log file '%s': %v", m.path, err)
			m.wait(ctx, nil)
		case !progressed:
			m.wait(ctx, wake)
		}
	}
}

// wait returns after one poll interval, a notification, or ctx cancellation
func (m *Monitor) wait(ctx context.Context, wake <-chan struct{}) {
	timer := time.NewTimer(m.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	case <-wake:
	}
}

// tick runs one step of the tail loop, reports whether a line was consumed
func (m *Monitor) tick() (bool, error) {
	info, err := os.Stat(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			if !m.Status().Waiting {
				log.Warnf("[watcher] Log file '%s' not found. Waiting...", m.path)
			}
			m.updateStatus(func(s *Status) { s.Waiting = true })
			return false, nil
		}
		return false, errors.Wrapf(err, "stat %s", m.path)
	}
	m.updateStatus(func(s *Status) { s.Waiting = false })

	switch {
	case m.file == nil:
		err = m.reopen("opened")
	case !os.SameFile(m.info, info):
		err = m.reopen("replaced")
	case info.Size() < m.offset:
		err = m.reopen("truncated")
	}
	if err != nil {
		return false, err
	}

	line, ok, err := m.readLine()
	if err != nil || !ok {
		return false, err
	}

	metrics.LinesRead.Inc()
	if types.MatchKeyword(line, m.keyword) {
		m.alert(line)
	}
	return true, nil
}

// reopen binds a fresh handle to the path and seeks to its end
func (m *Monitor) reopen(reason string) error {
	if m.file != nil {
		log.Infof("[watcher] File '%s' %s. Reopening...", m.path, reason)
		m.closeFile()
	}

	f, err := os.Open(m.path)
	if err != nil {
		return errors.Wrapf(err, "open %s", m.path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "stat %s", m.path)
	}
	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "seek %s", m.path)
	}

	m.file = f
	m.info = info
	m.reader = bufio.NewReader(f)
	m.offset = offset
	m.pending = ""
	inode := inodeOf(info)
	m.updateStatus(func(s *Status) {
		s.Open = true
		s.Inode = inode
		s.Offset = offset
		s.Reopens++
	})
	metrics.FileReopens.Inc()
	log.Infof("[watcher] Monitoring log file '%s' with inode %d.", m.path, inode)
	return nil
}

// readLine returns the next complete line. A trailing fragment is held until its newline arrives.
func (m *Monitor) readLine() (string, bool, error) {
	chunk, err := m.reader.ReadString('\n')
	if n := int64(len(chunk)); n > 0 {
		m.offset += n
		m.updateStatus(func(s *Status) { s.Offset = m.offset })
	}
	if err != nil {
		if err != io.EOF {
			// the handle is unusable, force a reopen on the next tick
			m.closeFile()
			return "", false, errors.Wrapf(err, "read %s", m.path)
		}
		m.pending += chunk
		if len(m.pending) < maxLineSize {
			return "", false, nil
		}
		chunk = ""
	}
	line := m.pending + chunk
	m.pending = ""
	return line, true, nil
}

func (m *Monitor) alert(line string) {
	msg := types.NewAlert(line)
	trimmed := strings.TrimSpace(line)
	log.Infof("[watcher] Keyword '%s' found in log file: %s", m.keyword, trimmed)
	metrics.AlertsTotal.Inc()
	m.updateStatus(func(s *Status) { s.Alerts++ })

	result := m.fanout.Broadcast(msg)
	log.Debugf("[watcher] alert sent to %d/%d clients, %d pruned", result.Delivered, result.Attempted, result.Pruned)

	if len(m.writers) == 0 {
		return
	}
	a := &types.Alert{
		Keyword:  m.keyword,
		Path:     m.path,
		Line:     trimmed,
		Hostname: m.hostname,
		Datetime: time.Now().Format(common.DateTimeFormat),
	}
	for _, w := range m.writers {
		if err := w.Write(a); err != nil {
			log.Errorf("[watcher] forward alert failed: %v", err)
		}
	}
}

func (m *Monitor) closeFile() {
	if m.file == nil {
		return
	}
	if err := m.file.Close(); err != nil {
		log.Debugf("[watcher] close %s: %v", m.path, err)
	}
	m.file = nil
	m.info = nil
	m.reader = nil
	m.offset = 0
	m.pending = ""
	m.updateStatus(func(s *Status) {
		s.Open = false
		s.Inode = 0
	})
}
