package logs

import (
	"encoding/json"
	"io"
	"net"
	"sync"
	"time"

	"github.com/balusreekanth/LogCast/types"
	"github.com/balusreekanth/LogCast/version"

	"github.com/coreos/go-systemd/journal"
	"github.com/pkg/errors"
)

// Encoder .
type Encoder interface {
	Encode(*types.Alert) error
	Close() error
}

// StreamEncoder writes one JSON document per alert
type StreamEncoder struct {
	*json.Encoder
	wt io.WriteCloser
}

// NewStreamEncoder .
func NewStreamEncoder(wt io.WriteCloser) *StreamEncoder {
	return &StreamEncoder{
		Encoder: json.NewEncoder(wt),
		wt:      wt,
	}
}

// Encode .
func (e *StreamEncoder) Encode(alert *types.Alert) error {
	return e.Encoder.Encode(alert)
}

// Close .
func (e *StreamEncoder) Close() error {
	return e.wt.Close()
}

var errJournalDisabled = errors.New("journal disabled")

// JournalEncoder sends alerts to the local systemd journal
type JournalEncoder struct {
	sync.Mutex
}

// CreateJournalEncoder .
func CreateJournalEncoder() (*JournalEncoder, error) {
	if !journal.Enabled() {
		return nil, errJournalDisabled
	}
	return &JournalEncoder{}, nil
}

// Encode .
func (c *JournalEncoder) Encode(alert *types.Alert) error {
	vars := map[string]string{
		"SYSLOG_IDENTIFIER": version.NAME,
		"KEYWORD":           alert.Keyword,
		"WATCHED_PATH":      alert.Path,
		"HOSTNAME":          alert.Hostname,
		"DATE_TIME":         alert.Datetime,
	}

	c.Lock()
	defer c.Unlock()

	return journal.Send(alert.Line, journal.PriNotice, vars)
}

// Close .
func (c *JournalEncoder) Close() error {
	return nil
}

// deadlineConn keeps a stalled sink from blocking the tail loop
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Write(p []byte) (int, error) {
	if c.timeout > 0 {
		if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return 0, err
		}
	}
	return c.Conn.Write(p)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) {
	return len(p), nil
}

func (discard) Close() error {
	return nil
}
