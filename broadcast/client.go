package broadcast

import (
	"net"
	"sync"
	"time"

	"github.com/balusreekanth/LogCast/common"
	"github.com/balusreekanth/LogCast/utils"
)

// Client is one handshake-completed subscriber connection.
// Writes are serialized so that the alert and heartbeat paths never interleave
// partial frames on the same stream.
type Client struct {
	conn         net.Conn
	peer         string
	connectedAt  time.Time
	writeTimeout time.Duration

	sendMutex sync.Mutex
	closed    utils.AtomicBool
}

// NewClient wraps an established connection. A zero writeTimeout never sets a write deadline.
func NewClient(conn net.Conn, writeTimeout time.Duration) *Client {
	peer := "unknown"
	if addr := conn.RemoteAddr(); addr != nil {
		peer = addr.String()
	}
	return &Client{
		conn:         conn,
		peer:         peer,
		connectedAt:  time.Now(),
		writeTimeout: writeTimeout,
	}
}

// Peer returns the remote address
func (c *Client) Peer() string {
	return c.peer
}

// ConnectedAt .
func (c *Client) ConnectedAt() time.Time {
	return c.connectedAt
}

// Send writes the whole payload in one call
func (c *Client) Send(payload []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if c.closed.Bool() {
		return common.ErrClientClosed
	}
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	_, err := c.conn.Write(payload)
	return err
}

// Read reads inbound bytes, there is no read deadline
func (c *Client) Read(p []byte) (int, error) {
	return c.conn.Read(p)
}

// Close closes the connection once, later calls are no-ops
func (c *Client) Close() error {
	if !c.closed.CompareAndSet() {
		return nil
	}
	return c.conn.Close()
}

// Closed .
func (c *Client) Closed() bool {
	return c.closed.Bool()
}
