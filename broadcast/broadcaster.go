package broadcast

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"

	"github.com/balusreekanth/LogCast/common"
	"github.com/balusreekanth/LogCast/metrics"
	"github.com/balusreekanth/LogCast/types"

	log "github.com/sirupsen/logrus"
)

// Result summarises one fan-out pass
type Result struct {
	Attempted int
	Delivered int
	Pruned    int
}

// Broadcaster fans a message out to every registered client and prunes the ones that fail
type Broadcaster struct {
	registry *Registry
	framed   bool
}

// NewBroadcaster .
func NewBroadcaster(registry *Registry, framing string) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		framed:   framing != common.FramingRaw,
	}
}

// Broadcast sends msg to the clients registered at call time, in join order.
// A client whose send fails is removed and closed, so later passes skip it.
func (b *Broadcaster) Broadcast(msg types.Message) Result {
	payload := msg.Encode(b.framed)
	clients := b.registry.Snapshot()
	result := Result{Attempted: len(clients)}

	for _, c := range clients {
		err := c.Send(payload)
		if err == nil {
			result.Delivered++
			metrics.MessagesSent.WithLabelValues(msg.Kind).Inc()
			continue
		}

		metrics.SendFailures.WithLabelValues(msg.Kind).Inc()
		if IsTransportError(err) {
			log.Warnf("[broadcast] Error sending %s to %s: %v", msg.Kind, c.Peer(), err)
		} else {
			log.Errorf("[broadcast] Unexpected error with client %s: %v", c.Peer(), err)
		}
		if b.registry.Remove(c, "send failed: "+err.Error()) {
			result.Pruned++
			metrics.ClientsPruned.Inc()
		}
		if err := c.Close(); err != nil {
			log.Debugf("[broadcast] close %s: %v", c.Peer(), err)
		}
	}
	return result
}

// IsTransportError reports broken pipes, resets and other socket level failures
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, common.ErrClientClosed),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, os.ErrDeadlineExceeded):
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
