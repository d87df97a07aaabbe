package heartbeat

import (
	"context"
	"time"

	"github.com/balusreekanth/LogCast/metrics"
	"github.com/balusreekanth/LogCast/types"

	log "github.com/sirupsen/logrus"
)

// heartbeat beats once right away, then every interval.
// An interval of 0 disables it.
func (m *Manager) heartbeat(ctx context.Context) {
	if m.interval <= 0 {
		return
	}
	m.beat()

	tick := time.NewTicker(m.interval)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			m.beat()
		case <-ctx.Done():
			return
		}
	}
}

// beat is also the only thing that notices peers which went away silently
func (m *Manager) beat() {
	result := m.fanout.Broadcast(types.NewHeartbeat())
	metrics.HeartbeatsTotal.Inc()
	if result.Pruned > 0 {
		log.Infof("[heartbeat] pruned %d dead clients, %d left", result.Pruned, result.Delivered)
		return
	}
	log.Debugf("[heartbeat] keep-alive sent to %d clients", result.Delivered)
}
