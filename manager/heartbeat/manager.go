package heartbeat

import (
	"context"
	"time"

	"github.com/balusreekanth/LogCast/broadcast"
	"github.com/balusreekanth/LogCast/types"

	log "github.com/sirupsen/logrus"
)

// Fanout delivers a message to every subscriber
type Fanout interface {
	Broadcast(msg types.Message) broadcast.Result
}

// Manager sends the keep-alive token to all subscribers
type Manager struct {
	interval time.Duration
	fanout   Fanout
}

// NewManager .
func NewManager(interval time.Duration, fanout Fanout) *Manager {
	return &Manager{interval: interval, fanout: fanout}
}

// Run runs the heartbeat until ctx is done
func (m *Manager) Run(ctx context.Context) error {
	log.Infof("[HeartbeatManager] start heartbeat every %v", m.interval)
	m.heartbeat(ctx)
	log.Info("[HeartbeatManager] exiting")
	return nil
}
