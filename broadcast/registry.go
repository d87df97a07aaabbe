package broadcast

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/balusreekanth/LogCast/metrics"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

const (
	departedTTL     = 10 * time.Minute
	departedCleanup = time.Minute
)

// Departure records a subscriber that left the registry
type Departure struct {
	Peer        string        `json:"peer"`
	Reason      string        `json:"reason"`
	ConnectedAt time.Time     `json:"connected_at"`
	LeftAt      time.Time     `json:"left_at"`
	Duration    time.Duration `json:"duration"`
}

// Registry is the set of live subscribers.
// Members are kept in join order; Snapshot copies them so I/O happens outside the lock.
type Registry struct {
	sync.Mutex
	clients []*Client
	members map[*Client]struct{}

	departed *cache.Cache
	seq      uint64
}

// NewRegistry .
func NewRegistry() *Registry {
	return &Registry{
		members:  map[*Client]struct{}{},
		departed: cache.New(departedTTL, departedCleanup),
	}
}

// Add inserts the client, adding a member twice is a no-op
func (r *Registry) Add(c *Client) bool {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.members[c]; ok {
		return false
	}
	r.members[c] = struct{}{}
	r.clients = append(r.clients, c)
	metrics.ConnectedClients.Set(float64(len(r.clients)))
	log.Debugf("[registry] %s added, %d clients", c.Peer(), len(r.clients))
	return true
}

// Remove deletes the client if present, reports whether it was a member
func (r *Registry) Remove(c *Client, reason string) bool {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.members[c]; !ok {
		return false
	}
	delete(r.members, c)
	for i, member := range r.clients {
		if member == c {
			r.clients = append(r.clients[:i], r.clients[i+1:]...)
			break
		}
	}
	metrics.ConnectedClients.Set(float64(len(r.clients)))

	now := time.Now()
	r.seq++
	key := strconv.FormatUint(r.seq, 10)
	r.departed.SetDefault(key, Departure{
		Peer:        c.Peer(),
		Reason:      reason,
		ConnectedAt: c.ConnectedAt(),
		LeftAt:      now,
		Duration:    now.Sub(c.ConnectedAt()),
	})
	log.Debugf("[registry] %s removed (%s), %d clients", c.Peer(), reason, len(r.clients))
	return true
}

// Drop removes then closes the client. Safe to call from several paths for the same client.
func (r *Registry) Drop(c *Client, reason string) {
	r.Remove(c, reason)
	if err := c.Close(); err != nil {
		log.Debugf("[registry] close %s: %v", c.Peer(), err)
	}
}

// Snapshot returns a point-in-time copy of the members
func (r *Registry) Snapshot() []*Client {
	r.Lock()
	defer r.Unlock()

	snapshot := make([]*Client, len(r.clients))
	copy(snapshot, r.clients)
	return snapshot
}

// Len .
func (r *Registry) Len() int {
	r.Lock()
	defer r.Unlock()
	return len(r.clients)
}

// Departed lists recently departed subscribers, newest first
func (r *Registry) Departed() []Departure {
	items := r.departed.Items()
	departures := make([]Departure, 0, len(items))
	for _, item := range items {
		if d, ok := item.Object.(Departure); ok {
			departures = append(departures, d)
		}
	}
	sort.Slice(departures, func(i, j int) bool {
		return departures[i].LeftAt.After(departures[j].LeftAt)
	})
	return departures
}

// CloseAll drops every member, used on shutdown
func (r *Registry) CloseAll() {
	for _, c := range r.Snapshot() {
		r.Drop(c, "shutdown")
	}
}
