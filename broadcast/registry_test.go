package broadcast

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddRemove(t *testing.T) {
	r := NewRegistry()
	a := NewClient(newFakeConn("10.0.0.1:1000"), 0)
	b := NewClient(newFakeConn("10.0.0.2:1000"), 0)

	assert.True(t, r.Add(a))
	assert.False(t, r.Add(a))
	assert.True(t, r.Add(b))
	assert.Equal(t, 2, r.Len())

	snapshot := r.Snapshot()
	assert.Equal(t, []*Client{a, b}, snapshot)

	assert.True(t, r.Remove(a, "test"))
	assert.False(t, r.Remove(a, "test"))
	assert.Equal(t, 1, r.Len())
	// the earlier snapshot is a copy
	assert.Len(t, snapshot, 2)

	departed := r.Departed()
	require.Len(t, departed, 1)
	assert.Equal(t, "10.0.0.1:1000", departed[0].Peer)
	assert.Equal(t, "test", departed[0].Reason)
}

func TestRegistryDropClosesOnce(t *testing.T) {
	r := NewRegistry()
	conn := newFakeConn("10.0.0.1:1000")
	c := NewClient(conn, 0)
	r.Add(c)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Drop(c, "test")
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, int32(1), conn.closes)
	assert.True(t, c.Closed())
	assert.Len(t, r.Departed(), 1)
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	clients := make([]*Client, 100)
	for i := range clients {
		clients[i] = NewClient(newFakeConn(fmt.Sprintf("10.0.0.%d:1000", i)), 0)
	}

	var wg sync.WaitGroup
	for i, c := range clients {
		wg.Add(2)
		go func(c *Client) {
			defer wg.Done()
			r.Add(c)
			r.Add(c)
		}(c)
		go func(i int) {
			defer wg.Done()
			seen := map[*Client]bool{}
			for _, member := range r.Snapshot() {
				assert.False(t, seen[member], "duplicate member in snapshot")
				assert.NotNil(t, member)
				seen[member] = true
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, r.Len())

	for i, c := range clients {
		if i%2 == 0 {
			wg.Add(2)
			go func(c *Client) {
				defer wg.Done()
				r.Remove(c, "test")
			}(c)
			go func(c *Client) {
				defer wg.Done()
				r.Remove(c, "test")
			}(c)
		}
	}
	wg.Wait()
	assert.Equal(t, 50, r.Len())
	assert.Len(t, r.Departed(), 50)
}

func TestRegistryCloseAll(t *testing.T) {
	r := NewRegistry()
	conns := []*fakeConn{newFakeConn("a:1"), newFakeConn("b:1")}
	for _, conn := range conns {
		r.Add(NewClient(conn, 0))
	}
	r.CloseAll()
	assert.Equal(t, 0, r.Len())
	for _, conn := range conns {
		assert.Equal(t, int32(1), conn.closes)
	}
}
