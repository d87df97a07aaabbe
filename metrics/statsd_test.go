package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollect(t *testing.T) {
	ConnectedClients.Set(3)
	AlertsTotal.Inc()
	MessagesSent.WithLabelValues("alert").Add(2)

	p := NewPusher(nil, "host.example.com")
	assert.Equal(t, "logcast.host_example_com", p.prefix)

	data, err := p.collect()
	assert.NoError(t, err)
	assert.Equal(t, float64(3), data["connected_clients"])
	assert.GreaterOrEqual(t, data["alerts_total"], float64(1))
	assert.GreaterOrEqual(t, data["messages_sent_total.alert"], float64(2))
	for k := range data {
		assert.NotContains(t, k, "go_")
	}
}

func TestSendWithoutTransfers(t *testing.T) {
	p := NewPusher(nil, "host")
	assert.NoError(t, p.Send())
	assert.Empty(t, p.clients)
}
