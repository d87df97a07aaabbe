package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	statsdlib "github.com/CMGS/statsd"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Pusher sends the logcast collectors to statsd every step
type Pusher struct {
	transfers []string
	prefix    string
	gatherer  prometheus.Gatherer
	clients   map[string]*statsdlib.Client
}

// NewPusher .
func NewPusher(transfers []string, hostname string) *Pusher {
	return &Pusher{
		transfers: transfers,
		prefix:    fmt.Sprintf("%s.%s", namespace, strings.ReplaceAll(hostname, ".", "_")),
		gatherer:  prometheus.DefaultGatherer,
		clients:   map[string]*statsdlib.Client{},
	}
}

// Run pushes until ctx is done
func (p *Pusher) Run(ctx context.Context, step time.Duration) {
	if len(p.transfers) == 0 {
		return
	}
	log.Infof("[statsd] push metrics to %v every %v", p.transfers, step)
	tick := time.NewTicker(step)
	defer tick.Stop()
	defer p.close()

	for {
		select {
		case <-tick.C:
			if err := p.Send(); err != nil {
				log.Errorf("[statsd] send metrics failed %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Send gathers the current values and writes them as gauges
func (p *Pusher) Send() error {
	data, err := p.collect()
	if err != nil {
		return err
	}
	for _, addr := range p.transfers {
		client, err := p.checkConn(addr)
		if err != nil {
			continue
		}
		for k, v := range data {
			client.Gauge(fmt.Sprintf("%s.%s", p.prefix, k), v)
		}
	}
	return nil
}

func (p *Pusher) collect() (map[string]float64, error) {
	families, err := p.gatherer.Gather()
	if err != nil {
		return nil, err
	}
	data := map[string]float64{}
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, namespace+"_") {
			continue
		}
		key := strings.TrimPrefix(name, namespace+"_")
		for _, m := range mf.GetMetric() {
			k := key
			for _, l := range m.GetLabel() {
				k = fmt.Sprintf("%s.%s", k, l.GetValue())
			}
			switch {
			case m.GetGauge() != nil:
				data[k] = m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				data[k] = m.GetCounter().GetValue()
			}
		}
	}
	return data, nil
}

func (p *Pusher) checkConn(addr string) (*statsdlib.Client, error) {
	if client, ok := p.clients[addr]; ok {
		return client, nil
	}
	// udp only, so no reconnect is needed once created
	client, err := statsdlib.New(addr, statsdlib.WithErrorHandler(func(err error) {
		log.Errorf("[statsd] Sending statsd to %s failed: %v", addr, err)
	}))
	if err != nil {
		log.Errorf("[statsd] Connect statsd %s failed: %v", addr, err)
		return nil, err
	}
	p.clients[addr] = client
	return client, nil
}

func (p *Pusher) close() {
	for addr, client := range p.clients {
		client.Close()
		delete(p.clients, addr)
	}
}
