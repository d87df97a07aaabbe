package server

import (
	"errors"
	"io"

	"github.com/balusreekanth/LogCast/broadcast"
	"github.com/balusreekanth/LogCast/common"

	log "github.com/sirupsen/logrus"
)

// receive drains a subscriber until it disconnects, then removes and closes it.
// Inbound bytes carry no meaning, they are only logged.
func receive(registry *broadcast.Registry, client *broadcast.Client) {
	peer := client.Peer()
	log.Infof("[receiver] Client connected: %s", peer)

	reason := "disconnected"
	buf := make([]byte, common.ReceiveBufferSize)
	for {
		n, err := client.Read(buf)
		if n > 0 {
			log.Debugf("[receiver] Received data from %s: %q", peer, buf[:n])
		}
		if err == nil {
			continue
		}
		switch {
		case errors.Is(err, io.EOF):
			log.Infof("[receiver] Client %s disconnected", peer)
		case client.Closed():
			// pruned by a broadcast, the close unblocked our read
			log.Debugf("[receiver] Client %s closed by broadcaster", peer)
			reason = "pruned"
		default:
			log.Errorf("[receiver] Error with client %s: %v", peer, err)
			reason = err.Error()
		}
		break
	}
	registry.Drop(client, reason)
}
