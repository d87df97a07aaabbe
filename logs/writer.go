package logs

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/balusreekanth/LogCast/common"
	"github.com/balusreekanth/LogCast/types"

	log "github.com/sirupsen/logrus"
)

// KeepaliveInterval is how often a broken forward is redialed
var KeepaliveInterval = time.Second * 30

// WriteTimeout bounds one alert write on tcp/udp forwards
var WriteTimeout = time.Second * 5

// Writer forwards alerts to one remote sink and redials it after failures
type Writer struct {
	sync.RWMutex
	addr          string
	scheme        string
	enc           Encoder
	needReconnect bool
}

// NewWriter accepts tcp://host:port, udp://host:port, journal:// or the discard marker.
// A sink that can't be reached yet is retried in the background until ctx is done.
func NewWriter(ctx context.Context, addr string) (*Writer, error) {
	if addr == common.ForwardDiscard {
		return &Writer{enc: NewStreamEncoder(discard{})}, nil
	}

	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}

	w := &Writer{addr: u.Host, scheme: u.Scheme}
	w.enc, err = w.createEncoder()
	switch {
	case err == common.ErrInvalidScheme:
		return nil, err
	case err != nil:
		log.Errorf("[writer] failed to create writer for %s, err: %v, will retry", addr, err)
		w.needReconnect = true
	default:
		log.Infof("[writer] create writer for %s success", addr)
	}

	go w.keepalive(ctx)
	return w, nil
}

// NewWriters builds one writer per forward address, skipping the broken ones
func NewWriters(ctx context.Context, addrs []string) []*Writer {
	writers := make([]*Writer, 0, len(addrs))
	for _, addr := range addrs {
		w, err := NewWriter(ctx, addr)
		if err != nil {
			log.Errorf("[writer] ignore forward %s: %v", addr, err)
			continue
		}
		writers = append(writers, w)
	}
	return writers
}

func (w *Writer) withLock(f func()) {
	w.Lock()
	defer w.Unlock()
	f()
}

func (w *Writer) withRLock(f func()) {
	w.RLock()
	defer w.RUnlock()
	f()
}

func (w *Writer) createEncoder() (Encoder, error) {
	switch w.scheme {
	case "udp", "tcp":
		conn, err := net.DialTimeout(w.scheme, w.addr, 5*time.Second)
		if err != nil {
			return nil, err
		}
		return NewStreamEncoder(&deadlineConn{Conn: conn, timeout: WriteTimeout}), nil
	case "journal":
		return CreateJournalEncoder()
	default:
		log.Errorf("[writer] invalid scheme: %s", w.scheme)
		return nil, common.ErrInvalidScheme
	}
}

func (w *Writer) reconnect() {
	needReconnect := false
	w.withRLock(func() {
		needReconnect = w.needReconnect
	})
	if !needReconnect {
		return
	}

	log.Debugf("[writer] reconnecting to %s://%s", w.scheme, w.addr)
	enc, err := w.createEncoder()
	if err != nil {
		log.Warnf("[writer] failed to connect to %s://%s: %s", w.scheme, w.addr, err)
		return
	}
	w.withLock(func() {
		w.enc = enc
		w.needReconnect = false
	})
	log.Infof("[writer] connected to %s://%s", w.scheme, w.addr)
}

func (w *Writer) keepalive(ctx context.Context) {
	timer := time.NewTimer(KeepaliveInterval)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			w.reconnect()
			timer.Reset(KeepaliveInterval)
		case <-ctx.Done():
			return
		}
	}
}

// checkError drops a broken encoder so the keepalive loop redials
func (w *Writer) checkError(err error) {
	if err == nil || err == common.ErrConnecting {
		return
	}
	log.Errorf("[writer] forward alert to %s://%s failed: %s", w.scheme, w.addr, err)
	w.withLock(func() {
		if w.enc != nil {
			w.enc.Close()
			w.enc = nil
			w.needReconnect = true
		}
	})
}

func (w *Writer) checkConn() error {
	var err error
	w.withLock(func() {
		if w.enc == nil {
			err = common.ErrConnecting
			w.needReconnect = true
		}
	})
	return err
}

// Write forwards one alert, returns ErrConnecting while the sink is down
func (w *Writer) Write(alert *types.Alert) error {
	err := w.checkConn()
	if err == nil {
		w.withRLock(func() {
			err = w.enc.Encode(alert)
		})
	}
	w.checkError(err)
	return err
}

// Close .
func (w *Writer) Close() error {
	var err error
	w.withLock(func() {
		if w.enc != nil {
			err = w.enc.Close()
			w.enc = nil
		}
		w.needReconnect = false
	})
	log.Infof("[writer] writer for %s://%s closed", w.scheme, w.addr)
	return err
}
