package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/balusreekanth/LogCast/broadcast"
	"github.com/balusreekanth/LogCast/metrics"
	"github.com/balusreekanth/LogCast/utils"

	log "github.com/sirupsen/logrus"
)

const acceptBackoffMax = time.Second

// Server accepts subscribers, completes the tls handshake and registers them
type Server struct {
	listener         net.Listener
	tlsConfig        *tls.Config
	registry         *broadcast.Registry
	handshakeTimeout time.Duration
	writeTimeout     time.Duration

	wg sync.WaitGroup
}

// Option .
type Option func(*Server)

// WithHandshakeTimeout bounds each tls handshake, zero means no bound
func WithHandshakeTimeout(d time.Duration) Option {
	return func(s *Server) { s.handshakeTimeout = d }
}

// WithWriteTimeout sets the per-send write deadline of every client, zero means none
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Server) { s.writeTimeout = d }
}

// New creates a server on an already bound listener
func New(listener net.Listener, tlsConfig *tls.Config, registry *broadcast.Registry, opts ...Option) *Server {
	s := &Server{
		listener:  listener,
		tlsConfig: tlsConfig,
		registry:  registry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds addr, retrying a few times in case the previous process still holds it
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var listener net.Listener
	err := utils.BackoffRetry(ctx, "listen "+addr, 3, func() (err error) {
		listener, err = net.Listen("tcp", addr)
		return err
	})
	return listener, err
}

// Addr .
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts until ctx is done. Handshake failures never stop the loop.
func (s *Server) Serve(ctx context.Context) error {
	log.Infof("[server] Server started on %s with TLS", s.listener.Addr())
	defer log.Info("[server] Server socket closed")

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	var backoff time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.shutdown()
				return nil
			}
			// e.g. EMFILE, keep serving after a short pause
			backoff = nextBackoff(backoff)
			log.Errorf("[server] accept failed: %v, retrying in %v", err, backoff)
			utils.SleepContext(ctx, backoff)
			continue
		}
		backoff = 0

		log.Infof("[server] Connection from %s", conn.RemoteAddr())
		client, err := s.handshake(ctx, conn)
		if err != nil {
			metrics.HandshakeFailures.Inc()
			log.Errorf("[server] TLS error with client %s: %v", conn.RemoteAddr(), err)
			conn.Close()
			continue
		}
		log.Infof("[server] Secure connection established with %s", client.Peer())

		s.registry.Add(client)
		s.wg.Add(1)
		if err := utils.Pool.Submit(func() {
			defer s.wg.Done()
			receive(s.registry, client)
		}); err != nil {
			s.wg.Done()
			log.Errorf("[server] start receiver for %s failed: %v", client.Peer(), err)
			s.registry.Drop(client, "receiver not started")
		}
	}
}

func (s *Server) shutdown() {
	log.Infof("[server] Shutting down, closing %d clients", s.registry.Len())
	s.registry.CloseAll()
	s.wg.Wait()
}

func (s *Server) handshake(ctx context.Context, conn net.Conn) (*broadcast.Client, error) {
	tlsConn := tls.Server(conn, s.tlsConfig)
	var err error
	utils.WithTimeout(ctx, s.handshakeTimeout, func(ctx context.Context) {
		err = tlsConn.HandshakeContext(ctx)
	})
	if err != nil {
		return nil, err
	}
	return broadcast.NewClient(tlsConn, s.writeTimeout), nil
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > acceptBackoffMax {
		return acceptBackoffMax
	}
	return d
}
