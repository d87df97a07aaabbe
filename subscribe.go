package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/balusreekanth/LogCast/common"
	"github.com/balusreekanth/LogCast/utils"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"
)

const (
	reconnectInterval = 5 * time.Second
	receiveTimeout    = 60 * time.Second
	dialTimeout       = 10 * time.Second
)

func subscribe(c *cli.Context) error {
	if err := setupLogLevel(c.String("log-level")); err != nil {
		log.Fatal(err)
	}

	addr := c.String("server")
	tlsConfig, err := clientTLSConfig(addr, c.String("ca"), c.Bool("insecure"))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	s := newSubscriber(addr, tlsConfig, c.String("framing") == common.FramingRaw, os.Stdout)
	s.Run(ctx)
	return nil
}

func clientTLSConfig(addr, caFile string, insecure bool) (*tls.Config, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "bad server address %s", addr)
	}
	config := &tls.Config{
		ServerName:         host,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: insecure, //nolint:gosec
	}
	if caFile == "" {
		return config, nil
	}
	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, errors.Wrapf(err, "read ca %s", caFile)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.Errorf("no certificate found in %s", caFile)
	}
	config.RootCAs = pool
	return config, nil
}

// subscriber prints every alert pushed by a logcast server and reconnects forever
type subscriber struct {
	addr      string
	tlsConfig *tls.Config
	raw       bool
	out       io.Writer

	reconnect time.Duration
	timeout   time.Duration
	alive     utils.AtomicBool
}

func newSubscriber(addr string, tlsConfig *tls.Config, raw bool, out io.Writer) *subscriber {
	return &subscriber{
		addr:      addr,
		tlsConfig: tlsConfig,
		raw:       raw,
		out:       out,
		reconnect: reconnectInterval,
		timeout:   receiveTimeout,
	}
}

// Run keeps a session open until ctx is done
func (s *subscriber) Run(ctx context.Context) {
	for {
		err := s.session(ctx)
		s.alive.Unset()
		if ctx.Err() != nil {
			return
		}
		log.Warnf("[subscribe] connection to %s lost: %v, retrying in %v", s.addr, err, s.reconnect)
		if !utils.SleepContext(ctx, s.reconnect) {
			return
		}
	}
}

func (s *subscriber) session(ctx context.Context) error {
	dialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: dialTimeout}, Config: s.tlsConfig}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Infof("[subscribe] connected to %s", s.addr)
	s.alive.Set()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	next := s.lineReader(conn)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
			return err
		}
		msg, err := next()
		if err != nil {
			return err
		}
		if msg == common.HeartbeatToken {
			log.Debugf("[subscribe] keep-alive from %s", s.addr)
			continue
		}
		fmt.Fprintln(s.out, msg)
	}
}

// lineReader yields one message per newline, or per read when the server sends raw
func (s *subscriber) lineReader(conn net.Conn) func() (string, error) {
	if s.raw {
		buf := make([]byte, common.ReceiveBufferSize)
		return func() (string, error) {
			n, err := conn.Read(buf)
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(string(buf[:n])), nil
		}
	}
	reader := bufio.NewReader(conn)
	return func() (string, error) {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}
