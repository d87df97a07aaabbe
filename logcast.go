package main

import (
	"context"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/balusreekanth/LogCast/api"
	"github.com/balusreekanth/LogCast/broadcast"
	"github.com/balusreekanth/LogCast/logs"
	"github.com/balusreekanth/LogCast/manager/heartbeat"
	"github.com/balusreekanth/LogCast/metrics"
	"github.com/balusreekanth/LogCast/server"
	"github.com/balusreekanth/LogCast/types"
	"github.com/balusreekanth/LogCast/utils"
	"github.com/balusreekanth/LogCast/watcher"

	"github.com/jinzhu/configor"
	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"
)

func setupLogLevel(l string) error {
	level, err := log.ParseLevel(l)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)
	return nil
}

func setupLogOutput(config types.LogConfig) {
	if config.File == "" {
		return
	}
	var output io.Writer = &lumberjack.Logger{
		Filename:   config.File,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
	}
	if config.Stdout {
		output = io.MultiWriter(os.Stdout, output)
	}
	log.SetOutput(output)
}

func initConfig(c *cli.Context) *types.Config {
	config := &types.Config{}

	files := []string{}
	if path := c.String("config"); path != "" {
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		} else {
			log.Warnf("[main] config %s not loaded: %v, using defaults", path, err)
		}
	}
	if err := configor.Load(config, files...); err != nil {
		log.Fatalf("[main] load config failed %v", err)
	}

	config.Prepare(c)
	if log.IsLevelEnabled(log.DebugLevel) {
		config.Print()
	}
	return config
}

func serve(c *cli.Context) error {
	if err := setupLogLevel(c.String("log-level")); err != nil {
		log.Fatal(err)
	}

	config := initConfig(c)
	setupLogOutput(config.Log)
	utils.WritePid(config.PidFile)
	defer utils.RemovePid(config.PidFile)

	ctx, cancel := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	lc, err := newLogCast(ctx, config)
	if err != nil {
		log.Errorf("[logcast] failed to start: %v", err)
		return err
	}
	return lc.Run(ctx)
}

// logCast owns every long running part of the daemon
type logCast struct {
	config      *types.Config
	registry    *broadcast.Registry
	server      *server.Server
	monitor     *watcher.Monitor
	heartbeat   *heartbeat.Manager
	pusher      *metrics.Pusher
	apiHandler  *api.Handler
	writers     []*logs.Writer
	cancelWrite context.CancelFunc
}

// newLogCast binds the listener and builds every component, nothing runs yet
func newLogCast(ctx context.Context, config *types.Config) (*logCast, error) {
	tlsConfig, err := server.LoadTLSConfig(config.Server.CertFile, config.Server.KeyFile)
	if err != nil {
		return nil, err
	}
	listener, err := server.Listen(ctx, config.ListenAddr())
	if err != nil {
		return nil, err
	}

	registry := broadcast.NewRegistry()
	broadcaster := broadcast.NewBroadcaster(registry, config.Server.Framing)

	// writers redial in the background until Run returns
	writeCtx, cancelWrite := context.WithCancel(context.Background())
	writers := logs.NewWriters(writeCtx, config.Log.Forwards)
	alertWriters := make([]watcher.AlertWriter, 0, len(writers))
	for _, w := range writers {
		alertWriters = append(alertWriters, w)
	}

	monitor := watcher.NewMonitor(config.Watch.Path, config.Watch.Keyword, broadcaster,
		watcher.WithPollInterval(config.GetPollInterval()),
		watcher.WithNotify(!config.Watch.DisableNotify),
		watcher.WithWriters(alertWriters...),
		watcher.WithHostname(config.HostName),
	)

	return &logCast{
		config:   config,
		registry: registry,
		server: server.New(listener, tlsConfig, registry,
			server.WithHandshakeTimeout(config.GetHandshakeTimeout()),
			server.WithWriteTimeout(config.GetWriteTimeout()),
		),
		monitor:     monitor,
		heartbeat:   heartbeat.NewManager(config.GetHeartbeatInterval(), broadcaster),
		pusher:      metrics.NewPusher(config.Metrics.Transfers, config.HostName),
		apiHandler:  api.NewHandler(registry, monitor),
		writers:     writers,
		cancelWrite: cancelWrite,
	}, nil
}

// Addr is the bound subscriber address
func (lc *logCast) Addr() net.Addr {
	return lc.server.Addr()
}

// Run blocks until ctx is done or the server fails
func (lc *logCast) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer lc.closeWriters()

	errChan := make(chan error, 1)
	wg := &sync.WaitGroup{}
	start := func(name string, f func() error) {
		wg.Add(1)
		if err := utils.Pool.Submit(func() {
			defer wg.Done()
			if err := f(); err != nil {
				log.Errorf("[logcast] %s err: %v, exiting", name, err)
				select {
				case errChan <- err:
				default:
				}
				cancel()
			}
		}); err != nil {
			wg.Done()
			log.Errorf("[logcast] start %s failed: %v", name, err)
			cancel()
		}
	}

	start("server", func() error { return lc.server.Serve(ctx) })
	start("monitor", func() error { lc.monitor.Run(ctx); return nil })
	start("heartbeat", func() error { return lc.heartbeat.Run(ctx) })
	start("metrics", func() error {
		lc.pusher.Run(ctx, time.Duration(lc.config.Metrics.Step)*time.Second)
		return nil
	})
	start("api", func() error {
		// the api is optional, its failure leaves alerting running
		if err := api.Serve(ctx, lc.config.API.Addr, lc.apiHandler); err != nil {
			log.Errorf("[logcast] api disabled: %v", err)
		}
		return nil
	})

	<-ctx.Done()
	log.Info("[logcast] caught signal, exiting")
	wg.Wait()

	select {
	case err := <-errChan:
		return err
	default:
		return nil
	}
}

func (lc *logCast) closeWriters() {
	lc.cancelWrite()
	for _, w := range lc.writers {
		if err := w.Close(); err != nil {
			log.Warnf("[logcast] close writer failed: %v", err)
		}
	}
}
