package types

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/balusreekanth/LogCast/common"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"
)

// ServerConfig contain listener and tls config
type ServerConfig struct {
	Addr             string `yaml:"addr" default:"0.0.0.0"`
	Port             int    `yaml:"port" default:"7777"`
	CertFile         string `yaml:"cert_file" default:"server.crt"`
	KeyFile          string `yaml:"key_file" default:"server.key"`
	HandshakeTimeout int    `yaml:"handshake_timeout" default:"10"`
	WriteTimeout     int    `yaml:"write_timeout"`
	Framing          string `yaml:"framing" default:"line"`
}

// WatchConfig contain the watched file config
type WatchConfig struct {
	Path          string `yaml:"path" default:"/opt/server/logs/web.log"`
	Keyword       string `yaml:"keyword" default:"LoggedIn"`
	PollInterval  int    `yaml:"poll_interval" default:"1"`
	// DisableNotify turns off inotify wakeups, leaving pure polling
	DisableNotify bool   `yaml:"disable_notify"`
}

// LogConfig contain diagnostic log and forwards config
type LogConfig struct {
	File       string   `yaml:"file" default:"/opt/logmonitor/server.log"`
	MaxSize    int      `yaml:"max_size" default:"100"`
	MaxBackups int      `yaml:"max_backups" default:"5"`
	MaxAge     int      `yaml:"max_age" default:"30"`
	Stdout     bool     `yaml:"stdout"`
	Forwards   []string `yaml:"forwards"`
}

// MetricsConfig contain metrics config
type MetricsConfig struct {
	Step      int64    `yaml:"step" default:"10"`
	Transfers []string `yaml:"transfers"`
}

// APIConfig contain api config
type APIConfig struct {
	Addr string `yaml:"addr"`
}

// Config contain all configs
type Config struct {
	PidFile           string `yaml:"pid" default:"/tmp/logcast.pid"`
	HeartbeatInterval int    `yaml:"heartbeat_interval" default:"2"`
	HostName          string `yaml:"-"`

	Server  ServerConfig  `yaml:"server"`
	Watch   WatchConfig   `yaml:"watch"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	API     APIConfig     `yaml:"api"`
}

// Prepare 从cli覆写并做准备
func (config *Config) Prepare(c *cli.Context) {
	if c.String("hostname") != "" {
		config.HostName = c.String("hostname")
	} else {
		hostname, err := os.Hostname()
		if err != nil {
			log.Fatal(err)
		}
		config.HostName = hostname
	}

	if c.String("addr") != "" {
		config.Server.Addr = c.String("addr")
	}
	if c.Int("port") > 0 {
		config.Server.Port = c.Int("port")
	}
	if c.String("cert-file") != "" {
		config.Server.CertFile = c.String("cert-file")
	}
	if c.String("key-file") != "" {
		config.Server.KeyFile = c.String("key-file")
	}
	if c.String("framing") != "" {
		config.Server.Framing = c.String("framing")
	}
	if c.String("watch") != "" {
		config.Watch.Path = c.String("watch")
	}
	if c.String("keyword") != "" {
		config.Watch.Keyword = c.String("keyword")
	}
	if c.Int("poll-interval") > 0 {
		config.Watch.PollInterval = c.Int("poll-interval")
	}
	if c.Int("heartbeat-interval") > 0 {
		config.HeartbeatInterval = c.Int("heartbeat-interval")
	}
	if c.String("log-file") != "" {
		config.Log.File = c.String("log-file")
	}
	if c.String("log-stdout") != "" {
		config.Log.Stdout = c.String("log-stdout") == "yes"
	}
	if len(c.StringSlice("log-forwards")) > 0 {
		config.Log.Forwards = c.StringSlice("log-forwards")
	}
	if c.String("api-addr") != "" {
		config.API.Addr = c.String("api-addr")
	}
	if c.Int64("metrics-step") > 0 {
		config.Metrics.Step = c.Int64("metrics-step")
	}
	if len(c.StringSlice("metrics-transfers")) > 0 {
		config.Metrics.Transfers = c.StringSlice("metrics-transfers")
	}
	if c.String("pidfile") != "" {
		config.PidFile = c.String("pidfile")
	}

	if err := config.Validate(); err != nil {
		log.Fatalf("[config] invalid config: %v", err)
	}
}

// Validate fills zero values with defaults and rejects unusable settings
func (config *Config) Validate() error {
	if config.Watch.Keyword == "" {
		return common.ErrEmptyKeyword
	}
	if config.Watch.Path == "" {
		return common.ErrEmptyWatchPath
	}
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return errors.Wrapf(common.ErrInvalidPort, "%d", config.Server.Port)
	}
	switch config.Server.Framing {
	case "":
		config.Server.Framing = common.FramingLine
	case common.FramingLine, common.FramingRaw:
	default:
		return errors.Wrapf(common.ErrInvalidFraming, "%s", config.Server.Framing)
	}
	if config.HeartbeatInterval <= 0 {
		config.HeartbeatInterval = 2
	}
	if config.Watch.PollInterval <= 0 {
		config.Watch.PollInterval = 1
	}
	if config.Metrics.Step <= 0 {
		config.Metrics.Step = 10
	}
	return nil
}

// ListenAddr returns host:port of the alert listener
func (config *Config) ListenAddr() string {
	return net.JoinHostPort(config.Server.Addr, strconv.Itoa(config.Server.Port))
}

// GetHeartbeatInterval .
func (config *Config) GetHeartbeatInterval() time.Duration {
	return time.Duration(config.HeartbeatInterval) * time.Second
}

// GetPollInterval .
func (config *Config) GetPollInterval() time.Duration {
	return time.Duration(config.Watch.PollInterval) * time.Second
}

// GetHandshakeTimeout .
func (config *Config) GetHandshakeTimeout() time.Duration {
	return time.Duration(config.Server.HandshakeTimeout) * time.Second
}

// GetWriteTimeout .
func (config *Config) GetWriteTimeout() time.Duration {
	return time.Duration(config.Server.WriteTimeout) * time.Second
}

// Print config
func (config *Config) Print() {
	bs, err := yaml.Marshal(config)
	if err != nil {
		log.Fatalf("[config] print config failed %v", err)
	}

	log.Info("---- current config ----")
	fmt.Println(string(bs))
	log.Info("------------------------")
}
