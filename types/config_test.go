package types

import (
	"testing"

	"github.com/balusreekanth/LogCast/common"

	"github.com/jinzhu/configor"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	assert := assert.New(t)

	config := &Config{}
	err := configor.Load(config, "../logcast.yaml.sample")
	assert.NoError(err)
	assert.Equal(config.PidFile, "/tmp/logcast.pid")
	assert.Equal(config.HeartbeatInterval, 2)
	assert.Equal(config.HostName, "")

	assert.Equal(config.Server.Addr, "0.0.0.0")
	assert.Equal(config.Server.Port, 7777)
	assert.Equal(config.Server.CertFile, "/etc/logcast/server.crt")
	assert.Equal(config.Server.Framing, common.FramingLine)
	assert.Equal(config.Server.WriteTimeout, 0)

	assert.Equal(config.Watch.Path, "/opt/server/logs/web.log")
	assert.Equal(config.Watch.Keyword, "LoggedIn")
	assert.False(config.Watch.DisableNotify)

	assert.Equal(config.Log.Forwards, []string{"udp://127.0.0.1:5144"})
	assert.Equal(config.Metrics.Step, int64(30))
	assert.Equal(config.API.Addr, "127.0.0.1:7778")
	assert.Equal(config.ListenAddr(), "0.0.0.0:7777")
}

func TestValidate(t *testing.T) {
	config := &Config{
		Server: ServerConfig{Port: 7777},
		Watch:  WatchConfig{Path: "/tmp/web.log", Keyword: "LoggedIn"},
	}
	assert.NoError(t, config.Validate())
	assert.Equal(t, config.Server.Framing, common.FramingLine)
	assert.Equal(t, config.HeartbeatInterval, 2)
	assert.Equal(t, config.Watch.PollInterval, 1)

	config.Server.Framing = "json"
	assert.ErrorIs(t, config.Validate(), common.ErrInvalidFraming)

	config.Server.Framing = common.FramingRaw
	config.Server.Port = 70000
	assert.ErrorIs(t, config.Validate(), common.ErrInvalidPort)

	config.Server.Port = 7777
	config.Watch.Keyword = ""
	assert.ErrorIs(t, config.Validate(), common.ErrEmptyKeyword)
}
