package api

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/balusreekanth/LogCast/broadcast"
	"github.com/balusreekanth/LogCast/version"
	"github.com/balusreekanth/LogCast/watcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStatus watcher.Status

func (f fixedStatus) Status() watcher.Status { return watcher.Status(f) }

func newTestServer(t *testing.T, peers int) (*httptest.Server, *broadcast.Registry, []*broadcast.Client) {
	registry := broadcast.NewRegistry()
	clients := []*broadcast.Client{}
	for i := 0; i < peers; i++ {
		local, remote := net.Pipe()
		t.Cleanup(func() {
			local.Close()
			remote.Close()
		})
		c := broadcast.NewClient(local, time.Second)
		registry.Add(c)
		clients = append(clients, c)
	}
	status := fixedStatus{Path: "/opt/server/logs/web.log", Keyword: "LoggedIn", Open: true, Inode: 42, Offset: 128}
	server := httptest.NewServer(NewHandler(registry, status).Router())
	t.Cleanup(server.Close)
	return server, registry, clients
}

func getJSON(t *testing.T, url string, v interface{}) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestVersion(t *testing.T) {
	server, _, _ := newTestServer(t, 0)
	r := map[string]string{}
	getJSON(t, server.URL+"/version/", &r)
	assert.Equal(t, version.NAME, r["name"])
	assert.Equal(t, version.VERSION, r["version"])
}

func TestClients(t *testing.T) {
	server, registry, clients := newTestServer(t, 3)
	registry.Drop(clients[0], "disconnected")

	r := struct {
		Count   int `json:"count"`
		Clients []struct {
			Peer         string `json:"peer"`
			ConnectedFor string `json:"connected_for"`
		} `json:"clients"`
		Departed []struct {
			Reason string `json:"reason"`
			Ago    string `json:"ago"`
		} `json:"departed"`
	}{}
	getJSON(t, server.URL+"/clients/", &r)
	assert.Equal(t, 2, r.Count)
	assert.Len(t, r.Clients, 2)
	assert.NotEmpty(t, r.Clients[0].ConnectedFor)
	require.Len(t, r.Departed, 1)
	assert.Equal(t, "disconnected", r.Departed[0].Reason)
	assert.NotEmpty(t, r.Departed[0].Ago)

	getJSON(t, server.URL+"/clients/?start=1&limit=1", &r)
	assert.Equal(t, 2, r.Count)
	assert.Len(t, r.Clients, 1)
}

func TestStatus(t *testing.T) {
	server, _, _ := newTestServer(t, 1)
	r := struct {
		Watch   watcher.Status         `json:"watch"`
		Clients int                    `json:"clients"`
		Process map[string]interface{} `json:"process"`
	}{}
	getJSON(t, server.URL+"/status/", &r)
	assert.Equal(t, "LoggedIn", r.Watch.Keyword)
	assert.Equal(t, uint64(42), r.Watch.Inode)
	assert.Equal(t, int64(128), r.Watch.Offset)
	assert.Equal(t, 1, r.Clients)
	assert.Contains(t, r.Process, "pid")
}

func TestMetricsEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t, 0)
	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	server, _, _ := newTestServer(t, 0)
	resp, err := http.Get(server.URL + "/nope/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
