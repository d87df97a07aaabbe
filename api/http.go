package api

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/balusreekanth/LogCast/broadcast"
	"github.com/balusreekanth/LogCast/version"
	"github.com/balusreekanth/LogCast/watcher"

	"github.com/bmizerany/pat"
	"github.com/docker/go-units"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/process"
	log "github.com/sirupsen/logrus"
)

// StatusProvider reports the state of the tailed file
type StatusProvider interface {
	Status() watcher.Status
}

// Handler serves the status endpoints
type Handler struct {
	registry  *broadcast.Registry
	monitor   StatusProvider
	startedAt time.Time
}

// NewHandler .
func NewHandler(registry *broadcast.Registry, monitor StatusProvider) *Handler {
	return &Handler{
		registry:  registry,
		monitor:   monitor,
		startedAt: time.Now(),
	}
}

// URL /version/
func (h *Handler) version(req *Request) (int, interface{}) {
	return http.StatusOK, JSON{
		"name":     version.NAME,
		"version":  version.VERSION,
		"revision": version.REVISION,
		"built":    version.BUILTAT,
	}
}

type clientView struct {
	Peer         string    `json:"peer"`
	ConnectedAt  time.Time `json:"connected_at"`
	ConnectedFor string    `json:"connected_for"`
}

type departureView struct {
	broadcast.Departure
	Ago string `json:"ago"`
}

// URL /clients/?start=0&limit=100
func (h *Handler) clients(req *Request) (int, interface{}) {
	now := time.Now()
	snapshot := h.registry.Snapshot()

	views := []clientView{}
	for i := req.Start; i < len(snapshot) && len(views) < req.Limit; i++ {
		c := snapshot[i]
		views = append(views, clientView{
			Peer:         c.Peer(),
			ConnectedAt:  c.ConnectedAt(),
			ConnectedFor: units.HumanDuration(now.Sub(c.ConnectedAt())),
		})
	}

	departed := []departureView{}
	for _, d := range h.registry.Departed() {
		departed = append(departed, departureView{Departure: d, Ago: units.HumanDuration(now.Sub(d.LeftAt))})
	}

	return http.StatusOK, JSON{
		"count":    len(snapshot),
		"clients":  views,
		"departed": departed,
	}
}

// URL /status/
func (h *Handler) status(req *Request) (int, interface{}) {
	return http.StatusOK, JSON{
		"watch":   h.monitor.Status(),
		"clients": h.registry.Len(),
		"uptime":  units.HumanDuration(time.Since(h.startedAt)),
		"process": processStatus(),
	}
}

func processStatus() JSON {
	r := JSON{
		"pid":        os.Getpid(),
		"goroutines": runtime.NumGoroutine(),
	}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warnf("[api] inspect self failed: %v", err)
		return r
	}
	if mem, err := p.MemoryInfo(); err == nil {
		r["rss"] = mem.RSS
		r["rss_human"] = units.BytesSize(float64(mem.RSS))
	}
	if cpu, err := p.CPUPercent(); err == nil {
		r["cpu_percent"] = cpu
	}
	if threads, err := p.NumThreads(); err == nil {
		r["threads"] = threads
	}
	return r
}

// Router .
func (h *Handler) Router() http.Handler {
	restfulAPIServer := pat.New()
	handlers := map[string]map[string]func(*Request) (int, interface{}){
		"GET": {
			"/version/": h.version,
			"/clients/": h.clients,
			"/status/":  h.status,
		},
	}
	for method, routes := range handlers {
		for route, handler := range routes {
			restfulAPIServer.Add(method, route, http.HandlerFunc(JSONWrapper(handler)))
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", restfulAPIServer)
	return mux
}

// Serve blocks until ctx is done. An empty addr disables the api.
func Serve(ctx context.Context, addr string, h *Handler) error {
	if addr == "" {
		return nil
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Infof("[api] http api started %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorf("[api] http api failed %s", err)
		return err
	}
	log.Info("[api] http api stopped")
	return nil
}
