package inspector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/runner"
)

var (
	ErrNilEventBus    = errors.New("inspector requires an event bus")
	ErrAlreadyStarted = errors.New("inspector already started")
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Inspector serves live tick reports over websocket, plus health and
// Prometheus endpoints:
//
//	GET /healthz  liveness
//	GET /metrics  Prometheus exposition of the given gatherer
//	GET /runs     latest report of every run seen, as JSON
//	GET /ws       stream of tick reports, one JSON text frame each
type Inspector struct {
	cfg      Config
	events   bus.EventBus
	gatherer prometheus.Gatherer
	logger   log.Log

	hub    *wsHub
	router chi.Router
	sub    bus.Subscription

	mu     sync.Mutex
	latest map[string]runner.TickReport
	srv    *http.Server
	addr   string
}

// New creates an inspector subscribed to runner.EventTick on events. A nil
// gatherer disables /metrics.
func New(cfg Config, events bus.EventBus, gatherer prometheus.Gatherer, logger log.Log) (*Inspector, error) {
	if events == nil {
		return nil, ErrNilEventBus
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = DefaultConfig().ClientBuffer
	}

	in := &Inspector{
		cfg:      cfg,
		events:   events,
		gatherer: gatherer,
		logger:   logger.With(log.String("component", "inspector")),
		hub:      newHub(),
		latest:   make(map[string]runner.TickReport),
	}

	sub, err := events.Subscribe(runner.EventTick, in.onTick)
	if err != nil {
		return nil, fmt.Errorf("subscribe to tick events: %w", err)
	}
	in.sub = sub
	in.router = in.routes()
	return in, nil
}

func (in *Inspector) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if in.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(in.gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/runs", in.handleRuns)
	r.Get("/ws", in.handleWS)
	return r
}

// Handler returns the inspector's router.
func (in *Inspector) Handler() http.Handler { return in.router }

// Start listens on cfg.Addr and serves in the background.
func (in *Inspector) Start(ctx context.Context) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.srv != nil {
		return ErrAlreadyStarted
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", in.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", in.cfg.Addr, err)
	}

	in.srv = &http.Server{Handler: in.router, ReadHeaderTimeout: in.cfg.ReadHeaderTimeout}
	in.addr = ln.Addr().String()
	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			in.logger.Error("inspector server stopped", log.Error(err))
		}
	}(in.srv)

	in.logger.Info("inspector listening", log.String("addr", in.addr))
	return nil
}

// Addr returns the address the server listens on, once started.
func (in *Inspector) Addr() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.addr
}

// Stop unsubscribes from the bus, disconnects websocket clients and shuts
// the server down.
func (in *Inspector) Stop(ctx context.Context) error {
	_ = in.events.Unsubscribe(in.sub)
	in.hub.close()

	in.mu.Lock()
	srv := in.srv
	in.srv = nil
	in.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown inspector: %w", err)
	}
	return nil
}

func (in *Inspector) onTick(e bus.Event) error {
	report, ok := e.Data().(runner.TickReport)
	if !ok {
		return fmt.Errorf("tick event carries %T", e.Data())
	}

	in.mu.Lock()
	in.latest[report.RunID] = report
	in.mu.Unlock()

	b, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode tick report: %w", err)
	}
	in.hub.broadcast(b)
	return nil
}

func (in *Inspector) handleRuns(w http.ResponseWriter, _ *http.Request) {
	in.mu.Lock()
	runs := make([]runner.TickReport, 0, len(in.latest))
	for _, r := range in.latest {
		runs = append(runs, r)
	}
	in.mu.Unlock()

	slices.SortFunc(runs, func(a, b runner.TickReport) int {
		if c := strings.Compare(a.Tree, b.Tree); c != 0 {
			return c
		}
		return strings.Compare(a.RunID, b.RunID)
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(runs); err != nil {
		in.logger.Warn("encode runs", log.Error(err))
	}
}

func (in *Inspector) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		in.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	client := &wsClient{conn: conn, send: make(chan []byte, in.cfg.ClientBuffer)}
	in.hub.add(client)
	in.logger.Debug("websocket client connected", log.String("remote", conn.RemoteAddr().String()))

	defer func() {
		in.hub.remove(client)
		_ = conn.Close()
	}()

	// reader: drain control frames and notice disconnects
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				in.hub.remove(client)
				return
			}
		}
	}()

	for b := range client.send {
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Clients returns the number of connected websocket clients.
func (in *Inspector) Clients() int { return in.hub.len() }
