package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// EventTick is the bus event type carrying a TickReport after every step.
const EventTick = "behave.tick"

// TickReport describes one tick of a tree.
type TickReport struct {
	RunID       string        `json:"run_id"`
	Tree        string        `json:"tree"`
	Fingerprint string        `json:"fingerprint"`
	Seq         uint64        `json:"seq"`
	Status      bt.Status     `json:"status"`
	Err         error         `json:"-"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
	At          time.Time     `json:"at"`
}

// Observer is notified synchronously after every tick.
type Observer interface {
	ObserveTick(report TickReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(report TickReport)

func (f ObserverFunc) ObserveTick(report TickReport) { f(report) }

// Option configures a Runner.
type Option func(*Runner)

func WithLogger(logger log.Log) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithEventBus publishes an EventTick for every tick.
func WithEventBus(events bus.EventBus) Option {
	return func(r *Runner) { r.events = events }
}

func WithObserver(obs Observer) Option {
	return func(r *Runner) {
		if obs != nil {
			r.observers = append(r.observers, obs)
		}
	}
}

// WithState sets the value handed to the tree as TickContext.State.
func WithState(state any) Option {
	return func(r *Runner) { r.state = state }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// Runner owns one tree and ticks it. A tree is not safe for concurrent
// ticks, so Step serializes callers.
type Runner struct {
	root        bt.Node
	cfg         Config
	id          string
	fingerprint string

	logger    log.Log
	events    bus.EventBus
	observers []Observer
	state     any
	now       func() time.Time

	mu  sync.Mutex
	seq uint64
}

func New(root bt.Node, cfg Config, opts ...Option) (*Runner, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = root.Name()
	}

	r := &Runner{
		root:        root,
		cfg:         cfg,
		id:          uuid.NewString(),
		fingerprint: fmt.Sprintf("%016x", bt.Fingerprint(root)),
		logger:      log.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(log.String("tree", cfg.Name), log.String("run_id", r.id))
	return r, nil
}

func (r *Runner) ID() string          { return r.id }
func (r *Runner) Name() string        { return r.cfg.Name }
func (r *Runner) Root() bt.Node       { return r.root }
func (r *Runner) State() any          { return r.state }
func (r *Runner) Fingerprint() string { return r.fingerprint }

// Ticks returns how many ticks have run.
func (r *Runner) Ticks() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Step ticks the tree once with the given delta time. A tick error is
// returned and also recorded in the report.
func (r *Runner) Step(ctx context.Context, dt time.Duration) (TickReport, error) {
	if err := ctx.Err(); err != nil {
		return TickReport{}, err
	}

	r.mu.Lock()
	start := r.now()
	st, err := r.root.Tick(bt.TickContext{Ctx: ctx, DeltaTime: dt, State: r.state})
	r.seq++
	report := TickReport{
		RunID:       r.id,
		Tree:        r.cfg.Name,
		Fingerprint: r.fingerprint,
		Seq:         r.seq,
		Status:      st,
		Err:         err,
		Duration:    r.now().Sub(start),
		At:          start,
	}
	r.mu.Unlock()

	if err != nil {
		report.Error = err.Error()
		r.logger.Warn("tick failed", log.Uint64("seq", report.Seq), log.Error(err))
	} else {
		r.logger.Debug("tick",
			log.Uint64("seq", report.Seq),
			log.String("status", st.String()),
			log.Duration("duration", report.Duration),
		)
	}

	for _, obs := range r.observers {
		obs.ObserveTick(report)
	}
	if r.events != nil {
		if perr := r.events.Publish(bus.NewEvent(EventTick, r.id, report, nil)); perr != nil {
			r.logger.Warn("tick event handlers failed", log.Error(perr))
		}
	}
	return report, err
}

// Run ticks the tree every cfg.Interval until the root finishes (with
// StopOnTerminal), MaxTicks is reached, a tick fails or ctx is done. It
// returns the last report.
func (r *Runner) Run(ctx context.Context) (TickReport, error) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("run started", log.Duration("interval", r.cfg.Interval), log.Int("max_ticks", r.cfg.MaxTicks))

	var (
		last  TickReport
		ticks int
		prev  = r.now()
	)
	for {
		now := r.now()
		dt := now.Sub(prev)
		prev = now

		report, err := r.Step(ctx, dt)
		if err != nil {
			if report.Seq == 0 {
				report = last
			}
			return report, err
		}
		last = report
		ticks++

		if r.cfg.StopOnTerminal && report.Status.Terminal() {
			r.logger.Info("run finished", log.String("status", report.Status.String()), log.Int("ticks", ticks))
			return report, nil
		}
		if r.cfg.MaxTicks > 0 && ticks >= r.cfg.MaxTicks {
			r.logger.Info("run reached tick limit", log.String("status", report.Status.String()), log.Int("ticks", ticks))
			return report, nil
		}

		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case <-ticker.C:
		}
	}
}
