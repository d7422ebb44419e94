package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/events/bus"
)

var errBoom = errors.New("boom")

// script returns a tree whose single leaf returns results in turn, repeating
// the last one, and records every tick context it sees.
func script(name string, seen *[]bt.TickContext, results ...bt.Status) bt.Node {
	i := 0
	seq := bt.NewSequence(name)
	_ = seq.AddChild(bt.NewAction("leaf", func(t bt.TickContext) (bt.Status, error) {
		if seen != nil {
			*seen = append(*seen, t)
		}
		st := results[min(i, len(results)-1)]
		i++
		return st, nil
	}))
	return seq
}

func failing(name string) bt.Node {
	seq := bt.NewSequence(name)
	_ = seq.AddChild(bt.NewAction("broken", func(bt.TickContext) (bt.Status, error) {
		return bt.StatusFailure, errBoom
	}))
	return seq
}

// stepClock advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = time.Millisecond
	return cfg
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilRoot)

	_, err = New(script("t", nil, bt.StatusSuccess), Config{})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = New(script("t", nil, bt.StatusSuccess), Config{Interval: time.Second, MaxTicks: -1})
	assert.ErrorIs(t, err, ErrInvalidMaxTicks)
}

func TestNew_Defaults(t *testing.T) {
	root := script("patrol", nil, bt.StatusSuccess)
	r, err := New(root, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "patrol", r.Name())
	assert.Same(t, root, r.Root())
	assert.Len(t, r.Fingerprint(), 16)
	assert.NotEmpty(t, r.ID())
	assert.Equal(t, uint64(0), r.Ticks())
}

func TestStep_Report(t *testing.T) {
	var seen []bt.TickContext
	state := map[string]int{"hp": 3}
	var observed []TickReport

	r, err := New(script("guard", &seen, bt.StatusRunning, bt.StatusSuccess), fastConfig(),
		WithState(state),
		WithClock(stepClock(time.Millisecond)),
		WithObserver(ObserverFunc(func(rep TickReport) { observed = append(observed, rep) })),
	)
	require.NoError(t, err)

	rep, err := r.Step(context.Background(), 16*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, bt.StatusRunning, rep.Status)
	assert.Equal(t, uint64(1), rep.Seq)
	assert.Equal(t, "guard", rep.Tree)
	assert.Equal(t, r.ID(), rep.RunID)
	assert.Equal(t, r.Fingerprint(), rep.Fingerprint)
	assert.Equal(t, time.Millisecond, rep.Duration)

	rep, err = r.Step(context.Background(), 16*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, bt.StatusSuccess, rep.Status)
	assert.Equal(t, uint64(2), rep.Seq)

	require.Len(t, seen, 2)
	assert.Equal(t, 16*time.Millisecond, seen[0].DeltaTime)
	assert.Equal(t, state, seen[0].State)
	assert.NotNil(t, seen[0].Ctx)

	require.Len(t, observed, 2)
	assert.Equal(t, uint64(2), r.Ticks())
}

func TestStep_PublishesTickEvent(t *testing.T) {
	events := bus.New()
	var got []TickReport
	_, err := events.Subscribe(EventTick, func(e bus.Event) error {
		got = append(got, e.Data().(TickReport))
		return errors.New("handler errors are logged, not returned")
	})
	require.NoError(t, err)

	r, err := New(script("t", nil, bt.StatusSuccess), fastConfig(), WithEventBus(events))
	require.NoError(t, err)

	_, err = r.Step(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, bt.StatusSuccess, got[0].Status)
}

func TestStep_TickError(t *testing.T) {
	r, err := New(failing("t"), fastConfig())
	require.NoError(t, err)

	rep, err := r.Step(context.Background(), 0)
	assert.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, rep.Err, errBoom)
	assert.Equal(t, "boom", rep.Error)
}

func TestStep_CanceledContext(t *testing.T) {
	var seen []bt.TickContext
	r, err := New(script("t", &seen, bt.StatusSuccess), fastConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Step(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, seen)
}

func TestRun_StopsOnTerminal(t *testing.T) {
	r, err := New(script("t", nil, bt.StatusRunning, bt.StatusRunning, bt.StatusFailure), fastConfig())
	require.NoError(t, err)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bt.StatusFailure, rep.Status)
	assert.Equal(t, uint64(3), rep.Seq)
}

func TestRun_MaxTicks(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxTicks = 4
	r, err := New(script("t", nil, bt.StatusRunning), cfg)
	require.NoError(t, err)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bt.StatusRunning, rep.Status)
	assert.Equal(t, uint64(4), rep.Seq)
}

func TestRun_KeepsGoingWithoutStopOnTerminal(t *testing.T) {
	cfg := fastConfig()
	cfg.StopOnTerminal = false
	cfg.MaxTicks = 3
	r, err := New(script("t", nil, bt.StatusSuccess), cfg)
	require.NoError(t, err)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), rep.Seq)
}

func TestRun_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, err := New(script("t", nil, bt.StatusRunning), fastConfig(),
		WithObserver(ObserverFunc(func(rep TickReport) {
			if rep.Seq == 3 {
				cancel()
			}
		})),
	)
	require.NoError(t, err)

	rep, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(3), rep.Seq)
}

func TestRun_StopsOnTickError(t *testing.T) {
	r, err := New(failing("t"), fastConfig())
	require.NoError(t, err)

	rep, err := r.Run(context.Background())
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, uint64(1), rep.Seq)
}
