package loader

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/core/blackboard"
	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
)

type entry struct {
	level  log.Level
	msg    string
	fields []log.Field
}

// captureLog records entries written through Log.
type captureLog struct {
	entries *[]entry
}

func newCaptureLog() captureLog { return captureLog{entries: new([]entry)} }

func (c captureLog) Log(level log.Level, msg string, fields ...log.Field) {
	*c.entries = append(*c.entries, entry{level, msg, fields})
}
func (c captureLog) Debug(msg string, fields ...log.Field) { c.Log(log.LevelDebug, msg, fields...) }
func (c captureLog) Info(msg string, fields ...log.Field)  { c.Log(log.LevelInfo, msg, fields...) }
func (c captureLog) Warn(msg string, fields ...log.Field)  { c.Log(log.LevelWarn, msg, fields...) }
func (c captureLog) Error(msg string, fields ...log.Field) { c.Log(log.LevelError, msg, fields...) }
func (c captureLog) With(...log.Field) log.Log             { return c }
func (c captureLog) WithContext(context.Context) log.Log   { return c }
func (c captureLog) SetLevel(log.Level)                    {}
func (c captureLog) GetLevel() log.Level                   { return log.LevelDebug }

func action(t *testing.T, name string, params map[string]any) bt.ActionFunc {
	t.Helper()
	fn, err := DefaultRegistry().NewAction(name, params)
	require.NoError(t, err)
	return fn
}

func condition(t *testing.T, name string, params map[string]any) bt.ConditionFunc {
	t.Helper()
	fn, err := DefaultRegistry().NewCondition(name, params)
	require.NoError(t, err)
	return fn
}

func on(bb *blackboard.Blackboard) bt.TickContext {
	return bt.TickContext{Ctx: context.Background(), State: bb}
}

func TestDefaultRegistry_Names(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"Fail", "Increment", "Log", "Noop", "Return", "SetValue", "Succeed", "Wait"}, r.Actions())
	assert.Equal(t, []string{"Compare", "HasKey", "IsTrue"}, r.Conditions())

	assert.Empty(t, NewRegistry().Actions(), "registries do not share state")
}

func TestRegistry_Custom(t *testing.T) {
	r := NewRegistry()
	r.RegisterAction("Jump", func(map[string]any) (bt.ActionFunc, error) {
		return func(bt.TickContext) (bt.Status, error) { return bt.StatusRunning, nil }, nil
	})
	fn, err := r.NewAction("Jump", nil)
	require.NoError(t, err)
	st, err := fn(bt.TickContext{})
	require.NoError(t, err)
	assert.Equal(t, bt.StatusRunning, st)

	_, err = r.NewCondition("Jump", nil)
	assert.ErrorIs(t, err, ErrUnknownCondition)
}

func TestBuiltins_Constant(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   bt.Status
	}{
		{"Noop", nil, bt.StatusSuccess},
		{"Succeed", nil, bt.StatusSuccess},
		{"Fail", nil, bt.StatusFailure},
		{"Return", map[string]any{"status": "Running"}, bt.StatusRunning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := action(t, tt.name, tt.params)(bt.TickContext{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, st)
		})
	}

	_, err := DefaultRegistry().NewAction("Return", map[string]any{"status": "maybe"})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestBuiltins_Wait(t *testing.T) {
	wait := action(t, "Wait", map[string]any{"duration": "100ms"})
	step := bt.TickContext{DeltaTime: 40 * time.Millisecond}

	var got []bt.Status
	for i := 0; i < 5; i++ {
		st, err := wait(step)
		require.NoError(t, err)
		got = append(got, st)
	}
	// start, 40ms, 80ms, 120ms done, then a fresh wait begins
	assert.Equal(t, []bt.Status{
		bt.StatusRunning, bt.StatusRunning, bt.StatusRunning, bt.StatusSuccess, bt.StatusRunning,
	}, got)

	zero := action(t, "Wait", nil)
	st, _ := zero(step)
	assert.Equal(t, bt.StatusSuccess, st)

	_, err := DefaultRegistry().NewAction("Wait", map[string]any{"duration": "-1s"})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestBuiltins_WaitTimerIsPerInstance(t *testing.T) {
	step := bt.TickContext{DeltaTime: 40 * time.Millisecond}

	shared := action(t, "Wait", map[string]any{"duration": "100ms"})
	var got []bt.Status
	for i := 0; i < 2; i++ {
		// two occurrences of the same leaf in one tick
		a, _ := shared(step)
		b, _ := shared(step)
		got = append(got, a, b)
	}
	assert.Equal(t, []bt.Status{
		bt.StatusRunning, bt.StatusRunning, bt.StatusRunning, bt.StatusSuccess,
	}, got, "each invocation adds the tick delta")

	resumed := action(t, "Wait", map[string]any{"duration": "100ms"})
	st, _ := resumed(step)
	assert.Equal(t, bt.StatusRunning, st)
	st, _ = resumed(step)
	assert.Equal(t, bt.StatusRunning, st)
	// not ticked for a while, then picked up again
	st, _ = resumed(bt.TickContext{DeltaTime: 60 * time.Millisecond})
	assert.Equal(t, bt.StatusSuccess, st, "elapsed time survives gaps")
}

func TestBuiltins_IncrementIsAtomic(t *testing.T) {
	bb := blackboard.New()
	inc := action(t, "Increment", map[string]any{"key": "n"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = inc(on(bb))
			}
		}()
	}
	wg.Wait()

	n, ok := bb.GetInt("n")
	require.True(t, ok)
	assert.Equal(t, 800, n)
}

func TestBuiltins_SetValueAndIncrement(t *testing.T) {
	bb := blackboard.New()

	st, err := action(t, "SetValue", map[string]any{"key": "mode", "value": "hunt"})(on(bb))
	require.NoError(t, err)
	assert.Equal(t, bt.StatusSuccess, st)
	mode, _ := bb.GetString("mode")
	assert.Equal(t, "hunt", mode)

	inc := action(t, "Increment", map[string]any{"key": "n"})
	for i := 0; i < 3; i++ {
		_, err = inc(on(bb))
		require.NoError(t, err)
	}
	n, ok := bb.Get("n")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	half := action(t, "Increment", map[string]any{"key": "n", "by": 0.5})
	_, err = half(on(bb))
	require.NoError(t, err)
	f, _ := bb.GetFloat("n")
	assert.Equal(t, 3.5, f)

	st, err = inc(on(bb))
	require.NoError(t, err)
	assert.Equal(t, bt.StatusSuccess, st)
	f, _ = bb.GetFloat("n")
	assert.Equal(t, 4.5, f)

	st, err = action(t, "Increment", map[string]any{"key": "mode"})(on(bb))
	require.NoError(t, err)
	assert.Equal(t, bt.StatusFailure, st, "non-numeric values are not incremented")
}

func TestBuiltins_RequireBlackboard(t *testing.T) {
	leaves := []bt.ActionFunc{
		action(t, "SetValue", map[string]any{"key": "k"}),
		action(t, "Increment", map[string]any{"key": "k"}),
		action(t, "Log", map[string]any{"message": "m", "keys": []string{"k"}}),
	}
	for _, fn := range leaves {
		_, err := fn(bt.TickContext{State: "nope"})
		assert.ErrorIs(t, err, ErrNoBlackboard)
	}

	preds := []bt.ConditionFunc{
		condition(t, "IsTrue", map[string]any{"key": "k"}),
		condition(t, "HasKey", map[string]any{"key": "k"}),
		condition(t, "Compare", map[string]any{"key": "k", "value": 1}),
	}
	for _, fn := range preds {
		_, err := fn(bt.TickContext{})
		assert.ErrorIs(t, err, ErrNoBlackboard)
	}
}

func TestBuiltins_ParamValidation(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.NewAction("SetValue", nil)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = r.NewAction("SetValue", map[string]any{"key": "k", "colour": "red"})
	assert.ErrorIs(t, err, ErrInvalidParams, "unknown params are rejected")
	_, err = r.NewCondition("IsTrue", nil)
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = r.NewCondition("Compare", map[string]any{"key": "k", "op": "~"})
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = r.NewAction("Log", map[string]any{"level": "shout"})
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestBuiltins_Conditions(t *testing.T) {
	bb := blackboard.New()
	bb.Set("alert", true)
	bb.Set("hp", 30)
	bb.Set("name", "guard")

	tests := []struct {
		name   string
		use    string
		params map[string]any
		want   bool
	}{
		{"true flag", "IsTrue", map[string]any{"key": "alert"}, true},
		{"non-bool flag", "IsTrue", map[string]any{"key": "hp"}, false},
		{"missing flag", "IsTrue", map[string]any{"key": "none"}, false},
		{"has key", "HasKey", map[string]any{"key": "hp"}, true},
		{"no key", "HasKey", map[string]any{"key": "none"}, false},
		{"less than", "Compare", map[string]any{"key": "hp", "op": "<", "value": 50}, true},
		{"gte float", "Compare", map[string]any{"key": "hp", "op": "gte", "value": 30.0}, true},
		{"default eq", "Compare", map[string]any{"key": "hp", "value": 30.0}, true},
		{"string eq", "Compare", map[string]any{"key": "name", "op": "==", "value": "guard"}, true},
		{"string ne", "Compare", map[string]any{"key": "name", "op": "ne", "value": "guard"}, false},
		{"string gt", "Compare", map[string]any{"key": "name", "op": ">", "value": "a"}, false},
		{"missing key", "Compare", map[string]any{"key": "none", "op": "!=", "value": 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := condition(t, tt.use, tt.params)(on(bb))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuiltins_Log(t *testing.T) {
	capture := newCaptureLog()
	r := DefaultRegistry()
	r.SetLogger(capture)

	fn, err := r.NewAction("Log", map[string]any{"message": "spotted", "level": "warn", "keys": []any{"hp"}})
	require.NoError(t, err)

	bb := blackboard.New()
	bb.Set("hp", 7)
	st, err := fn(on(bb))
	require.NoError(t, err)
	assert.Equal(t, bt.StatusSuccess, st)

	require.Len(t, *capture.entries, 1)
	e := (*capture.entries)[0]
	assert.Equal(t, log.LevelWarn, e.level)
	assert.Equal(t, "spotted", e.msg)
	require.Len(t, e.fields, 1)
	assert.Equal(t, "hp", e.fields[0].Key)
	assert.Equal(t, 7, e.fields[0].Value)
}
