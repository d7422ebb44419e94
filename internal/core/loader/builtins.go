package loader

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/zeusync/behave/internal/core/blackboard"
	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// RegisterBuiltins registers the stock leaves into r.
//
// Actions: Noop, Succeed, Fail, Return, Wait, SetValue, Increment, Log.
// Conditions: IsTrue, HasKey, Compare.
func RegisterBuiltins(r *Registry) {
	r.RegisterAction("Noop", constant(bt.StatusSuccess))
	r.RegisterAction("Succeed", constant(bt.StatusSuccess))
	r.RegisterAction("Fail", constant(bt.StatusFailure))

	r.RegisterAction("Return", func(params map[string]any) (bt.ActionFunc, error) {
		var p struct {
			Status string `mapstructure:"status"`
		}
		if err := decodeParams("Return", params, &p); err != nil {
			return nil, err
		}
		st, err := bt.ParseStatus(p.Status)
		if err != nil {
			return nil, fmt.Errorf("Return: %w: %w", ErrInvalidParams, err)
		}
		return constant(st)(nil)
	})

	r.RegisterAction("Wait", func(params map[string]any) (bt.ActionFunc, error) {
		var p struct {
			Duration time.Duration `mapstructure:"duration"`
		}
		if err := decodeParams("Wait", params, &p); err != nil {
			return nil, err
		}
		if p.Duration < 0 {
			return nil, fmt.Errorf("Wait: %w: negative duration %s", ErrInvalidParams, p.Duration)
		}
		return wait(p.Duration), nil
	})

	r.RegisterAction("SetValue", func(params map[string]any) (bt.ActionFunc, error) {
		var p struct {
			Key   string `mapstructure:"key"`
			Value any    `mapstructure:"value"`
		}
		if err := decodeParams("SetValue", params, &p); err != nil {
			return nil, err
		}
		if p.Key == "" {
			return nil, fmt.Errorf("SetValue: %w: requires 'key'", ErrInvalidParams)
		}
		return func(t bt.TickContext) (bt.Status, error) {
			bb, err := board(t)
			if err != nil {
				return bt.StatusFailure, err
			}
			bb.Set(p.Key, p.Value)
			return bt.StatusSuccess, nil
		}, nil
	})

	r.RegisterAction("Increment", func(params map[string]any) (bt.ActionFunc, error) {
		p := struct {
			Key string  `mapstructure:"key"`
			By  float64 `mapstructure:"by"`
		}{By: 1}
		if err := decodeParams("Increment", params, &p); err != nil {
			return nil, err
		}
		if p.Key == "" {
			return nil, fmt.Errorf("Increment: %w: requires 'key'", ErrInvalidParams)
		}
		whole := p.By == float64(int(p.By))
		return func(t bt.TickContext) (bt.Status, error) {
			bb, err := board(t)
			if err != nil {
				return bt.StatusFailure, err
			}
			stored := bb.Update(p.Key, func(value any, exists bool) (any, bool) {
				if !exists {
					if whole {
						return int(p.By), true
					}
					return p.By, true
				}
				if n, ok := blackboard.ToInt(value); ok && whole {
					return n + int(p.By), true
				}
				f, ok := blackboard.ToFloat(value)
				if !ok {
					return nil, false
				}
				return f + p.By, true
			})
			if !stored {
				return bt.StatusFailure, nil
			}
			return bt.StatusSuccess, nil
		}, nil
	})

	r.RegisterAction("Log", func(params map[string]any) (bt.ActionFunc, error) {
		var p struct {
			Message string   `mapstructure:"message"`
			Level   string   `mapstructure:"level"`
			Keys    []string `mapstructure:"keys"`
		}
		if err := decodeParams("Log", params, &p); err != nil {
			return nil, err
		}
		level, err := log.ParseLevel(p.Level)
		if err != nil {
			return nil, fmt.Errorf("Log: %w: %w", ErrInvalidParams, err)
		}
		logger := r.Logger()
		return func(t bt.TickContext) (bt.Status, error) {
			fields := make([]log.Field, 0, len(p.Keys))
			if len(p.Keys) > 0 {
				bb, err := board(t)
				if err != nil {
					return bt.StatusFailure, err
				}
				for _, k := range p.Keys {
					v, _ := bb.Get(k)
					fields = append(fields, log.Any(k, v))
				}
			}
			logger.Log(level, p.Message, fields...)
			return bt.StatusSuccess, nil
		}, nil
	})

	r.RegisterCondition("IsTrue", func(params map[string]any) (bt.ConditionFunc, error) {
		key, err := keyParam("IsTrue", params)
		if err != nil {
			return nil, err
		}
		return func(t bt.TickContext) (bool, error) {
			bb, err := board(t)
			if err != nil {
				return false, err
			}
			b, ok := bb.GetBool(key)
			return ok && b, nil
		}, nil
	})

	r.RegisterCondition("HasKey", func(params map[string]any) (bt.ConditionFunc, error) {
		key, err := keyParam("HasKey", params)
		if err != nil {
			return nil, err
		}
		return func(t bt.TickContext) (bool, error) {
			bb, err := board(t)
			if err != nil {
				return false, err
			}
			return bb.Has(key), nil
		}, nil
	})

	r.RegisterCondition("Compare", func(params map[string]any) (bt.ConditionFunc, error) {
		var p struct {
			Key   string `mapstructure:"key"`
			Op    string `mapstructure:"op"`
			Value any    `mapstructure:"value"`
		}
		if err := decodeParams("Compare", params, &p); err != nil {
			return nil, err
		}
		if p.Key == "" {
			return nil, fmt.Errorf("Compare: %w: requires 'key'", ErrInvalidParams)
		}
		if p.Op == "" {
			p.Op = "=="
		}
		if !validOperator(p.Op) {
			return nil, fmt.Errorf("Compare: %w: unknown operator %q", ErrInvalidParams, p.Op)
		}
		return func(t bt.TickContext) (bool, error) {
			bb, err := board(t)
			if err != nil {
				return false, err
			}
			v, ok := bb.Get(p.Key)
			if !ok {
				return false, nil
			}
			return compareValues(v, p.Op, p.Value), nil
		}, nil
	})
}

func constant(st bt.Status) ActionFactory {
	return func(map[string]any) (bt.ActionFunc, error) {
		return func(bt.TickContext) (bt.Status, error) { return st, nil }, nil
	}
}

// wait is Running until the accumulated tick delta reaches d, then succeeds
// once and starts over.
//
// The timer belongs to the leaf instance, not to a tick. Every invocation adds
// t.DeltaTime, so a Wait inside a subtree spliced twice advances twice per
// tick. A Wait its parent stops ticking keeps its elapsed time and resumes
// from it on the next invocation.
func wait(d time.Duration) bt.ActionFunc {
	var (
		waiting bool
		elapsed time.Duration
	)
	return func(t bt.TickContext) (bt.Status, error) {
		if !waiting {
			if d == 0 {
				return bt.StatusSuccess, nil
			}
			waiting, elapsed = true, 0
			return bt.StatusRunning, nil
		}
		elapsed += t.DeltaTime
		if elapsed >= d {
			waiting = false
			return bt.StatusSuccess, nil
		}
		return bt.StatusRunning, nil
	}
}

func board(t bt.TickContext) (*blackboard.Blackboard, error) {
	bb, ok := blackboard.FromTick(t)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNoBlackboard, t.State)
	}
	return bb, nil
}

func keyParam(name string, params map[string]any) (string, error) {
	var p struct {
		Key string `mapstructure:"key"`
	}
	if err := decodeParams(name, params, &p); err != nil {
		return "", err
	}
	if p.Key == "" {
		return "", fmt.Errorf("%s: %w: requires 'key'", name, ErrInvalidParams)
	}
	return p.Key, nil
}

// decodeParams decodes node params into out. Unknown keys are rejected and
// durations may be written as strings such as "250ms".
func decodeParams(name string, params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err = decoder.Decode(params); err != nil {
		return fmt.Errorf("%s: %w: %w", name, ErrInvalidParams, err)
	}
	return nil
}

func validOperator(op string) bool {
	switch op {
	case "==", "eq", "!=", "ne", ">", "gt", ">=", "gte", "<", "lt", "<=", "lte":
		return true
	}
	return false
}

func compareValues(a any, operator string, b any) bool {
	switch operator {
	case "==", "eq":
		return equalValues(a, b)
	case "!=", "ne":
		return !equalValues(a, b)
	case ">", "gt":
		return compareNumeric(a, b, func(x, y float64) bool { return x > y })
	case ">=", "gte":
		return compareNumeric(a, b, func(x, y float64) bool { return x >= y })
	case "<", "lt":
		return compareNumeric(a, b, func(x, y float64) bool { return x < y })
	case "<=", "lte":
		return compareNumeric(a, b, func(x, y float64) bool { return x <= y })
	default:
		return false
	}
}

// equalValues treats numbers of different types as equal when their values
// match, so 3 from YAML equals 3.0 from JSON.
func equalValues(a, b any) bool {
	af, aOk := toFloat64(a)
	bf, bOk := toFloat64(b)
	if aOk && bOk {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func compareNumeric(a, b any, compareFn func(float64, float64) bool) bool {
	aFloat, aOk := toFloat64(a)
	bFloat, bOk := toFloat64(b)

	if !aOk || !bOk {
		return false
	}

	return compareFn(aFloat, bFloat)
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
