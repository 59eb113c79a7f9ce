package yartl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a JSON-like structured value carried through evaluation.
type Value interface {
	Kind() Kind
	Truth() bool
}

// NullValue represents the absence of a value.
type NullValue struct{}

func (NullValue) Kind() Kind  { return KindNull }
func (NullValue) Truth() bool { return false }

// BoolValue wraps a boolean.
type BoolValue bool

func (BoolValue) Kind() Kind    { return KindBool }
func (b BoolValue) Truth() bool { return bool(b) }

// NumberValue wraps a number. Integers and floats are not distinguished.
type NumberValue float64

func (NumberValue) Kind() Kind    { return KindNumber }
func (n NumberValue) Truth() bool { return float64(n) != 0 }

// String formats the number in plain decimal without an exponent, so 3.0
// renders as "3".
func (n NumberValue) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// StringValue wraps a string.
type StringValue string

func (StringValue) Kind() Kind    { return KindString }
func (s StringValue) Truth() bool { return len(s) > 0 }

// ArrayValue wraps a list of values.
type ArrayValue []Value

func (ArrayValue) Kind() Kind    { return KindArray }
func (a ArrayValue) Truth() bool { return len(a) > 0 }

// ObjectValue wraps a string-keyed map of values.
type ObjectValue map[string]Value

func (ObjectValue) Kind() Kind  { return KindObject }
func (ObjectValue) Truth() bool { return true }

// Get returns the member for key, or NullValue if absent.
func (o ObjectValue) Get(key string) Value {
	if v, ok := o[key]; ok && v != nil {
		return v
	}
	return NullValue{}
}

// Null is the shared null value.
var Null Value = NullValue{}

func isNull(v Value) bool {
	return v == nil || v.Kind() == KindNull
}

// Stringify renders a value as template output. Only strings, numbers and
// null have a textual form.
func Stringify(v Value) (string, error) {
	if v == nil {
		return "null", nil
	}
	switch t := v.(type) {
	case StringValue:
		return string(t), nil
	case NumberValue:
		return t.String(), nil
	case NullValue:
		return "null", nil
	}
	return "", &EvalError{Kind: v.Kind(), Err: ErrUnsupportedValueType}
}

// Equal reports structural equality. Values of different kinds are never
// equal.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null
	}
	if b == nil {
		b = Null
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case NullValue:
		return true
	case BoolValue:
		return x == b.(BoolValue)
	case NumberValue:
		return x == b.(NumberValue)
	case StringValue:
		return x == b.(StringValue)
	case ArrayValue:
		y := b.(ArrayValue)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case ObjectValue:
		y := b.(ObjectValue)
		if len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}

// FromGo converts decoded JSON, YAML or TOML data into a Value. Unknown
// types are an error rather than a silent string conversion.
func FromGo(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return t, nil
	case string:
		return StringValue(t), nil
	case []byte:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case int:
		return NumberValue(t), nil
	case int8:
		return NumberValue(t), nil
	case int16:
		return NumberValue(t), nil
	case int32:
		return NumberValue(t), nil
	case int64:
		return NumberValue(t), nil
	case uint:
		return NumberValue(t), nil
	case uint8:
		return NumberValue(t), nil
	case uint16:
		return NumberValue(t), nil
	case uint32:
		return NumberValue(t), nil
	case uint64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(t), nil
	case float64:
		return NumberValue(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("converting number %q: %w", t.String(), err)
		}
		return NumberValue(f), nil
	case time.Time:
		return StringValue(t.Format(time.RFC3339Nano)), nil
	case []any:
		out := make(ArrayValue, 0, len(t))
		for i, it := range t {
			cv, err := FromGo(it)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, cv)
		}
		return out, nil
	case []map[string]any:
		out := make(ArrayValue, 0, len(t))
		for i, it := range t {
			cv, err := FromGo(it)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, cv)
		}
		return out, nil
	case map[string]any:
		out := make(ObjectValue, len(t))
		for k, it := range t {
			cv, err := FromGo(it)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = cv
		}
		return out, nil
	case map[any]any:
		out := make(ObjectValue, len(t))
		for k, it := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v (%T) is not a string", k, k)
			}
			cv, err := FromGo(it)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", ks, err)
			}
			out[ks] = cv
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported Go type %T", v)
}

// ToGo converts a Value back into plain Go data (nil, bool, float64,
// string, []any, map[string]any).
func ToGo(v Value) any {
	switch t := v.(type) {
	case BoolValue:
		return bool(t)
	case NumberValue:
		return float64(t)
	case StringValue:
		return string(t)
	case ArrayValue:
		out := make([]any, 0, len(t))
		for _, it := range t {
			out = append(out, ToGo(it))
		}
		return out
	case ObjectValue:
		out := make(map[string]any, len(t))
		for k, it := range t {
			out[k] = ToGo(it)
		}
		return out
	}
	return nil
}
