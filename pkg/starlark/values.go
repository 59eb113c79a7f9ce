package starlark

import (
	"fmt"
	"math"

	"github.com/neurodesk/yartl/pkg/yartl"
	"go.starlark.net/starlark"
)

// ToStarlark converts a context value to a Starlark value. Whole numbers
// become ints so scripts can do integer arithmetic on them.
func ToStarlark(val yartl.Value) starlark.Value {
	if val == nil {
		return starlark.None
	}

	switch v := val.(type) {
	case yartl.StringValue:
		return starlark.String(string(v))
	case yartl.NumberValue:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return starlark.MakeInt64(int64(f))
		}
		return starlark.Float(f)
	case yartl.BoolValue:
		return starlark.Bool(bool(v))
	case yartl.ArrayValue:
		items := make([]starlark.Value, len(v))
		for i, item := range v {
			items[i] = ToStarlark(item)
		}
		return starlark.NewList(items)
	case yartl.ObjectValue:
		dict := starlark.NewDict(len(v))
		for key, value := range v {
			// SetKey only fails for unhashable keys or frozen dicts.
			_ = dict.SetKey(starlark.String(key), ToStarlark(value))
		}
		return dict
	}
	return starlark.None
}

// FromStarlark converts a Starlark value to a context value. Functions and
// other values with no JSON-like form are rejected.
func FromStarlark(val starlark.Value) (yartl.Value, error) {
	if val == nil || val == starlark.None {
		return yartl.NullValue{}, nil
	}

	switch v := val.(type) {
	case starlark.String:
		return yartl.StringValue(string(v)), nil
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return yartl.NumberValue(i), nil
		}
		return yartl.NumberValue(v.Float()), nil
	case starlark.Float:
		return yartl.NumberValue(float64(v)), nil
	case starlark.Bool:
		return yartl.BoolValue(bool(v)), nil
	case *starlark.List:
		return fromSequence(v)
	case starlark.Tuple:
		return fromSequence(v)
	case *starlark.Dict:
		obj := make(yartl.ObjectValue, v.Len())
		for _, item := range v.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key %s is a %s, want string", item[0], item[0].Type())
			}
			cv, err := FromStarlark(item[1])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", string(key), err)
			}
			obj[string(key)] = cv
		}
		return obj, nil
	}
	return nil, fmt.Errorf("cannot convert %s to a context value", val.Type())
}

func fromSequence(seq starlark.Indexable) (yartl.Value, error) {
	items := make(yartl.ArrayValue, seq.Len())
	for i := range items {
		cv, err := FromStarlark(seq.Index(i))
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		items[i] = cv
	}
	return items, nil
}

// CreateBuiltins returns the functions predeclared for context scripts.
func CreateBuiltins(lookupEnv func(string) (string, bool)) starlark.StringDict {
	return starlark.StringDict{
		"getenv": starlark.NewBuiltin("getenv", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var name string
			var def starlark.Value = starlark.None
			if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "default?", &def); err != nil {
				return nil, err
			}
			if v, ok := lookupEnv(name); ok {
				return starlark.String(v), nil
			}
			return def, nil
		}),
	}
}
