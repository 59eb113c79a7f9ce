package yartl

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFromGo(t *testing.T) {
	in := map[string]any{
		"s":    "str",
		"i":    int64(7),
		"u":    uint8(2),
		"f":    float32(0.5),
		"b":    true,
		"n":    nil,
		"num":  json.Number("42"),
		"when": time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		"list": []any{1, "two"},
		"rows": []map[string]any{{"k": "v"}},
		"yaml": map[any]any{"k": 1},
	}
	v, err := FromGo(in)
	if err != nil {
		t.Fatalf("FromGo: %v", err)
	}
	obj := v.(ObjectValue)
	want := ObjectValue{
		"s":    StringValue("str"),
		"i":    NumberValue(7),
		"u":    NumberValue(2),
		"f":    NumberValue(0.5),
		"b":    BoolValue(true),
		"n":    NullValue{},
		"num":  NumberValue(42),
		"when": StringValue("2024-01-02T03:04:05Z"),
		"list": ArrayValue{NumberValue(1), StringValue("two")},
		"rows": ArrayValue{ObjectValue{"k": StringValue("v")}},
		"yaml": ObjectValue{"k": NumberValue(1)},
	}
	if !Equal(obj, want) {
		t.Fatalf("got %#v", obj)
	}
}

func TestFromGoRejects(t *testing.T) {
	if _, err := FromGo(map[any]any{1: "x"}); err == nil {
		t.Fatalf("expected error for non-string key")
	}
	if _, err := FromGo([]any{struct{}{}}); err == nil {
		t.Fatalf("expected error for struct")
	}
}

func TestToGo(t *testing.T) {
	v := ObjectValue{
		"a": ArrayValue{NumberValue(1), NullValue{}},
		"b": BoolValue(false),
	}
	got := ToGo(v).(map[string]any)
	list := got["a"].([]any)
	if list[0] != 1.0 || list[1] != nil || got["b"] != false {
		t.Fatalf("got %#v", got)
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		a, b Value
		want bool
	}{
		{StringValue("a"), StringValue("a"), true},
		{StringValue("1"), NumberValue(1), false},
		{NullValue{}, nil, true},
		{BoolValue(false), NullValue{}, false},
		{ArrayValue{StringValue("x")}, ArrayValue{StringValue("x")}, true},
		{ArrayValue{StringValue("x")}, ArrayValue{}, false},
		{ObjectValue{"k": NumberValue(1)}, ObjectValue{"k": NumberValue(1)}, true},
		{ObjectValue{"k": NumberValue(1)}, ObjectValue{"j": NumberValue(1)}, false},
	}
	for _, tc := range cases {
		if got := Equal(tc.a, tc.b); got != tc.want {
			t.Fatalf("Equal(%#v, %#v) = %v", tc.a, tc.b, got)
		}
	}
}

func TestStringify(t *testing.T) {
	cases := map[Value]string{
		StringValue("x"):  "x",
		NumberValue(3):    "3",
		NumberValue(-0.25): "-0.25",
		NullValue{}:       "null",
	}
	for v, want := range cases {
		got, err := Stringify(v)
		if err != nil || got != want {
			t.Fatalf("Stringify(%#v) = %q, %v", v, got, err)
		}
	}
	if _, err := Stringify(BoolValue(true)); err == nil {
		t.Fatalf("expected error for boolean")
	}
}
