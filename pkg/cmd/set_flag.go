package cmd

import (
	"fmt"
	"strings"
)

// SetFlag collects repeated --set key=value arguments. Values are parsed
// when cobrautil resolves flags, just before the command runs.
type SetFlag struct {
	raw   []string
	Pairs []KeyValue
}

type KeyValue struct {
	Key   string
	Value string
}

func (f *SetFlag) Set(val string) error {
	f.raw = append(f.raw, val)
	return nil
}

func (f *SetFlag) Type() string { return "key=value" }

func (f *SetFlag) String() string { return "" }

func (f *SetFlag) Resolve() error {
	f.Pairs = f.Pairs[:0]
	for _, raw := range f.raw {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || key == "" {
			return fmt.Errorf("expected --set value in key=value format, got %q", raw)
		}
		f.Pairs = append(f.Pairs, KeyValue{Key: key, Value: value})
	}
	return nil
}

func (f *SetFlag) Keys() []string {
	keys := make([]string, len(f.Pairs))
	for i, kv := range f.Pairs {
		keys[i] = kv.Key
	}
	return keys
}
