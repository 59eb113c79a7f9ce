// Package data decodes context documents into template values and layers
// them into a single render context.
package data

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/BurntSushi/toml"
	"github.com/neurodesk/yartl/pkg/common"
	"github.com/neurodesk/yartl/pkg/starlark"
	"github.com/neurodesk/yartl/pkg/yartl"
	"gopkg.in/yaml.v3"
)

// Decode parses src as format. The document must be an object or empty.
// base is the context built so far; Starlark scripts see it as globals,
// other formats ignore it.
func Decode(name string, format common.Format, src []byte, base yartl.ObjectValue, stdout io.Writer) (yartl.ObjectValue, error) {
	var (
		v   yartl.Value
		err error
	)
	switch format {
	case common.FormatJSON:
		v, err = decodeJSON(src)
	case common.FormatYAML:
		v, err = decodeYAML(src)
	case common.FormatTOML:
		v, err = decodeTOML(src)
	case common.FormatStarlark:
		v, err = decodeStarlark(name, src, base, stdout)
	default:
		return nil, fmt.Errorf("decoding %s: unsupported format %q", name, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s as %s: %w", name, format, err)
	}

	switch t := v.(type) {
	case yartl.NullValue:
		return yartl.ObjectValue{}, nil
	case yartl.ObjectValue:
		slog.Debug("decoded context", "name", name, "format", format, "keys", len(t))
		return t, nil
	}
	return nil, fmt.Errorf("decoding %s: context must be an object, got %v", name, v.Kind())
}

func decodeJSON(src []byte) (yartl.Value, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return yartl.Null, nil
	}
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return yartl.FromGo(raw)
}

// decodeYAML merges every document of a multi-document stream, later
// documents winning.
func decodeYAML(src []byte) (yartl.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	var out yartl.Value = yartl.Null
	for i := 0; ; i++ {
		var raw any
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := yartl.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		prev, okPrev := out.(yartl.ObjectValue)
		next, okNext := v.(yartl.ObjectValue)
		if okPrev && okNext {
			out = Merge(prev, next)
		} else if v.Kind() != yartl.KindNull {
			out = v
		}
	}
}

func decodeTOML(src []byte) (yartl.Value, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(src), &raw); err != nil {
		return nil, err
	}
	return yartl.FromGo(raw)
}

func decodeStarlark(name string, src []byte, base yartl.ObjectValue, stdout io.Writer) (yartl.Value, error) {
	eval := starlark.NewEvaluator(stdout)
	eval.LoadContext(base)
	if _, err := eval.ExecFile(name, src); err != nil {
		return nil, err
	}
	return eval.ExportContext()
}

// Merge returns a new object holding dst's members overlaid with src's.
// The merge is shallow: a key present in src replaces dst's value whole.
func Merge(dst, src yartl.ObjectValue) yartl.ObjectValue {
	out := make(yartl.ObjectValue, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Context accumulates layered context documents.
type Context struct {
	values yartl.ObjectValue
	stdout io.Writer
}

// NewContext starts an empty context. Starlark print output goes to
// stdout.
func NewContext(stdout io.Writer) *Context {
	return &Context{values: yartl.ObjectValue{}, stdout: stdout}
}

// Add decodes one document and layers it over the context built so far.
func (c *Context) Add(name string, format common.Format, src []byte) error {
	obj, err := Decode(name, format, src, c.values, c.stdout)
	if err != nil {
		return err
	}
	c.values = Merge(c.values, obj)
	return nil
}

// Set binds a single key, overriding any document value.
func (c *Context) Set(key string, v yartl.Value) {
	c.values = Merge(c.values, yartl.ObjectValue{key: v})
}

func (c *Context) Value() yartl.ObjectValue { return c.values }
