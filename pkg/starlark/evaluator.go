package starlark

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/neurodesk/yartl/pkg/yartl"
	"go.starlark.net/starlark"
)

// Evaluator runs Starlark context scripts. Values already in the context
// are predeclared as globals, and the globals a script defines become
// context values.
type Evaluator struct {
	thread   *starlark.Thread
	builtins starlark.StringDict
	globals  starlark.StringDict
}

// NewEvaluator creates an evaluator whose print output goes to w.
func NewEvaluator(w io.Writer) *Evaluator {
	if w == nil {
		w = os.Stderr
	}
	thread := &starlark.Thread{
		Name: "yartl",
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(w, msg)
		},
	}
	return &Evaluator{
		thread:   thread,
		builtins: CreateBuiltins(os.LookupEnv),
		globals:  make(starlark.StringDict),
	}
}

// SetGlobal sets a global variable in the Starlark environment
func (e *Evaluator) SetGlobal(name string, value yartl.Value) {
	e.globals[name] = ToStarlark(value)
}

func (e *Evaluator) predeclared() starlark.StringDict {
	predeclared := make(starlark.StringDict, len(e.builtins)+len(e.globals))
	for k, v := range e.builtins {
		predeclared[k] = v
	}
	for k, v := range e.globals {
		predeclared[k] = v
	}
	return predeclared
}

// Eval evaluates a Starlark expression.
func (e *Evaluator) Eval(expr string) (yartl.Value, error) {
	val, err := starlark.Eval(e.thread, "<eval>", expr, e.predeclared())
	if err != nil {
		return nil, fmt.Errorf("starlark evaluation error: %w", err)
	}
	return FromStarlark(val)
}

// ExecFile executes a Starlark file and returns the globals it defined.
// src may be nil (read filename), a string or a []byte.
func (e *Evaluator) ExecFile(filename string, src any) (starlark.StringDict, error) {
	globals, err := starlark.ExecFile(e.thread, filename, src, e.predeclared())
	if err != nil {
		return nil, fmt.Errorf("starlark execution error: %w", err)
	}
	for k, v := range globals {
		e.globals[k] = v
	}
	slog.Debug("executed starlark", "file", filename, "globals", len(globals))
	return globals, nil
}

// ExecString executes a Starlark script from a string
func (e *Evaluator) ExecString(script string) (starlark.StringDict, error) {
	return e.ExecFile("<script>", script)
}

// GetGlobal retrieves a global variable. Globals with no context form are
// reported as absent.
func (e *Evaluator) GetGlobal(name string) (yartl.Value, bool) {
	val, ok := e.globals[name]
	if !ok {
		return nil, false
	}
	cv, err := FromStarlark(val)
	if err != nil {
		return nil, false
	}
	return cv, true
}

// LoadContext predeclares every member of ctx as a global.
func (e *Evaluator) LoadContext(ctx yartl.ObjectValue) {
	for key, value := range ctx {
		e.SetGlobal(key, value)
	}
}

// ExportContext converts the current globals into a context object.
// Callables and names starting with an underscore are skipped.
func (e *Evaluator) ExportContext() (yartl.ObjectValue, error) {
	keys := make([]string, 0, len(e.globals))
	for k := range e.globals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx := make(yartl.ObjectValue, len(keys))
	for _, key := range keys {
		value := e.globals[key]
		if !isExportable(key, value) {
			continue
		}
		cv, err := FromStarlark(value)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", key, err)
		}
		ctx[key] = cv
	}
	return ctx, nil
}

func isExportable(key string, value starlark.Value) bool {
	if key == "" || key[0] == '_' {
		return false
	}
	_, callable := value.(starlark.Callable)
	return !callable
}
