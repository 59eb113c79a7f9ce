// Package source reads templates and context documents from local files,
// standard input and http(s) URLs.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/neurodesk/yartl/pkg/netcache"
)

// Stdin is the name that refers to standard input.
const Stdin = "-"

// IsRemote reports whether name is an http or https URL.
func IsRemote(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}

// Loader resolves names to their contents. It satisfies yartl.Loader.
type Loader struct {
	Ctx   context.Context
	Cache *netcache.Cache
	Stdin io.Reader

	stdinOnce sync.Once
	stdinData []byte
	stdinErr  error

	mu        sync.Mutex
	templates map[string]string
}

// New returns a loader. A nil cache disables remote names.
func New(ctx context.Context, cache *netcache.Cache, stdin io.Reader) *Loader {
	return &Loader{Ctx: ctx, Cache: cache, Stdin: stdin}
}

// ReadBytes returns the contents of name. Standard input is read once and
// replayed for later reads.
func (l *Loader) ReadBytes(name string) ([]byte, error) {
	switch {
	case name == Stdin:
		l.stdinOnce.Do(func() {
			if l.Stdin == nil {
				l.stdinErr = fmt.Errorf("reading stdin: no input attached")
				return
			}
			l.stdinData, l.stdinErr = io.ReadAll(l.Stdin)
		})
		return l.stdinData, l.stdinErr
	case IsRemote(name):
		if l.Cache == nil {
			return nil, fmt.Errorf("loading %s: remote sources are disabled", name)
		}
		ctx := l.Ctx
		if ctx == nil {
			ctx = context.Background()
		}
		b, err := l.Cache.Fetch(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", name, err)
		}
		return b, nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	slog.Debug("read file", "path", name, "bytes", len(b))
	return b, nil
}

// Load returns name as template text. Successful loads are kept, so a
// later Load of the same name (for example to quote the source in an
// error) does not hit the filesystem or network again.
func (l *Loader) Load(name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if src, ok := l.templates[name]; ok {
		return src, nil
	}
	b, err := l.ReadBytes(name)
	if err != nil {
		return "", err
	}
	if l.templates == nil {
		l.templates = map[string]string{}
	}
	l.templates[name] = string(b)
	return l.templates[name], nil
}
