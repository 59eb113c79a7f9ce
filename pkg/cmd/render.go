package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/neurodesk/yartl/pkg/common"
	"github.com/neurodesk/yartl/pkg/data"
	"github.com/neurodesk/yartl/pkg/diag"
	"github.com/neurodesk/yartl/pkg/netcache"
	"github.com/neurodesk/yartl/pkg/source"
	"github.com/neurodesk/yartl/pkg/validator"
	"github.com/neurodesk/yartl/pkg/yartl"
	"github.com/spf13/cobra"
)

var colorModes = []string{"auto", "always", "never"}

type RenderOptions struct {
	Streams

	Template      string
	Contexts      []string
	ContextFormat string
	Sets          SetFlag
	Output        string
	MaxDepth      int
	Color         string
	CacheDir      string
	NoRemote      bool
}

func NewRenderOptions(s Streams) *RenderOptions {
	return &RenderOptions{Streams: s}
}

func NewRenderCmd(o *RenderOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render TEMPLATE",
		Short: "Render a template",
		Long: `Render a template against layered context documents.

TEMPLATE and each context may be a local path, an http(s) URL or - for stdin.
Contexts are merged left to right; later documents win on shared keys.`,
		Example: `  yartl render page.tmpl -c values.yaml -c prod.json -o page.html
  yartl render page.tmpl -c defaults.toml -c derive.star --set env=prod`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			o.Template = args[0]
			return o.Run()
		},
	}
	cmd.Flags().StringArrayVarP(&o.Contexts, "context", "c", nil, "Context document (local path, HTTP URL, -) (can be specified multiple times)")
	cmd.Flags().StringVar(&o.ContextFormat, "context-format", "", "Decode every context as this format (json, yaml, toml, starlark) instead of guessing from the extension")
	cmd.Flags().Var(&o.Sets, "set", "Set a string context value, applied after all documents (can be specified multiple times)")
	cmd.Flags().StringVarP(&o.Output, "output", "o", "", "Write output to this file instead of stdout")
	cmd.Flags().IntVar(&o.MaxDepth, "max-depth", yartl.DefaultMaxDepth, "Maximum nesting of blocks, property chains and operator chains")
	cmd.Flags().StringVar(&o.Color, "color", "auto", "Colorize diagnostics (auto, always, never)")
	cmd.Flags().StringVar(&o.CacheDir, "cache-dir", netcache.DefaultDir(), "Directory for cached remote templates and contexts")
	cmd.Flags().BoolVar(&o.NoRemote, "no-remote", false, "Refuse http(s) templates and contexts")
	return cmd
}

func (o *RenderOptions) Validate() error {
	err := validator.All(
		validator.NotEmpty(o.Template, "template"),
		validator.MatchesAllowed(o.Color, colorModes, "--color"),
		validator.InRange(o.MaxDepth, 1, 1<<16, "--max-depth"),
		validator.NoDuplicates(o.Sets.Keys(), "--set keys"),
	)
	if err != nil {
		return err
	}
	if o.ContextFormat != "" {
		if _, err := common.ParseFormat(o.ContextFormat); err != nil {
			return err
		}
	}
	return nil
}

func (o *RenderOptions) formatter() diag.Formatter {
	switch o.Color {
	case "always":
		return diag.Formatter{Color: true}
	case "never":
		return diag.Formatter{}
	}
	return diag.Formatter{Color: isTerminal(o.Err)}
}

// isTerminal reports whether diagnostics written to w reach a colour
// terminal. NO_COLOR and TERM=dumb turn colour off.
func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (o *RenderOptions) loader(ctx context.Context) *source.Loader {
	var cache *netcache.Cache
	if !o.NoRemote {
		cache = netcache.New(o.CacheDir)
	}
	return source.New(ctx, cache, o.In)
}

// BuildContext decodes and layers every context document, then applies
// --set values.
func (o *RenderOptions) BuildContext(loader *source.Loader) (yartl.ObjectValue, error) {
	layers := data.NewContext(o.Err)
	for _, name := range o.Contexts {
		b, err := loader.ReadBytes(name)
		if err != nil {
			return nil, fmt.Errorf("loading context: %w", err)
		}
		format := common.FormatFromName(name)
		if o.ContextFormat != "" {
			format, _ = common.ParseFormat(o.ContextFormat)
		}
		if err := layers.Add(name, format, b); err != nil {
			return nil, err
		}
	}
	for _, kv := range o.Sets.Pairs {
		layers.Set(kv.Key, yartl.StringValue(kv.Value))
	}
	return layers.Value(), nil
}

func (o *RenderOptions) Run() error {
	t1 := time.Now()
	defer func() {
		slog.Debug("render finished", "template", o.Template, "total", time.Since(t1))
	}()

	if err := o.Validate(); err != nil {
		return err
	}

	loader := o.loader(context.Background())
	values, err := o.BuildContext(loader)
	if err != nil {
		return err
	}

	r := yartl.NewRenderer(loader)
	r.MaxDepth = o.MaxDepth
	out, err := r.RenderFile(o.Template, values)
	if err != nil {
		// The loader keeps the template text, so this is not a second read.
		src, _ := loader.Load(o.Template)
		return o.formatter().Wrap(err, o.Template, src)
	}
	return o.write(out)
}

func (o *RenderOptions) write(out string) error {
	if o.Output == "" || o.Output == source.Stdin {
		_, err := o.Out.Write([]byte(out))
		return err
	}
	if err := os.WriteFile(o.Output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	slog.Debug("wrote output", "path", o.Output, "bytes", len(out), "lines", strings.Count(out, "\n"))
	return nil
}
