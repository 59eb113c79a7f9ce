package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"
)

// Streams are the standard streams a command reads from and writes to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func DefaultStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

type YartlOptions struct {
	Streams
	Debug bool
}

func NewYartlOptions(s Streams) *YartlOptions {
	return &YartlOptions{Streams: s}
}

func NewDefaultYartlCmd() *cobra.Command {
	return NewYartlCmd(NewYartlOptions(DefaultStreams()))
}

func NewYartlCmd(o *YartlOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "yartl",
		Version: Version,
		Short:   "yartl renders text templates",
		Long: `yartl renders text templates against JSON, YAML, TOML or Starlark contexts.

Templates mix literal text with {{ expr }}, {{ for x in list }}...{{ end }}
and {{ if cond }}...{{ else }}...{{ end }} directives.`,

		PersistentPreRun: func(_ *cobra.Command, _ []string) { o.configureLogging() },
	}

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.DisableAutoGenTag = true

	cmd.PersistentFlags().BoolVar(&o.Debug, "debug", false, "Enable debug output")

	cmd.AddCommand(NewRenderCmd(NewRenderOptions(o.Streams)))
	cmd.AddCommand(NewCheckCmd(NewCheckOptions(o.Streams)))
	cmd.AddCommand(NewTokensCmd(NewInspectOptions(o.Streams)))
	cmd.AddCommand(NewASTCmd(NewInspectOptions(o.Streams)))
	cmd.AddCommand(NewVersionCmd(NewVersionOptions(o.Streams)))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		disallowExtraArgsUnlessDeclared, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}

// disallowExtraArgsUnlessDeclared rejects positional arguments on commands
// that do not declare their own Args validator.
func disallowExtraArgsUnlessDeclared(cmd *cobra.Command) {
	if cmd.Args == nil {
		cobrautil.DisallowExtraArgs(cmd)
	}
}

func (o *YartlOptions) configureLogging() {
	level := slog.LevelInfo
	if o.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(o.Err, &slog.HandlerOptions{Level: level})))
}
