package cmd

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/neurodesk/yartl/pkg/diag"
	"github.com/neurodesk/yartl/pkg/validator"
	"github.com/neurodesk/yartl/pkg/yartl"
	"github.com/spf13/cobra"
)

type CheckOptions struct {
	Streams

	Paths    []string
	Exts     []string
	MaxDepth int
}

func NewCheckOptions(s Streams) *CheckOptions {
	return &CheckOptions{Streams: s}
}

func NewCheckCmd(o *CheckOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check PATH...",
		Short: "Check that templates parse",
		Long: `Parse every template under the given files and directories without rendering.

Directories are searched recursively for files with one of the --ext extensions.
Files named explicitly are always checked.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			o.Paths = args
			return o.Run()
		},
	}
	cmd.Flags().StringSliceVar(&o.Exts, "ext", []string{".tmpl", ".yartl"}, "Template file extensions to look for in directories")
	cmd.Flags().IntVar(&o.MaxDepth, "max-depth", yartl.DefaultMaxDepth, "Maximum nesting of blocks, property chains and operator chains")
	return cmd
}

func (o *CheckOptions) Validate() error {
	return validator.All(
		validator.Map(o.Exts, func(ext, desc string) error {
			if !strings.HasPrefix(ext, ".") {
				return fmt.Errorf("%s must start with a dot, got %q", desc, ext)
			}
			return nil
		}, "--ext"),
		validator.NoDuplicates(o.Paths, "paths"),
		validator.InRange(o.MaxDepth, 1, 1<<16, "--max-depth"),
	)
}

// discoverTemplates expands directories into the template files beneath
// them, in lexical order.
func (o *CheckOptions) discoverTemplates() ([]string, error) {
	var templates []string
	for _, p := range o.Paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			templates = append(templates, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && slices.Contains(o.Exts, filepath.Ext(path)) {
				templates = append(templates, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return templates, nil
}

func (o *CheckOptions) Run() error {
	if err := o.Validate(); err != nil {
		return err
	}
	templates, err := o.discoverTemplates()
	if err != nil {
		return err
	}

	r := yartl.NewRenderer(nil)
	r.MaxDepth = o.MaxDepth

	failed := 0
	for _, path := range templates {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		src := string(b)
		doc, err := r.Parse(src)
		if err != nil {
			failed++
			fmt.Fprintf(o.Err, "%s\n\n", diag.Wrap(err, path, src))
			continue
		}
		slog.Info("validated", "file", path, "variables", yartl.Variables(doc))
	}

	fmt.Fprintf(o.Out, "checked %d templates, %d invalid\n", len(templates), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d templates failed to parse", failed, len(templates))
	}
	return nil
}
