package cmd

import (
	"context"
	"fmt"

	"github.com/neurodesk/yartl/pkg/diag"
	"github.com/neurodesk/yartl/pkg/source"
	"github.com/neurodesk/yartl/pkg/yartl"
	"github.com/spf13/cobra"
)

// InspectOptions back the tokens and ast debugging commands.
type InspectOptions struct {
	Streams
	Template string
}

func NewInspectOptions(s Streams) *InspectOptions {
	return &InspectOptions{Streams: s}
}

func NewTokensCmd(o *InspectOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens TEMPLATE",
		Short: "Print the tokens of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			o.Template = args[0]
			return o.RunTokens()
		},
	}
}

func NewASTCmd(o *InspectOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ast TEMPLATE",
		Short: "Print the syntax tree of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			o.Template = args[0]
			return o.RunAST()
		},
	}
}

func (o *InspectOptions) load() (string, error) {
	return source.New(context.Background(), nil, o.In).Load(o.Template)
}

func (o *InspectOptions) RunTokens() error {
	src, err := o.load()
	if err != nil {
		return err
	}
	toks, err := yartl.Tokenize(src)
	for _, t := range toks {
		fmt.Fprintf(o.Out, "%d\t%s\t%q\n", t.Pos, t.Kind, t.Val)
	}
	return diag.Wrap(err, o.Template, src)
}

func (o *InspectOptions) RunAST() error {
	src, err := o.load()
	if err != nil {
		return err
	}
	doc, err := yartl.Parse(src)
	if err != nil {
		return diag.Wrap(err, o.Template, src)
	}
	_, err = fmt.Fprint(o.Out, yartl.Pretty(doc))
	return err
}
