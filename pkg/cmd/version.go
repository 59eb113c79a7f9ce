package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X ...cmd.Version=v1.2.3".
var Version = "develop"

type VersionOptions struct {
	Streams
}

func NewVersionOptions(s Streams) *VersionOptions {
	return &VersionOptions{Streams: s}
}

func NewVersionCmd(o *VersionOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	return cmd
}

func (o *VersionOptions) Run() error {
	_, err := fmt.Fprintf(o.Out, "yartl version %s\n", Version)
	return err
}
