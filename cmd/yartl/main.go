package main

import (
	"fmt"
	"os"

	uierrs "github.com/cppforlife/go-cli-ui/errors"
	"github.com/neurodesk/yartl/pkg/cmd"
)

func main() {
	command := cmd.NewDefaultYartlCmd()

	if err := command.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "yartl: Error: %s\n", uierrs.NewMultiLineError(err))
		os.Exit(1)
	}
}
