package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

// Version is set via -ldflags
var Version = "dev"

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
