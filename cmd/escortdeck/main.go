// Command escortdeck wraps internal/pipeline.Generate and internal/audit +
// internal/scan as a pair of cobra subcommands: render a deck from a
// synthesis document, or lint an already-produced package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "escortdeck",
		Short: "Generate and validate market-research escort decks",
	}
	root.AddCommand(newRenderCmd())
	root.AddCommand(newLintCmd())
	return root
}
