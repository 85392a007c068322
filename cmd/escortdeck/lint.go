package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/escortdeck/marketdeck/gopresentation"
	"github.com/escortdeck/marketdeck/internal/audit"
	"github.com/escortdeck/marketdeck/internal/scan"
	"github.com/escortdeck/marketdeck/internal/templates"
)

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint deck.pptx",
		Short: "Audit and scan an already-produced package against the template contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			reader := gopresentation.NewReader(gopresentation.ReaderPowerPoint2007)
			pres, err := reader.ReadBytes(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			contract, err := templates.Load()
			if err != nil {
				return fmt.Errorf("load template contract: %w", err)
			}

			issues := audit.Audit(pres, contract)
			for _, issue := range issues {
				fmt.Fprintf(cmd.OutOrStdout(), "[audit:%s] slide %d %s: %s\n", issue.Severity, issue.SlideNumber, issue.Check, issue.Detail)
			}

			violations, err := scan.Scan(data)
			if err != nil {
				return fmt.Errorf("scan %s: %w", args[0], err)
			}
			for _, v := range violations {
				fmt.Fprintf(cmd.OutOrStdout(), "[scan] %s\n", v.String())
			}

			if audit.Fatal(issues) || len(violations) > 0 {
				return fmt.Errorf("%d fatal audit issue(s), %d scan violation(s)", countFatal(issues), len(violations))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}

func countFatal(issues []audit.Issue) int {
	n := 0
	for _, i := range issues {
		if i.Severity == audit.SeverityFatal {
			n++
		}
	}
	return n
}
