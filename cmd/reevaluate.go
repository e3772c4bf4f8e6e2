package main

import (
	"fmt"
	"github.com/spf13/cobra"
)

var reevaluateCmd = &cobra.Command{
	Use:   "reevaluate",
	Short: "Re-run eligibility checks of every open application",
	Args:  cobra.NoArgs,
	RunE:  runReevaluate,
}

func init() {
	rootCmd.AddCommand(reevaluateCmd)
}

func runReevaluate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	report, err := a.reevaluator.RunAll(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "reevaluated %d applications, %d failed\n", report.Total, report.Failed)
	return nil
}
