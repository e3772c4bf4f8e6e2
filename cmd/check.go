package main

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <application-id>",
	Short: "Run the eligibility check of an application and print the summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	applicationID, err := parseApplicationID(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	summary, err := a.engine.RunEligibilityCheck(cmd.Context(), applicationID)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), summary)
}
