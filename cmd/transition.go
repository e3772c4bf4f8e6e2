package main

import (
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/spf13/cobra"
)

var transitionCmd = &cobra.Command{
	Use:   "transition <application-id> <status>",
	Short: "Move an application to another status",
	Args:  cobra.ExactArgs(2),
	RunE:  runTransition,
}

var (
	transitionActor int64
	transitionNotes string
)

func init() {
	transitionCmd.Flags().Int64Var(&transitionActor, "actor", 0, "ID of the acting user; omitted means the system acts")
	transitionCmd.Flags().StringVar(&transitionNotes, "notes", "", "Notes stored with the history entry")

	rootCmd.AddCommand(transitionCmd)
}

func runTransition(cmd *cobra.Command, args []string) error {
	applicationID, err := parseApplicationID(args[0])
	if err != nil {
		return err
	}
	target, err := entities.ToApplicationStatus(args[1])
	if err != nil {
		return err
	}

	var actorID *int64
	if cmd.Flags().Changed("actor") {
		actorID = &transitionActor
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	entry, err := a.machine.Transition(cmd.Context(), applicationID, target, actorID, transitionNotes)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), entry)
}
