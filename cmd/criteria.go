package main

import (
	"encoding/json"
	"fmt"
	"github.com/lilhop36/osta-job-portal-sub001/internal/entities"
	"github.com/spf13/cobra"
	"io"
	"os"
)

var criteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "Manage eligibility criteria",
}

var criteriaImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Validate and import criterion definitions from a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE:  runCriteriaImport,
}

func init() {
	criteriaCmd.AddCommand(criteriaImportCmd)
	rootCmd.AddCommand(criteriaCmd)
}

func runCriteriaImport(cmd *cobra.Command, args []string) error {
	criteria, err := readCriteriaFile(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	ids, err := a.criteria.Import(cmd.Context(), criteria)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d criteria: %v\n", len(ids), ids)
	return nil
}

func readCriteriaFile(path string) ([]entities.EligibilityCriterion, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open criteria file: %w", err)
	}
	defer file.Close()

	return decodeCriteria(file)
}

// importedCriterion makes is_active optional; omitted means active.
type importedCriterion struct {
	entities.EligibilityCriterion
	IsActive *bool `json:"is_active"`
}

func decodeCriteria(r io.Reader) ([]entities.EligibilityCriterion, error) {
	var imported []importedCriterion
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&imported); err != nil {
		return nil, fmt.Errorf("failed to decode criteria: %w", err)
	}

	criteria := make([]entities.EligibilityCriterion, 0, len(imported))
	for _, item := range imported {
		item.EligibilityCriterion.IsActive = item.IsActive == nil || *item.IsActive
		criteria = append(criteria, item.EligibilityCriterion)
	}
	return criteria, nil
}
