package main

import (
	"fmt"

	"github.com/aretw0/sideeye/internal/dto"
	"github.com/aretw0/sideeye/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a fixation file and the item catalogue for consistency",
	Long: `Reports errors that would make trial construction fail and warnings about suspicious
timestamps (duration mismatch, overlapping or out-of-order fixations). Without a file only
the configured item catalogue is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	report := &validator.Report{}
	if len(args) > 0 {
		file, err := dto.ReadFile(args[0])
		if err != nil {
			return err
		}
		report = validator.CheckFile(file)
	}

	s, err := newSetup(cmd, nil)
	if err != nil {
		return err
	}
	defer s.close()

	catalogue := validator.CheckItems(cmd.Context(), s.analyzer.Loader())
	report.Errors = append(report.Errors, catalogue.Errors...)
	report.Warnings = append(report.Warnings, catalogue.Warnings...)

	out := cmd.OutOrStdout()
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "warning: %v\n", w)
	}
	if err := report.Err(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	fmt.Fprintln(out, "Input is valid! ✅")
	return nil
}
