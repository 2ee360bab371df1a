package main

import (
	"fmt"

	"github.com/aretw0/sideeye/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var measureCmd = &cobra.Command{
	Use:   "measure [key]",
	Short: "Apply the configured measures to a stored trial",
	Long:  `Runs the external measure commands listed in measures.path over a stored trial and saves the results.
The trial must come from a persistent store (--store file or redis).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSetup(cmd, nil)
		if err != nil {
			return err
		}
		defer s.close()

		if s.analyzer.Measures().Len() == 0 {
			return fmt.Errorf("no measures configured (set measures.path)")
		}

		trial, err := s.analyzer.Measure(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		text, err := tui.NewRenderer()(tui.TrialReport(args[0], trial))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(measureCmd)
}
