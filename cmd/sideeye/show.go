package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/sideeye/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Print a stored trial",
	Long:  `Prints a trial from the configured store. Needs a persistent store (--store file or redis); the memory store is empty in a new process.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSetup(cmd, nil)
		if err != nil {
			return err
		}
		defer s.close()

		trial, err := s.analyzer.Trial(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(trial, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		text, err := tui.NewRenderer()(tui.TrialReport(args[0], trial))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored trial keys",
	Long:  `Lists the trial keys in the configured store. Needs a persistent store (--store file or redis); the memory store is empty in a new process.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSetup(cmd, nil)
		if err != nil {
			return err
		}
		defer s.close()

		keys, err := s.analyzer.Trials(cmd.Context())
		if err != nil {
			return err
		}
		text, err := tui.NewRenderer()(tui.TrialList(keys))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	showCmd.Flags().Bool("json", false, "Print the trial as JSON")
}
