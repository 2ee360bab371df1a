package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/sideeye"
	"github.com/aretw0/sideeye/internal/config"
	"github.com/aretw0/sideeye/internal/dto"
	"github.com/aretw0/sideeye/internal/presentation/tui"
	"github.com/aretw0/sideeye/internal/validator"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [file]",
	Short: "Build trials from a fixation file and store them",
	Long: `Reads a JSON or YAML file holding one trial or a list of trials, reconstructs the
saccades of each trial and stores the result in the configured trial store.

A trial that fails validation or construction is reported on stderr and skipped; the
remaining trials are still built. The command exits non-zero if any trial failed.
Use --fail-fast to stop at the first failure instead.

The default store is in memory and is discarded when the command exits. Use
--store file (or store.driver in the config) to keep trials for show, list and measure.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	addBuildFlags(buildCmd)
	buildCmd.Flags().Bool("json", false, "Print the built trials as JSON")
	buildCmd.Flags().Bool("fail-fast", false, "Stop at the first trial that fails")
}

func runBuild(cmd *cobra.Command, args []string) error {
	file, err := dto.ReadFile(args[0])
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()

	// Inline items are shared by every trial, so a broken catalogue stops the run.
	items := validator.CheckInlineItems(file)
	if err := items.Err(); err != nil {
		return err
	}

	s, err := newSetup(cmd, file.Items)
	if err != nil {
		return err
	}
	defer s.close()

	if s.cfg.Store.Driver == config.DriverMemory {
		fmt.Fprintln(stderr, "note: using the memory store; built trials are discarded on exit (use --store file to keep them)")
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	failFast, _ := cmd.Flags().GetBool("fail-fast")
	render := tui.NewRenderer()
	out := cmd.OutOrStdout()

	built := make(map[string]any, len(file.Trials))
	var failed []error
	for i, in := range file.Trials {
		report := validator.CheckTrial(in, validator.TrialPath(i))
		for _, w := range report.Warnings {
			fmt.Fprintf(stderr, "warning: %v\n", w)
		}
		if err := report.Err(); err != nil {
			failed = append(failed, err)
			fmt.Fprintf(stderr, "error: %v\n", err)
			if failFast {
				return err
			}
			continue
		}

		req := in.ToRequest()
		trial, err := s.analyzer.Build(cmd.Context(), req)
		if err != nil {
			err = fmt.Errorf("%s: %w", validator.TrialPath(i), err)
			failed = append(failed, err)
			fmt.Fprintf(stderr, "error: %v\n", err)
			if failFast {
				return err
			}
			continue
		}
		key := sideeye.StorageKey(req, trial)

		if asJSON {
			built[key] = trial
			continue
		}
		text, err := render(tui.TrialReport(key, trial))
		if err != nil {
			return err
		}
		fmt.Fprint(out, text)
	}

	if asJSON {
		data, err := json.MarshalIndent(built, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d trials failed, first: %w", len(failed), len(file.Trials), failed[0])
	}
	return nil
}
