package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/sideeye"
	"github.com/aretw0/sideeye/internal/cli"
	"github.com/aretw0/sideeye/internal/config"
	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "sideeye",
	Short:         "sideeye reconstructs saccades from eye-tracking fixations",
	Long: `sideeye builds reading trials from fixation sequences, reconstructs the saccades between them and classifies regressions.

Trials are kept in memory by default, which only lasts for one command. To use show, list or
measure on trials from an earlier build, select a persistent store with --store file (or redis),
or set store.driver in the config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("items", "", "Directory containing item documents (overrides items.path)")
	rootCmd.PersistentFlags().String("store", "", "Trial store driver: memory (default, not kept between runs), file or redis (overrides store.driver)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides log.level)")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("items") {
		cfg.Items.Path, _ = cmd.Flags().GetString("items")
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Driver, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if f := cmd.Flags().Lookup("include-fixation"); f != nil && f.Changed {
		cfg.Analysis.IncludeFixation, _ = cmd.Flags().GetBool("include-fixation")
	}
	if f := cmd.Flags().Lookup("include-saccades"); f != nil && f.Changed {
		cfg.Analysis.IncludeSaccades, _ = cmd.Flags().GetBool("include-saccades")
	}
	return cfg, cfg.Validate()
}

// setup is shared by the commands that need an analyzer.
type setup struct {
	cfg      *config.Config
	logger   *slog.Logger
	analyzer *sideeye.Analyzer
	close    func() error
}

// newSetup loads the config and logger, then opens an analyzer over them.
func newSetup(cmd *cobra.Command, items []*domain.Item, hooks ...domain.LifecycleHooks) (*setup, error) {
	s, err := loadSetup(cmd)
	if err != nil {
		return nil, err
	}
	return s, s.open(items, hooks...)
}

func loadSetup(cmd *cobra.Command) (*setup, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &setup{cfg: cfg, logger: logger, close: func() error { return nil }}, nil
}

func (s *setup) open(items []*domain.Item, hooks ...domain.LifecycleHooks) error {
	analyzer, closeFn, err := cli.NewAnalyzer(cli.Options{
		Config: s.cfg,
		Logger: s.logger,
		Items:  items,
		Hooks:  hooks,
	})
	if err != nil {
		return err
	}
	s.analyzer = analyzer
	s.close = closeFn
	return nil
}

func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("include-fixation", false, "Add the duration of excluded fixations to the bridging saccade")
	cmd.Flags().Bool("include-saccades", false, "Add the gaps around excluded fixations to the bridging saccade")
}
