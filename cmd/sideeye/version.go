package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/sideeye"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sideeye",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sideeye version %s\n", strings.TrimSpace(sideeye.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
