/*
Package sideeye reconstructs saccades from eye-tracking fixations recorded during reading experiments.

A reading trial arrives as an ordered sequence of fixations, each located (when possible) on a
character and line of the stimulus Item. The Analyzer turns that sequence into a Trial: it
re-indexes the fixations, reconstructs the saccades between consecutive usable fixations,
classifies each one as a regression or a progression, and keeps the result in a store so that
measure passes can fill in trial-level and region-level measures later.

# Concept

Fixations flagged as excluded (blinks, off-screen gaze, tracker noise) never start or end a
saccade. A run of excluded fixations is bridged by a single saccade, and two switches decide
how much of the run is attributed to it:

  - IncludeFixation adds the duration of each excluded fixation.
  - IncludeSaccades adds the gaps around excluded fixations, even between two excluded ones.

A saccade is a regression when it lands earlier in the text than it started. When the landing
position is unknown it counts as a regression; when only the take-off position is unknown it
counts as a progression.

# Architecture

The core model lives in pkg/domain and has no dependencies. Items are read through a
ports.ItemLoader (Loam documents or memory) and trials are persisted through a
ports.TrialStore (memory, JSON files or Redis). The HTTP and MCP adapters and the sideeye
command expose the same Analyzer.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/sideeye"
		"github.com/aretw0/sideeye/pkg/domain"
		"github.com/aretw0/sideeye/pkg/ports"
	)

	func main() {
		// Items are read from ./items (one Markdown document per item)
		analyzer, err := sideeye.New("./items",
			sideeye.WithBuildOptions(domain.BuildOptions{IncludeFixation: true}),
		)
		if err != nil {
			log.Fatal(err)
		}

		trial, err := analyzer.Build(context.Background(), ports.BuildRequest{
			ItemNumber: "1",
			Fixations: []domain.Fixation{
				domain.NewFixation(domain.NewPoint(1, 0), 0, 100, nil),
				domain.NewFixation(domain.NewPoint(5, 0), 150, 250, nil),
			},
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(trial, trial.Regressions())
	}
*/
package sideeye
