package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/sideeye/pkg/domain"
)

// TrialReport renders a trial as a markdown document: a summary, the fixation and
// saccade tables and any computed measures.
func TrialReport(key string, t *domain.Trial) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Trial %s\n\n", key)

	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Item | %s |\n", t.Item)
	fmt.Fprintf(&b, "| Index | %d |\n", t.Index)
	if t.Time != nil {
		fmt.Fprintf(&b, "| Time | %d ms |\n", *t.Time)
	}
	fmt.Fprintf(&b, "| Fixations | %d (%d excluded) |\n", len(t.Fixations), len(t.Fixations)-t.FixationCount())
	fmt.Fprintf(&b, "| Saccades | %d (%d regressions) |\n\n", len(t.Saccades), t.Regressions())

	b.WriteString("## Fixations\n\n")
	b.WriteString("| # | Position | Start | End | Duration | Region | Excluded |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, f := range t.Fixations {
		pos := "-"
		if p, ok := f.Position(); ok {
			pos = p.String()
		}
		region := "-"
		if f.Region != nil {
			region = f.Region.Key()
			if f.Region.Label != "" {
				region += " " + f.Region.Label
			}
		}
		excluded := ""
		if f.Excluded {
			excluded = "yes"
		}
		fmt.Fprintf(&b, "| %d | %s | %d | %d | %d | %s | %s |\n",
			f.Index, pos, f.Start, f.End, f.Duration, region, excluded)
	}

	if len(t.Saccades) > 0 {
		b.WriteString("\n## Saccades\n\n")
		b.WriteString("| From | To | Duration | Direction |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, s := range t.Saccades {
			direction := "progression"
			if s.Regression {
				direction = "regression"
			}
			fmt.Fprintf(&b, "| %d | %d | %d | %s |\n", s.Start, s.End, s.Duration, direction)
		}
	}

	if len(t.TrialMeasures) > 0 {
		b.WriteString("\n## Trial measures\n\n")
		b.WriteString("| Measure | Value |\n|---|---|\n")
		for _, name := range sortedKeys(t.TrialMeasures) {
			fmt.Fprintf(&b, "| %s | %s |\n", name, formatResult(t.TrialMeasures[name]))
		}
	}

	if len(t.RegionMeasures) > 0 {
		b.WriteString("\n## Region measures\n\n")
		b.WriteString("| Region | Measure | Value |\n|---|---|---|\n")
		regions := make([]string, 0, len(t.RegionMeasures))
		for r := range t.RegionMeasures {
			regions = append(regions, r)
		}
		sort.Strings(regions)
		for _, r := range regions {
			for _, name := range sortedKeys(t.RegionMeasures[r]) {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", r, name, formatResult(t.RegionMeasures[r][name]))
			}
		}
	}

	return b.String()
}

// TrialList renders stored trial keys as a markdown list.
func TrialList(keys []string) string {
	if len(keys) == 0 {
		return "_No trials stored._\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Trials (%d)\n\n", len(keys))
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s\n", k)
	}
	return b.String()
}

func formatResult(r domain.MeasureResult) string {
	if !r.Calculated {
		return "n/a"
	}
	return fmt.Sprintf("%g", r.Value)
}

func sortedKeys(m domain.Measures) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
