package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/aretw0/sideeye"
	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trialFile = `
items:
  - number: "3"
    regions:
      - number: 1
        start: {char: 0, line: 0}
        end: {char: 20, line: 0}
trials:
  - item_number: "3"
    index: 0
    fixations:
      - {start: 0, end: 100, char: 2, line: 0}
      - {start: 130, end: 180, excluded: true}
      - {start: 200, end: 300, char: 8, line: 0}
      - {start: 340, end: 400, char: 4, line: 0}
`

// execute runs the root command with fresh flag values and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeStreams(t, args...)
	return out, err
}

// executeStreams is execute with stderr captured separately.
func executeStreams(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "sideeye version "+strings.TrimSpace(sideeye.Version)+"\n", out)
}

func TestBuild_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trial.yaml", trialFile)

	out, err := execute(t, "build", path, "--json")
	require.NoError(t, err)

	var built map[string]*domain.Trial
	require.NoError(t, json.Unmarshal([]byte(out), &built))
	require.Contains(t, built, "3.0")

	trial := built["3.0"]
	assert.Equal(t, 3, trial.FixationCount())
	// The excluded fixation has no gap or duration folded in by default,
	// so only the 3 -> 4 transition produces a saccade.
	require.Len(t, trial.Saccades, 1)
	assert.Equal(t, 40, trial.Saccades[0].Duration)
	assert.True(t, trial.Saccades[0].Regression)
}

func TestBuild_IncludeFlags(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trial.yaml", trialFile)

	out, err := execute(t, "build", path, "--json", "--include-fixation", "--include-saccades")
	require.NoError(t, err)

	var built map[string]*domain.Trial
	require.NoError(t, json.Unmarshal([]byte(out), &built))
	trial := built["3.0"]
	require.Len(t, trial.Saccades, 2)
	// 30ms gap + 50ms excluded fixation + 20ms gap
	assert.Equal(t, 100, trial.Saccades[0].Duration)
	assert.False(t, trial.Saccades[0].Regression)
}

func TestBuild_FileStore(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "trial.yaml", trialFile)
	cfg := writeFile(t, dir, "sideeye.yaml", "store:\n  driver: file\n  path: "+filepath.Join(dir, "trials")+"\n")

	out, err := execute(t, "build", path, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "3.0")

	out, err = execute(t, "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "- 3.0")

	out, err = execute(t, "show", "3.0", "--json", "--config", cfg)
	require.NoError(t, err)
	var trial domain.Trial
	require.NoError(t, json.Unmarshal([]byte(out), &trial))
	assert.Equal(t, "3", trial.Item.Number)

	_, err = execute(t, "show", "missing", "--config", cfg)
	assert.ErrorIs(t, err, domain.ErrTrialNotFound)
}

func TestBuild_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "build", filepath.Join(dir, "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read trial file")

	path := writeFile(t, dir, "bad.yaml", "item_number: \"3\"\nindex: -2\nfixations: []\n")
	_, err = execute(t, "build", path)
	assert.ErrorContains(t, err, "index must be non-negative")

	path = writeFile(t, dir, "unknown.yaml", "item_number: \"9\"\nfixations: []\n")
	_, err = execute(t, "build", path)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = execute(t, "build", path, "--store", "postgres")
	assert.ErrorContains(t, err, "unknown store driver")
}

const mixedTrialFile = `
items:
  - number: "3"
trials:
  - item_number: "3"
    index: 0
    fixations:
      - {start: 0, end: 100, char: 2, line: 0}
      - {start: 130, end: 200, char: 8, line: 0}
  - item_number: "3"
    index: -1
    fixations:
      - {start: 0, end: 100, char: 2, line: 0}
  - item_number: "9"
    index: 1
    fixations:
      - {start: 0, end: 100, char: 2, line: 0}
  - item_number: "3"
    index: 2
    fixations:
      - {start: 0, end: 100, char: 8, line: 0}
      - {start: 150, end: 200, char: 2, line: 0}
`

func TestBuild_SkipsFailingTrials(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mixed.yaml", mixedTrialFile)
	cfg := writeFile(t, dir, "sideeye.yaml", "store:\n  driver: file\n  path: "+filepath.Join(dir, "trials")+"\n")

	out, errOut, err := executeStreams(t, "build", path, "--config", cfg)
	require.Error(t, err)
	assert.ErrorContains(t, err, "2 of 4 trials failed")
	assert.ErrorContains(t, err, "index must be non-negative")
	assert.Contains(t, errOut, `error: field "trials[1].index": index must be non-negative`)
	assert.Contains(t, errOut, "error: trials[2]: ")
	assert.Contains(t, out, "3.0")
	assert.Contains(t, out, "3.2")

	out, err = execute(t, "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "- 3.0")
	assert.Contains(t, out, "- 3.2")
	assert.NotContains(t, out, "9.1")
}

func TestBuild_FailFast(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mixed.yaml", mixedTrialFile)
	cfg := writeFile(t, dir, "sideeye.yaml", "store:\n  driver: file\n  path: "+filepath.Join(dir, "trials")+"\n")

	_, _, err := executeStreams(t, "build", path, "--config", cfg, "--fail-fast")
	assert.ErrorContains(t, err, "index must be non-negative")

	out, err := execute(t, "list", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "- 3.0")
	assert.NotContains(t, out, "3.2")
}

func TestBuild_MemoryStoreNote(t *testing.T) {
	path := writeFile(t, t.TempDir(), "trial.yaml", trialFile)

	_, errOut, err := executeStreams(t, "build", path, "--json")
	require.NoError(t, err)
	assert.Contains(t, errOut, "memory store")

	cfg := writeFile(t, t.TempDir(), "sideeye.yaml", "store:\n  driver: file\n  path: "+filepath.Join(t.TempDir(), "trials")+"\n")
	_, errOut, err = executeStreams(t, "build", path, "--json", "--config", cfg)
	require.NoError(t, err)
	assert.NotContains(t, errOut, "memory store")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "trial.yaml", trialFile)
	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Input is valid!")

	path = writeFile(t, dir, "warn.yaml", `
item: {number: "1"}
fixations:
  - {start: 0, end: 100, duration: 90}
  - {start: 50, end: 120}
`)
	out, err = execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "duration differs from end - start")
	assert.Contains(t, out, "overlaps the previous one")

	path = writeFile(t, dir, "err.yaml", "fixations: []\n")
	_, err = execute(t, "validate", path)
	assert.ErrorContains(t, err, "validation failed")
}

func TestMeasure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("measure scripts use sh")
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "trial.yaml", trialFile)
	writeFile(t, dir, "measures.yaml", "measures:\n  - name: answer\n    command: sh\n    args: [\"-c\", \"echo 42\"]\n")
	cfg := writeFile(t, dir, "sideeye.yaml", "store:\n  driver: file\n  path: "+filepath.Join(dir, "trials")+
		"\nmeasures:\n  path: "+filepath.Join(dir, "measures.yaml")+"\n")

	_, err := execute(t, "build", path, "--config", cfg)
	require.NoError(t, err)

	out, err := execute(t, "measure", "3.0", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "answer")
	assert.Contains(t, out, "42")

	_, err = execute(t, "measure", "3.0")
	assert.ErrorContains(t, err, "no measures configured")
}
