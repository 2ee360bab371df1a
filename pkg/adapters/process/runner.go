package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/aretw0/sideeye/pkg/registry"
)

// Runner computes measures by executing local processes.
// It follows a Strict Registry pattern for security (Allow-Listing): only registered
// commands run, and trial data reaches them on stdin, never as command-line flags.
//
// Protocol: the process receives the trial as JSON on stdin, plus SIDEEYE_MEASURE and,
// for region measures, SIDEEYE_REGION in its environment. It prints a number, or
// nothing / "NA" / "null" when the measure does not apply, or a JSON object
// {"value": 1.5, "calculated": true}.
type Runner struct {
	registry map[string]MeasureConfig
	baseDir  string
	timeout  time.Duration
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithRegistry populates the allow-list from a loaded config.
func WithRegistry(measures map[string]MeasureConfig) RunnerOption {
	return func(r *Runner) {
		for _, m := range measures {
			r.registry[m.Name] = m
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout bounds each process execution. Zero means no limit beyond the context.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]MeasureConfig),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted trial-level measure command to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.registry[name] = MeasureConfig{Name: name, Command: command, Args: args, Scope: ScopeTrial}
}

// RegisterRegion adds a trusted region-level measure command to the allow-list.
func (r *Runner) RegisterRegion(name string, command string, args ...string) {
	r.registry[name] = MeasureConfig{Name: name, Command: command, Args: args, Scope: ScopeRegion}
}

// Install registers every allow-listed command on reg under its measure name.
func (r *Runner) Install(reg *registry.Registry) {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if r.registry[name].Scope == ScopeRegion {
			reg.RegisterRegion(name, r.RegionMeasure(name))
		} else {
			reg.RegisterTrial(name, r.TrialMeasure(name))
		}
	}
}

// TrialMeasure adapts a registered command to a registry.TrialMeasure.
func (r *Runner) TrialMeasure(name string) registry.TrialMeasure {
	return func(ctx context.Context, t *domain.Trial) (float64, bool, error) {
		return r.Execute(ctx, name, t, nil)
	}
}

// RegionMeasure adapts a registered command to a registry.RegionMeasure.
func (r *Runner) RegionMeasure(name string) registry.RegionMeasure {
	return func(ctx context.Context, t *domain.Trial, region domain.Region) (float64, bool, error) {
		return r.Execute(ctx, name, t, &region)
	}
}

// Execute runs the named command over trial and parses its result.
func (r *Runner) Execute(ctx context.Context, name string, trial *domain.Trial, region *domain.Region) (float64, bool, error) {
	proc, ok := r.registry[name]
	if !ok {
		return 0, false, fmt.Errorf("process measure not registered: %s", name)
	}

	input, err := json.Marshal(trial)
	if err != nil {
		return 0, false, fmt.Errorf("failed to encode trial: %w", err)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = r.baseDir
	cmd.Stdin = bytes.NewReader(input)

	env := []string{"SIDEEYE_MEASURE=" + name}
	if region != nil {
		env = append(env, "SIDEEYE_REGION="+region.Key())
	}
	for k, v := range proc.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, false, fmt.Errorf("execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseOutput(stdout.String())
}

// parseOutput reads a measure value from process output.
func parseOutput(output string) (float64, bool, error) {
	trimmed := strings.TrimSpace(output)
	switch strings.ToLower(trimmed) {
	case "", "na", "null", "nan":
		return 0, false, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var result struct {
			Value      float64 `json:"value"`
			Calculated *bool   `json:"calculated"`
		}
		if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
			return 0, false, fmt.Errorf("invalid measure output %q: %w", trimmed, err)
		}
		calculated := result.Calculated == nil || *result.Calculated
		if !calculated {
			return 0, false, nil
		}
		return result.Value, true, nil
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid measure output %q: %w", trimmed, err)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false, fmt.Errorf("invalid measure output %q: value is not finite", trimmed)
	}
	return v, true, nil
}
