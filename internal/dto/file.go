package dto

import (
	"bytes"
	"fmt"
	"os"

	"github.com/aretw0/sideeye/pkg/domain"
	"gopkg.in/yaml.v3"
)

// TrialFile is the on-disk input format: an optional item catalogue followed by trials.
// JSON files are accepted too, since JSON is valid YAML.
type TrialFile struct {
	Items  []*domain.Item `json:"items,omitempty" yaml:"items,omitempty"`
	Trials []TrialInput   `json:"trials" yaml:"trials"`
}

// Decode parses a trial file. A document holding a single trial (no "trials" key) is
// accepted as a file with one trial.
func Decode(data []byte) (*TrialFile, error) {
	var probe map[string]any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse trial file: %w", err)
	}

	var file TrialFile
	if _, ok := probe["trials"]; ok {
		if err := decodeStrict(data, &file); err != nil {
			return nil, err
		}
		return &file, nil
	}

	var single TrialInput
	if err := decodeStrict(data, &single); err != nil {
		return nil, err
	}
	file.Trials = []TrialInput{single}
	return &file, nil
}

// ReadFile reads and decodes a trial file from disk.
func ReadFile(path string) (*TrialFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trial file: %w", err)
	}
	return Decode(data)
}

// Encode renders v as YAML.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeStrict(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode trial file: %w", err)
	}
	return nil
}
