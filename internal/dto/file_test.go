package dto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const batchYAML = `
items:
  - number: "1"
    condition: a
    regions:
      - number: 1
        start: {char: 0, line: 0}
        end: {char: 10, line: 0}
trials:
  - index: 0
    item_number: "1"
    time: 500
    options:
      include_fixation: true
    fixations:
      - {start: 0, end: 100, char: 1, line: 0}
      - {start: 120, end: 140, excluded: true}
      - {start: 150, end: 250, char: 5, line: 0, duration: 99}
`

func TestDecode_Batch(t *testing.T) {
	file, err := Decode([]byte(batchYAML))
	require.NoError(t, err)

	require.Len(t, file.Items, 1)
	assert.Equal(t, "1", file.Items[0].Number)
	assert.Equal(t, domain.NewPoint(10, 0), file.Items[0].Regions[0].End)

	require.Len(t, file.Trials, 1)
	in := file.Trials[0]
	require.NotNil(t, in.Time)
	assert.Equal(t, 500, *in.Time)
	require.NotNil(t, in.Options)
	assert.True(t, in.Options.IncludeFixation)

	req := in.ToRequest()
	require.Len(t, req.Fixations, 3)
	assert.Equal(t, 100, req.Fixations[0].Duration)
	assert.True(t, req.Fixations[1].Excluded)
	assert.Nil(t, req.Fixations[1].Char)
	assert.Equal(t, 99, req.Fixations[2].Duration, "explicit duration wins")
	assert.Equal(t, "1", req.ItemNumber)
}

func TestDecode_SingleJSON(t *testing.T) {
	data := `{"index": 2, "item": {"number": "7", "regions": [{"number": 4, "start": {"char": 0, "line": 0}, "end": {"char": 9, "line": 0}}]}, "fixations": [{"start": 0, "end": 80, "char": 3, "line": 0, "region": 4}]}`

	file, err := Decode([]byte(data))
	require.NoError(t, err)
	require.Len(t, file.Trials, 1)

	req := file.Trials[0].ToRequest()
	assert.Equal(t, 2, req.Index)
	require.NotNil(t, req.Item)
	require.NotNil(t, req.Fixations[0].Region)
	assert.Equal(t, 4, req.Fixations[0].Region.Number)
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	_, err := Decode([]byte("index: 0\nfixation: []\n"))
	assert.Error(t, err)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte("trials: [\n"))
	assert.ErrorContains(t, err, "failed to parse trial file")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trials.yaml")
	require.NoError(t, os.WriteFile(path, []byte(batchYAML), 0644))

	file, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, file.Trials, 1)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromFixation(t *testing.T) {
	region := &domain.Region{Number: 3}
	f := domain.NewFixation(domain.NewPoint(4, 1), 10, 60, region)

	in := FromFixation(f)
	assert.Equal(t, 50, *in.Duration)
	assert.Equal(t, 4, *in.Char)
	assert.Equal(t, 3, *in.Region)

	back := in.ToFixation()
	assert.Equal(t, f.Start, back.Start)
	assert.Equal(t, f.Duration, back.Duration)
	assert.Equal(t, *f.Char, *back.Char)
}

func TestEncode(t *testing.T) {
	out, err := Encode(TrialInput{Index: 1, Fixations: []FixationInput{{Start: 0, End: 10}}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "index: 1")
	assert.Contains(t, string(out), "fixations:")
}
