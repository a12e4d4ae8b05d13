package tasks_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizharvest/quizharvest/internal/tasks"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tasks.json")
	list := []tasks.Task{
		{Link: "https://example.com/a", Label: "mock-a", Status: tasks.StatusPending},
		{Link: "https://example.com/b", Label: "mock-b", Status: tasks.StatusCompleted, File: "output/b.json"},
	}
	require.NoError(t, tasks.Save(path, list))

	got, err := tasks.Load(path)
	require.NoError(t, err)
	assert.Equal(t, list, got)
}

func TestNormalizeLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"bare test url gains the analysis suffix",
			"https://testbook.com/TS-ssc-cgl/tests/5f4a9b3c2d1e0f",
			"https://testbook.com/TS-ssc-cgl/tests/5f4a9b3c2d1e0f/analysis?attemptNo=1",
		},
		{
			"existing suffix is rebuilt, not doubled",
			"https://testbook.com/TS-ssc-cgl/tests/5f4a9b3c2d1e0f/analysis?attemptNo=1",
			"https://testbook.com/TS-ssc-cgl/tests/5f4a9b3c2d1e0f/analysis?attemptNo=1",
		},
		{
			"solutions view collapses to the canonical form",
			"https://testbook.com/TS-ssc-cgl/tests/5f4a9b3c2d1e0f/solutions?ref=home",
			"https://testbook.com/TS-ssc-cgl/tests/5f4a9b3c2d1e0f/analysis?attemptNo=1",
		},
		{
			"unrecognized links pass through unchanged",
			"https://example.com/some/other/page",
			"https://example.com/some/other/page",
		},
		{
			"empty link passes through",
			"",
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tasks.NormalizeLink(tt.in))
		})
	}
}

func TestLoadNormalizesLinks(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tasks.json")
	list := []tasks.Task{{
		Link:   "https://testbook.com/TS-ssc-cgl/tests/abc123/solutions",
		Label:  "mock-a",
		Status: tasks.StatusPending,
	}}
	require.NoError(t, tasks.Save(path, list))

	got, err := tasks.Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://testbook.com/TS-ssc-cgl/tests/abc123/analysis?attemptNo=1", got[0].Link)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	primary := t.TempDir()
	secondary := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(primary, "present.json"), []byte("[]"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(secondary, "archived.json"), []byte("[]"), 0644))

	list := []tasks.Task{
		{Label: "ok", Status: tasks.StatusCompleted, File: "output/present.json"},
		{Label: "moved", Status: tasks.StatusCompleted, File: "output/archived.json"},
		{Label: "gone", Status: tasks.StatusCompleted, File: "output/missing.json"},
		{Label: "untouched", Status: tasks.StatusFailed},
	}

	demoted := tasks.Validate(list, primary, secondary)
	assert.Equal(t, 1, demoted)

	assert.Equal(t, tasks.StatusCompleted, list[0].Status)
	assert.Equal(t, tasks.StatusCompleted, list[1].Status, "file present in the secondary location stays COMPLETED")
	assert.Equal(t, tasks.StatusPending, list[2].Status)
	assert.Empty(t, list[2].File)
	assert.Equal(t, tasks.StatusFailed, list[3].Status)
}
