package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/itsmingjie/sveltesociety.dev/internal/errors"
)

func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	root := a.rootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append([]string{
		"--data", dir,
		"--env-file", filepath.Join(dir, "missing.env"),
		"--env", "development",
		"--log-level", "error",
	}, args...))

	err := root.ExecuteContext(context.Background())
	a.shutdown()
	return out.String(), err
}

func TestCLI_SeedListGet(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrated")

	out, err = runCLI(t, dir, "seed")
	require.NoError(t, err)
	var seeded struct {
		Content map[string]string `json:"content"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &seeded))
	assert.Len(t, seeded.Content, 6)

	// Seeding again keeps the existing rows.
	out, err = runCLI(t, dir, "seed")
	require.NoError(t, err)
	var again struct {
		Content map[string]string `json:"content"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &again))
	assert.Equal(t, seeded.Content, again.Content)

	out, err = runCLI(t, dir, "list", "--tag", "sveltekit")
	require.NoError(t, err)
	var page struct {
		Items []struct {
			Slug string `json:"slug"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, 2, page.Total, "the draft is excluded by default")

	out, err = runCLI(t, dir, "get", "getting-started-with-state", "--type", "collection")
	require.NoError(t, err)
	var agg struct {
		ID       string `json:"id"`
		Children []struct {
			Slug string `json:"slug"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &agg))
	require.Len(t, agg.Children, 3)
	assert.Equal(t, "understanding-runes", agg.Children[0].Slug)

	out, err = runCLI(t, dir, "list", "--search", "crossfade")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "crossfade-page-transitions", page.Items[0].Slug)
}

func TestCLI_ErrorsCarryExitCodes(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "get", "content-missing")
	require.Error(t, err)
	assert.Equal(t, 4, domainerrors.CodeOf(err).ExitCode())

	_, err = runCLI(t, dir, "list", "--limit", "1000")
	require.Error(t, err)
	assert.Equal(t, 2, domainerrors.CodeOf(err).ExitCode())
}

func TestCLI_SyncAndReindex(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "seed")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "reindex")
	require.NoError(t, err)
	var res struct {
		Indexed int `json:"indexed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 6, res.Indexed)

	out, err = runCLI(t, dir, "sync")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Zero(t, res.Indexed)
}
