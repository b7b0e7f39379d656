package manifest_test

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/raceda/internal/dataset"
	"github.com/KaramelBytes/raceda/internal/manifest"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	tdir := t.TempDir()
	in := filepath.Join(tdir, "Horses.csv")
	require.NoError(t, os.WriteFile(in, []byte("Won\n1\n"), 0o644))

	out := filepath.Join(tdir, "out")
	m := manifest.New(in, out)
	_, err := uuid.Parse(m.ID)
	require.NoError(t, err)
	require.NoError(t, m.Fingerprint())
	m.Rows, m.Cols = 1, 1
	m.Clean = &dataset.CleanReport{Dropped: []string{"Hood"}, DateFailures: 2}
	require.NoError(t, m.WriteArtifact("win_loss", "win_loss.png", "png", func(w io.Writer) error {
		_, err := w.Write([]byte("png"))
		return err
	}))
	require.NoError(t, m.Save())

	back, err := manifest.Load(out)
	require.NoError(t, err)
	assert.Equal(t, m.ID, back.ID)
	assert.Equal(t, m.Checksum, back.Checksum)
	assert.Len(t, back.Checksum, 16)
	assert.Equal(t, 2, back.Clean.DateFailures)
	assert.Equal(t, []manifest.Artifact{{Name: "win_loss", File: "win_loss.png", Kind: "png"}}, back.Artifacts)
	assert.Equal(t, out, back.Dir())

	raw, err := os.ReadFile(filepath.Join(out, manifest.FileName))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"dir"`)

	b, err := os.ReadFile(filepath.Join(out, "win_loss.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(b))
}

func TestChecksumIsStable(t *testing.T) {
	a, err := manifest.Checksum(strings.NewReader("HorseID,Won\n1,1\n"))
	require.NoError(t, err)
	b, err := manifest.Checksum(strings.NewReader("HorseID,Won\n1,1\n"))
	require.NoError(t, err)
	c, err := manifest.Checksum(strings.NewReader("HorseID,Won\n1,0\n"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestAddReplacesByName(t *testing.T) {
	m := manifest.New("in.csv", t.TempDir())
	m.Add("profile", "profile.md", "markdown")
	m.Add("profile", "profile.txt", "text")
	assert.Equal(t, []manifest.Artifact{{Name: "profile", File: "profile.txt", Kind: "text"}}, m.Artifacts)
}

func TestFailedArtifactLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	m := manifest.New("in.csv", dir)
	boom := errors.New("boom")
	err := m.WriteArtifact("heatmap", "heatmap.png", "png", func(io.Writer) error { return boom })
	require.ErrorIs(t, err, boom)
	_, statErr := os.Stat(filepath.Join(dir, "heatmap.png"))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
	assert.Empty(t, m.Artifacts)
	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestLoadMissing(t *testing.T) {
	_, err := manifest.Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
