package janitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/config"
)

type fakePurger struct {
	ids []string
}

func (f *fakePurger) Purge(now time.Time) []string { return f.ids }

func TestSweep(t *testing.T) {
	base := t.TempDir()
	storage := config.StorageConfig{
		MediaDir:  filepath.Join(base, "media"),
		OutputDir: filepath.Join(base, "output"),
	}
	require.NoError(t, os.MkdirAll(storage.MediaDir, 0o755))
	require.NoError(t, os.MkdirAll(storage.OutputDir, 0o755))

	old := time.Now().Add(-48 * time.Hour)

	staleDir := filepath.Join(storage.MediaDir, "stale-session")
	require.NoError(t, os.MkdirAll(staleDir, 0o755))
	require.NoError(t, os.Chtimes(staleDir, old, old))

	freshDir := filepath.Join(storage.MediaDir, "fresh-session")
	require.NoError(t, os.MkdirAll(freshDir, 0o755))

	staleOut := filepath.Join(storage.OutputDir, "stale.mp4")
	require.NoError(t, os.WriteFile(staleOut, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(staleOut, old, old))

	freshOut := filepath.Join(storage.OutputDir, "fresh.mp4")
	require.NoError(t, os.WriteFile(freshOut, []byte("x"), 0o644))

	// Non-video files are never touched
	keep := filepath.Join(storage.OutputDir, "notes.txt")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(keep, old, old))

	var cleaned []string
	j := New(
		config.JanitorConfig{Schedule: "@every 1h", MaxAgeHours: 24},
		storage,
		&fakePurger{ids: []string{"expired-1"}},
		func(id string) { cleaned = append(cleaned, id) },
	)

	j.Sweep()

	assert.Equal(t, []string{"expired-1"}, cleaned)
	assert.NoDirExists(t, staleDir)
	assert.DirExists(t, freshDir)
	assert.NoFileExists(t, staleOut)
	assert.FileExists(t, freshOut)
	assert.FileExists(t, keep)
}

func TestStartStop(t *testing.T) {
	j := New(
		config.JanitorConfig{Schedule: "@every 1h", MaxAgeHours: 24},
		config.StorageConfig{},
		nil,
		func(string) {},
	)
	require.NoError(t, j.Start())
	j.Stop()

	t.Run("bad schedule", func(t *testing.T) {
		bad := New(config.JanitorConfig{Schedule: "not a cron spec"}, config.StorageConfig{}, nil, func(string) {})
		assert.Error(t, bad.Start())
	})
}
