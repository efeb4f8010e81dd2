package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/composer"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/config"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/script"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/session"
)

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, keyword string, perPage int) []model.MediaItem {
	return nil
}

type recordingDownloader struct {
	urls []string
}

func (d *recordingDownloader) Download(ctx context.Context, url, dest string) error {
	d.urls = append(d.urls, url)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("media"), 0o644)
}

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, plan composer.Plan, bgmPath, outPath string, progress composer.ProgressFunc) error {
	return os.WriteFile(outPath, []byte("mp4"), 0o644)
}

type stubNotifier struct{}

func (stubNotifier) BroadcastStage(string, model.Stage)    {}
func (stubNotifier) BroadcastProgress(string, string, int) {}
func (stubNotifier) BroadcastComplete(string, interface{}) {}
func (stubNotifier) BroadcastError(string, string, string) {}

func newTestService(t *testing.T) (*WorkflowService, *recordingDownloader) {
	t.Helper()

	base := t.TempDir()
	storage := config.StorageConfig{
		MediaDir:  filepath.Join(base, "media"),
		OutputDir: filepath.Join(base, "output"),
		AudioDir:  filepath.Join(base, "audio"),
	}
	downloader := &recordingDownloader{}
	svc := NewWorkflowService(
		session.NewMemoryStore(time.Hour),
		script.NewAnalyzer(),
		stubSearcher{},
		downloader,
		stubRenderer{},
		stubNotifier{},
		storage,
		12,
	)
	return svc, downloader
}

func TestDownloadURL(t *testing.T) {
	item := model.MediaItem{
		PreviewURL: "https://img.example/preview.jpg",
		MediumURL:  "https://img.example/medium.jpg",
		LargeURL:   "https://img.example/large.jpg",
	}
	assert.Equal(t, item.MediumURL, downloadURL(item))

	item.MediumURL = ""
	assert.Equal(t, item.LargeURL, downloadURL(item))

	item.LargeURL = ""
	assert.Equal(t, item.PreviewURL, downloadURL(item))
}

func TestSelectFetchesMediumRendition(t *testing.T) {
	ctx := context.Background()
	svc, downloader := newTestService(t)

	state, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	state, err = svc.Analyze(ctx, state.ID, "Hello world.")
	require.NoError(t, err)
	require.NotEmpty(t, state.Scenes)

	item := model.MediaItem{
		ID:         "42",
		Source:     model.SourcePixabay,
		PreviewURL: "https://img.example/preview.jpg",
		MediumURL:  "https://img.example/medium.jpg",
		LargeURL:   "https://img.example/large.jpg",
	}
	_, already, err := svc.Select(ctx, state.ID, state.Scenes[0].ID, item)
	require.NoError(t, err)
	assert.False(t, already)

	require.Len(t, downloader.urls, 1)
	assert.Equal(t, item.MediumURL, downloader.urls[0])
}

func TestCleanupSessionFreesLock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	state, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = svc.Analyze(ctx, state.ID, "Hello world.")
	require.NoError(t, err)

	svc.mu.Lock()
	_, held := svc.locks[state.ID]
	svc.mu.Unlock()
	require.True(t, held)

	mediaDir := filepath.Join(svc.storage.MediaDir, state.ID)
	require.NoError(t, os.MkdirAll(mediaDir, 0o755))

	svc.CleanupSession(state.ID)

	svc.mu.Lock()
	_, held = svc.locks[state.ID]
	svc.mu.Unlock()
	assert.False(t, held)
	assert.NoDirExists(t, mediaDir)
}
