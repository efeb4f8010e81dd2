package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/composer"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/config"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/script"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/session"
	"github.com/oldtraffrod/tiktok-videogenerator/internal/workflow"
)

// Searcher fans a keyword out to the configured stock providers
type Searcher interface {
	Search(ctx context.Context, keyword string, perPage int) []model.MediaItem
}

// Downloader fetches a remote asset to a local path
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Renderer turns a clip plan into a single video file
type Renderer interface {
	Render(ctx context.Context, plan composer.Plan, bgmPath, outPath string, progress composer.ProgressFunc) error
}

// Notifier pushes advisory progress to session subscribers
type Notifier interface {
	BroadcastStage(sessionID string, stage model.Stage)
	BroadcastProgress(sessionID, step string, progress int)
	BroadcastComplete(sessionID string, result interface{})
	BroadcastError(sessionID, code, message string)
}

// WorkflowService sequences the wizard: analyze, search, select, options,
// render, output. All state lives in the session store; every action loads
// the state, applies a transition and saves the result. A per-session mutex
// serializes concurrent actions on the same session.
type WorkflowService struct {
	store      session.Store
	analyzer   *script.Analyzer
	searcher   Searcher
	downloader Downloader
	renderer   Renderer
	hub        Notifier
	storage    config.StorageConfig
	perPage    int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewWorkflowService(
	store session.Store,
	analyzer *script.Analyzer,
	searcher Searcher,
	downloader Downloader,
	renderer Renderer,
	hub Notifier,
	storage config.StorageConfig,
	perPage int,
) *WorkflowService {
	return &WorkflowService{
		store:      store,
		analyzer:   analyzer,
		searcher:   searcher,
		downloader: downloader,
		renderer:   renderer,
		hub:        hub,
		storage:    storage,
		perPage:    perPage,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *WorkflowService) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// CreateSession starts a fresh wizard session
func (s *WorkflowService) CreateSession(ctx context.Context) (*workflow.State, error) {
	state := workflow.New(uuid.NewString())
	if err := s.store.Save(ctx, &state); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return &state, nil
}

// GetState loads the current session state
func (s *WorkflowService) GetState(ctx context.Context, sessionID string) (*workflow.State, error) {
	return s.store.Get(ctx, sessionID)
}

// Reset discards all progress and returns the session to script entry
func (s *WorkflowService) Reset(ctx context.Context, sessionID string) (*workflow.State, error) {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	if _, err := s.store.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	state := workflow.New(sessionID)
	if err := s.store.Save(ctx, &state); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.RemoveSessionFiles(sessionID)
	s.hub.BroadcastStage(sessionID, state.Stage)
	return &state, nil
}

// Back returns the wizard to an earlier stage without discarding work
func (s *WorkflowService) Back(ctx context.Context, sessionID string, target model.Stage) (*workflow.State, error) {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	next, err := state.Back(target)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.hub.BroadcastStage(sessionID, next.Stage)
	return &next, nil
}

// Analyze splits the script into scenes with keywords and advances the
// session to media selection. Re-analyzing discards previous selections.
func (s *WorkflowService) Analyze(ctx context.Context, sessionID, scriptText string) (*workflow.State, error) {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	scenes := s.analyzer.Analyze(scriptText)
	next, err := state.WithAnalysis(scriptText, scenes)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.hub.BroadcastStage(sessionID, next.Stage)
	return &next, nil
}

// Search returns stock media for a keyword, from the session cache when the
// same (scene, keyword) pair was searched before.
func (s *WorkflowService) Search(ctx context.Context, sessionID, sceneID, keyword string) ([]model.MediaItem, bool, error) {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if state.Stage == model.StageScript {
		return nil, false, &workflow.WrongStageError{Current: state.Stage, Required: model.StageMedia}
	}
	if _, ok := state.SceneByID(sceneID); !ok {
		return nil, false, workflow.ErrUnknownScene
	}

	key := workflow.CacheKey{SceneID: sceneID, Keyword: keyword}
	if cached, ok := state.CachedResults(key); ok {
		return cached, true, nil
	}

	results := s.searcher.Search(ctx, keyword, s.perPage)
	next := state.WithSearchResults(key, results)
	if err := s.store.Save(ctx, &next); err != nil {
		return nil, false, fmt.Errorf("failed to save session: %w", err)
	}
	return results, false, nil
}

// Select downloads a search result and registers it for the scene. Picking
// an item that is already registered is a no-op, not an error.
func (s *WorkflowService) Select(ctx context.Context, sessionID, sceneID string, item model.MediaItem) (*workflow.State, bool, error) {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if state.Stage == model.StageScript {
		return nil, false, &workflow.WrongStageError{Current: state.Stage, Required: model.StageMedia}
	}
	if _, ok := state.SceneByID(sceneID); !ok {
		return nil, false, workflow.ErrUnknownScene
	}
	if state.IsSelected(sceneID, item) {
		return state, true, nil
	}

	src := downloadURL(item)
	if src == "" {
		return nil, false, fmt.Errorf("%w: item has no downloadable URL", workflow.ErrDownloadFailed)
	}
	dest := filepath.Join(s.storage.MediaDir, sessionID, uuid.NewString()+extensionOf(src))
	if err := s.downloader.Download(ctx, src, dest); err != nil {
		log.Printf("[media] download failed for %s/%s: %v", item.Source, item.ID, err)
		return nil, false, fmt.Errorf("%w: %v", workflow.ErrDownloadFailed, err)
	}
	item.LocalPath = dest

	next, err := state.WithSelection(sceneID, item)
	if err != nil {
		os.Remove(dest)
		return nil, false, err
	}
	if err := s.store.Save(ctx, &next); err != nil {
		return nil, false, fmt.Errorf("failed to save session: %w", err)
	}
	return &next, false, nil
}

// Remove drops the selected item at the given position for a scene
func (s *WorkflowService) Remove(ctx context.Context, sessionID, sceneID string, index int) (*workflow.State, error) {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	removed := ""
	if items := state.Selected[sceneID]; index >= 0 && index < len(items) {
		removed = items[index].LocalPath
	}
	next, err := state.WithoutSelection(sceneID, index)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	if removed != "" {
		os.Remove(removed)
	}
	return &next, nil
}

// ListBGM enumerates the background tracks bundled with the server
func (s *WorkflowService) ListBGM() ([]string, error) {
	entries, err := os.ReadDir(s.storage.AudioDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audio dir: %w", err)
	}
	var tracks []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".mp3") {
			continue
		}
		tracks = append(tracks, e.Name())
	}
	sort.Strings(tracks)
	return tracks, nil
}

// SetOptions stores the render settings and advances to the options stage
func (s *WorkflowService) SetOptions(ctx context.Context, sessionID string, opts model.RenderOptions) (*workflow.State, error) {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if opts.BGM != "" {
		if _, err := s.bgmPath(opts.BGM); err != nil {
			return nil, err
		}
	}
	next, err := state.WithOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.hub.BroadcastStage(sessionID, next.Stage)
	return &next, nil
}

// Render composes the final video synchronously. A re-render overwrites the
// previous output file.
func (s *WorkflowService) Render(ctx context.Context, sessionID string) (*workflow.State, error) {
	l := s.lockFor(sessionID)
	l.Lock()
	defer l.Unlock()

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Stage != model.StageOptions && state.Stage != model.StageDownload {
		return nil, &workflow.WrongStageError{Current: state.Stage, Required: model.StageOptions}
	}
	if !state.IsComplete() {
		return nil, workflow.ErrIncompleteSelection
	}

	bgm := ""
	if state.Options.BGM != "" {
		bgm, err = s.bgmPath(state.Options.BGM)
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(s.storage.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	outPath, err := filepath.Abs(filepath.Join(s.storage.OutputDir, sessionID+".mp4"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output path: %w", err)
	}

	plan := composer.BuildPlan(state.Scenes, state.Selected, state.Options)
	progress := func(step string, done, total int) {
		pct := 0
		if total > 0 {
			pct = done * 100 / total
		}
		s.hub.BroadcastProgress(sessionID, step, pct)
	}
	if err := s.renderer.Render(ctx, plan, bgm, outPath, progress); err != nil {
		s.hub.BroadcastError(sessionID, "RENDER_FAILED", err.Error())
		return nil, fmt.Errorf("%w: %v", workflow.ErrRenderFailed, err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("rendered file missing: %w", err)
	}
	next := state.WithOutput(model.RenderedVideo{
		FilePath:  outPath,
		SizeBytes: info.Size(),
	})
	if err := s.store.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.hub.BroadcastComplete(sessionID, next.Output)
	s.hub.BroadcastStage(sessionID, next.Stage)
	return &next, nil
}

// Output returns the rendered video for download. A missing file sends the
// caller back to the render stage.
func (s *WorkflowService) Output(ctx context.Context, sessionID string) (*model.RenderedVideo, error) {
	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Stage != model.StageDownload || state.Output == nil {
		return nil, workflow.ErrNoOutput
	}
	if _, err := os.Stat(state.Output.FilePath); err != nil {
		return nil, workflow.ErrNoOutput
	}
	return state.Output, nil
}

// CleanupSession tears down an expired session: its files go, and so does
// its lock entry. Reset keeps the lock because the session lives on.
func (s *WorkflowService) CleanupSession(sessionID string) {
	s.RemoveSessionFiles(sessionID)
	s.mu.Lock()
	delete(s.locks, sessionID)
	s.mu.Unlock()
}

// RemoveSessionFiles deletes a session's downloaded media and rendered
// output. Called on reset and by the janitor for expired sessions.
func (s *WorkflowService) RemoveSessionFiles(sessionID string) {
	if sessionID == "" {
		return
	}
	if err := os.RemoveAll(filepath.Join(s.storage.MediaDir, sessionID)); err != nil {
		log.Printf("[cleanup] media dir for %s: %v", sessionID, err)
	}
	if err := os.Remove(filepath.Join(s.storage.OutputDir, sessionID+".mp4")); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[cleanup] output for %s: %v", sessionID, err)
	}
}

func (s *WorkflowService) bgmPath(name string) (string, error) {
	// The track name comes from client input; keep it inside the audio dir.
	if name != filepath.Base(name) {
		return "", workflow.ErrBGMNotFound
	}
	p := filepath.Join(s.storage.AudioDir, name)
	if _, err := os.Stat(p); err != nil {
		return "", workflow.ErrBGMNotFound
	}
	return p, nil
}

// downloadURL picks the asset to fetch on selection. The medium rendition
// is the render source; larger or smaller sizes are fallbacks only.
func downloadURL(item model.MediaItem) string {
	switch {
	case item.MediumURL != "":
		return item.MediumURL
	case item.LargeURL != "":
		return item.LargeURL
	default:
		return item.PreviewURL
	}
}

func extensionOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || len(ext) > 5 {
		return ".jpg"
	}
	return ext
}
