package workflow

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
)

// CacheKey identifies one search within a session by its value tuple.
// Text marshalling escapes both parts so keys never collide, whatever
// characters a keyword contains.
type CacheKey struct {
	SceneID string
	Keyword string
}

// MarshalText implements encoding.TextMarshaler so CacheKey can be used
// as a JSON map key when the state is serialized.
func (k CacheKey) MarshalText() ([]byte, error) {
	return []byte(url.QueryEscape(k.SceneID) + "&" + url.QueryEscape(k.Keyword)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *CacheKey) UnmarshalText(text []byte) error {
	parts := strings.SplitN(string(text), "&", 2)
	if len(parts) != 2 {
		return fmt.Errorf("malformed cache key %q", text)
	}
	sceneID, err := url.QueryUnescape(parts[0])
	if err != nil {
		return fmt.Errorf("malformed cache key %q: %w", text, err)
	}
	keyword, err := url.QueryUnescape(parts[1])
	if err != nil {
		return fmt.Errorf("malformed cache key %q: %w", text, err)
	}
	k.SceneID = sceneID
	k.Keyword = keyword
	return nil
}

// State is the owned, serializable record of one wizard session. Stage
// transitions produce a new State value; callers load, transition and save.
type State struct {
	ID          string                         `json:"id"`
	Stage       model.Stage                    `json:"stage"`
	Script      string                         `json:"script,omitempty"`
	Scenes      []model.Scene                  `json:"scenes,omitempty"`
	Selected    map[string][]model.MediaItem   `json:"selected,omitempty"`
	SearchCache map[CacheKey][]model.MediaItem `json:"searchCache,omitempty"`
	Options     model.RenderOptions            `json:"options"`
	Output      *model.RenderedVideo           `json:"output,omitempty"`
	CreatedAt   time.Time                      `json:"createdAt"`
	UpdatedAt   time.Time                      `json:"updatedAt"`
}

// New creates a fresh session state at the script-entry stage
func New(id string) State {
	now := time.Now()
	return State{
		ID:          id,
		Stage:       model.StageScript,
		Selected:    make(map[string][]model.MediaItem),
		SearchCache: make(map[CacheKey][]model.MediaItem),
		Options:     model.DefaultRenderOptions(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// clone deep-copies the mutable parts so transitions never alias maps
// or slices with the state they were derived from.
func (s State) clone() State {
	out := s
	out.Selected = make(map[string][]model.MediaItem, len(s.Selected))
	for k, v := range s.Selected {
		out.Selected[k] = append([]model.MediaItem(nil), v...)
	}
	out.SearchCache = make(map[CacheKey][]model.MediaItem, len(s.SearchCache))
	for k, v := range s.SearchCache {
		out.SearchCache[k] = v
	}
	out.Scenes = append([]model.Scene(nil), s.Scenes...)
	if s.Output != nil {
		o := *s.Output
		out.Output = &o
	}
	out.UpdatedAt = time.Now()
	return out
}

// SceneByID returns the scene with the given id
func (s State) SceneByID(id string) (model.Scene, bool) {
	for _, sc := range s.Scenes {
		if sc.ID == id {
			return sc, true
		}
	}
	return model.Scene{}, false
}

// WithAnalysis installs a new script analysis and moves to media selection.
// Previous selections, cached searches and output are discarded: they were
// keyed to scene ids of the old analysis.
func (s State) WithAnalysis(script string, scenes []model.Scene) (State, error) {
	if len(scenes) == 0 {
		return s, ErrNoScenes
	}
	out := s.clone()
	out.Script = script
	out.Scenes = append([]model.Scene(nil), scenes...)
	out.Selected = make(map[string][]model.MediaItem)
	out.SearchCache = make(map[CacheKey][]model.MediaItem)
	out.Output = nil
	out.Stage = model.StageMedia
	return out, nil
}

// IsSelected reports whether an item with the same (source, id) identity
// is already registered for the scene.
func (s State) IsSelected(sceneID string, item model.MediaItem) bool {
	for _, sel := range s.Selected[sceneID] {
		if sel.SameIdentity(item) {
			return true
		}
	}
	return false
}

// WithSelection appends a downloaded item to the scene's ordered list.
// The item must already carry its LocalPath; duplicate identities are the
// caller's responsibility to filter via IsSelected.
func (s State) WithSelection(sceneID string, item model.MediaItem) (State, error) {
	if _, ok := s.SceneByID(sceneID); !ok {
		return s, ErrUnknownScene
	}
	out := s.clone()
	out.Selected[sceneID] = append(out.Selected[sceneID], item)
	return out, nil
}

// WithoutSelection removes the item at the given position. Later items keep
// their relative order; nothing is renumbered or merged.
func (s State) WithoutSelection(sceneID string, index int) (State, error) {
	if _, ok := s.SceneByID(sceneID); !ok {
		return s, ErrUnknownScene
	}
	items := s.Selected[sceneID]
	if index < 0 || index >= len(items) {
		return s, ErrIndexOutOfRange
	}
	out := s.clone()
	kept := append([]model.MediaItem(nil), items[:index]...)
	kept = append(kept, items[index+1:]...)
	out.Selected[sceneID] = kept
	return out, nil
}

// CachedResults returns the session-cached results for a search, if any
func (s State) CachedResults(key CacheKey) ([]model.MediaItem, bool) {
	results, ok := s.SearchCache[key]
	return results, ok
}

// WithSearchResults records provider results so a repeated search for the
// same (scene, keyword) pair costs no further network call this session.
func (s State) WithSearchResults(key CacheKey, results []model.MediaItem) State {
	out := s.clone()
	out.SearchCache[key] = results
	return out
}

// IsComplete reports whether every scene has at least one selected item
func (s State) IsComplete() bool {
	if len(s.Scenes) == 0 {
		return false
	}
	for _, sc := range s.Scenes {
		if len(s.Selected[sc.ID]) == 0 {
			return false
		}
	}
	return true
}

// WithOptions stores render settings and moves to the options stage.
// Media selection must be complete first.
func (s State) WithOptions(opts model.RenderOptions) (State, error) {
	if s.Stage == model.StageScript {
		return s, &WrongStageError{Current: s.Stage, Required: model.StageMedia}
	}
	if !s.IsComplete() {
		return s, ErrIncompleteSelection
	}
	out := s.clone()
	out.Options = opts
	out.Stage = model.StageOptions
	return out, nil
}

// WithOutput records a finished render and moves to the download stage.
// A re-render overwrites the previous output, it never merges.
func (s State) WithOutput(v model.RenderedVideo) State {
	out := s.clone()
	out.Output = &v
	out.Stage = model.StageDownload
	return out
}

// Back returns the wizard to an earlier stage without discarding work
func (s State) Back(target model.Stage) (State, error) {
	if !target.Valid() {
		return s, fmt.Errorf("invalid stage %q", target)
	}
	if !target.Before(s.Stage) {
		return s, &WrongStageError{Current: s.Stage, Required: target}
	}
	out := s.clone()
	out.Stage = target
	return out, nil
}
