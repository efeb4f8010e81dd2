package workflow

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
)

func twoScenes() []model.Scene {
	return []model.Scene{
		{ID: "scene-1", Text: "first", Keywords: []string{"first"}},
		{ID: "scene-2", Text: "second", Keywords: []string{"second"}},
	}
}

func item(source model.MediaSource, id string) model.MediaItem {
	return model.MediaItem{ID: id, Source: source, LargeURL: "https://example.com/" + id + ".jpg"}
}

func TestNewState(t *testing.T) {
	s := New("abc")
	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, model.StageScript, s.Stage)
	assert.Equal(t, model.DefaultRenderOptions(), s.Options)
	assert.False(t, s.IsComplete())
}

func TestWithAnalysis(t *testing.T) {
	s := New("abc")

	next, err := s.WithAnalysis("script text", twoScenes())
	require.NoError(t, err)
	assert.Equal(t, model.StageMedia, next.Stage)
	assert.Equal(t, "script text", next.Script)
	assert.Len(t, next.Scenes, 2)

	// Original value is untouched
	assert.Equal(t, model.StageScript, s.Stage)
	assert.Empty(t, s.Scenes)

	t.Run("no scenes is an error", func(t *testing.T) {
		_, err := s.WithAnalysis("", nil)
		assert.ErrorIs(t, err, ErrNoScenes)
	})

	t.Run("re-analysis discards previous work", func(t *testing.T) {
		withSel, err := next.WithSelection("scene-1", item(model.SourcePixabay, "1"))
		require.NoError(t, err)
		withCache := withSel.WithSearchResults(CacheKey{SceneID: "scene-1", Keyword: "x"}, nil)

		again, err := withCache.WithAnalysis("new text", twoScenes())
		require.NoError(t, err)
		assert.Empty(t, again.Selected)
		assert.Empty(t, again.SearchCache)
		assert.Nil(t, again.Output)
	})
}

func TestSelections(t *testing.T) {
	s := New("abc")
	s, err := s.WithAnalysis("a\n\nb", twoScenes())
	require.NoError(t, err)

	a := item(model.SourcePixabay, "1")
	b := item(model.SourcePexels, "1") // same id, different provider

	s, err = s.WithSelection("scene-1", a)
	require.NoError(t, err)
	s, err = s.WithSelection("scene-1", b)
	require.NoError(t, err)

	t.Run("identity is provider plus id", func(t *testing.T) {
		assert.True(t, s.IsSelected("scene-1", a))
		assert.True(t, s.IsSelected("scene-1", b))
		assert.False(t, s.IsSelected("scene-2", a))
	})

	t.Run("unknown scene rejected", func(t *testing.T) {
		_, err := s.WithSelection("scene-9", a)
		assert.ErrorIs(t, err, ErrUnknownScene)
	})

	t.Run("removal keeps order of the rest", func(t *testing.T) {
		three, err := s.WithSelection("scene-1", item(model.SourceUnsplash, "u1"))
		require.NoError(t, err)

		next, err := three.WithoutSelection("scene-1", 1)
		require.NoError(t, err)
		require.Len(t, next.Selected["scene-1"], 2)
		assert.Equal(t, model.SourcePixabay, next.Selected["scene-1"][0].Source)
		assert.Equal(t, model.SourceUnsplash, next.Selected["scene-1"][1].Source)

		// three is unchanged
		assert.Len(t, three.Selected["scene-1"], 3)
	})

	t.Run("removal bounds checked", func(t *testing.T) {
		_, err := s.WithoutSelection("scene-1", 5)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = s.WithoutSelection("scene-1", -1)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("complete needs every scene covered", func(t *testing.T) {
		assert.False(t, s.IsComplete())
		full, err := s.WithSelection("scene-2", item(model.SourcePixabay, "7"))
		require.NoError(t, err)
		assert.True(t, full.IsComplete())
	})
}

func TestSearchCache(t *testing.T) {
	s := New("abc")
	s, err := s.WithAnalysis("a\n\nb", twoScenes())
	require.NoError(t, err)

	key := CacheKey{SceneID: "scene-1", Keyword: "sunset"}
	_, ok := s.CachedResults(key)
	assert.False(t, ok)

	results := []model.MediaItem{item(model.SourcePixabay, "9")}
	s = s.WithSearchResults(key, results)

	got, ok := s.CachedResults(key)
	require.True(t, ok)
	assert.Equal(t, results, got)

	// An empty result set is still a cache hit
	empty := CacheKey{SceneID: "scene-1", Keyword: "nothing"}
	s = s.WithSearchResults(empty, nil)
	_, ok = s.CachedResults(empty)
	assert.True(t, ok)
}

func TestOptionsAndRenderTransitions(t *testing.T) {
	s := New("abc")

	t.Run("options refused at script stage", func(t *testing.T) {
		_, err := s.WithOptions(model.DefaultRenderOptions())
		var wrong *WrongStageError
		assert.True(t, errors.As(err, &wrong))
	})

	s, err := s.WithAnalysis("a\n\nb", twoScenes())
	require.NoError(t, err)

	t.Run("options refused while incomplete", func(t *testing.T) {
		_, err := s.WithOptions(model.DefaultRenderOptions())
		assert.ErrorIs(t, err, ErrIncompleteSelection)
	})

	s, err = s.WithSelection("scene-1", item(model.SourcePixabay, "1"))
	require.NoError(t, err)
	s, err = s.WithSelection("scene-2", item(model.SourcePixabay, "2"))
	require.NoError(t, err)

	opts := model.RenderOptions{SecondsPerScene: 4, AddTitle: true, BGM: "calm.mp3"}
	s, err = s.WithOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, model.StageOptions, s.Stage)
	assert.Equal(t, opts, s.Options)

	t.Run("render output advances and overwrites", func(t *testing.T) {
		first := s.WithOutput(model.RenderedVideo{FilePath: "/out/a.mp4", SizeBytes: 100})
		assert.Equal(t, model.StageDownload, first.Stage)

		second := first.WithOutput(model.RenderedVideo{FilePath: "/out/a.mp4", SizeBytes: 250})
		assert.EqualValues(t, 250, second.Output.SizeBytes)
	})
}

func TestBack(t *testing.T) {
	s := New("abc")
	s, err := s.WithAnalysis("a\n\nb", twoScenes())
	require.NoError(t, err)

	t.Run("forward jump refused", func(t *testing.T) {
		_, err := s.Back(model.StageOptions)
		var wrong *WrongStageError
		assert.True(t, errors.As(err, &wrong))
	})

	t.Run("same stage refused", func(t *testing.T) {
		_, err := s.Back(model.StageMedia)
		assert.Error(t, err)
	})

	t.Run("earlier stage keeps work", func(t *testing.T) {
		withSel, err := s.WithSelection("scene-1", item(model.SourcePixabay, "1"))
		require.NoError(t, err)

		back, err := withSel.Back(model.StageScript)
		require.NoError(t, err)
		assert.Equal(t, model.StageScript, back.Stage)
		assert.Len(t, back.Selected["scene-1"], 1)
		assert.Len(t, back.Scenes, 2)
	})

	t.Run("invalid stage refused", func(t *testing.T) {
		_, err := s.Back(model.Stage("nonsense"))
		assert.Error(t, err)
	})
}

func TestCacheKeyText(t *testing.T) {
	key := CacheKey{SceneID: "scene-1", Keyword: "cats & dogs"}

	text, err := key.MarshalText()
	require.NoError(t, err)

	var back CacheKey
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, key, back)

	t.Run("state round-trips through JSON", func(t *testing.T) {
		s := New("abc")
		s, err := s.WithAnalysis("a\n\nb", twoScenes())
		require.NoError(t, err)
		s = s.WithSearchResults(key, []model.MediaItem{item(model.SourcePexels, "3")})

		data, err := json.Marshal(s)
		require.NoError(t, err)

		var decoded State
		require.NoError(t, json.Unmarshal(data, &decoded))
		got, ok := decoded.CachedResults(key)
		require.True(t, ok)
		assert.Equal(t, "3", got[0].ID)
	})

	t.Run("malformed text rejected", func(t *testing.T) {
		var k CacheKey
		assert.Error(t, k.UnmarshalText([]byte("no-separator")))
	})
}
