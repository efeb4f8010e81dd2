package composer

import (
	"path/filepath"
	"strings"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
)

// Output geometry and timing for the 9:16 short-form format.
const (
	FrameWidth  = 1080
	FrameHeight = 1920
	FrameRate   = 30

	TextClipDuration = 3.0
	FadeDuration     = 0.5
	ZoomFactor       = 1.05
	BGMVolume        = 0.5

	MinSecondsPerScene = 3
	MaxSecondsPerScene = 10

	EndingText = "Thanks for watching!"
)

// SegmentKind tells the renderer how to turn a media slot into footage
type SegmentKind string

const (
	SegmentImage SegmentKind = "image"
	SegmentVideo SegmentKind = "video"
	SegmentBlack SegmentKind = "black"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
}

// Segment is one media slot inside a scene clip
type Segment struct {
	Kind     SegmentKind
	Source   string
	Duration float64
	Zoom     bool
}

// ScenePlan is the full clip for one scene: its segments back to back with
// the scene text overlaid as a caption.
type ScenePlan struct {
	SceneID  string
	Caption  string
	Duration float64
	Segments []Segment
}

// TextClip is a standalone title or ending card
type TextClip struct {
	Text     string
	Duration float64
}

// Plan is the complete clip sequence for a render, in playback order
type Plan struct {
	Title  *TextClip
	Scenes []ScenePlan
	Ending *TextClip
}

// TotalDuration returns the planned length of the final video in seconds
func (p Plan) TotalDuration() float64 {
	var total float64
	if p.Title != nil {
		total += p.Title.Duration
	}
	for _, s := range p.Scenes {
		total += s.Duration
	}
	if p.Ending != nil {
		total += p.Ending.Duration
	}
	return total
}

// ClipCount returns the number of top-level clips to concatenate
func (p Plan) ClipCount() int {
	n := len(p.Scenes)
	if p.Title != nil {
		n++
	}
	if p.Ending != nil {
		n++
	}
	return n
}

// ClampSeconds bounds a stored seconds-per-scene value to the valid range
func ClampSeconds(v int) int {
	if v < MinSecondsPerScene {
		return MinSecondsPerScene
	}
	if v > MaxSecondsPerScene {
		return MaxSecondsPerScene
	}
	return v
}

func classify(path string) (SegmentKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		return SegmentImage, true
	case videoExtensions[ext]:
		return SegmentVideo, true
	default:
		return "", false
	}
}

// BuildPlan maps scenes and their selected media to a clip sequence.
// Pure: no filesystem access, no ffmpeg, fully deterministic.
func BuildPlan(scenes []model.Scene, selected map[string][]model.MediaItem, opts model.RenderOptions) Plan {
	duration := float64(ClampSeconds(opts.SecondsPerScene))

	plan := Plan{}
	if opts.AddTitle && len(scenes) > 0 {
		plan.Title = &TextClip{Text: scenes[0].Text, Duration: TextClipDuration}
	}
	if opts.AddEnding {
		plan.Ending = &TextClip{Text: EndingText, Duration: TextClipDuration}
	}

	for _, scene := range scenes {
		sp := ScenePlan{
			SceneID:  scene.ID,
			Caption:  scene.Text,
			Duration: duration,
		}

		// Items whose downloaded file is neither a known image nor a known
		// video format are skipped rather than failing the render. The zoom
		// alternation follows the selection order, skipped items included,
		// so a skip does not flip the pattern for later items.
		for i, item := range selected[scene.ID] {
			kind, ok := classify(item.LocalPath)
			if !ok {
				continue
			}
			sp.Segments = append(sp.Segments, Segment{
				Kind:   kind,
				Source: item.LocalPath,
				Zoom:   kind == SegmentImage && i%2 == 0,
			})
		}

		if len(sp.Segments) == 0 {
			sp.Segments = []Segment{{
				Kind:     SegmentBlack,
				Duration: duration,
			}}
			plan.Scenes = append(plan.Scenes, sp)
			continue
		}

		per := duration / float64(len(sp.Segments))
		for j := range sp.Segments {
			sp.Segments[j].Duration = per
		}
		plan.Scenes = append(plan.Scenes, sp)
	}
	return plan
}
