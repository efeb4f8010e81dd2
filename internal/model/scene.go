package model

// Scene is one blank-line-delimited unit of the input script.
// Immutable once created; the ID is unique within one analysis.
type Scene struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Keywords []string `json:"keywords"`
}

// MediaItem is a normalized reference to one asset from a stock provider.
// Identity is (Source, ID); two providers may hand out the same numeric id.
// LocalPath is set only after the item has been downloaded.
type MediaItem struct {
	ID         string      `json:"id"`
	Source     MediaSource `json:"source"`
	PreviewURL string      `json:"previewUrl,omitempty"`
	MediumURL  string      `json:"mediumUrl,omitempty"`
	LargeURL   string      `json:"largeUrl,omitempty"`
	Width      int         `json:"width,omitempty"`
	Height     int         `json:"height,omitempty"`
	LocalPath  string      `json:"localPath,omitempty"`
}

// SameIdentity reports whether two items refer to the same provider asset
func (m MediaItem) SameIdentity(other MediaItem) bool {
	return m.Source == other.Source && m.ID == other.ID
}

// RenderOptions holds the user-tunable render settings
type RenderOptions struct {
	SecondsPerScene int    `json:"secondsPerScene" validate:"required,min=3,max=10"`
	AddTitle        bool   `json:"addTitle"`
	AddEnding       bool   `json:"addEnding"`
	BGM             string `json:"bgm,omitempty"`
}

// DefaultRenderOptions mirrors the wizard's initial settings
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		SecondsPerScene: 5,
		AddTitle:        true,
		AddEnding:       true,
	}
}

// RenderedVideo describes one successful render; overwritten on re-render
type RenderedVideo struct {
	FilePath  string `json:"filePath"`
	SizeBytes int64  `json:"sizeBytes"`
}
