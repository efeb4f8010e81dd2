package model

// MediaSource identifies the stock-media provider an item came from
type MediaSource string

const (
	SourcePixabay  MediaSource = "pixabay"
	SourcePexels   MediaSource = "pexels"
	SourceUnsplash MediaSource = "unsplash"
)

var ValidSources = []MediaSource{
	SourcePixabay, SourcePexels, SourceUnsplash,
}

// Stage is one step of the four-stage wizard
type Stage string

const (
	StageScript   Stage = "script"
	StageMedia    Stage = "media"
	StageOptions  Stage = "options"
	StageDownload Stage = "download"
)

// stageOrder maps stages to their position in the wizard
var stageOrder = map[Stage]int{
	StageScript:   1,
	StageMedia:    2,
	StageOptions:  3,
	StageDownload: 4,
}

// Valid reports whether s is a known wizard stage
func (s Stage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Before reports whether s comes before other in the wizard order
func (s Stage) Before(other Stage) bool {
	return stageOrder[s] < stageOrder[other]
}
