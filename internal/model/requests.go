package model

// AnalyzeRequest carries the raw script for stage one
type AnalyzeRequest struct {
	Script string `json:"script" validate:"required"`
}

// AnalyzeResponse returns the scenes and per-scene keywords
type AnalyzeResponse struct {
	Scenes []Scene `json:"scenes"`
	Stage  Stage   `json:"stage"`
}

// SearchRequest asks for stock media matching a keyword for one scene
type SearchRequest struct {
	SceneID string `json:"sceneId" validate:"required"`
	Keyword string `json:"keyword" validate:"required"`
}

// SearchResponse returns the (possibly cached) provider results
type SearchResponse struct {
	SceneID string      `json:"sceneId"`
	Keyword string      `json:"keyword"`
	Results []MediaItem `json:"results"`
	Cached  bool        `json:"cached"`
}

// SelectRequest registers one search result for a scene
type SelectRequest struct {
	SceneID string    `json:"sceneId" validate:"required"`
	Item    MediaItem `json:"item" validate:"required"`
}

// SelectResponse reports the outcome of a selection
type SelectResponse struct {
	SceneID         string      `json:"sceneId"`
	AlreadySelected bool        `json:"alreadySelected"`
	Selected        []MediaItem `json:"selected"`
}

// SelectedResponse lists all selections and overall completeness
type SelectedResponse struct {
	Selected map[string][]MediaItem `json:"selected"`
	Complete bool                   `json:"complete"`
}

// BackRequest returns the wizard to an earlier stage
type BackRequest struct {
	Stage Stage `json:"stage" validate:"required"`
}

// SessionResponse is returned when a session is created
type SessionResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
	Stage     Stage  `json:"stage"`
}

// StageResponse reports the session's current stage
type StageResponse struct {
	Stage Stage `json:"stage"`
}

// BGMListResponse lists the background tracks available for mixing
type BGMListResponse struct {
	Tracks []string `json:"tracks"`
}

// RenderResponse is returned by a successful synchronous render
type RenderResponse struct {
	Video RenderedVideo `json:"video"`
	Stage Stage         `json:"stage"`
}

// OutputResponse describes the rendered file at the download stage
type OutputResponse struct {
	FileName  string `json:"fileName"`
	SizeBytes int64  `json:"sizeBytes"`
}
