package workflow

import (
	"errors"
	"fmt"

	"github.com/oldtraffrod/tiktok-videogenerator/internal/model"
)

var (
	// ErrSessionNotFound is returned when no state exists for a session id
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoScenes is returned when a script yields zero non-empty scenes
	ErrNoScenes = errors.New("script produced no scenes")

	// ErrUnknownScene is returned for a scene id outside the current analysis
	ErrUnknownScene = errors.New("unknown scene")

	// ErrIndexOutOfRange is returned by removal with an invalid position
	ErrIndexOutOfRange = errors.New("selection index out of range")

	// ErrIncompleteSelection is returned when a scene has no selected media
	ErrIncompleteSelection = errors.New("every scene needs at least one media item")

	// ErrDownloadFailed is returned when a selected item could not be fetched
	ErrDownloadFailed = errors.New("media download failed")

	// ErrRenderFailed is returned when composition aborts partway
	ErrRenderFailed = errors.New("render failed")

	// ErrNoOutput is returned when the download stage has nothing to serve
	ErrNoOutput = errors.New("no rendered video available")

	// ErrBGMNotFound is returned when the chosen background track is missing
	ErrBGMNotFound = errors.New("background track not found")
)

// WrongStageError reports an action attempted outside its wizard stage.
// Required names the stage the caller should return to.
type WrongStageError struct {
	Current  model.Stage
	Required model.Stage
}

func (e *WrongStageError) Error() string {
	return fmt.Sprintf("action requires stage %q, session is at %q", e.Required, e.Current)
}
