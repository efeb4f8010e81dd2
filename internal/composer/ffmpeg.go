package composer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg wraps the ffmpeg and ffprobe binaries found on PATH
type FFmpeg struct {
	ffmpegBin  string
	ffprobeBin string
}

// NewFFmpeg locates ffmpeg and ffprobe, failing fast at startup when either
// is missing.
func NewFFmpeg() (*FFmpeg, error) {
	ffmpegBin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	ffprobeBin, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return &FFmpeg{ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin}, nil
}

// Run executes ffmpeg with the given arguments. On failure the tail of
// stderr is folded into the error since ffmpeg reports everything there.
func (f *FFmpeg) Run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, f.ffmpegBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", args[len(args)-1], err, tail(stderr.String(), 512))
	}
	return nil
}

// Duration returns the duration of a media file in seconds
func (f *FFmpeg) Duration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ffprobeBin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration for %s: %w", path, err)
	}
	return dur, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
