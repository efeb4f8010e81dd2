package composer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProgressFunc receives advisory render progress. step names the current
// stage, done/total count top-level clips.
type ProgressFunc func(step string, done, total int)

// Composer renders a Plan to a single MP4 via ffmpeg
type Composer struct {
	ffmpeg *FFmpeg
}

func NewComposer(ffmpeg *FFmpeg) *Composer {
	return &Composer{ffmpeg: ffmpeg}
}

func encodeArgs() []string {
	return []string{
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
	}
}

// Render assembles the plan into outPath. Intermediate files live in a
// throwaway work directory; any step failing aborts the whole render and
// leaves no output file.
func (c *Composer) Render(ctx context.Context, plan Plan, bgmPath, outPath string, progress ProgressFunc) error {
	if len(plan.Scenes) == 0 {
		return fmt.Errorf("nothing to render: plan has no scenes")
	}
	if progress == nil {
		progress = func(string, int, int) {}
	}

	workDir, err := os.MkdirTemp("", "compose-*")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	total := plan.ClipCount()
	done := 0
	var clips []string

	if plan.Title != nil {
		clip := filepath.Join(workDir, "title.mp4")
		if err := c.renderTextCard(ctx, *plan.Title, clip); err != nil {
			return fmt.Errorf("render title card: %w", err)
		}
		clips = append(clips, clip)
		done++
		progress("title", done, total)
	}

	for i, scene := range plan.Scenes {
		clip := filepath.Join(workDir, fmt.Sprintf("scene_%03d.mp4", i))
		if err := c.renderScene(ctx, scene, workDir, i, clip); err != nil {
			return fmt.Errorf("render scene %s: %w", scene.SceneID, err)
		}
		clips = append(clips, clip)
		done++
		progress("scenes", done, total)
	}

	if plan.Ending != nil {
		clip := filepath.Join(workDir, "ending.mp4")
		if err := c.renderTextCard(ctx, *plan.Ending, clip); err != nil {
			return fmt.Errorf("render ending card: %w", err)
		}
		clips = append(clips, clip)
		done++
		progress("ending", done, total)
	}

	silent := filepath.Join(workDir, "video.mp4")
	if err := c.concatClips(ctx, clips, workDir, silent); err != nil {
		return fmt.Errorf("concatenate clips: %w", err)
	}
	progress("concat", total, total)

	if err := c.addAudio(ctx, silent, bgmPath, outPath); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("add audio: %w", err)
	}
	progress("audio", total, total)
	return nil
}

// renderTextCard produces a black card with centered text and fades
func (c *Composer) renderTextCard(ctx context.Context, card TextClip, outFile string) error {
	args := []string{"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:s=%dx%d:r=%d:d=%.3f", FrameWidth, FrameHeight, FrameRate, card.Duration),
		"-vf", textCardFilter(card.Text, card.Duration),
	}
	args = append(args, encodeArgs()...)
	args = append(args, "-an", outFile)
	return c.ffmpeg.Run(ctx, args...)
}

// renderScene builds each media segment, joins them, then burns the caption
func (c *Composer) renderScene(ctx context.Context, scene ScenePlan, workDir string, idx int, outFile string) error {
	var segFiles []string
	for j, seg := range scene.Segments {
		segFile := filepath.Join(workDir, fmt.Sprintf("seg_%03d_%02d.mp4", idx, j))
		if err := c.renderSegment(ctx, seg, segFile); err != nil {
			return fmt.Errorf("segment %d: %w", j, err)
		}
		segFiles = append(segFiles, segFile)
	}

	raw := segFiles[0]
	if len(segFiles) > 1 {
		raw = filepath.Join(workDir, fmt.Sprintf("scene_raw_%03d.mp4", idx))
		listFile := filepath.Join(workDir, fmt.Sprintf("scene_list_%03d.txt", idx))
		if err := writeConcatList(listFile, segFiles); err != nil {
			return err
		}
		// Segments share encode parameters, a stream copy is enough here.
		if err := c.ffmpeg.Run(ctx, "-y",
			"-f", "concat",
			"-safe", "0",
			"-i", listFile,
			"-c", "copy",
			raw,
		); err != nil {
			return err
		}
	}

	args := []string{"-y",
		"-i", raw,
		"-vf", captionFilter(scene.Caption, scene.Duration),
	}
	args = append(args, encodeArgs()...)
	args = append(args, "-an", outFile)
	return c.ffmpeg.Run(ctx, args...)
}

func (c *Composer) renderSegment(ctx context.Context, seg Segment, outFile string) error {
	var args []string

	switch seg.Kind {
	case SegmentBlack:
		args = []string{"-y",
			"-f", "lavfi",
			"-i", fmt.Sprintf("color=c=black:s=%dx%d:r=%d:d=%.3f", FrameWidth, FrameHeight, FrameRate, seg.Duration),
		}
	case SegmentImage:
		filter := fillFrameFilter()
		if seg.Zoom {
			filter = zoomFilter(seg.Duration)
		}
		args = []string{"-y",
			"-loop", "1",
			"-i", seg.Source,
			"-t", fmt.Sprintf("%.3f", seg.Duration),
			"-vf", filter,
			"-r", fmt.Sprintf("%d", FrameRate),
		}
	case SegmentVideo:
		srcDur, err := c.ffmpeg.Duration(ctx, seg.Source)
		if err != nil {
			return err
		}
		args = []string{"-y"}
		if srcDur > 0 && srcDur < seg.Duration {
			loops := int(seg.Duration/srcDur) + 1
			args = append(args, "-stream_loop", fmt.Sprintf("%d", loops))
		}
		args = append(args,
			"-i", seg.Source,
			"-t", fmt.Sprintf("%.3f", seg.Duration),
			"-vf", fillFrameFilter(),
			"-r", fmt.Sprintf("%d", FrameRate),
		)
	default:
		return fmt.Errorf("unknown segment kind %q", seg.Kind)
	}

	args = append(args, encodeArgs()...)
	args = append(args, "-an", outFile)
	return c.ffmpeg.Run(ctx, args...)
}

// concatClips joins the top-level clips in playback order
func (c *Composer) concatClips(ctx context.Context, clips []string, workDir, outFile string) error {
	listFile := filepath.Join(workDir, "clips.txt")
	if err := writeConcatList(listFile, clips); err != nil {
		return err
	}
	return c.ffmpeg.Run(ctx, "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outFile,
	)
}

// addAudio muxes the background track under the video. The BGM loops until
// the video ends, is cut exactly there and attenuated; without BGM a silent
// AAC track is written so the container always carries an audio stream.
func (c *Composer) addAudio(ctx context.Context, videoFile, bgmPath, outFile string) error {
	var args []string
	if bgmPath != "" {
		args = []string{"-y",
			"-i", videoFile,
			"-stream_loop", "-1",
			"-i", bgmPath,
			"-filter_complex", fmt.Sprintf("[1:a]volume=%.2f[bgm]", BGMVolume),
			"-map", "0:v",
			"-map", "[bgm]",
		}
	} else {
		args = []string{"-y",
			"-i", videoFile,
			"-f", "lavfi",
			"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
			"-map", "0:v",
			"-map", "1:a",
		}
	}
	args = append(args,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		outFile,
	)
	return c.ffmpeg.Run(ctx, args...)
}

func writeConcatList(listFile string, files []string) error {
	var lines []string
	for _, f := range files {
		lines = append(lines, fmt.Sprintf("file '%s'", f))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}
