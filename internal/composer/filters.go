package composer

import (
	"fmt"
	"strings"
)

// escapeDrawtext escapes the characters the drawtext filter treats as
// syntax inside a quoted text value.
func escapeDrawtext(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return s
}

// fillFrameFilter scales to cover the output frame and center-crops the
// overflow, so any aspect ratio fills 9:16 without letterboxing.
func fillFrameFilter() string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1",
		FrameWidth, FrameHeight, FrameWidth, FrameHeight,
	)
}

// zoomFilter builds a slow linear push-in for a still image. The source is
// upscaled 2x before zoompan to keep the pan sub-pixel smooth.
func zoomFilter(duration float64) string {
	frames := int(duration * FrameRate)
	if frames < 1 {
		frames = 1
	}
	step := (ZoomFactor - 1.0) / float64(frames)
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,"+
			"zoompan=z='min(zoom+%.6f,%.3f)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=%d,setsar=1",
		FrameWidth*2, FrameHeight*2, FrameWidth*2, FrameHeight*2,
		step, ZoomFactor, frames, FrameWidth, FrameHeight, FrameRate,
	)
}

// captionFilter overlays the scene text near the bottom of the frame in a
// semi-transparent box, fading in and out over FadeDuration.
func captionFilter(text string, duration float64) string {
	alpha := fmt.Sprintf(
		"if(lt(t,%.1f),t/%.1f,if(lt(t,%.3f),1,(%.3f-t)/%.1f))",
		FadeDuration, FadeDuration, duration-FadeDuration, duration, FadeDuration,
	)
	return fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=52:box=1:boxcolor=black@0.5:boxborderw=18:"+
			"x=(w-text_w)/2:y=h-text_h-180:alpha='%s'",
		escapeDrawtext(text), alpha,
	)
}

// textCardFilter centers text on the frame for the title and ending cards
func textCardFilter(text string, duration float64) string {
	return fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=64:x=(w-text_w)/2:y=(h-text_h)/2,"+
			"fade=t=in:st=0:d=%.1f,fade=t=out:st=%.3f:d=%.1f",
		escapeDrawtext(text), FadeDuration, duration-FadeDuration, FadeDuration,
	)
}
