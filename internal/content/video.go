package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// VideoInfo is the subset of ffprobe output used to describe a video.
type VideoInfo struct {
	Codec     string
	FrameRate string
	Duration  time.Duration
	Width     int
	Height    int
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecName    string         `json:"codec_name"`
		CodecType    string         `json:"codec_type"`
		AvgFrameRate string         `json:"avg_frame_rate"`
		Disposition  map[string]int `json:"disposition"`
		Width        int            `json:"width"`
		Height       int            `json:"height"`
	} `json:"streams"`
}

// ParseVideoProbe converts ffprobe JSON into VideoInfo. The first video
// stream that is not attached cover art is used.
func ParseVideoProbe(data []byte) (*VideoInfo, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	info := &VideoInfo{}
	if secs, err := strconv.ParseFloat(strings.TrimSpace(raw.Format.Duration), 64); err == nil && secs > 0 {
		info.Duration = time.Duration(secs * float64(time.Second))
	}

	for _, s := range raw.Streams {
		if s.CodecType != "video" || s.Disposition["attached_pic"] == 1 {
			continue
		}
		info.Codec = s.CodecName
		info.Width = s.Width
		info.Height = s.Height
		info.FrameRate = s.AvgFrameRate
		break
	}

	return info, nil
}

// FrameTimestamps spreads n sample points evenly across duration, away from
// both ends. An unknown duration samples the first frame only.
func FrameTimestamps(duration time.Duration, n int) []time.Duration {
	if n <= 0 {
		return nil
	}
	if duration <= 0 {
		return []time.Duration{0}
	}

	stamps := make([]time.Duration, n)
	for i := range stamps {
		stamps[i] = duration * time.Duration(i+1) / time.Duration(n+1)
	}
	return stamps
}

func (s *Source) probeVideo(ctx context.Context, path string) (*VideoInfo, error) {
	out, err := s.run(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	return ParseVideoProbe(out)
}

// extractFrames writes one JPEG per timestamp into dir and returns the frames
// that were produced together with their timestamps.
func (s *Source) extractFrames(ctx context.Context, path, dir string, stamps []time.Duration) ([]string, []time.Duration, error) {
	var (
		frames []string
		taken  []time.Duration
	)
	for i, ts := range stamps {
		out := filepath.Join(dir, fmt.Sprintf("frame-%02d.jpg", i+1))
		_, err := s.run(ctx, "ffmpeg",
			"-v", "error",
			"-ss", strconv.FormatFloat(ts.Seconds(), 'f', 3, 64),
			"-i", path,
			"-frames:v", "1",
			"-q:v", "3",
			"-y", out,
		)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			s.logger.Warn("Frame extraction failed", "path", path, "timestamp", ts, "error", err)
			continue
		}
		if _, err := os.Stat(out); err == nil {
			frames = append(frames, out)
			taken = append(taken, ts)
		}
	}
	return frames, taken, nil
}

func videoSummary(name string, info *VideoInfo, stamps []time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Video file %q", name)
	if info.Width > 0 && info.Height > 0 {
		fmt.Fprintf(&b, ", %dx%d", info.Width, info.Height)
	}
	if info.Codec != "" {
		fmt.Fprintf(&b, " %s", info.Codec)
	}
	if info.Duration > 0 {
		fmt.Fprintf(&b, ", duration %s", info.Duration.Round(time.Second))
	}
	b.WriteString(".")

	if len(stamps) > 0 {
		labels := make([]string, len(stamps))
		for i, ts := range stamps {
			labels[i] = ts.Round(time.Second).String()
		}
		fmt.Fprintf(&b, " The attached images are frames sampled at %s.", strings.Join(labels, ", "))
	}
	return b.String()
}
