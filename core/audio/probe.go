package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"musicbox/logger"
)

// DurationProber reads the duration of an audio file in seconds.
type DurationProber interface {
	Duration(ctx context.Context, inputFile string) (float64, error)
}

// FFprobe probes audio files with the ffprobe binary that ships next to ffmpeg.
type FFprobe struct {
	ffprobePath string
}

// NewFFprobe derives the ffprobe path from the configured ffmpeg path.
func NewFFprobe(ffmpegPath string) *FFprobe {
	return &FFprobe{ffprobePath: strings.Replace(ffmpegPath, "ffmpeg", "ffprobe", 1)}
}

// ffprobeOutput defines the structure for ffprobe JSON output.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration uses ffprobe to get the duration of an audio file in seconds.
func (p *FFprobe) Duration(ctx context.Context, inputFile string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		inputFile,
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe execution failed for %s: %w\nFFprobe Error: %s", inputFile, err, stderr.String())
	}
	return parseDuration(out.Bytes())
}

func parseDuration(out []byte) (float64, error) {
	var probeData ffprobeOutput
	if err := json.Unmarshal(out, &probeData); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ffprobe output: %w", err)
	}
	if probeData.Format.Duration == "" {
		return 0, fmt.Errorf("duration not found in ffprobe output")
	}
	duration, err := strconv.ParseFloat(probeData.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration string %q: %w", probeData.Format.Duration, err)
	}
	return duration, nil
}

// ProbeSeconds 尽力获取时长（四舍五入到秒），失败时记录警告并返回0，不影响上传
func ProbeSeconds(ctx context.Context, prober DurationProber, inputFile string) int {
	if prober == nil {
		return 0
	}
	d, err := prober.Duration(ctx, inputFile)
	if err != nil || math.IsNaN(d) || d < 0 {
		logger.Warn("解析音频时长失败", logger.String("file", inputFile), logger.ErrorField(err))
		return 0
	}
	return int(math.Round(d))
}
