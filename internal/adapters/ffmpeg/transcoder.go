// Package ffmpeg runs the ffmpeg binary for audio extraction and re-encoding.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Transcoder implements ports.Transcoder on top of the ffmpeg binary.
type Transcoder struct {
	binary  string
	timeout time.Duration
}

// New returns a Transcoder. An empty binary means ffmpeg from PATH.
func New(binary string) *Transcoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Transcoder{binary: binary, timeout: 15 * time.Minute}
}

// ExtractAudio drops the video stream of src and encodes its audio to dst as
// 192k mp3.
func (t *Transcoder) ExtractAudio(ctx context.Context, src, dst string) error {
	return t.Run(ctx, "", "-i", src, "-vn", "-acodec", "libmp3lame", "-ab", "192k", dst)
}

// Run executes ffmpeg with args in dir, overwriting outputs.
func (t *Transcoder) Run(ctx context.Context, dir string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	full := append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)
	cmd := exec.CommandContext(ctx, t.binary, full...)
	if dir != "" {
		cmd.Dir = dir
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
