package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/danilodaat/automat/internal/core/ports"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	ErrUnavailable = ports.ErrSourceUnavailable
	ErrForbidden   = ports.ErrSourceForbidden
)

// YtDlpDownloader uses the local yt-dlp binary to fetch audio streams.
type YtDlpDownloader struct {
	binaryPath string
	timeout    time.Duration
}

// NewYtDlpDownloader creates a new downloader. An empty binary uses a local
// yt-dlp.exe when present, otherwise yt-dlp from PATH.
func NewYtDlpDownloader(binary string) *YtDlpDownloader {
	if binary == "" {
		binary = "yt-dlp"
		if _, err := os.Stat("yt-dlp.exe"); err == nil {
			binary = ".\\yt-dlp.exe"
		}
	}
	return &YtDlpDownloader{binaryPath: binary, timeout: 10 * time.Minute}
}

// ExtractAudio downloads the audio-only stream of videoURL into dir as
// <videoID>.<ext> and asks the ffmpeg post-processor for <videoID>.mp3.
// Failures are classified as ErrUnavailable or ErrForbidden when the
// extractor output says so.
func (d *YtDlpDownloader) ExtractAudio(ctx context.Context, videoURL, dir, videoID string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.binaryPath, Args(videoURL, dir, videoID)...)

	var stderr bytes.Buffer
	cmd.Stdout = &bytes.Buffer{}
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Classify(stderr.String(), err)
	}
	return nil
}

// Args builds the yt-dlp command line for an audio-only extraction.
func Args(videoURL, dir, videoID string) []string {
	return []string{
		"-f", "bestaudio[ext=m4a]/bestaudio/best",
		"-x", "--audio-format", "mp3", "--audio-quality", "192K",
		"-o", filepath.Join(dir, videoID+".%(ext)s"),
		"--user-agent", userAgent,
		"--no-playlist", "--no-warnings",
		videoURL,
	}
}

// unavailablePhrases are the extractor messages for videos that will never
// become downloadable. HTTP status text such as "Service Unavailable" is not
// among them and stays retryable.
var unavailablePhrases = []string{
	"private video",
	"video unavailable",
	"this video is unavailable",
	"has been removed",
}

// Classify turns extractor output into a classified error.
func Classify(stderr string, err error) error {
	msg := strings.ToLower(stderr)
	switch {
	case containsAny(msg, unavailablePhrases):
		return fmt.Errorf("%w: %s", ErrUnavailable, strings.TrimSpace(stderr))
	case strings.Contains(msg, "http error 403"), strings.Contains(msg, "forbidden"):
		return fmt.Errorf("%w: %s", ErrForbidden, strings.TrimSpace(stderr))
	default:
		return fmt.Errorf("yt-dlp failed: %w, stderr: %s", err, strings.TrimSpace(stderr))
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
