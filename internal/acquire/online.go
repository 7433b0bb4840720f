package acquire

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/danilodaat/automat/internal/adapters/localstorage"
	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/core/ports"
	"github.com/danilodaat/automat/internal/retry"
)

var videoIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

var videoHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
	"www.youtu.be":      true,
}

// containerExts are the formats the extractor may leave behind when its
// post-processor did not produce an mp3.
var containerExts = []string{"mp4", "webm", "mkv", "m4a"}

// reencode is one fallback conversion from a downloaded container to mp3.
type reencode struct {
	name         string
	intermediate string // extension of the temporary file, empty for direct
	steps        func(src, tmp, dst string) [][]string
}

var reencodes = []reencode{
	{
		name: "direct mp3",
		steps: func(src, _, dst string) [][]string {
			return [][]string{{"-i", src, "-vn", "-acodec", "libmp3lame", "-ab", "192k", dst}}
		},
	},
	{
		name:         "pcm via wav",
		intermediate: "wav",
		steps: func(src, tmp, dst string) [][]string {
			return [][]string{
				{"-i", src, "-vn", "-acodec", "pcm_s16le", "-ar", "44100", "-ac", "2", tmp},
				{"-i", tmp, "-acodec", "libmp3lame", "-ab", "192k", dst},
			}
		},
	},
	{
		name:         "aac intermediate",
		intermediate: "aac",
		steps: func(src, tmp, dst string) [][]string {
			return [][]string{
				{"-i", src, "-vn", "-acodec", "aac", "-strict", "experimental", tmp},
				{"-i", tmp, "-acodec", "libmp3lame", "-ab", "192k", dst},
			}
		},
	},
}

// ValidateVideoURL checks that raw points at a recognized video host and
// returns the video id.
func ValidateVideoURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("not a URL: %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if !videoHosts[strings.ToLower(u.Hostname())] {
		return "", fmt.Errorf("unsupported host %q", u.Hostname())
	}
	id, err := youtube.ExtractVideoID(u.String())
	if err != nil {
		return "", fmt.Errorf("no video id in %q: %w", raw, err)
	}
	if !videoIDRegex.MatchString(id) {
		return "", fmt.Errorf("no video id in %q", raw)
	}
	return id, nil
}

// online extracts audio from a video host with exponential backoff.
type online struct {
	a *Acquirer
}

func (o *online) acquire(ctx context.Context, job domain.JobRequest, ws ports.Workspace, progress ports.ProgressFunc) (string, error) {
	log := o.a.log(job)

	if strings.TrimSpace(job.Identifier) == "" {
		return "", domain.Errorf(domain.KindInvalidSource, "No se proporcionó una URL de YouTube")
	}
	videoID, err := ValidateVideoURL(job.Identifier)
	if err != nil {
		return "", domain.NewError(domain.KindInvalidSource, "URL inválida: debe ser un enlace de YouTube", err)
	}

	progress(10, "Conectando con YouTube...")
	progress(15, "Descargando audio de YouTube...")

	mp3 := ws.Path(videoID + ".mp3")
	err = o.a.onlinePolicy.Do(ctx, func(ctx context.Context, attempt int) error {
		log.WithField("attempt", attempt).Infof("extracting audio: attempt %d/%d", attempt, o.a.onlinePolicy.MaxAttempts())
		err := o.attempt(ctx, job, ws, videoID, mp3)
		if err != nil {
			o.discardAttempt(ws, videoID, mp3)
		}
		if errors.Is(err, ports.ErrSourceUnavailable) {
			return retry.Permanent(err)
		}
		return err
	}, func(attempt int, err error, wait time.Duration) {
		entry := log.WithError(err).WithField("attempt", attempt)
		if errors.Is(err, ports.ErrSourceForbidden) {
			entry.Warnf("video host blocked request, waiting %s before retry", wait)
			return
		}
		entry.Warnf("extraction failed, waiting %s before retry", wait)
	})

	switch {
	case err == nil:
		return mp3, nil
	case errors.Is(err, ports.ErrSourceUnavailable):
		log.WithError(err).Error("video is private or unavailable")
		return "", domain.NewError(domain.KindSourceUnavailable, "the video is private, was removed or is unavailable", err)
	default:
		log.WithError(err).Errorf("extraction failed after %d attempts", o.a.onlinePolicy.MaxAttempts())
		return "", domain.NewError(domain.KindExtractionFailed, "could not download the YouTube video", err)
	}
}

// attempt runs one extraction and, when the extractor did not leave an mp3,
// the re-encode fallback over whatever container it fetched.
func (o *online) attempt(ctx context.Context, job domain.JobRequest, ws ports.Workspace, videoID, mp3 string) error {
	if err := o.a.deps.Extractor.ExtractAudio(ctx, job.Identifier, ws.Dir(), videoID); err != nil {
		return err
	}
	if localstorage.NonEmptyFile(mp3) {
		return nil
	}

	log := o.a.log(job)
	log.Info("mp3 not produced by extractor, trying manual conversion")

	container := o.locateContainer(ws, videoID)
	if container == "" {
		return fmt.Errorf("no downloaded media found for %s", videoID)
	}
	defer func() { _ = ws.Remove(container) }()

	for i, r := range reencodes {
		tmp := ""
		if r.intermediate != "" {
			tmp = ws.Path(fmt.Sprintf("%s.fallback.%s", videoID, r.intermediate))
		}
		err := o.runReencode(ctx, r, container, tmp, mp3)
		if tmp != "" {
			_ = ws.Remove(tmp)
		}
		if err == nil && localstorage.NonEmptyFile(mp3) {
			log.Infof("conversion strategy %d (%s) succeeded", i+1, r.name)
			return nil
		}
		_ = ws.Remove(mp3)
		log.WithError(err).Warnf("conversion strategy %d (%s) failed", i+1, r.name)
	}
	return fmt.Errorf("could not extract audio after %d conversion strategies", len(reencodes))
}

func (o *online) runReencode(ctx context.Context, r reencode, src, tmp, dst string) error {
	for _, args := range r.steps(src, tmp, dst) {
		if err := o.a.deps.Transcoder.Run(ctx, "", args...); err != nil {
			return err
		}
	}
	return nil
}

func (o *online) locateContainer(ws ports.Workspace, videoID string) string {
	for _, ext := range containerExts {
		p := filepath.Join(ws.Dir(), videoID+"."+ext)
		if localstorage.NonEmptyFile(p) {
			ws.Track(p)
			return p
		}
	}
	return ""
}

// discardAttempt removes everything a failed attempt may have written so a
// later attempt cannot mistake it for a finished download.
func (o *online) discardAttempt(ws ports.Workspace, videoID, mp3 string) {
	_ = ws.SweepPartials()
	_ = ws.Remove(mp3)
	for _, ext := range containerExts {
		_ = ws.Remove(filepath.Join(ws.Dir(), videoID+"."+ext))
	}
}
