package acquire

import (
	"context"
	"fmt"
	"time"

	"github.com/danilodaat/automat/internal/adapters/localstorage"
	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/core/ports"
)

// broadcast fetches an archived TV or radio segment. TV segments are mp4 and
// are transcoded to mp3; radio segments are already mp3.
type broadcast struct {
	a         *Acquirer
	transcode bool
}

func (b *broadcast) acquire(ctx context.Context, job domain.JobRequest, ws ports.Workspace, progress ports.ProgressFunc) (string, error) {
	log := b.a.log(job)

	id, err := parseRecordID(job.Identifier)
	if err != nil {
		return "", domain.NewError(domain.KindInvalidSource, "No se proporcionó un ID de pauta válido", err)
	}

	if b.a.deps.Records == nil {
		return "", domain.Errorf(domain.KindUnexpected, "broadcast database is not configured")
	}

	progress(10, "Conectando con base de datos...")
	rec, err := b.a.deps.Records.FindRecord(ctx, job.Kind, id)
	if err != nil {
		return "", domain.NewError(domain.KindUnexpected, "broadcast database lookup failed", err)
	}
	if rec == nil {
		return "", domain.Errorf(domain.KindRecordNotFound, "record %d not found", id)
	}

	progress(15, fmt.Sprintf("Obteniendo audio de %s...", job.Kind.Label()))

	audio := ws.Path(fmt.Sprintf("%d.mp3", id))
	if !b.transcode {
		url := b.a.deps.URLs.Radio(*rec)
		if err := b.download(ctx, job, url, audio, ws); err != nil {
			return "", err
		}
		return audio, nil
	}

	url := b.a.deps.URLs.TV(*rec)
	video := ws.Path(fmt.Sprintf("%d.mp4", id))
	if err := b.download(ctx, job, url, video, ws); err != nil {
		return "", err
	}

	log.WithField("src", video).Info("transcoding video to audio")
	if err := b.a.deps.Transcoder.ExtractAudio(ctx, video, audio); err != nil || !localstorage.NonEmptyFile(audio) {
		_ = ws.Remove(video)
		_ = ws.Remove(audio)
		if err == nil {
			err = fmt.Errorf("transcoder produced no audio")
		}
		return "", domain.NewError(domain.KindTranscodeFailed, "error converting MP4 to MP3", err)
	}
	if err := ws.Remove(video); err != nil {
		log.WithError(err).Warn("could not remove source video")
	}
	return audio, nil
}

// download fetches url into dest under the fixed-delay policy.
func (b *broadcast) download(ctx context.Context, job domain.JobRequest, url, dest string, ws ports.Workspace) error {
	log := b.a.log(job).WithField("url", url)

	err := b.a.broadcastPolicy.Do(ctx, func(ctx context.Context, attempt int) error {
		log.WithField("attempt", attempt).Info("downloading archive file")
		return b.a.deps.Fetcher.Fetch(ctx, url, dest)
	}, func(attempt int, err error, wait time.Duration) {
		log.WithError(err).WithField("attempt", attempt).Warnf("download failed, retrying in %s", wait)
		_ = ws.Remove(dest)
		_ = ws.SweepPartials()
	})
	if err != nil {
		_ = ws.Remove(dest)
		_ = ws.SweepPartials()
		log.WithError(err).Errorf("download failed after %d attempts", b.a.broadcastPolicy.MaxAttempts())
		return domain.NewError(domain.KindDownloadFailed, fmt.Sprintf("error downloading %s file", job.Kind.Label()), err)
	}
	return nil
}
