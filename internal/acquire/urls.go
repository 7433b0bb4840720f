package acquire

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // broadcast archives are partitioned by Lima civil date

	"github.com/danilodaat/automat/internal/core/domain"
)

// DefaultMediaHost is the root of the broadcast archive.
const DefaultMediaHost = "https://servicios.noticiasperu.pe/medios"

// DefaultTimezone is the region whose calendar partitions the archive.
const DefaultTimezone = "America/Lima"

// URLBuilder derives archive URLs from broadcast records.
type URLBuilder struct {
	Host     string
	Location *time.Location
}

// NewURLBuilder returns a builder for host in the named timezone.
func NewURLBuilder(host, timezone string) (*URLBuilder, error) {
	if host == "" {
		host = DefaultMediaHost
	}
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", timezone, err)
	}
	return &URLBuilder{Host: strings.TrimRight(host, "/"), Location: loc}, nil
}

// LocalDate converts the UTC capture time to the archive's civil date.
func (b *URLBuilder) LocalDate(capturedAt time.Time) time.Time {
	return capturedAt.UTC().In(b.Location)
}

// TV returns the mp4 location of a TV segment.
func (b *URLBuilder) TV(rec domain.BroadcastRecord) string {
	return fmt.Sprintf("%s/tv/mp4_11/%s/%d.mp4", b.Host, b.datePath(rec.CapturedAt), rec.ID)
}

// Radio returns the mp3 location of a radio segment.
func (b *URLBuilder) Radio(rec domain.BroadcastRecord) string {
	return fmt.Sprintf("%s/radio/%s/%d.mp3", b.Host, b.datePath(rec.CapturedAt), rec.ID)
}

func (b *URLBuilder) datePath(capturedAt time.Time) string {
	return b.LocalDate(capturedAt).Format("2006/01/02")
}
