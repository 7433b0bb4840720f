// Package spreadsheet loads the client keyword directory from an xlsx file.
package spreadsheet

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/keywords"
)

// DefaultFile is the keyword workbook looked up in the working directory.
const DefaultFile = "queries_av_3.0.xlsx"

// Loader implements ports.KeywordSource. The workbook is read on every Load
// so edits take effect on the next job.
type Loader struct {
	path   string
	logger logrus.FieldLogger
}

// NewLoader returns a loader for the workbook at path.
func NewLoader(path string, logger logrus.FieldLogger) *Loader {
	if path == "" {
		path = DefaultFile
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Loader{path: path, logger: logger.WithField("component", "keywords")}
}

// Load reads the first worksheet: a header row, then rows of
// (client, keywords separated by ';', contacts separated by ','). Rows of the
// same client are merged. A missing or unreadable workbook yields an empty
// directory.
func (l *Loader) Load(_ context.Context) domain.KeywordDirectory {
	if _, err := os.Stat(l.path); errors.Is(err, os.ErrNotExist) {
		l.logger.WithField("path", l.path).Warn("keyword workbook not found")
		return domain.KeywordDirectory{}
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		l.logger.WithError(err).WithField("path", l.path).Error("could not open keyword workbook")
		return domain.KeywordDirectory{}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.KeywordDirectory{}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		l.logger.WithError(err).WithField("sheet", sheets[0]).Error("could not read keyword sheet")
		return domain.KeywordDirectory{}
	}

	dir := Parse(rows)
	l.logger.WithField("clients", dir.Len()).Debug("keyword directory loaded")
	return dir
}

// Parse builds a directory from sheet rows, skipping the header row.
func Parse(rows [][]string) domain.KeywordDirectory {
	var dir domain.KeywordDirectory
	pos := map[string]int{}

	for i, row := range rows {
		if i == 0 || len(row) < 1 {
			continue
		}
		client := strings.TrimSpace(row[0])
		if client == "" {
			continue
		}

		idx, ok := pos[client]
		if !ok {
			idx = len(dir.Clients)
			pos[client] = idx
			dir.Clients = append(dir.Clients, domain.ClientKeywords{
				Client: client,
				Sector: keywords.IsSectorClient(client),
			})
		}
		entry := &dir.Clients[idx]
		if len(row) > 1 {
			entry.Keywords = append(entry.Keywords, split(row[1], ";")...)
		}
		if len(row) > 2 && len(entry.Contacts) == 0 {
			entry.Contacts = split(row[2], ",")
		}
	}
	return dir
}

func split(cell, sep string) []string {
	var out []string
	for _, part := range strings.Split(cell, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
