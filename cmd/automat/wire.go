package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/danilodaat/automat/internal/acquire"
	"github.com/danilodaat/automat/internal/adapters/broadcastdb"
	"github.com/danilodaat/automat/internal/adapters/deepgram"
	"github.com/danilodaat/automat/internal/adapters/downloader"
	"github.com/danilodaat/automat/internal/adapters/ffmpeg"
	"github.com/danilodaat/automat/internal/adapters/localstorage"
	"github.com/danilodaat/automat/internal/adapters/openai"
	"github.com/danilodaat/automat/internal/adapters/spreadsheet"
	"github.com/danilodaat/automat/internal/adapters/ytdlp"
	"github.com/danilodaat/automat/internal/analysis"
	"github.com/danilodaat/automat/internal/config"
	"github.com/danilodaat/automat/internal/core/ports"
	"github.com/danilodaat/automat/internal/keywords"
	"github.com/danilodaat/automat/internal/logging"
	"github.com/danilodaat/automat/internal/service"
)

func loadConfig() (*config.Config, *logrus.Logger, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// buildDeps wires every adapter except the event sink.
func buildDeps(cfg *config.Config, logger *logrus.Logger) (service.Deps, error) {
	if err := os.MkdirAll(cfg.DownloadDir, 0755); err != nil {
		return service.Deps{}, fmt.Errorf("create download directory: %w", err)
	}

	urls, err := acquire.NewURLBuilder(cfg.MediaHost, cfg.BroadcastTimezone)
	if err != nil {
		return service.Deps{}, err
	}

	var records ports.RecordStore
	if dsn := cfg.DSN(); dsn != "" {
		store, err := broadcastdb.NewStore(cfg.BroadcastDBDriver, dsn, broadcastdb.WithTimeColumn(cfg.BroadcastDBTimeColumn))
		if err != nil {
			return service.Deps{}, err
		}
		records = store
	} else {
		logger.Warn("broadcast database not configured, TV and radio jobs will fail")
	}

	transcriber, err := deepgram.NewTranscriber(deepgram.Options{
		APIKey:   cfg.DeepgramAPIKey,
		URL:      cfg.DeepgramURL,
		Model:    cfg.DeepgramModel,
		Language: cfg.DeepgramLanguage,
		Timeout:  cfg.TranscribeTimeout,
	})
	if err != nil {
		return service.Deps{}, fmt.Errorf("transcriber: %w", err)
	}

	analyzerCfg := analysis.Config{
		Models: analysis.Models{
			Summary:  cfg.OpenAISummaryModel,
			Headline: cfg.OpenAIHeadlineModel,
			Entities: cfg.OpenAISummaryModel,
			Topics:   cfg.OpenAIHeadlineModel,
		},
		Logger: logger,
	}
	if c := openai.NewCompleter(openai.Options{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Logger: logger}); c != nil {
		analyzerCfg.Completer = c
	}

	return service.Deps{
		Workspaces: localstorage.NewLocalStorage(cfg.DownloadDir),
		Acquirer: acquire.New(acquire.Deps{
			Records:    records,
			Fetcher:    downloader.NewHTTPDownloader(cfg.DownloadTimeout),
			Transcoder: ffmpeg.New(cfg.FFmpegBin),
			Extractor:  ytdlp.NewYtDlpDownloader(cfg.YtDlpBin),
			URLs:       urls,
			Logger:     logger,
		}),
		Transcriber: transcriber,
		Analyzer:    analysis.New(analyzerCfg),
		Keywords:    spreadsheet.NewLoader(cfg.KeywordsFile, logger),
		Matcher:     keywords.Matcher{},
		Logger:      logger,
	}, nil
}
