package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/service"
)

var runOpts struct {
	kind string
	id   string
	url  string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one job in the foreground and print the report",
	Example: `  automat run --kind youtube --url https://www.youtube.com/watch?v=dQw4w9WgXcQ
  automat run --kind radio --id 12345`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runOnce(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringVar(&runOpts.kind, "kind", "", "source kind: youtube, tv or radio")
	runCmd.Flags().StringVar(&runOpts.id, "id", "", "broadcast record id (tv, radio)")
	runCmd.Flags().StringVar(&runOpts.url, "url", "", "video URL (youtube)")
	_ = runCmd.MarkFlagRequired("kind")
}

func runOnce(parent context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	deps, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}
	deps.Events = service.LogSink{Logger: logger}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job := service.NewJob(domain.StartRequest{Kind: runOpts.kind, RecordID: runOpts.id, YoutubeURL: runOpts.url}, "", time.Now())
	out := service.NewOrchestrator(deps).RunJob(ctx, job)
	if out.Err != nil {
		return errors.New(service.Describe(out.Err, job))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out.Report)
}
