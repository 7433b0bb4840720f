package main

import (
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "automat",
	Short: "Transcribe and analyze news media",
	Long: `automat acquires audio from YouTube or from the TV/radio archive,
transcribes it, analyzes the text and matches client keywords.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load settings from this file instead of .env")
	rootCmd.AddCommand(serveCmd, runCmd)
}
