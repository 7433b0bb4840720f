// Package config resolves runtime settings from an optional .env file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/danilodaat/automat/internal/adapters/broadcastdb"
)

// Config holds every runtime setting. Keys map to upper-cased environment
// variables, e.g. max_concurrent_jobs is MAX_CONCURRENT_JOBS.
type Config struct {
	HTTPAddr          string        `mapstructure:"http_addr"`
	DownloadDir       string        `mapstructure:"download_dir"`
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs"`
	AllowedOrigins    []string      `mapstructure:"-"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	DownloadTimeout   time.Duration `mapstructure:"download_timeout"`

	BroadcastDBDriver     string `mapstructure:"broadcast_db_driver"`
	BroadcastDBDSN        string `mapstructure:"broadcast_db_dsn"`
	BroadcastDBTimeColumn string `mapstructure:"broadcast_db_time_column"`
	MySQLHost             string `mapstructure:"mysql_host"`
	MySQLUser             string `mapstructure:"mysql_user"`
	MySQLPassword         string `mapstructure:"mysql_password"`
	MySQLDatabase         string `mapstructure:"mysql_database"`
	MediaHost             string `mapstructure:"media_host"`
	BroadcastTimezone     string `mapstructure:"broadcast_timezone"`

	DeepgramAPIKey    string        `mapstructure:"deepgram_api_key"`
	DeepgramURL       string        `mapstructure:"deepgram_url"`
	DeepgramModel     string        `mapstructure:"deepgram_model"`
	DeepgramLanguage  string        `mapstructure:"deepgram_language"`
	TranscribeTimeout time.Duration `mapstructure:"transcribe_timeout"`

	OpenAIAPIKey        string `mapstructure:"openai_api_key"`
	OpenAIBaseURL       string `mapstructure:"openai_base_url"`
	OpenAISummaryModel  string `mapstructure:"openai_summary_model"`
	OpenAIHeadlineModel string `mapstructure:"openai_headline_model"`

	KeywordsFile string `mapstructure:"keywords_file"`
	RedisURL     string `mapstructure:"redis_url"`
	YtDlpBin     string `mapstructure:"ytdlp_bin"`
	FFmpegBin    string `mapstructure:"ffmpeg_bin"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

var defaults = map[string]any{
	"http_addr":                ":5000",
	"download_dir":             "downloads",
	"max_concurrent_jobs":      4,
	"allowed_origins":          "http://localhost:5173,http://127.0.0.1:5173",
	"shutdown_timeout":         "30s",
	"broadcast_db_driver":      broadcastdb.DriverMySQL,
	"broadcast_db_dsn":         "",
	"broadcast_db_time_column": "",
	"mysql_host":               "",
	"mysql_user":               "",
	"mysql_password":           "",
	"mysql_database":           "",
	"media_host":               "https://servicios.noticiasperu.pe/medios",
	"broadcast_timezone":       "America/Lima",
	"download_timeout":         "30s",
	"deepgram_api_key":         "",
	"deepgram_url":             "https://api.deepgram.com/v1/listen",
	"deepgram_model":           "nova-2",
	"deepgram_language":        "es",
	"transcribe_timeout":       "10m",
	"openai_api_key":           "",
	"openai_base_url":          "",
	"openai_summary_model":     "gpt-4o-mini",
	"openai_headline_model":    "gpt-3.5-turbo-1106",
	"keywords_file":            "queries_av_3.0.xlsx",
	"redis_url":                "",
	"ytdlp_bin":                "yt-dlp",
	"ffmpeg_bin":               "ffmpeg",
	"log_level":                "info",
	"log_format":               "text",
}

// Load reads envFiles (or .env when none are given) into the process
// environment, then resolves the configuration. A missing default .env is
// not an error; a missing explicit file is.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AllowedOrigins = splitList(v.GetString("allowed_origins"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail deep inside a job.
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.MaxConcurrentJobs < 1 {
		result = multierror.Append(result, fmt.Errorf("MAX_CONCURRENT_JOBS must be at least 1, got %d", c.MaxConcurrentJobs))
	}
	if _, err := time.LoadLocation(c.BroadcastTimezone); err != nil {
		result = multierror.Append(result, fmt.Errorf("BROADCAST_TIMEZONE %q: %w", c.BroadcastTimezone, err))
	}
	switch c.BroadcastDBDriver {
	case broadcastdb.DriverMySQL, broadcastdb.DriverPostgres:
	default:
		result = multierror.Append(result, fmt.Errorf("BROADCAST_DB_DRIVER must be %s or %s, got %q",
			broadcastdb.DriverMySQL, broadcastdb.DriverPostgres, c.BroadcastDBDriver))
	}
	if strings.TrimSpace(c.DownloadDir) == "" {
		result = multierror.Append(result, errors.New("DOWNLOAD_DIR is empty"))
	}
	return result.ErrorOrNil()
}

// DSN returns the broadcast database DSN. BROADCAST_DB_DSN wins; otherwise
// the MYSQL_* settings are composed. Empty means no database is configured.
func (c *Config) DSN() string {
	if c.BroadcastDBDSN != "" {
		return c.BroadcastDBDSN
	}
	if c.MySQLHost == "" || c.BroadcastDBDriver != broadcastdb.DriverMySQL {
		return ""
	}
	return broadcastdb.MySQLDSN(c.MySQLHost, c.MySQLUser, c.MySQLPassword, c.MySQLDatabase)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
