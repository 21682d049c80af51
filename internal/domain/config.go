package domain

import "fmt"

// DuplicateAction is the persisted policy for URLs already in history
type DuplicateAction string

const (
	DuplicateAsk      DuplicateAction = "ask"
	DuplicateDownload DuplicateAction = "download"
	DuplicateSkip     DuplicateAction = "skip"
)

// DuplicateDecision is the resolution for one duplicate URL under the
// "ask" policy. The Always variants additionally mutate the persisted
// DuplicateAction for subsequent runs.
type DuplicateDecision int

const (
	DecisionSkip DuplicateDecision = iota
	DecisionDownloadAgain
	DecisionRemoveAndDownload
	DecisionAlwaysDownload
	DecisionAlwaysSkip
)

// Concurrency bounds. The ceiling exists because the extraction backend
// and the network do not scale usefully past a handful of concurrent
// transcodes.
const (
	MinConcurrentDownloads     = 1
	MaxConcurrentDownloads     = 5
	DefaultConcurrentDownloads = 3
)

// Config is the application configuration, persisted as a flat JSON map
type Config struct {
	DefaultQuality        string          `mapstructure:"default_quality" json:"default_quality"`
	DefaultOutput         string          `mapstructure:"default_output" json:"default_output"`
	ConcurrentDownloads   int             `mapstructure:"concurrent_downloads" json:"concurrent_downloads"`
	ThumbnailEmbed        bool            `mapstructure:"thumbnail_embed" json:"thumbnail_embed"`
	SplitEnabled          bool            `mapstructure:"split_enabled" json:"split_enabled"`
	MP3Quality            string          `mapstructure:"mp3_quality" json:"mp3_quality"`
	DuplicateAction       DuplicateAction `mapstructure:"duplicate_action" json:"duplicate_action"`
	UseAIFilenameCleaning bool            `mapstructure:"use_ai_filename_cleaning" json:"use_ai_filename_cleaning"`
	OpenRouterAPIKey      string          `mapstructure:"openrouter_api_key" json:"openrouter_api_key"`
	HistoryPath           string          `mapstructure:"history_path" json:"history_path"`
	LedgerPath            string          `mapstructure:"ledger_path" json:"ledger_path"`
	YTDLPBinary           string          `mapstructure:"ytdlp_binary" json:"ytdlp_binary"`
	FFmpegBinary          string          `mapstructure:"ffmpeg_binary" json:"ffmpeg_binary"`
	LogLevel              string          `mapstructure:"log_level" json:"log_level"`
	LogFormat             string          `mapstructure:"log_format" json:"log_format"`
	NotifyEnabled         bool            `mapstructure:"notify_enabled" json:"notify_enabled"`
	NotifyMethod          string          `mapstructure:"notify_method" json:"notify_method"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		DefaultQuality:        "5",
		DefaultOutput:         "downloads",
		ConcurrentDownloads:   DefaultConcurrentDownloads,
		ThumbnailEmbed:        true,
		SplitEnabled:          false,
		MP3Quality:            "320",
		DuplicateAction:       DuplicateAsk,
		UseAIFilenameCleaning: false,
		HistoryPath:           "tea-history.json",
		LedgerPath:            "tea-ledger.db",
		YTDLPBinary:           "yt-dlp",
		FFmpegBinary:          "ffmpeg",
		LogLevel:              "info",
		LogFormat:             "console",
		NotifyEnabled:         false,
		NotifyMethod:          "notify-send",
	}
}

var validQualities = map[string]bool{
	"1": true, "2": true, "3": true, "4": true, "5": true,
	"best": true, "audio": true,
	"1080p": true, "720p": true, "480p": true, "360p": true,
}

// qualityFormats maps quality presets to extraction format selectors
var qualityFormats = map[string]string{
	"best":  "bestvideo+bestaudio/best",
	"1":     "bestvideo+bestaudio/best",
	"2":     "bestvideo[height<=1080]+bestaudio/best",
	"3":     "bestvideo[height<=720]+bestaudio/best",
	"4":     "bestvideo[height<=480]+bestaudio/best",
	"5":     "bestaudio/best",
	"audio": "bestaudio/best",
	"1080p": "bestvideo[height<=1080]+bestaudio/best",
	"720p":  "bestvideo[height<=720]+bestaudio/best",
	"480p":  "bestvideo[height<=480]+bestaudio/best",
	"360p":  "bestvideo[height<=360]+bestaudio/best",
}

// FormatForQuality resolves a quality preset to its format selector,
// falling back to a capped best-effort selector for unknown presets
func FormatForQuality(q string) string {
	if f, ok := qualityFormats[q]; ok {
		return f
	}
	return "bestvideo[height<=1080]+bestaudio/best[height<=1080]/best"
}

var validMP3Qualities = map[string]bool{
	"128": true, "192": true, "256": true, "320": true,
}

// ValidQuality reports whether q is an accepted quality selector
func ValidQuality(q string) bool {
	return validQualities[q]
}

// ValidMP3Quality reports whether q is an accepted MP3 bitrate
func ValidMP3Quality(q string) bool {
	return validMP3Qualities[q]
}

// Validate checks configuration values, returning the first violation
func (c *Config) Validate() error {
	if c.DefaultQuality != "" && !validQualities[c.DefaultQuality] {
		return fmt.Errorf("invalid default_quality: %q", c.DefaultQuality)
	}

	if c.ConcurrentDownloads < MinConcurrentDownloads || c.ConcurrentDownloads > MaxConcurrentDownloads {
		return fmt.Errorf("invalid concurrent_downloads: %d, must be between %d and %d",
			c.ConcurrentDownloads, MinConcurrentDownloads, MaxConcurrentDownloads)
	}

	switch c.DuplicateAction {
	case DuplicateAsk, DuplicateDownload, DuplicateSkip:
	default:
		return fmt.Errorf("invalid duplicate_action: %q", c.DuplicateAction)
	}

	if c.MP3Quality != "" && !validMP3Qualities[c.MP3Quality] {
		return fmt.Errorf("invalid mp3_quality: %q", c.MP3Quality)
	}

	if c.DefaultOutput == "" {
		return fmt.Errorf("default_output not configured")
	}

	return nil
}

// AudioOnly reports whether the configured quality means audio-only
func (c *Config) AudioOnly() bool {
	return c.DefaultQuality == "5" || c.DefaultQuality == "audio"
}

// ClampWorkers bounds a requested worker count to the allowed range
func ClampWorkers(n int) int {
	if n < MinConcurrentDownloads {
		return MinConcurrentDownloads
	}
	if n > MaxConcurrentDownloads {
		return MaxConcurrentDownloads
	}
	return n
}
