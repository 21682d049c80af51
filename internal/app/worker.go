package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

// Retry policy for the download path. Delays grow as
// RetryDelay * 2^(attempt-1): 2s, then 4s; the final failed attempt
// terminates without a further delay.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

// WorkerConfig tunes the retry behavior of a download worker
type WorkerConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultWorkerConfig returns the production retry policy
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{MaxRetries: DefaultMaxRetries, RetryDelay: DefaultRetryDelay}
}

// TitleCleaner rewrites a raw video title into a filename-friendly one.
// Best effort: implementations return something usable for any input.
type TitleCleaner interface {
	CleanTitle(title string) string
}

// FetchOptions carries the per-batch download settings into a worker
type FetchOptions struct {
	OutputRoot     string
	Quality        string
	AudioOnly      bool
	MP3Quality     string
	EmbedThumbnail bool
}

// DownloadWorker downloads exactly one URL through the extraction backend,
// with bounded retry and exponential backoff. Stateless across calls
// except for the shared classifier cache.
type DownloadWorker struct {
	classifier domain.Classifier
	extractor  domain.Extractor
	cleaner    TitleCleaner
	config     WorkerConfig
	logger     *zap.Logger

	// sleep waits out one backoff delay; overridable in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDownloadWorker creates a worker. cleaner may be nil.
func NewDownloadWorker(classifier domain.Classifier, extractor domain.Extractor, cleaner TitleCleaner, config WorkerConfig, logger *zap.Logger) *DownloadWorker {
	return &DownloadWorker{
		classifier: classifier,
		extractor:  extractor,
		cleaner:    cleaner,
		config:     config,
		logger:     logger,
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run downloads the task's URL and folds every failure mode into the
// returned outcome. It never returns an error.
func (w *DownloadWorker) Run(ctx context.Context, task domain.URLTask, opts FetchOptions) domain.DownloadOutcome {
	info := w.classifier.Classify(ctx, task.URL)

	req := domain.FetchRequest{
		URL:            task.URL,
		OutputTemplate: w.outputTemplate(info, task.URL, opts),
		Quality:        opts.Quality,
		AudioOnly:      opts.AudioOnly,
		MP3Quality:     opts.MP3Quality,
		EmbedThumbnail: opts.EmbedThumbnail,
	}

	w.logger.Info("Starting download",
		zap.Int("slot", task.Slot),
		zap.String("url", task.URL),
		zap.String("kind", string(info.Kind)))

	var lastErr error
	for attempt := 1; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 1 {
			delay := w.config.RetryDelay * (1 << (attempt - 2))
			w.logger.Warn("Download attempt failed, retrying",
				zap.Int("slot", task.Slot),
				zap.Int("attempt", attempt-1),
				zap.Duration("delay", delay),
				zap.Error(lastErr))

			if err := w.sleep(ctx, delay); err != nil {
				return w.failure(task, info.Kind, err.Error())
			}
		}

		result, err := w.extractor.Fetch(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}

		// A clean run that produced nothing means the content is private
		// or unavailable; retrying cannot help.
		if result == nil || result.Kind == domain.ResultEmpty {
			return w.failure(task, info.Kind, "failed to extract content information; it may be private or unavailable")
		}

		if result.Kind == domain.ResultMulti && len(result.Entries) == 0 {
			return w.failure(task, info.Kind, fmt.Sprintf("%s appears to be empty or private", info.Kind))
		}

		w.logger.Info("Download completed",
			zap.Int("slot", task.Slot),
			zap.String("url", task.URL),
			zap.String("title", result.Title),
			zap.Int("items", result.ItemCount()))

		return domain.DownloadOutcome{
			URL:       task.URL,
			Success:   true,
			ItemCount: result.ItemCount(),
			Title:     result.Title,
			Kind:      info.Kind,
		}
	}

	return w.failure(task, info.Kind,
		fmt.Sprintf("failed after %d attempts: %v", w.config.MaxRetries, lastErr))
}

// outputTemplate picks the extractor output template for the content
// kind: playlists nest under the playlist title, channels under the
// uploader, single videos go straight into the output root.
func (w *DownloadWorker) outputTemplate(info domain.ContentInfo, url string, opts FetchOptions) string {
	switch info.Kind {
	case domain.KindPlaylist:
		return filepath.Join(opts.OutputRoot, "%(playlist_title)s", "%(playlist_index)s-%(title)s.%(ext)s")
	case domain.KindChannel:
		return filepath.Join(opts.OutputRoot, "%(uploader)s", "%(upload_date)s-%(title)s.%(ext)s")
	}

	if w.cleaner != nil {
		if raw, ok := info.Metadata["title"].(string); ok && raw != "" {
			cleaned := w.cleaner.CleanTitle(raw)
			if cleaned != "" {
				w.logger.Info("Cleaned title", zap.String("url", url), zap.String("title", cleaned))
				return filepath.Join(opts.OutputRoot, cleaned+".%(ext)s")
			}
		}
	}

	return filepath.Join(opts.OutputRoot, "%(title)s.%(ext)s")
}

func (w *DownloadWorker) failure(task domain.URLTask, kind domain.ContentKind, reason string) domain.DownloadOutcome {
	w.logger.Error("Download failed",
		zap.Int("slot", task.Slot),
		zap.String("url", task.URL),
		zap.String("reason", reason))

	return domain.DownloadOutcome{
		URL:   task.URL,
		Kind:  kind,
		Error: reason,
	}
}
