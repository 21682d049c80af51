package app

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/tea-go/internal/domain"
)

// Coordinator fans a batch of URLs out across a bounded worker pool,
// records successes into history, mirrors every outcome into the ledger,
// and aggregates a summary. The batch always runs to completion: a failing
// URL never aborts the others.
type Coordinator struct {
	classifier *ContentClassifier
	worker     *DownloadWorker
	history    domain.HistoryStore
	ledger     domain.OutcomeRepository
	logger     *zap.Logger
}

// BatchOptions configures one coordinator run. BatchID groups ledger
// rows of the run; a zero value gets a fresh ID.
type BatchOptions struct {
	BatchID        string
	OutputRoot     string
	MaxWorkers     int
	Quality        string
	AudioOnly      bool
	MP3Quality     string
	EmbedThumbnail bool
}

// NewCoordinator creates a download coordinator. ledger may be nil.
func NewCoordinator(
	classifier *ContentClassifier,
	worker *DownloadWorker,
	history domain.HistoryStore,
	ledger domain.OutcomeRepository,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		classifier: classifier,
		worker:     worker,
		history:    history,
		ledger:     ledger,
		logger:     logger,
	}
}

// Download runs the whole batch and returns its summary. Only an
// environment failure (the output root cannot be created) produces an
// error; per-URL failures are reported inside the summary.
func (c *Coordinator) Download(ctx context.Context, urls []string, opts BatchOptions) (*domain.BatchSummary, error) {
	if opts.OutputRoot == "" {
		opts.OutputRoot = "downloads"
	}

	// Informational pass; each worker re-classifies through the shared
	// cache, so this costs one probe per URL for the whole run.
	mix := c.classifier.ContentMix(ctx, urls)
	c.logger.Info("Starting batch",
		zap.Int("urls", len(urls)),
		zap.Int("workers", domain.ClampWorkers(opts.MaxWorkers)),
		zap.Int("videos", mix.Videos),
		zap.Int("playlists", mix.Playlists),
		zap.Int("channels", mix.Channels),
		zap.String("output", opts.OutputRoot))

	if err := os.MkdirAll(opts.OutputRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	batchID := opts.BatchID
	if batchID == "" {
		batchID = uuid.New().String()
	}
	summary := &domain.BatchSummary{TotalURLs: len(urls), OutputPath: opts.OutputRoot}
	fetchOpts := FetchOptions{
		OutputRoot:     opts.OutputRoot,
		Quality:        opts.Quality,
		AudioOnly:      opts.AudioOnly,
		MP3Quality:     opts.MP3Quality,
		EmbedThumbnail: opts.EmbedThumbnail,
	}

	results := make(chan domain.DownloadOutcome)
	collectorDone := make(chan struct{})

	// Outcomes are collected in completion order. History writes happen
	// here, so every write lands before the summary is returned.
	go func() {
		defer close(collectorDone)
		for outcome := range results {
			if outcome.Success {
				if err := c.history.Add(outcome.URL, outcome.Title, opts.OutputRoot); err != nil {
					// the download itself succeeded; losing the history
					// record is degraded but safe
					c.logger.Warn("Failed to record history entry",
						zap.String("url", outcome.URL),
						zap.Error(err))
				}
			}
			c.record(batchID, outcome, opts.OutputRoot)
			summary.Add(outcome)
		}
	}()

	g := new(errgroup.Group)
	g.SetLimit(domain.ClampWorkers(opts.MaxWorkers))

	for i, url := range urls {
		task := domain.URLTask{URL: url, Slot: i + 1}
		g.Go(func() error {
			results <- c.worker.Run(ctx, task, fetchOpts)
			return nil
		})
	}

	g.Wait()
	close(results)
	<-collectorDone

	c.logger.Info("Batch finished",
		zap.Int("successful_items", summary.SuccessfulItems),
		zap.Int("failed_items", summary.FailedItems))

	return summary, nil
}

// RecordSkipped notes a duplicate URL that was skipped before submission,
// under the same batch ID as the run's other ledger rows
func (c *Coordinator) RecordSkipped(batchID, url string) {
	if c.ledger == nil {
		return
	}
	if err := c.ledger.Record(domain.NewSkippedRecord(batchID, url)); err != nil {
		c.logger.Warn("Failed to record skipped URL", zap.String("url", url), zap.Error(err))
	}
}

func (c *Coordinator) record(batchID string, outcome domain.DownloadOutcome, outputPath string) {
	if c.ledger == nil {
		return
	}
	if err := c.ledger.Record(domain.NewDownloadRecord(batchID, outcome, outputPath)); err != nil {
		c.logger.Warn("Failed to record ledger entry",
			zap.String("url", outcome.URL),
			zap.Error(err))
	}
}
