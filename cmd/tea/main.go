package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/app"
	"github.com/yourusername/tea-go/internal/domain"
	"github.com/yourusername/tea-go/internal/infrastructure"
	"github.com/yourusername/tea-go/pkg/logger"
)

var (
	flagBatch       string
	flagConfigPath  string
	flagShowConfig  bool
	flagShowHistory bool
	flagListFormats string
	flagOutput      string
	flagQuality     string
	flagWorkers     int

	rootCmd = &cobra.Command{
		Use:   "tea [urls...]",
		Short: "Tea - concurrent YouTube downloader",
		Long: `Tea downloads YouTube videos, playlists, and channels through yt-dlp,
with bounded concurrency, retry, duplicate detection, and optional
clip splitting via ffmpeg.

With no arguments it runs interactively. URLs can also be passed as
arguments or loaded from a batch file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&flagBatch, "batch", "b", "", "Read URLs from a file (one per line, # comments)")
	rootCmd.Flags().StringVar(&flagConfigPath, "config-file", "", "Path to config file")
	rootCmd.Flags().BoolVar(&flagShowConfig, "config", false, "View and edit configuration")
	rootCmd.Flags().BoolVar(&flagShowHistory, "history", false, "Display download history")
	rootCmd.Flags().StringVarP(&flagListFormats, "list-formats", "F", "", "List available formats for a URL")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output directory (overrides config)")
	rootCmd.Flags().StringVarP(&flagQuality, "quality", "q", "", "Quality preset (1-5, best, audio, 1080p..360p)")
	rootCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "Concurrent downloads (1-5, overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// services bundles everything the command handlers need
type services struct {
	config     *app.ConfigManager
	history    domain.HistoryStore
	ledger     domain.OutcomeRepository
	extractor  *infrastructure.YTDLPExtractor
	classifier *app.ContentClassifier
	coord      *app.Coordinator
	splitter   *infrastructure.FFmpegSplitter
	tagger     *infrastructure.ClipTagger
	timestamps *app.TimestampProcessor
	notifier   *infrastructure.NotificationService
	logger     *zap.Logger
}

func buildServices() (*services, error) {
	config, err := app.NewConfigManager(flagConfigPath)
	if err != nil {
		return nil, err
	}
	cfg := config.Config()

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	extractor := infrastructure.NewYTDLPExtractor(cfg.YTDLPBinary, log)
	classifier := app.NewContentClassifier(extractor, log)
	history := infrastructure.NewJSONHistoryStore(cfg.HistoryPath, log)

	var ledger domain.OutcomeRepository
	if sqlLedger, err := infrastructure.NewSQLiteLedger(cfg.LedgerPath); err != nil {
		log.Warn("Outcome ledger unavailable", zap.Error(err))
	} else {
		ledger = sqlLedger
	}

	var cleaner app.TitleCleaner
	if cfg.UseAIFilenameCleaning {
		cleaner = infrastructure.NewFilenameCleaner(cfg.OpenRouterAPIKey, log)
	}

	worker := app.NewDownloadWorker(classifier, extractor, cleaner, app.DefaultWorkerConfig(), log)
	coord := app.NewCoordinator(classifier, worker, history, ledger, log)

	return &services{
		config:     config,
		history:    history,
		ledger:     ledger,
		extractor:  extractor,
		classifier: classifier,
		coord:      coord,
		splitter:   infrastructure.NewFFmpegSplitter(cfg.FFmpegBinary, log),
		tagger:     infrastructure.NewClipTagger(log),
		timestamps: app.NewTimestampProcessor(extractor, log),
		notifier:   infrastructure.NewNotificationService(cfg.NotifyEnabled, cfg.NotifyMethod, log),
		logger:     log,
	}, nil
}

func (s *services) close() {
	if s.ledger != nil {
		s.ledger.Close()
	}
	s.logger.Sync()
}

func run(cmd *cobra.Command, args []string) error {
	svc, err := buildServices()
	if err != nil {
		return err
	}
	defer svc.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case flagShowConfig:
		return editConfig(svc)
	case flagShowHistory:
		return showHistory(svc)
	case flagListFormats != "":
		if !domain.IsSupportedURL(flagListFormats) {
			return fmt.Errorf("unsupported URL: %s", flagListFormats)
		}
		return svc.extractor.ListFormats(ctx, flagListFormats)
	}

	// batch mode keeps the interactive flow, it only replaces URL entry;
	// URLs passed as arguments imply a fully non-interactive run
	interactive := len(args) == 0

	urls, err := collectURLs(args)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no valid YouTube URLs provided")
	}

	return downloadBatch(ctx, svc, urls, interactive)
}

// collectURLs gathers URLs from args, the batch file, or interactive
// entry, in that order of precedence
func collectURLs(args []string) ([]string, error) {
	if flagBatch != "" {
		return loadBatchFile(flagBatch)
	}
	if len(args) > 0 {
		urls, skipped := filterSupported(splitURLInput(strings.Join(args, " ")))
		if skipped > 0 {
			fmt.Printf("Skipped %d unsupported URL(s)\n", skipped)
		}
		return urls, nil
	}
	return promptURLs()
}

func downloadBatch(ctx context.Context, svc *services, urls []string, interactive bool) error {
	cfg := svc.config.Config()

	quality := cfg.DefaultQuality
	output := cfg.DefaultOutput
	workers := cfg.ConcurrentDownloads

	if interactive && flagQuality == "" && flagOutput == "" && flagWorkers == 0 {
		quality = promptQuality(quality)
		output = promptLine(fmt.Sprintf("Output directory [%s]: ", output), output)
		workers = promptWorkers(workers)
	}
	if flagQuality != "" {
		if !domain.ValidQuality(flagQuality) {
			return fmt.Errorf("invalid quality: %q", flagQuality)
		}
		quality = flagQuality
	}
	if flagOutput != "" {
		output = flagOutput
	}
	if flagWorkers != 0 {
		workers = domain.ClampWorkers(flagWorkers)
	}

	// duplicates are resolved before any worker starts; in a
	// non-interactive run the "ask" policy degrades to skip
	var prompt app.DuplicatePrompt
	if interactive {
		prompt = promptDuplicate
	}
	batchID := uuid.New().String()

	resolver := app.NewDuplicateResolver(svc.config, svc.history, prompt, svc.logger)
	toDownload, skipped := resolver.Resolve(urls)
	for _, url := range skipped {
		fmt.Printf("Skipped (already downloaded): %s\n", url)
		svc.coord.RecordSkipped(batchID, url)
	}
	if len(toDownload) == 0 {
		fmt.Println("Nothing to download.")
		svc.notifier.NotifyBatchSkipped(len(skipped))
		return nil
	}

	audioOnly := quality == "5" || quality == "audio"
	summary, err := svc.coord.Download(ctx, toDownload, app.BatchOptions{
		BatchID:        batchID,
		OutputRoot:     output,
		MaxWorkers:     workers,
		Quality:        quality,
		AudioOnly:      audioOnly,
		MP3Quality:     cfg.MP3Quality,
		EmbedThumbnail: cfg.ThumbnailEmbed,
	})
	if err != nil {
		return err
	}

	printSummary(summary)
	svc.notifier.NotifyBatchCompleted(summary)

	if interactive {
		maybeSplit(ctx, svc, summary, audioOnly, cfg.SplitEnabled)
	}
	return nil
}

func printSummary(summary *domain.BatchSummary) {
	fmt.Println()
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Downloaded: %d item(s)\n", summary.SuccessfulItems)
	fmt.Printf("Failed:     %d item(s)\n", summary.FailedItems)
	if len(summary.Failed) > 0 {
		fmt.Println("Failed URLs:")
		for _, f := range summary.Failed {
			fmt.Printf("  %s\n    %s\n", f.URL, f.Reason)
		}
	}
	fmt.Printf("Output:     %s\n", summary.OutputPath)
}

func showHistory(svc *services) error {
	all := svc.history.All()
	if len(all) == 0 {
		fmt.Println("No download history.")
	} else {
		dates := make([]string, 0, len(all))
		for date := range all {
			dates = append(dates, date)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(dates)))

		for _, date := range dates {
			fmt.Printf("%s:\n", date)
			for _, entry := range all[date] {
				fmt.Printf("  %s\n    %s\n", entry.Title, entry.URL)
			}
		}
	}

	if svc.ledger != nil {
		if stats, err := svc.ledger.Stats(); err == nil && stats.Total > 0 {
			fmt.Println()
			fmt.Printf("All time: %d attempted, %d succeeded (%d items), %d failed, %d skipped\n",
				stats.Total, stats.Succeeded, stats.Items, stats.Failed, stats.Skipped)
		}
	}
	return nil
}
