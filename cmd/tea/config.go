package main

import (
	"fmt"
	"strconv"

	"github.com/yourusername/tea-go/internal/domain"
)

// editConfig prints the current configuration and walks through the
// commonly changed settings. Empty input keeps the current value.
func editConfig(svc *services) error {
	cfg := svc.config.Config()

	fmt.Printf("Configuration (%s):\n", svc.config.Path())
	fmt.Printf("  default_quality:      %s\n", cfg.DefaultQuality)
	fmt.Printf("  default_output:       %s\n", cfg.DefaultOutput)
	fmt.Printf("  concurrent_downloads: %d\n", cfg.ConcurrentDownloads)
	fmt.Printf("  mp3_quality:          %s\n", cfg.MP3Quality)
	fmt.Printf("  thumbnail_embed:      %t\n", cfg.ThumbnailEmbed)
	fmt.Printf("  split_enabled:        %t\n", cfg.SplitEnabled)
	fmt.Printf("  duplicate_action:     %s\n", cfg.DuplicateAction)
	fmt.Printf("  use_ai_filename_cleaning: %t\n", cfg.UseAIFilenameCleaning)
	fmt.Println()

	if promptLine("Edit configuration? (y/N): ", "n") != "y" {
		return nil
	}

	for {
		q := promptLine(fmt.Sprintf("Default quality [%s]: ", cfg.DefaultQuality), cfg.DefaultQuality)
		if domain.ValidQuality(q) {
			cfg.DefaultQuality = q
			break
		}
		fmt.Println("Valid values: 1-5, best, audio, 1080p, 720p, 480p, 360p")
	}

	cfg.DefaultOutput = promptLine(fmt.Sprintf("Output directory [%s]: ", cfg.DefaultOutput), cfg.DefaultOutput)
	cfg.ConcurrentDownloads = promptWorkers(cfg.ConcurrentDownloads)

	for {
		q := promptLine(fmt.Sprintf("MP3 bitrate [%s]: ", cfg.MP3Quality), cfg.MP3Quality)
		if domain.ValidMP3Quality(q) {
			cfg.MP3Quality = q
			break
		}
		fmt.Println("Valid values: 128, 192, 256, 320")
	}

	cfg.ThumbnailEmbed = promptBool("Embed thumbnails", cfg.ThumbnailEmbed)
	cfg.SplitEnabled = promptBool("Offer clip splitting", cfg.SplitEnabled)

	for {
		a := promptLine(fmt.Sprintf("Duplicate action (ask/download/skip) [%s]: ", cfg.DuplicateAction), string(cfg.DuplicateAction))
		switch domain.DuplicateAction(a) {
		case domain.DuplicateAsk, domain.DuplicateDownload, domain.DuplicateSkip:
			cfg.DuplicateAction = domain.DuplicateAction(a)
		default:
			fmt.Println("Valid values: ask, download, skip")
			continue
		}
		break
	}

	if err := svc.config.Save(); err != nil {
		return err
	}
	fmt.Println("Configuration saved.")
	return nil
}

func promptBool(label string, def bool) bool {
	raw := promptLine(fmt.Sprintf("%s (true/false) [%t]: ", label, def), strconv.FormatBool(def))
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
