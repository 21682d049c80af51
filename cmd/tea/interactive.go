package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yourusername/tea-go/internal/domain"
)

var stdin = bufio.NewReader(os.Stdin)

// promptLine reads one trimmed line, returning def on empty input
func promptLine(prompt, def string) string {
	fmt.Print(prompt)
	line, err := stdin.ReadString('\n')
	if err != nil {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// promptURLs collects URLs line by line until a blank line. Lines may
// hold several URLs separated by commas or whitespace.
func promptURLs() ([]string, error) {
	fmt.Println("Enter YouTube URLs (one or more per line, blank line to finish):")

	var urls []string
	skipped := 0
	for {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		valid, bad := filterSupported(splitURLInput(line))
		urls = append(urls, valid...)
		skipped += bad
	}

	if skipped > 0 {
		fmt.Printf("Ignored %d unsupported URL(s)\n", skipped)
	}
	return urls, nil
}

func splitURLInput(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func filterSupported(candidates []string) ([]string, int) {
	var urls []string
	skipped := 0
	for _, c := range candidates {
		if domain.IsSupportedURL(c) {
			urls = append(urls, c)
		} else {
			skipped++
		}
	}
	return urls, skipped
}

func promptQuality(def string) string {
	fmt.Println("Quality:")
	fmt.Println("  1. Best available")
	fmt.Println("  2. 1080p")
	fmt.Println("  3. 720p")
	fmt.Println("  4. 480p")
	fmt.Println("  5. Audio only (MP3)")

	for {
		choice := promptLine(fmt.Sprintf("Select [%s]: ", def), def)
		if domain.ValidQuality(choice) {
			return choice
		}
		fmt.Println("Please pick one of the listed options.")
	}
}

func promptWorkers(def int) int {
	for {
		raw := promptLine(fmt.Sprintf("Concurrent downloads (%d-%d) [%d]: ",
			domain.MinConcurrentDownloads, domain.MaxConcurrentDownloads, def), strconv.Itoa(def))
		n, err := strconv.Atoi(raw)
		if err == nil && n >= domain.MinConcurrentDownloads && n <= domain.MaxConcurrentDownloads {
			return n
		}
		fmt.Printf("Please enter a number between %d and %d.\n",
			domain.MinConcurrentDownloads, domain.MaxConcurrentDownloads)
	}
}

// promptDuplicate is the interactive resolution for one already-downloaded
// URL under the "ask" policy
func promptDuplicate(url string, entry *domain.HistoryEntry) domain.DuplicateDecision {
	fmt.Printf("\nAlready downloaded: %s\n", url)
	if entry != nil {
		fmt.Printf("  %s (%s)\n", entry.Title, entry.Timestamp)
	}
	fmt.Println("  1. Skip")
	fmt.Println("  2. Download again")
	fmt.Println("  3. Remove from history and download")
	fmt.Println("  4. Always download duplicates")
	fmt.Println("  5. Always skip duplicates")

	switch promptLine("Select [1]: ", "1") {
	case "2":
		return domain.DecisionDownloadAgain
	case "3":
		return domain.DecisionRemoveAndDownload
	case "4":
		return domain.DecisionAlwaysDownload
	case "5":
		return domain.DecisionAlwaysSkip
	default:
		return domain.DecisionSkip
	}
}

// maybeSplit offers clip splitting after an interactive batch that ended
// with exactly one successfully downloaded video
func maybeSplit(ctx context.Context, svc *services, summary *domain.BatchSummary, audioOnly, splitDefault bool) {
	var video *domain.DownloadOutcome
	for i := range summary.Outcomes {
		o := &summary.Outcomes[i]
		if o.Success && o.Kind == domain.KindVideo {
			if video != nil {
				return
			}
			video = o
		}
	}
	if video == nil {
		return
	}

	if !svc.splitter.Available() {
		fmt.Println("ffmpeg not found, skipping clip splitting.")
		return
	}
	def, hint := "n", "y/N"
	if splitDefault {
		def, hint = "y", "Y/n"
	}
	if promptLine(fmt.Sprintf("Split this download into clips? (%s): ", hint), def) != "y" {
		return
	}

	timestamps := collectTimestamps(ctx, svc, video.URL)
	if len(timestamps) == 0 {
		fmt.Println("No usable timestamps, nothing to split.")
		return
	}

	media := svc.splitter.FindDownloadedMedia(summary.OutputPath, video.Title)
	if media == "" {
		fmt.Println("Could not locate the downloaded file, nothing to split.")
		return
	}

	results := svc.splitter.Split(ctx, media, timestamps, summary.OutputPath, audioOnly, video.Title)
	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			fmt.Printf("Clip %d failed: %s\n", r.Clip, r.Error)
		}
	}
	fmt.Printf("Created %d of %d clip(s)\n", succeeded, len(results))

	if audioOnly {
		svc.tagger.TagClips(results, video.Title)
	}
}

// collectTimestamps resolves split points from chapters, pasted text, or
// a JSON file, in that order of preference
func collectTimestamps(ctx context.Context, svc *services, url string) []domain.ClipTimestamp {
	fmt.Println("Timestamp source:")
	fmt.Println("  1. Video chapters / description")
	fmt.Println("  2. Paste timestamps")
	fmt.Println("  3. Load from JSON file")

	switch promptLine("Select [1]: ", "1") {
	case "2":
		fmt.Println("Paste timestamps (blank line to finish):")
		var lines []string
		for {
			line, err := stdin.ReadString('\n')
			if err != nil && line == "" {
				break
			}
			line = strings.TrimRight(line, "\r\n")
			if strings.TrimSpace(line) == "" {
				break
			}
			lines = append(lines, line)
		}
		return svc.timestamps.ParseList(strings.Join(lines, "\n"), "")

	case "3":
		path := promptLine("JSON file path: ", "")
		if path == "" {
			return nil
		}
		timestamps, err := svc.timestamps.LoadFromJSON(path)
		if err != nil {
			fmt.Printf("Failed to load timestamps: %v\n", err)
			return nil
		}
		return timestamps

	default:
		return svc.timestamps.ExtractChapters(ctx, url)
	}
}
