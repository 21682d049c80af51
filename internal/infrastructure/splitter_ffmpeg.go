package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

var mediaExtensions = []string{".mp4", ".mkv", ".webm", ".avi", ".mp3"}

// FFmpegSplitter cuts downloaded media into clips with ffmpeg. Video
// clips are stream-copied; audio clips are re-encoded to MP3 so the cut
// points land exactly.
type FFmpegSplitter struct {
	binary string
	logger *zap.Logger
}

// NewFFmpegSplitter creates a splitter around the given ffmpeg binary
func NewFFmpegSplitter(binary string, logger *zap.Logger) *FFmpegSplitter {
	if binary == "" {
		binary = "ffmpeg"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpegSplitter{binary: binary, logger: logger}
}

// Available reports whether the ffmpeg binary can be executed
func (f *FFmpegSplitter) Available() bool {
	cmd := exec.Command(f.binary, "-version")
	return cmd.Run() == nil
}

// Split cuts mediaPath into one file per timestamp. Each clip is
// processed independently; a failing clip is reported in its result and
// does not stop the rest.
func (f *FFmpegSplitter) Split(ctx context.Context, mediaPath string, timestamps []domain.ClipTimestamp, outputDir string, audioOnly bool, sourceTitle string) []domain.ClipResult {
	if outputDir == "" {
		outputDir = "downloads"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		f.logger.Error("Cannot create clip output directory", zap.Error(err))
		return nil
	}
	if sourceTitle == "" {
		sourceTitle = "Tea Playlist"
	}

	results := make([]domain.ClipResult, 0, len(timestamps))
	total := len(timestamps)

	for i, ts := range timestamps {
		num := i + 1
		title := ts.Title
		if title == "" {
			title = fmt.Sprintf("Clip %d", num)
		}

		if !domain.ValidTimestamp(ts.Start) || !domain.ValidTimestamp(ts.End) {
			results = append(results, domain.ClipResult{
				Clip: num, Title: title, Error: "invalid timestamp format",
			})
			continue
		}

		safeTitle := domain.SanitizeClipTitle(title)
		ext := ".mp3"
		if !audioOnly {
			ext = filepath.Ext(mediaPath)
		}
		outputPath := filepath.Join(outputDir, fmt.Sprintf("%02d-%s%s", num, safeTitle, ext))

		args := f.splitArgs(mediaPath, outputPath, ts, audioOnly, safeTitle, sourceTitle, num, total)
		f.logger.Info("Splitting clip",
			zap.Int("clip", num),
			zap.Int("total", total),
			zap.String("title", safeTitle))
		f.logger.Debug("ffmpeg command", zap.String("cmd", ShellEscapeCommand(f.binary, args...)))

		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, f.binary, args...)
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			msg := tailLine(stderr.String())
			if msg == "" {
				msg = err.Error()
			}
			if len(msg) > 100 {
				msg = msg[:100]
			}
			results = append(results, domain.ClipResult{
				Clip: num, Title: safeTitle, Error: msg,
			})
			continue
		}

		results = append(results, domain.ClipResult{
			Success: true, Clip: num, Title: safeTitle, Path: outputPath,
		})
	}

	return results
}

func (f *FFmpegSplitter) splitArgs(mediaPath, outputPath string, ts domain.ClipTimestamp, audioOnly bool, title, album string, num, total int) []string {
	args := []string{
		"-i", mediaPath,
		"-ss", ts.Start,
		"-to", ts.End,
	}

	if audioOnly {
		args = append(args,
			"-vn",
			"-acodec", "libmp3lame",
			"-q:a", "2",
			"-avoid_negative_ts", "1",
			"-metadata", "title="+title,
			"-metadata", fmt.Sprintf("track=%d/%d", num, total),
			"-metadata", "album="+album,
			"-metadata", fmt.Sprintf("date=%d", time.Now().Year()),
		)
	} else {
		args = append(args,
			"-c", "copy",
			"-avoid_negative_ts", "1",
			"-metadata", "title="+title,
			"-metadata", fmt.Sprintf("track=%d/%d", num, total),
		)
	}

	return append(args, "-y", outputPath)
}

// FindDownloadedMedia locates a downloaded media file in outputPath,
// preferring a file whose name shares words with the title, then
// falling back to any media file.
func (f *FFmpegSplitter) FindDownloadedMedia(outputPath, title string) string {
	entries, err := os.ReadDir(outputPath)
	if err != nil {
		return ""
	}

	var words []string
	for _, w := range strings.Fields(strings.ToLower(title)) {
		words = append(words, w)
		if len(words) == 3 {
			break
		}
	}

	if len(words) > 0 {
		for _, ext := range mediaExtensions {
			for _, entry := range entries {
				name := entry.Name()
				if !strings.HasSuffix(name, ext) {
					continue
				}
				lower := strings.ToLower(name)
				for _, w := range words {
					if strings.Contains(lower, w) {
						return filepath.Join(outputPath, name)
					}
				}
			}
		}
	}

	for _, ext := range mediaExtensions {
		for _, entry := range entries {
			if strings.HasSuffix(entry.Name(), ext) {
				return filepath.Join(outputPath, entry.Name())
			}
		}
	}

	return ""
}
