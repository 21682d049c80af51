package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

// YTDLPExtractor drives the yt-dlp binary. Probe runs the cheap flat
// metadata mode; Fetch performs the full download and reads the final
// metadata from the dumped JSON on stdout.
type YTDLPExtractor struct {
	binary string
	logger *zap.Logger
}

// NewYTDLPExtractor creates an extractor around the given yt-dlp binary
func NewYTDLPExtractor(binary string, logger *zap.Logger) *YTDLPExtractor {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YTDLPExtractor{binary: binary, logger: logger}
}

// Available reports whether the yt-dlp binary can be executed
func (e *YTDLPExtractor) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Probe resolves URL metadata without downloading. Flat extraction
// limited to one playlist item keeps the probe cheap even for large
// playlists and channels.
func (e *YTDLPExtractor) Probe(ctx context.Context, url string) (*domain.ExtractResult, map[string]interface{}, error) {
	args := []string{
		"-J",
		"--flat-playlist",
		"--playlist-items", "1",
		"--no-warnings",
		url,
	}

	e.logger.Debug("Probing URL", zap.String("cmd", ShellEscapeCommand(e.binary, args...)))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, nil, fmt.Errorf("probe failed: %w: %s", err, tailLine(stderr.String()))
	}

	return decodeExtractOutput(stdout.Bytes())
}

// Fetch downloads the URL. Progress output goes to stderr where yt-dlp
// writes it; the dumped metadata JSON on stdout becomes the result.
func (e *YTDLPExtractor) Fetch(ctx context.Context, req domain.FetchRequest) (*domain.ExtractResult, error) {
	args := fetchArgs(req)

	e.logger.Info("Running extraction",
		zap.String("url", req.URL),
		zap.String("cmd", ShellEscapeCommand(e.binary, args...)))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, tailLine(stderr.String()))
	}

	result, _, err := decodeExtractOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListFormats prints the format table for a URL straight to stdout
func (e *YTDLPExtractor) ListFormats(ctx context.Context, url string) error {
	cmd := exec.CommandContext(ctx, e.binary, "-F", "--no-warnings", url)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to list formats: %w", err)
	}
	return nil
}

// fetchArgs builds the yt-dlp argument list for a download request
func fetchArgs(req domain.FetchRequest) []string {
	args := []string{
		"--dump-single-json",
		"--no-simulate",
		"--ignore-errors",
		"--no-warnings",
		"--retries", "3",
		"--fragment-retries", "3",
		"--embed-metadata",
	}

	if req.AudioOnly {
		quality := req.MP3Quality
		if quality == "" {
			quality = "320"
		}
		args = append(args,
			"-f", "bestaudio/best",
			"-x",
			"--audio-format", "mp3",
			"--audio-quality", quality+"K",
		)
	} else {
		args = append(args,
			"-f", domain.FormatForQuality(req.Quality),
			"--merge-output-format", "mp4",
		)
	}

	if req.EmbedThumbnail {
		args = append(args, "--embed-thumbnail")
	}

	if req.OutputTemplate != "" {
		args = append(args, "-o", req.OutputTemplate)
	}

	return append(args, req.URL)
}

// decodeExtractOutput turns yt-dlp's JSON dump into the result variant.
// A playlist dump carries _type "playlist" and an entries array; anything
// else with content is a single video. Unavailable entries appear as
// nulls and are dropped.
func decodeExtractOutput(data []byte) (*domain.ExtractResult, map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &domain.ExtractResult{Kind: domain.ResultEmpty}, nil, nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode extraction output: %w", err)
	}

	title, _ := raw["title"].(string)

	if t, _ := raw["_type"].(string); t == "playlist" {
		result := &domain.ExtractResult{Kind: domain.ResultMulti, Title: title}
		if entries, ok := raw["entries"].([]interface{}); ok {
			for _, entry := range entries {
				m, ok := entry.(map[string]interface{})
				if !ok || m == nil {
					continue
				}
				entryTitle, _ := m["title"].(string)
				entryID, _ := m["id"].(string)
				result.Entries = append(result.Entries, domain.ExtractEntry{
					ID:    entryID,
					Title: entryTitle,
				})
			}
		}
		return result, raw, nil
	}

	return &domain.ExtractResult{Kind: domain.ResultSingle, Title: title}, raw, nil
}

// tailLine returns the last non-empty line of command output, which is
// where yt-dlp puts its error message
func tailLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
