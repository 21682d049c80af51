package domain

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FetchRequest describes one full download through the extraction backend
type FetchRequest struct {
	URL            string
	OutputTemplate string
	Quality        string
	AudioOnly      bool
	MP3Quality     string
	EmbedThumbnail bool
}

// Extractor is the boundary to the external extraction/download engine.
// Probe is the cheap metadata-only mode used for classification; Fetch
// performs the actual download. Both decode the engine's raw result into
// the ExtractResult variant.
type Extractor interface {
	// Probe resolves URL metadata without downloading, flat, limited to a
	// single playlist item
	Probe(ctx context.Context, url string) (*ExtractResult, map[string]interface{}, error)

	// Fetch downloads the URL. A nil error with a ResultEmpty result means
	// the engine ran but found nothing; that is a permanent condition.
	Fetch(ctx context.Context, req FetchRequest) (*ExtractResult, error)

	// ListFormats prints the available formats for a URL
	ListFormats(ctx context.Context, url string) error
}

// Classifier resolves a URL to its content kind. Implementations must
// never fail; classification degrades to a best-effort guess.
type Classifier interface {
	Classify(ctx context.Context, url string) ContentInfo
}

// ClipTimestamp is one split point with an inclusive start and end
type ClipTimestamp struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Title string `json:"title"`
}

var (
	timestampPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	unsafeTitleChars = regexp.MustCompile(`[<>:"/\\|?*&]`)
)

// ValidTimestamp reports whether s looks like MM:SS or HH:MM:SS
func ValidTimestamp(s string) bool {
	return timestampPattern.MatchString(strings.TrimSpace(s))
}

// TruncateRunes caps s at max runes, never splitting a multi-byte rune
func TruncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// SanitizeClipTitle strips filesystem-hostile characters and caps length
func SanitizeClipTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled"
	}
	title = unsafeTitleChars.ReplaceAllString(title, "_")
	return TruncateRunes(title, 100)
}

// ClipResult is the outcome of splitting one clip
type ClipResult struct {
	Success bool
	Clip    int
	Title   string
	Path    string
	Error   string
}

// Splitter cuts a downloaded media file into clips
type Splitter interface {
	Available() bool
	Split(ctx context.Context, mediaPath string, timestamps []ClipTimestamp, outputDir string, audioOnly bool, sourceTitle string) []ClipResult
	FindDownloadedMedia(outputPath, title string) string
}
