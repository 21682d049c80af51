package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

var (
	rangePattern       = regexp.MustCompile(`(\d+:\d+(?::\d+)?)\s*-\s*(\d+:\d+(?::\d+)?)\s*(.*)?`)
	linePattern        = regexp.MustCompile(`(\d+:\d+(?::\d+)?)\s+(.+)`)
	leadingTimePattern = regexp.MustCompile(`(\d+:\d+(?::\d+)?)`)

	descriptionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+:\d+(?::\d+)?)\s*[-–—]\s*(.+)`),
		regexp.MustCompile(`\[(\d+:\d+(?::\d+)?)\]\s*(.+)`),
		regexp.MustCompile(`\((\d+:\d+(?::\d+)?)\)\s*(.+)`),
		regexp.MustCompile(`(\d+:\d+(?::\d+)?)\s+(.+)`),
	}
)

// TimeToSeconds converts "MM:SS" or "HH:MM:SS" to seconds. Malformed
// input maps to 0.
func TimeToSeconds(timestamp string) int {
	parts := strings.Split(strings.TrimSpace(timestamp), ":")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		nums = append(nums, n)
	}
	switch len(nums) {
	case 2:
		return nums[0]*60 + nums[1]
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2]
	}
	return 0
}

// FormatTime renders seconds as "MM:SS", or "H:MM:SS" past the hour mark.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// TimestampProcessor turns user text, JSON files, or video metadata into
// clip boundaries for splitting.
type TimestampProcessor struct {
	extractor domain.Extractor
	logger    *zap.Logger
}

func NewTimestampProcessor(extractor domain.Extractor, logger *zap.Logger) *TimestampProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimestampProcessor{extractor: extractor, logger: logger}
}

// ParseList accepts either comma/newline separated ranges
// ("0:00-5:30 Intro, 5:30-10:00 Verse") or one-timestamp-per-line text
// ("0:00 Intro"), where each clip ends at the next clip's start. In the
// per-line form the final clip needs videoDuration to get an end time and
// is dropped without one.
func (p *TimestampProcessor) ParseList(text, videoDuration string) []domain.ClipTimestamp {
	var clips []domain.ClipTimestamp

	if strings.Contains(text, "-") && (strings.Contains(text, ",") || !strings.Contains(text, "\n")) {
		for _, part := range splitOnAny(text, ",\n") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			m := rangePattern.FindStringSubmatch(part)
			if m == nil {
				continue
			}
			title := strings.TrimSpace(m[3])
			if title == "" {
				title = fmt.Sprintf("Clip %d", len(clips)+1)
			}
			clips = append(clips, domain.ClipTimestamp{Start: m[1], End: m[2], Title: title})
		}
		return clips
	}

	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(text), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	for i, line := range lines {
		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		end := ""
		if i+1 < len(lines) {
			if next := leadingTimePattern.FindString(lines[i+1]); next != "" {
				end = next
			}
		} else if videoDuration != "" {
			end = videoDuration
		}
		if end == "" {
			continue
		}
		clips = append(clips, domain.ClipTimestamp{Start: m[1], End: end, Title: strings.TrimSpace(m[2])})
	}
	return clips
}

type clipFile struct {
	Clips []clipEntry `json:"clips"`
}

type clipEntry struct {
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end"`
	Title string          `json:"title"`
}

// LoadFromJSON reads clips from a file shaped either as a bare array or
// as {"clips": [...]}. Entries with missing or malformed timestamps are
// skipped with a warning rather than failing the whole load.
func (p *TimestampProcessor) LoadFromJSON(path string) ([]domain.ClipTimestamp, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, fmt.Errorf("timestamp file must be .json: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timestamp file: %w", err)
	}

	var entries []clipEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		var wrapped clipFile
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("invalid timestamp JSON: %w", err)
		}
		entries = wrapped.Clips
	}

	var clips []domain.ClipTimestamp
	for i, e := range entries {
		start := rawTimestamp(e.Start)
		end := rawTimestamp(e.End)
		if start == "" || end == "" {
			p.logger.Warn("skipping clip with missing start or end", zap.Int("clip", i+1))
			continue
		}
		if !domain.ValidTimestamp(start) || !domain.ValidTimestamp(end) {
			p.logger.Warn("skipping clip with invalid timestamp", zap.Int("clip", i+1),
				zap.String("start", start), zap.String("end", end))
			continue
		}
		title := e.Title
		if title == "" {
			title = fmt.Sprintf("Clip %d", i+1)
		}
		clips = append(clips, domain.ClipTimestamp{Start: start, End: end, Title: domain.SanitizeClipTitle(title)})
	}
	p.logger.Info("loaded clips from JSON file", zap.Int("count", len(clips)), zap.String("path", path))
	return clips, nil
}

// rawTimestamp renders a JSON clip boundary as its string form, whether
// the file wrote it as a string or a bare number
func rawTimestamp(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// ExtractChapters pulls clip boundaries from the video itself, preferring
// authored chapters and falling back to timestamps found in the
// description.
func (p *TimestampProcessor) ExtractChapters(ctx context.Context, url string) []domain.ClipTimestamp {
	if p.extractor == nil {
		return nil
	}
	_, metadata, err := p.extractor.Probe(ctx, url)
	if err != nil || metadata == nil {
		p.logger.Warn("could not fetch video information for chapters", zap.String("url", url), zap.Error(err))
		return nil
	}

	if chapters, ok := metadata["chapters"].([]interface{}); ok && len(chapters) > 0 {
		var clips []domain.ClipTimestamp
		for _, raw := range chapters {
			ch, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			start, _ := ch["start_time"].(float64)
			end, _ := ch["end_time"].(float64)
			title, _ := ch["title"].(string)
			clips = append(clips, domain.ClipTimestamp{
				Start: FormatTime(start),
				End:   FormatTime(end),
				Title: title,
			})
		}
		if len(clips) > 0 {
			p.logger.Info("found authored chapters", zap.Int("count", len(clips)))
			return clips
		}
	}

	description, _ := metadata["description"].(string)
	duration, _ := metadata["duration"].(float64)
	if description != "" && duration > 0 {
		if clips := p.ParseDescription(description, duration); len(clips) > 0 {
			p.logger.Info("found timestamps in description", zap.Int("count", len(clips)))
			return clips
		}
	}
	return nil
}

type descriptionMark struct {
	seconds int
	timeStr string
	title   string
}

// ParseDescription scans free-form description text for timestamp lines,
// dedupes and sorts them, and closes each clip at the next mark (the last
// one ends at videoDuration). Marks past the video length are discarded.
func (p *TimestampProcessor) ParseDescription(description string, videoDuration float64) []domain.ClipTimestamp {
	var marks []descriptionMark
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 5 {
			continue
		}
		for _, pattern := range descriptionPatterns {
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			timeStr := strings.TrimSpace(m[1])
			title := strings.TrimSpace(m[2])
			lower := strings.ToLower(title)
			if len(title) < 2 || strings.HasPrefix(lower, "http") ||
				strings.HasPrefix(lower, "www") || strings.HasPrefix(lower, "channel") {
				continue
			}
			seconds := TimeToSeconds(timeStr)
			if float64(seconds) > videoDuration {
				continue
			}
			title = domain.TruncateRunes(title, 100)
			marks = append(marks, descriptionMark{seconds: seconds, timeStr: timeStr, title: title})
			break
		}
	}
	if len(marks) == 0 {
		return nil
	}

	sort.SliceStable(marks, func(i, j int) bool { return marks[i].seconds < marks[j].seconds })
	seen := make(map[int]bool, len(marks))
	unique := marks[:0]
	for _, m := range marks {
		if !seen[m.seconds] {
			seen[m.seconds] = true
			unique = append(unique, m)
		}
	}

	clips := make([]domain.ClipTimestamp, 0, len(unique))
	for i, m := range unique {
		end := videoDuration
		if i+1 < len(unique) {
			end = float64(unique[i+1].seconds)
		}
		clips = append(clips, domain.ClipTimestamp{
			Start: m.timeStr,
			End:   FormatTime(end),
			Title: m.title,
		})
	}
	return clips
}

func splitOnAny(s, charset string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(charset, r)
	})
}
