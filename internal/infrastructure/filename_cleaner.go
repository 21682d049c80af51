package infrastructure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

// OpenRouter free-tier limits
const (
	openRouterURL      = "https://openrouter.ai/api/v1/chat/completions"
	openRouterModel    = "qwen/qwen-2.5-coder-32b-instruct:free"
	maxDailyRequests   = 50
	minRequestInterval = 3 * time.Second
	cleanerTimeout     = 10 * time.Second
)

var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`\.\.\\`),
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)data:`),
	regexp.MustCompile("\x00"),
	regexp.MustCompile("\x1b"),
}

var junkPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s+[\[(]?Official (Music )?Video[\])]?\s*$`),
	regexp.MustCompile(`(?i)\s+[\[(]?MV[\])]?\s*$`),
	regexp.MustCompile(`(?i)\s+[\[(]?HD[\])]?\s*$`),
	regexp.MustCompile(`(?i)\s+[\[(]?4K[\])]?\s*$`),
	regexp.MustCompile(`(?i)\s+[\[(]?Remastered[\])]?\s*$`),
	regexp.MustCompile(`(?i)\s+[\[(]?Lyrics[\])]?\s*$`),
	regexp.MustCompile(`(?i)\s+[\[(]?Audio[\])]?\s*$`),
	regexp.MustCompile(`(?i)\s+[\[(]?Official[\])]?\s*$`),
	regexp.MustCompile(`(?i)\s+[\[(]?feat\.?\s.*?[\])]?$`),
	regexp.MustCompile(`(?i)\s+[\[(]?ft\.?\s.*?[\])]?$`),
}

var (
	nonFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}\s\-_]`)
	multiSpace       = regexp.MustCompile(`\s+`)
	hasAlnum         = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// FilenameCleaner rewrites video titles into filename-friendly form
// through the OpenRouter chat API, falling back to regex cleaning when
// the API is unavailable or rate limited.
type FilenameCleaner struct {
	apiKey  string
	apiURL  string
	client  *http.Client
	logger  *zap.Logger
	nowFunc func() time.Time

	mu          sync.Mutex
	dailyCounts map[string]int
	lastRequest time.Time
}

// NewFilenameCleaner creates a cleaner. An empty API key disables the
// API path entirely, leaving only the regex fallback.
func NewFilenameCleaner(apiKey string, logger *zap.Logger) *FilenameCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilenameCleaner{
		apiKey:      strings.TrimSpace(apiKey),
		apiURL:      openRouterURL,
		client:      &http.Client{Timeout: cleanerTimeout},
		logger:      logger,
		nowFunc:     time.Now,
		dailyCounts: make(map[string]int),
	}
}

// CleanTitle returns a filename-safe version of title. It never fails;
// the regex fallback always produces something usable.
func (c *FilenameCleaner) CleanTitle(title string) string {
	if c.apiKey != "" {
		if cleaned, ok := c.aiClean(title); ok {
			return cleaned
		}
	}
	return RegexCleanTitle(title)
}

// RemainingRequests reports how many API calls are left today
func (c *FilenameCleaner) RemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining := maxDailyRequests - c.dailyCounts[c.nowFunc().Format("2006-01-02")]
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *FilenameCleaner) aiClean(title string) (string, bool) {
	if !c.reserveRequest() {
		return "", false
	}

	prompt := fmt.Sprintf(`Clean this video title for use as a filename.

Rules:
1. Remove emojis, special characters, and excessive punctuation
2. Keep words meaningful and readable
3. Replace spaces with single spaces (no multiple spaces)
4. Remove phrases like "Official Video", "HD", "4K", etc.
5. Preserve the core meaning and important keywords
6. Output ONLY the cleaned title, nothing else

Original title: %s

Cleaned title:`, title)

	payload := map[string]interface{}{
		"model": openRouterModel,
		"messages": []map[string]string{
			{"role": "system", "content": "You are a helpful assistant that cleans video titles for filenames. Output only the cleaned title, no explanations."},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  100,
		"temperature": 0.3,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", false
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("Title cleaning request failed", zap.Error(err))
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Title cleaning request rejected", zap.Int("status", resp.StatusCode))
		return "", false
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", false
	}
	if len(decoded.Choices) == 0 {
		return "", false
	}

	cleaned := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if !validAIOutput(cleaned) {
		c.logger.Warn("Rejected unsafe cleaned title", zap.String("title", title))
		return "", false
	}
	return cleaned, true
}

// reserveRequest enforces the daily quota and the minimum interval
// between calls, sleeping out the remainder of the interval when needed
func (c *FilenameCleaner) reserveRequest() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	today := c.nowFunc().Format("2006-01-02")
	if c.dailyCounts[today] >= maxDailyRequests {
		return false
	}

	if wait := minRequestInterval - c.nowFunc().Sub(c.lastRequest); wait > 0 {
		time.Sleep(wait)
	}

	c.dailyCounts[today]++
	c.lastRequest = c.nowFunc()
	return true
}

func validAIOutput(s string) bool {
	if s == "" || len(s) > 100 {
		return false
	}
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(s) {
			return false
		}
	}
	return hasAlnum.MatchString(s)
}

// RegexCleanTitle strips junk phrases, emojis, and special characters
// from a title without touching the network
func RegexCleanTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Untitled"
	}

	for _, phrase := range junkPhrases {
		title = phrase.ReplaceAllString(title, "")
	}

	title = nonFilenameChars.ReplaceAllString(title, " ")
	title = multiSpace.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)
	title = strings.TrimSpace(domain.TruncateRunes(title, 100))

	if title == "" {
		return "Untitled"
	}
	return title
}
