package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/yourusername/tea-go/internal/domain"
)

// loadBatchFile reads newline-delimited URLs. Blank lines and lines
// starting with # are ignored; unsupported URLs are skipped with a note.
func loadBatchFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	var urls []string
	skipped := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !domain.IsSupportedURL(line) {
			skipped++
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	if skipped > 0 {
		fmt.Printf("Skipped %d unsupported line(s) in %s\n", skipped, path)
	}
	return urls, nil
}
