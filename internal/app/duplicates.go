package app

import (
	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

// DuplicatePrompt asks the user what to do with one already-downloaded
// URL. It is injected so tests and batch mode stay non-interactive.
type DuplicatePrompt func(url string, entry *domain.HistoryEntry) domain.DuplicateDecision

// DuplicateResolver filters a batch against history under the configured
// duplicate policy
type DuplicateResolver struct {
	config  *ConfigManager
	history domain.HistoryStore
	prompt  DuplicatePrompt
	logger  *zap.Logger
}

// NewDuplicateResolver creates a resolver. prompt may be nil, in which
// case "ask" degrades to skip.
func NewDuplicateResolver(config *ConfigManager, history domain.HistoryStore, prompt DuplicatePrompt, logger *zap.Logger) *DuplicateResolver {
	return &DuplicateResolver{config: config, history: history, prompt: prompt, logger: logger}
}

// Resolve partitions urls into those to download and those skipped as
// duplicates. AlwaysDownload/AlwaysSkip decisions persist the new policy
// for subsequent runs; RemoveAndDownload deletes the history entry first.
func (r *DuplicateResolver) Resolve(urls []string) (download []string, skipped []string) {
	for _, url := range urls {
		downloaded, entry := r.history.IsDownloaded(url)
		if !downloaded {
			download = append(download, url)
			continue
		}

		switch r.config.Config().DuplicateAction {
		case domain.DuplicateDownload:
			r.logger.Info("Duplicate, downloading again", zap.String("url", url))
			download = append(download, url)
		case domain.DuplicateSkip:
			r.logger.Info("Duplicate, skipped", zap.String("url", url))
			skipped = append(skipped, url)
		default:
			if r.apply(url, r.ask(url, entry)) {
				download = append(download, url)
			} else {
				skipped = append(skipped, url)
			}
		}
	}
	return download, skipped
}

func (r *DuplicateResolver) ask(url string, entry *domain.HistoryEntry) domain.DuplicateDecision {
	if r.prompt == nil {
		return domain.DecisionSkip
	}
	return r.prompt(url, entry)
}

// apply executes a decision's side effects and reports whether the URL
// should be downloaded
func (r *DuplicateResolver) apply(url string, decision domain.DuplicateDecision) bool {
	switch decision {
	case domain.DecisionDownloadAgain:
		return true

	case domain.DecisionRemoveAndDownload:
		r.history.Remove(url)
		return true

	case domain.DecisionAlwaysDownload:
		if err := r.config.SetDuplicateAction(domain.DuplicateDownload); err != nil {
			r.logger.Warn("Failed to persist duplicate policy", zap.Error(err))
		}
		return true

	case domain.DecisionAlwaysSkip:
		if err := r.config.SetDuplicateAction(domain.DuplicateSkip); err != nil {
			r.logger.Warn("Failed to persist duplicate policy", zap.Error(err))
		}
		return false

	default:
		return false
	}
}
