package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

// ContentClassifier resolves URLs to a content kind through the extraction
// backend, with URL-pattern fallback. Results are cached per URL for the
// classifier's lifetime; a URL's classification is treated as stable for
// the run.
type ContentClassifier struct {
	extractor domain.Extractor
	logger    *zap.Logger
	mu        sync.RWMutex
	cache     map[string]domain.ContentInfo
}

// NewContentClassifier creates a classifier with an empty cache
func NewContentClassifier(extractor domain.Extractor, logger *zap.Logger) *ContentClassifier {
	return &ContentClassifier{
		extractor: extractor,
		logger:    logger,
		cache:     make(map[string]domain.ContentInfo),
	}
}

// Classify resolves the content kind of a URL. It never fails: when the
// probe errors or returns nothing, the kind is guessed from the URL shape,
// so classification cannot block the download attempt itself.
func (c *ContentClassifier) Classify(ctx context.Context, url string) domain.ContentInfo {
	c.mu.RLock()
	info, ok := c.cache[url]
	c.mu.RUnlock()
	if ok {
		return info
	}

	info = c.probe(ctx, url)

	c.mu.Lock()
	c.cache[url] = info
	c.mu.Unlock()

	return info
}

func (c *ContentClassifier) probe(ctx context.Context, url string) domain.ContentInfo {
	result, metadata, err := c.extractor.Probe(ctx, url)
	if err != nil {
		c.logger.Debug("Probe failed, guessing kind from URL",
			zap.String("url", url),
			zap.Error(err))
		return domain.ContentInfo{Kind: domain.GuessKindFromURL(url)}
	}

	if result == nil || result.Kind == domain.ResultEmpty {
		return domain.ContentInfo{Kind: domain.GuessKindFromURL(url)}
	}

	kind := domain.KindVideo
	if result.Kind == domain.ResultMulti {
		// the extractor reports channels as playlists; URL shape decides
		if domain.IsChannelURL(url) {
			kind = domain.KindChannel
		} else {
			kind = domain.KindPlaylist
		}
	}

	return domain.ContentInfo{Kind: kind, Metadata: metadata}
}

// ContentMix classifies a batch of URLs for the pre-flight summary
func (c *ContentClassifier) ContentMix(ctx context.Context, urls []string) domain.ContentMix {
	var mix domain.ContentMix
	for _, url := range urls {
		switch c.Classify(ctx, url).Kind {
		case domain.KindPlaylist:
			mix.Playlists++
		case domain.KindChannel:
			mix.Channels++
		default:
			mix.Videos++
		}
	}
	return mix
}
