package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

// stubClassifier returns a fixed classification
type stubClassifier struct {
	info domain.ContentInfo
}

func (s *stubClassifier) Classify(ctx context.Context, url string) domain.ContentInfo {
	return s.info
}

func fastRetryConfig() WorkerConfig {
	return WorkerConfig{MaxRetries: 3, RetryDelay: time.Millisecond}
}

func newTestWorker(ext *mockExtractor, kind domain.ContentKind) *DownloadWorker {
	cls := &stubClassifier{info: domain.ContentInfo{Kind: kind}}
	return NewDownloadWorker(cls, ext, nil, fastRetryConfig(), zap.NewNop())
}

func TestWorkerRun_SuccessFirstAttempt(t *testing.T) {
	ext := &mockExtractor{
		fetch: func(ctx context.Context, req domain.FetchRequest) (*domain.ExtractResult, error) {
			return &domain.ExtractResult{Kind: domain.ResultSingle, Title: "A Video"}, nil
		},
	}
	w := newTestWorker(ext, domain.KindVideo)

	outcome := w.Run(context.Background(), domain.URLTask{URL: "https://youtu.be/a", Slot: 1}, FetchOptions{OutputRoot: "out"})

	assert.True(t, outcome.Success)
	assert.Equal(t, 1, outcome.ItemCount)
	assert.Equal(t, "A Video", outcome.Title)
	assert.Empty(t, outcome.Error)
	_, fetches := ext.calls()
	assert.Equal(t, 1, fetches)
}

func TestWorkerRun_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	ext := &mockExtractor{
		fetch: func(ctx context.Context, req domain.FetchRequest) (*domain.ExtractResult, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("network error")
			}
			return &domain.ExtractResult{
				Kind:    domain.ResultMulti,
				Title:   "My Playlist",
				Entries: []domain.ExtractEntry{{Title: "a"}, {Title: "b"}},
			}, nil
		},
	}
	w := newTestWorker(ext, domain.KindPlaylist)

	outcome := w.Run(context.Background(), domain.URLTask{URL: "https://youtube.com/playlist?list=x", Slot: 1}, FetchOptions{})

	assert.True(t, outcome.Success)
	assert.Equal(t, 2, outcome.ItemCount)
	assert.Equal(t, 3, attempts)
}

func TestWorkerRun_ExhaustsRetries(t *testing.T) {
	ext := &mockExtractor{
		fetch: func(ctx context.Context, req domain.FetchRequest) (*domain.ExtractResult, error) {
			return nil, errors.New("network error")
		},
	}
	w := newTestWorker(ext, domain.KindVideo)

	outcome := w.Run(context.Background(), domain.URLTask{URL: "https://youtu.be/a", Slot: 1}, FetchOptions{})

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "failed after 3 attempts")
	_, fetches := ext.calls()
	assert.Equal(t, 3, fetches)
}

func TestWorkerRun_BackoffSequence(t *testing.T) {
	ext := &mockExtractor{
		fetch: func(ctx context.Context, req domain.FetchRequest) (*domain.ExtractResult, error) {
			return nil, errors.New("network error")
		},
	}
	cls := &stubClassifier{info: domain.ContentInfo{Kind: domain.KindVideo}}
	w := NewDownloadWorker(cls, ext, nil, DefaultWorkerConfig(), zap.NewNop())

	var delays []time.Duration
	w.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	outcome := w.Run(context.Background(), domain.URLTask{URL: "https://youtu.be/a", Slot: 1}, FetchOptions{})

	assert.False(t, outcome.Success)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, delays)
}

func TestWorkerRun_NilResultFailsWithoutRetry(t *testing.T) {
	ext := &mockExtractor{
		fetch: func(ctx context.Context, req domain.FetchRequest) (*domain.ExtractResult, error) {
			return nil, nil
		},
	}
	w := newTestWorker(ext, domain.KindVideo)

	outcome := w.Run(context.Background(), domain.URLTask{URL: "https://youtu.be/a", Slot: 1}, FetchOptions{})

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "private or unavailable")
	_, fetches := ext.calls()
	assert.Equal(t, 1, fetches)
}

func TestWorkerRun_EmptyPlaylistFailsWithoutRetry(t *testing.T) {
	ext := &mockExtractor{
		fetch: func(ctx context.Context, req domain.FetchRequest) (*domain.ExtractResult, error) {
			return &domain.ExtractResult{Kind: domain.ResultMulti, Title: "Empty"}, nil
		},
	}
	w := newTestWorker(ext, domain.KindPlaylist)

	outcome := w.Run(context.Background(), domain.URLTask{URL: "https://youtube.com/playlist?list=x", Slot: 1}, FetchOptions{})

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "appears to be empty or private")
	_, fetches := ext.calls()
	assert.Equal(t, 1, fetches)
}

func TestWorkerRun_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ext := &mockExtractor{
		fetch: func(ctx context.Context, req domain.FetchRequest) (*domain.ExtractResult, error) {
			cancel()
			return nil, errors.New("network error")
		},
	}
	cls := &stubClassifier{info: domain.ContentInfo{Kind: domain.KindVideo}}
	w := NewDownloadWorker(cls, ext, nil, WorkerConfig{MaxRetries: 3, RetryDelay: time.Hour}, zap.NewNop())

	outcome := w.Run(ctx, domain.URLTask{URL: "https://youtu.be/a", Slot: 1}, FetchOptions{})

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, context.Canceled.Error())
	_, fetches := ext.calls()
	assert.Equal(t, 1, fetches)
}

func TestWorkerRun_OutputTemplatePerKind(t *testing.T) {
	cases := []struct {
		kind     domain.ContentKind
		expected string
	}{
		{domain.KindVideo, filepath.Join("out", "%(title)s.%(ext)s")},
		{domain.KindPlaylist, filepath.Join("out", "%(playlist_title)s", "%(playlist_index)s-%(title)s.%(ext)s")},
		{domain.KindChannel, filepath.Join("out", "%(uploader)s", "%(upload_date)s-%(title)s.%(ext)s")},
	}

	for _, tc := range cases {
		var got string
		ext := &mockExtractor{
			fetch: func(ctx context.Context, req domain.FetchRequest) (*domain.ExtractResult, error) {
				got = req.OutputTemplate
				return &domain.ExtractResult{
					Kind:    domain.ResultMulti,
					Entries: []domain.ExtractEntry{{Title: "x"}},
				}, nil
			},
		}
		w := newTestWorker(ext, tc.kind)

		w.Run(context.Background(), domain.URLTask{URL: "https://youtu.be/a", Slot: 1}, FetchOptions{OutputRoot: "out"})

		assert.Equal(t, tc.expected, got, string(tc.kind))
	}
}

type upperCleaner struct{}

func (upperCleaner) CleanTitle(title string) string {
	return "Cleaned " + title
}

func TestWorkerRun_CleanedTitleInTemplate(t *testing.T) {
	var got string
	ext := &mockExtractor{
		fetch: func(ctx context.Context, req domain.FetchRequest) (*domain.ExtractResult, error) {
			got = req.OutputTemplate
			return &domain.ExtractResult{Kind: domain.ResultSingle, Title: "raw"}, nil
		},
	}
	cls := &stubClassifier{info: domain.ContentInfo{
		Kind:     domain.KindVideo,
		Metadata: map[string]interface{}{"title": "raw"},
	}}
	w := NewDownloadWorker(cls, ext, upperCleaner{}, fastRetryConfig(), zap.NewNop())

	outcome := w.Run(context.Background(), domain.URLTask{URL: "https://youtu.be/a", Slot: 1}, FetchOptions{OutputRoot: "out"})

	require.True(t, outcome.Success)
	assert.Equal(t, filepath.Join("out", "Cleaned raw.%(ext)s"), got)
}
