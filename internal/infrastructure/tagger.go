package infrastructure

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bogem/id3v2"
	"go.uber.org/zap"

	"github.com/yourusername/tea-go/internal/domain"
)

// ClipTagger writes ID3 tags onto MP3 clips produced by the splitter,
// so players group them as tracks of one album named after the source
// video.
type ClipTagger struct {
	logger *zap.Logger
}

func NewClipTagger(logger *zap.Logger) *ClipTagger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClipTagger{logger: logger}
}

// TagClips tags every successful MP3 clip in results. Tagging is best
// effort: a clip that cannot be tagged is logged and skipped, the media
// itself is already on disk.
func (t *ClipTagger) TagClips(results []domain.ClipResult, album string) {
	total := len(results)
	for _, clip := range results {
		if !clip.Success || !strings.EqualFold(filepath.Ext(clip.Path), ".mp3") {
			continue
		}
		if err := t.tag(clip, album, total); err != nil {
			t.logger.Warn("Failed to tag clip",
				zap.String("path", clip.Path),
				zap.Error(err))
		}
	}
}

func (t *ClipTagger) tag(clip domain.ClipResult, album string, total int) error {
	tag, err := id3v2.Open(clip.Path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open mp3: %w", err)
	}
	defer tag.Close()

	tag.SetTitle(clip.Title)
	if album != "" {
		tag.SetAlbum(album)
	}
	tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, fmt.Sprintf("%d/%d", clip.Clip, total))
	tag.AddTextFrame("TYER", id3v2.EncodingUTF8, time.Now().Format("2006"))

	return tag.Save()
}
