package infrastructure

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"

	"github.com/yourusername/ytfile-go/internal/domain"
)

// Mp3Tagger writes ID3v2 tags into extracted MP3 files:
//   - title (TIT2) from the file name when the engine left it empty
//   - a comment (COMM) holding the source URL
type Mp3Tagger struct{}

// NewMp3Tagger creates a new tagger
func NewMp3Tagger() *Mp3Tagger {
	return &Mp3Tagger{}
}

// Tag updates the tags of the MP3 at path
func (t *Mp3Tagger) Tag(path string, req domain.DownloadRequest) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if strings.TrimSpace(tag.Title()) == "" {
		name := filepath.Base(path)
		tag.SetTitle(strings.TrimSuffix(name, filepath.Ext(name)))
	}

	tag.AddCommentFrame(id3v2.CommentFrame{
		Encoding:    id3v2.EncodingUTF8,
		Language:    "eng",
		Description: "Source",
		Text:        req.URL,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags: %w", err)
	}
	return nil
}
