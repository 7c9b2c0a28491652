package preprocess

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/RishiKendai/winnow/internal/models"
)

// ErrDocumentTooLarge is returned for inputs above the configured size limit.
var ErrDocumentTooLarge = errors.New("document too large")

type Service struct {
	maxBytes int
}

// NewService creates a preprocessor rejecting documents over maxBytes.
// A non-positive maxBytes disables the limit.
func NewService(maxBytes int) *Service {
	return &Service{
		maxBytes: maxBytes,
	}
}

// Prepare decodes, strips comments from and normalizes one document.
func (s *Service) Prepare(in models.DocumentInput) (models.Document, error) {
	return s.PrepareBytes(in.Name, in.Language, []byte(in.Content))
}

// PrepareBytes is Prepare for raw file contents.
func (s *Service) PrepareBytes(name, lang string, raw []byte) (models.Document, error) {
	if s.maxBytes > 0 && len(raw) > s.maxBytes {
		return models.Document{}, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrDocumentTooLarge, name, len(raw), s.maxBytes)
	}

	parsed, err := ParseLanguage(lang)
	if err != nil {
		return models.Document{}, err
	}

	cleaned := Normalize(StripComments(Decode(raw), parsed))

	// Raw bytes and language together decide the normalized text.
	h := sha256.New()
	h.Write(raw)
	h.Write([]byte{0})
	h.Write([]byte(parsed))

	return models.Document{
		Name:     name,
		Language: string(parsed),
		Content:  cleaned,
		Length:   utf8.RuneCountInString(cleaned),
		Digest:   hex.EncodeToString(h.Sum(nil)),
	}, nil
}
