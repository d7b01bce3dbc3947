package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"bumpboard/app/models"
	"bumpboard/app/repositories"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxUploadBytes caps a whole submission payload.
const DefaultMaxUploadBytes int64 = 20 << 20

const maxNameLength = 100

var (
	// ErrUnsupportedMedia drops the file but lets the post through.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrAttachmentTooLarge fails the whole submission.
	ErrAttachmentTooLarge = errors.New("upload too large")
)

// Accepted media types and the extensions that identify them. The first
// extension is used when a stored name has to be corrected.
var mediaExtensions = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
	"video/mp4":  {".mp4"},
	"video/webm": {".webm"},
	"audio/mpeg": {".mp3"},
}

// Legacy names browsers still send that mimetype does not list as aliases.
var mediaAliases = map[string]string{
	"image/jpg":   "image/jpeg",
	"image/pjpeg": "image/jpeg",
	"image/x-png": "image/png",
}

// AttachmentService validates uploaded files and streams accepted ones into
// a FileStore.
type AttachmentService struct {
	files    repositories.FileStore
	maxBytes int64
}

// NewAttachmentService creates an AttachmentService. maxBytes <= 0 selects
// DefaultMaxUploadBytes.
func NewAttachmentService(files repositories.FileStore, maxBytes int64) *AttachmentService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &AttachmentService{files: files, maxBytes: maxBytes}
}

// MaxBytes is the upload cap.
func (s *AttachmentService) MaxBytes() int64 {
	return s.maxBytes
}

// TooLarge builds the error reported when the cap is exceeded.
func (s *AttachmentService) TooLarge() error {
	return fmt.Errorf("%w: limit is %s", ErrAttachmentTooLarge, humanize.IBytes(uint64(s.maxBytes)))
}

// Ingest checks the declared type and size of an upload and, when accepted,
// copies r into a newly named file. size is the declared length or -1 when
// unknown. The copy stops as soon as the cap is passed and the partial file
// is removed.
func (s *AttachmentService) Ingest(filename, declaredType string, size int64, r io.Reader) (*models.Attachment, error) {
	if size > s.maxBytes {
		return nil, s.TooLarge()
	}
	contentType, ok := AcceptedType(filename, declaredType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMedia, declaredType)
	}

	prefix, err := models.NewToken(models.FilePrefixLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate file prefix: %w", err)
	}
	name := prefix + "-" + withExtension(SanitizeFilename(filename), contentType)

	w, err := s.files.Create(name)
	if err != nil {
		return nil, err
	}
	n, copyErr := io.Copy(w, io.LimitReader(r, s.maxBytes+1))
	closeErr := w.Close()

	switch {
	case copyErr != nil:
		s.remove(name)
		return nil, fmt.Errorf("failed to store attachment: %w", copyErr)
	case n > s.maxBytes:
		s.remove(name)
		return nil, s.TooLarge()
	case closeErr != nil:
		s.remove(name)
		return nil, fmt.Errorf("failed to store attachment: %w", closeErr)
	}

	log.Printf("stored attachment %s (%s, %s)", name, contentType, humanize.IBytes(uint64(n)))
	return &models.Attachment{Name: name, ContentType: contentType, Size: n}, nil
}

// Discard removes the file behind an attachment that will not be referenced.
func (s *AttachmentService) Discard(att *models.Attachment) {
	if att == nil {
		return
	}
	s.remove(att.Name)
}

func (s *AttachmentService) remove(name string) {
	if err := s.files.Remove(name); err != nil {
		log.Printf("failed to remove attachment %s: %v", name, err)
	}
}

// AcceptedType resolves the declared content type of an upload against the
// whitelist. Aliases are matched through mimetype's type tree. An empty or
// generic declaration falls back to the file extension.
func AcceptedType(filename, declared string) (string, bool) {
	mt := strings.TrimSpace(declared)
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	if canonical, ok := mediaAliases[mt]; ok {
		return canonical, true
	}
	if mt == "" || mt == "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(filename))
		for accepted, exts := range mediaExtensions {
			for _, e := range exts {
				if e == ext {
					return accepted, true
				}
			}
		}
		return "", false
	}

	m := mimetype.Lookup(mt)
	if m == nil {
		return "", false
	}
	for accepted := range mediaExtensions {
		if m.Is(accepted) {
			return accepted, true
		}
	}
	return "", false
}

// SanitizeFilename strips directories and every character outside
// [A-Za-z0-9._-] from an uploaded file name.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	clean := strings.TrimLeft(b.String(), ".")
	if len(clean) > maxNameLength {
		ext := filepath.Ext(clean)
		if len(ext) > 10 {
			ext = ""
		}
		clean = clean[:maxNameLength-len(ext)] + ext
	}
	if clean == "" {
		clean = "file"
	}
	return clean
}

// withExtension makes sure the stored name carries an extension matching the
// accepted type, since rendering and serving go by extension.
func withExtension(name, contentType string) string {
	exts := mediaExtensions[contentType]
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if e == ext {
			return name
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + exts[0]
}
