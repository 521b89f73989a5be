package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"anonymizer-api/internal/anonymize"
	"anonymizer-api/internal/model"
	"anonymizer-api/internal/platform/static"
)

const processedPrefix = "processed_"

var (
	ErrNotAnImage    = errors.New("file must be an image")
	ErrImageTooLarge = errors.New("image too large")
)

// ProcessingError wraps a failure that happened after the upload was accepted.
type ProcessingError struct {
	Err error
}

func (e *ProcessingError) Error() string {
	return "processing error: " + e.Err.Error()
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

type ImageService struct {
	anonymizer  *anonymize.Anonymizer
	dir         *static.Dir
	jpegQuality int
	maxBytes    int64
	logger      *slog.Logger
}

type UploadInput struct {
	Email       string
	Filename    string
	ContentType string
	Data        []byte
}

func NewImageService(anonymizer *anonymize.Anonymizer, dir *static.Dir, jpegQuality int, maxBytes int64, logger *slog.Logger) *ImageService {
	return &ImageService{
		anonymizer:  anonymizer,
		dir:         dir,
		jpegQuality: jpegQuality,
		maxBytes:    maxBytes,
		logger:      logger,
	}
}

func (s *ImageService) MaxBytes() int64 {
	return s.maxBytes
}

// Process anonymizes one uploaded image and stores it as processed_<name>.
// Failures after the image check are returned as *ProcessingError.
func (s *ImageService) Process(ctx context.Context, input UploadInput) (*model.ProcessedImage, error) {
	if s.maxBytes > 0 && int64(len(input.Data)) > s.maxBytes {
		return nil, ErrImageTooLarge
	}
	if !IsImage(input.ContentType, input.Data) {
		return nil, ErrNotAnImage
	}

	original := SanitizeFilename(input.Filename)
	s.logger.InfoContext(ctx, "processing upload", "email", input.Email, "filename", original, "bytes", len(input.Data))

	img, format, err := anonymize.Decode(input.Data)
	if err != nil {
		return nil, &ProcessingError{Err: err}
	}

	res := s.anonymizer.Process(img)

	processed := processedPrefix + original
	err = s.dir.Save(processed, func(w io.Writer) error {
		return anonymize.EncodeJPEG(w, res.Image, s.jpegQuality)
	})
	if err != nil {
		return nil, &ProcessingError{Err: err}
	}

	b := res.Image.Bounds()
	s.logger.InfoContext(ctx, "upload processed",
		"email", input.Email,
		"processed", processed,
		"format", format,
		"faces", res.FacesDetected,
	)
	return &model.ProcessedImage{
		OriginalFilename:  original,
		ProcessedFilename: processed,
		ProcessedURL:      s.dir.URL(processed),
		FacesDetected:     res.FacesDetected,
		Width:             b.Dx(),
		Height:            b.Dy(),
	}, nil
}

// IsImage trusts an explicit image/* content type. Generic or missing types
// fall back to sniffing the payload.
func IsImage(contentType string, data []byte) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if strings.HasPrefix(ct, "image/") {
		return true
	}
	if ct != "" && !strings.HasPrefix(ct, "application/octet-stream") {
		return false
	}
	return strings.HasPrefix(mimetype.Detect(data).String(), "image/")
}

// SanitizeFilename strips any directory part a client may have sent.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "upload.jpg"
	}
	return name
}
