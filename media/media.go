// Package media stores uploaded files with a hosting provider and checks
// uploads before they are sent.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/sajag-gupta/riseup/domain"
)

type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

var (
	ErrUnavailable = errors.New("media uploads are not configured")
	ErrInvalidFile = errors.New("invalid file")
)

// Uploader hosts files and returns where they ended up.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, folder string, kind Kind) (domain.Asset, error)
	Destroy(ctx context.Context, publicID string, kind Kind) error
}

// Rules constrain what an upload of a kind may look like.
type Rules struct {
	MaxFileSize       int64
	AllowedMimeTypes  []string
	AllowedExtensions []string
}

var rules = map[Kind]Rules{
	KindImage: {
		MaxFileSize:       5 * 1024 * 1024,
		AllowedMimeTypes:  []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	},
	KindAudio: {
		MaxFileSize:       50 * 1024 * 1024,
		AllowedMimeTypes:  []string{"audio/mpeg", "audio/mp3", "audio/wav", "audio/x-wav", "audio/ogg", "audio/flac", "audio/aac", "audio/mp4"},
		AllowedExtensions: []string{".mp3", ".wav", ".ogg", ".flac", ".aac", ".m4a"},
	},
}

func RulesFor(kind Kind) Rules {
	return rules[kind]
}

// Validate checks size, extension, filename and declared MIME type of a
// multipart file.
func Validate(file *multipart.FileHeader, kind Kind) error {
	r, ok := rules[kind]
	if !ok {
		return fmt.Errorf("%w: unknown media kind %q", ErrInvalidFile, kind)
	}
	if file.Size == 0 {
		return fmt.Errorf("%w: file is empty", ErrInvalidFile)
	}
	if file.Size > r.MaxFileSize {
		return fmt.Errorf("%w: file exceeds %d MB", ErrInvalidFile, r.MaxFileSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !contains(r.AllowedExtensions, ext) {
		return fmt.Errorf("%w: extension %q is not allowed", ErrInvalidFile, ext)
	}

	name := filepath.Base(file.Filename)
	if name != file.Filename || strings.Contains(name, "..") {
		return fmt.Errorf("%w: invalid filename", ErrInvalidFile)
	}

	// The header can be spoofed; the provider re-detects the type.
	contentType := file.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/octet-stream" && !contains(r.AllowedMimeTypes, contentType) {
		return fmt.Errorf("%w: type %q is not allowed", ErrInvalidFile, contentType)
	}
	return nil
}

// UploadFile validates and uploads a multipart file in one step.
func UploadFile(ctx context.Context, u Uploader, file *multipart.FileHeader, folder string, kind Kind) (domain.Asset, error) {
	if err := Validate(file, kind); err != nil {
		return domain.Asset{}, err
	}
	f, err := file.Open()
	if err != nil {
		return domain.Asset{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return u.Upload(ctx, f, folder, kind)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

type disabled struct{}

// NewDisabled is used when no provider credentials are configured.
func NewDisabled() Uploader {
	return disabled{}
}

func (disabled) Upload(context.Context, io.Reader, string, Kind) (domain.Asset, error) {
	return domain.Asset{}, ErrUnavailable
}

func (disabled) Destroy(context.Context, string, Kind) error {
	return nil
}
