package media

import (
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"
)

func header(name, contentType string, size int64) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &multipart.FileHeader{Filename: name, Header: h, Size: size}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		file *multipart.FileHeader
		kind Kind
		ok   bool
	}{
		{"image ok", header("cover.PNG", "image/png", 1024), KindImage, true},
		{"audio ok", header("track.mp3", "audio/mpeg", 10 << 20), KindAudio, true},
		{"empty", header("cover.png", "image/png", 0), KindImage, false},
		{"too big image", header("cover.png", "image/png", 6 << 20), KindImage, false},
		{"bad extension", header("run.exe", "image/png", 10), KindImage, false},
		{"audio as image", header("track.mp3", "audio/mpeg", 10), KindImage, false},
		{"path traversal", header("../cover.png", "image/png", 10), KindImage, false},
		{"spoofed type", header("cover.png", "text/html", 10), KindImage, false},
		{"octet stream", header("cover.jpg", "application/octet-stream", 10), KindImage, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.file, tc.kind)
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatalf("expected error")
				}
				if !errors.Is(err, ErrInvalidFile) {
					t.Fatalf("expected ErrInvalidFile, got %v", err)
				}
			}
		})
	}
}

func TestDisabledUploader(t *testing.T) {
	u := NewDisabled()
	if _, err := u.Upload(context.Background(), nil, "x", KindImage); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := u.Destroy(context.Background(), "id", KindImage); err != nil {
		t.Fatalf("destroy should be a no-op: %v", err)
	}
}

func TestResourceType(t *testing.T) {
	if resourceType(KindAudio) != "video" || resourceType(KindImage) != "image" {
		t.Fatalf("unexpected resource type mapping")
	}
}
