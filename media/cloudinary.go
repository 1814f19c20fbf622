package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/logger"
)

type cloudinaryUploader struct {
	cld     *cloudinary.Cloudinary
	timeout time.Duration
}

func NewCloudinary(cloudName, apiKey, apiSecret string, timeout time.Duration) (Uploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &cloudinaryUploader{cld: cld, timeout: timeout}, nil
}

// Cloudinary files audio under the video resource type.
func resourceType(kind Kind) string {
	if kind == KindAudio {
		return "video"
	}
	return "image"
}

func (u *cloudinaryUploader) Upload(ctx context.Context, r io.Reader, folder string, kind Kind) (domain.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	resp, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       folder,
		ResourceType: resourceType(kind),
	})
	if err == nil && resp.Error.Message != "" {
		err = errors.New(resp.Error.Message)
	}
	if err != nil {
		logger.Error(logger.EventMediaFailure, "Upload failed", logger.Fields(
			"folder", folder,
			"kind", string(kind),
			"error", err.Error(),
		))
		return domain.Asset{}, fmt.Errorf("upload to %s: %w", folder, err)
	}

	return domain.Asset{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

func (u *cloudinaryUploader) Destroy(ctx context.Context, publicID string, kind Kind) error {
	if publicID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	resp, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType(kind),
	})
	if err == nil && resp.Error.Message != "" {
		err = errors.New(resp.Error.Message)
	}
	if err != nil {
		return fmt.Errorf("destroy %s: %w", publicID, err)
	}
	return nil
}
