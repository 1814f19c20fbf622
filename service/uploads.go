package service

import (
	"context"
	"mime/multipart"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/media"
	"github.com/sajag-gupta/riseup/metrics"
)

const (
	folderAudio   = "riseup/songs"
	folderArtwork = "riseup/artwork"
	folderEvents  = "riseup/events"
	folderMerch   = "riseup/merch"
	folderBlogs   = "riseup/blogs"
	folderAvatars = "riseup/avatars"
)

// assets uploads request files and remembers them so a failed write can
// release what was already hosted.
type assets struct {
	uploader media.Uploader
	metrics  *metrics.Metrics
}

func newAssets(uploader media.Uploader, m *metrics.Metrics) *assets {
	if uploader == nil {
		uploader = media.NewDisabled()
	}
	return &assets{uploader: uploader, metrics: m}
}

type uploadBatch struct {
	a        *assets
	uploaded []uploadedAsset
}

type uploadedAsset struct {
	publicID string
	kind     media.Kind
}

func (a *assets) batch() *uploadBatch {
	return &uploadBatch{a: a}
}

// put uploads file when it is present. A nil file yields a zero Asset.
func (b *uploadBatch) put(ctx context.Context, file *multipart.FileHeader, folder string, kind media.Kind) (domain.Asset, error) {
	if file == nil {
		return domain.Asset{}, nil
	}
	asset, err := media.UploadFile(ctx, b.a.uploader, file, folder, kind)
	b.a.metrics.Upload(string(kind), err)
	if err != nil {
		return domain.Asset{}, mediaError(err)
	}
	b.uploaded = append(b.uploaded, uploadedAsset{publicID: asset.PublicID, kind: kind})
	return asset, nil
}

// rollback destroys everything put in this batch.
func (b *uploadBatch) rollback(ctx context.Context) {
	for _, u := range b.uploaded {
		b.a.destroy(ctx, u.publicID, u.kind)
	}
	b.uploaded = nil
}

// destroy removes a hosted file. Failures are logged since the owning
// document is already gone or updated.
func (a *assets) destroy(ctx context.Context, publicID string, kind media.Kind) {
	if publicID == "" {
		return
	}
	if err := a.uploader.Destroy(ctx, publicID, kind); err != nil {
		logger.Warn(logger.EventMediaFailure, "Failed to delete media", logger.Fields(
			"public_id", publicID,
			"error", err.Error(),
		))
	}
}
