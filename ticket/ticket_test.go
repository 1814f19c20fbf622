package ticket

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUploader struct {
	uploads int
}

func (u *recordingUploader) Upload(_ context.Context, r io.Reader, folder string, kind media.Kind) (domain.Asset, error) {
	data, _ := io.ReadAll(r)
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		return domain.Asset{}, io.ErrUnexpectedEOF
	}
	u.uploads++
	return domain.Asset{URL: "https://cdn.test/" + folder + "/qr.png"}, nil
}

func (u *recordingUploader) Destroy(context.Context, string, media.Kind) error { return nil }

func TestIssueCreatesOneTicketPerEventUnit(t *testing.T) {
	up := &recordingUploader{}
	g := NewGenerator(up)
	order := &domain.Order{
		ID: "ord-1",
		Items: []domain.OrderItem{
			{Type: domain.ItemTypeMerch, ID: "m1", Quantity: 3},
			{Type: domain.ItemTypeEvent, ID: "e1", Quantity: 2},
		},
	}

	tickets, err := g.Issue(context.Background(), order)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "ord-1:e1:1", tickets[0].Code)
	assert.Equal(t, "ord-1:e1:2", tickets[1].Code)
	assert.Equal(t, "https://cdn.test/riseup/tickets/qr.png", tickets[0].QRURL)
	assert.Equal(t, 2, up.uploads)
}

func TestIssueKeepsTicketWhenUploadUnavailable(t *testing.T) {
	logger.Init(logger.Config{Output: io.Discard})
	g := NewGenerator(media.NewDisabled())
	order := &domain.Order{
		ID:    "ord-2",
		Items: []domain.OrderItem{{Type: domain.ItemTypeEvent, ID: "e9", Quantity: 1}},
	}

	tickets, err := g.Issue(context.Background(), order)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "ord-2:e9:1", tickets[0].Code)
	assert.Empty(t, tickets[0].QRURL)
}
