// Package ticket issues QR-coded tickets for the event lines of a paid order.
package ticket

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/media"
	"github.com/skip2/go-qrcode"
)

const (
	qrSize   = 256
	qrFolder = "riseup/tickets"
)

type Generator struct {
	uploader media.Uploader
}

func NewGenerator(uploader media.Uploader) *Generator {
	return &Generator{uploader: uploader}
}

// Code is the payload printed on ticket n (1-based) of an event line.
func Code(orderID, eventID string, n int) string {
	return fmt.Sprintf("%s:%s:%d", orderID, eventID, n)
}

// PNG renders the QR image for a ticket code.
func PNG(code string) ([]byte, error) {
	return qrcode.Encode(code, qrcode.Medium, qrSize)
}

// Issue creates one ticket per unit of every event line. A ticket whose QR
// image cannot be hosted is still issued with its code.
func (g *Generator) Issue(ctx context.Context, order *domain.Order) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	for _, item := range order.Items {
		if item.Type != domain.ItemTypeEvent {
			continue
		}
		for n := 1; n <= item.Quantity; n++ {
			code := Code(order.ID, item.ID, n)
			png, err := PNG(code)
			if err != nil {
				return tickets, fmt.Errorf("encode ticket %s: %w", code, err)
			}

			t := domain.Ticket{EventID: item.ID, Code: code}
			asset, err := g.uploader.Upload(ctx, bytes.NewReader(png), qrFolder, media.KindImage)
			if err != nil {
				logger.Warn(logger.EventMediaFailure, "Ticket QR upload failed", logger.Fields(
					"order_id", order.ID,
					"event_id", item.ID,
					"error", err.Error(),
				))
			} else {
				t.QRURL = asset.URL
			}
			tickets = append(tickets, t)
		}
	}
	return tickets, nil
}
