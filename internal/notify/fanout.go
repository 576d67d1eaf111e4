package notify

import (
	"context"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
)

// AlertPublisher receives newly created alerts
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.Alert)
}

// Fanout delivers each alert to every publisher in order
type Fanout []AlertPublisher

// PublishAlert implements AlertPublisher
func (f Fanout) PublishAlert(ctx context.Context, alert *domain.Alert) {
	for _, p := range f {
		if p != nil {
			p.PublishAlert(ctx, alert)
		}
	}
}
