package notify

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryReporter forwards skipped-entity failures to Sentry
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter creates a reporter with its own Sentry client
func NewSentryReporter(options sentry.ClientOptions) (*SentryReporter, error) {
	client, err := sentry.NewClient(options)
	if err != nil {
		return nil, err
	}
	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// ReportFailure captures err with the given tags
func (r *SentryReporter) ReportFailure(ctx context.Context, err error, tags map[string]string) {
	hub := r.hub
	if ctxHub := sentry.GetHubFromContext(ctx); ctxHub != nil {
		hub = ctxHub
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetLevel(sentry.LevelError)
		hub.CaptureException(err)
	})
}

// Flush waits for buffered events to be delivered
func (r *SentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}
