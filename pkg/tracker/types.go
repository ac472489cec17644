package tracker

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

// BudgetWarner raises budget notifications for a project owner.
// *notify.Service implements it.
type BudgetWarner interface {
	CheckAndCreateBudgetWarnings(ctx context.Context, projectID, ownerID string, percentage float64, projectName string) ([]model.Notification, error)
}

// Option configures a ProjectTracker.
type Option func(*ProjectTracker)

// WithClock overrides the time source used for deadline and milestone alerts.
func WithClock(clock func() time.Time) Option {
	return func(t *ProjectTracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(t *ProjectTracker) {
		if tp != nil {
			t.tracer = tp.Tracer(tracerName)
		}
	}
}
