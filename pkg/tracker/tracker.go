package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/alerts"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/storage"
)

const tracerName = "github.com/ogulcanaydogan/PnL-Guardian/pkg/tracker"

// ProjectTracker turns stored projects into reports with calculations and
// alerts, raising budget notifications as a side effect.
type ProjectTracker struct {
	store    storage.ProjectStore
	warnings BudgetWarner
	logger   *slog.Logger
	clock    func() time.Time
	tracer   trace.Tracer
}

// NewProjectTracker creates a tracker. warnings may be nil to disable
// budget notifications.
func NewProjectTracker(store storage.ProjectStore, warnings BudgetWarner, logger *slog.Logger, opts ...Option) *ProjectTracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &ProjectTracker{
		store:    store,
		warnings: warnings,
		logger:   logger,
		clock:    time.Now,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Evaluate computes the project's calculations and alerts. When the budget
// alert asks for it, a budget notification is created for the owner; a
// failure there is logged and does not affect the returned report.
func (t *ProjectTracker) Evaluate(ctx context.Context, project model.Project) *model.ProjectReport {
	ctx, span := t.tracer.Start(ctx, "tracker.Evaluate",
		trace.WithAttributes(attribute.String("project.id", project.ID)))
	defer span.End()

	calc := ComputeMetrics(project, project.Expenses)
	projectAlerts := alerts.GenerateProjectAlerts(project, calc.TotalActualCost, calc.OverheadCost, t.clock())

	if budget := projectAlerts.Budget; budget != nil {
		span.SetAttributes(
			attribute.String("budget.level", string(budget.Level)),
			attribute.Float64("budget.percentage", budget.Percentage),
		)
		if budget.ShouldNotify && t.warnings != nil {
			_, err := t.warnings.CheckAndCreateBudgetWarnings(ctx, project.ID, project.OwnerID, budget.Percentage, project.Name)
			if err != nil {
				span.RecordError(err)
				t.logger.Error("budget warning failed",
					"project_id", project.ID,
					"owner_id", project.OwnerID,
					"error", err,
				)
			}
		}
	}

	return &model.ProjectReport{
		Project:      project,
		Calculations: calc,
		Alerts:       &projectAlerts,
	}
}

// EvaluateByID loads a project with its expenses and milestones and
// evaluates it.
func (t *ProjectTracker) EvaluateByID(ctx context.Context, projectID string) (*model.ProjectReport, error) {
	project, err := t.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return t.Evaluate(ctx, *project), nil
}

// ListReports returns the owner's projects with calculations only. Listing
// never evaluates alerts or creates notifications.
func (t *ProjectTracker) ListReports(ctx context.Context, ownerID string) ([]model.ProjectReport, error) {
	ctx, span := t.tracer.Start(ctx, "tracker.ListReports",
		trace.WithAttributes(attribute.String("owner.id", ownerID)))
	defer span.End()

	projects, err := t.store.ListProjects(ctx, ownerID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list projects: %w", err)
	}

	reports := make([]model.ProjectReport, 0, len(projects))
	for _, p := range projects {
		reports = append(reports, model.ProjectReport{
			Project:      p,
			Calculations: ComputeMetrics(p, p.Expenses),
		})
	}
	return reports, nil
}
