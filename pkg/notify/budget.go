package notify

import (
	"context"
	"fmt"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/alerts"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

// CheckAndCreateBudgetWarnings raises at most one budget notification for the
// project owner, chosen from the highest tier percentage has reached. Below
// the lowest tier it does nothing.
func (s *Service) CheckAndCreateBudgetWarnings(ctx context.Context, projectID, ownerID string, percentage float64, projectName string) ([]model.Notification, error) {
	tier, ok := alerts.TierFor(percentage)
	if !ok {
		return nil, nil
	}

	var message string
	if tier.Type == model.NotificationBudgetExceeded {
		message = fmt.Sprintf("Project \"%s\" has exceeded its budget (%.1f%%).", projectName, percentage)
	} else {
		message = fmt.Sprintf("Project \"%s\" has used %.1f%% of its budget.", projectName, percentage)
	}

	n, _, err := s.CreateOrRefresh(ctx, Intent{
		UserID:    ownerID,
		ProjectID: &projectID,
		Type:      tier.Type,
		Title:     tier.Title,
		Message:   message,
		Metadata: map[string]any{
			"percentage": percentage,
			"threshold":  tier.Threshold.IntPart(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("budget warning for project %s: %w", projectID, err)
	}
	return []model.Notification{*n}, nil
}
