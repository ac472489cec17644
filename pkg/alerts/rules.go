package alerts

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

// Tier is one budget-consumption threshold. Both the displayed budget alert
// and the notification selector read from Tiers so the two never disagree
// on a boundary.
type Tier struct {
	Threshold decimal.Decimal
	Level     model.AlertLevel
	Type      model.NotificationType
	Title     string
}

// Tiers is ordered highest threshold first; the first match wins.
var Tiers = []Tier{
	{Threshold: decimal.NewFromInt(100), Level: model.AlertCritical, Type: model.NotificationBudgetExceeded, Title: "Budget Exceeded!"},
	{Threshold: decimal.NewFromInt(90), Level: model.AlertDanger, Type: model.NotificationBudgetWarning90, Title: "Critical Budget Warning"},
	{Threshold: decimal.NewFromInt(75), Level: model.AlertWarning, Type: model.NotificationBudgetWarning75, Title: "Budget Warning"},
	{Threshold: decimal.NewFromInt(50), Level: model.AlertInfo, Type: model.NotificationBudgetWarning50, Title: "Budget Milestone"},
}

// TierForPercentage returns the highest tier whose threshold is at or below pct.
func TierForPercentage(pct decimal.Decimal) (Tier, bool) {
	for _, tier := range Tiers {
		if pct.GreaterThanOrEqual(tier.Threshold) {
			return tier, true
		}
	}
	return Tier{}, false
}

// TierFor is TierForPercentage for a plain float percentage.
func TierFor(pct float64) (Tier, bool) {
	return TierForPercentage(decimal.NewFromFloat(pct))
}

// BudgetAlertFor evaluates total spend including overhead against the
// project value. It returns nil below the lowest tier.
func BudgetAlertFor(projectValue, totalActualCost, overheadCost decimal.Decimal) *model.BudgetAlert {
	if !projectValue.IsPositive() {
		return nil
	}

	pct := totalActualCost.Add(overheadCost).Div(projectValue).Mul(decimal.NewFromInt(100))
	tier, ok := TierForPercentage(pct)
	if !ok {
		return nil
	}

	p := pct.InexactFloat64()
	var msg string
	switch tier.Level {
	case model.AlertCritical:
		msg = fmt.Sprintf("Budget exceeded! You've spent %.1f%% of the project value.", p)
	case model.AlertDanger:
		msg = fmt.Sprintf("Critical: %.1f%% of budget used. Only %.1f%% remaining.", p, 100-p)
	case model.AlertWarning:
		msg = fmt.Sprintf("Warning: %.1f%% of budget used. Consider reviewing expenses.", p)
	default:
		msg = fmt.Sprintf("Info: %.1f%% of budget used. Project is on track.", p)
	}

	return &model.BudgetAlert{
		Level:        tier.Level,
		Percentage:   pct.Round(2).InexactFloat64(),
		Message:      msg,
		ShouldNotify: true,
	}
}

// DeadlineAlertFor reports whole days left until deadline, rounded up.
func DeadlineAlertFor(deadline, now time.Time) model.DeadlineAlert {
	days := int(math.Ceil(deadline.Sub(now).Hours() / 24))
	overdue := days < 0

	var msg string
	switch {
	case overdue:
		msg = fmt.Sprintf("Project is %d days overdue!", -days)
	case days <= 7:
		msg = fmt.Sprintf("Deadline approaching! Only %d days remaining.", days)
	case days <= 30:
		msg = fmt.Sprintf("%d days until deadline.", days)
	default:
		msg = fmt.Sprintf("%d days remaining.", days)
	}

	return model.DeadlineAlert{
		DaysRemaining: days,
		IsOverdue:     overdue,
		Message:       msg,
	}
}

// MilestoneAlertFor counts milestones that are not completed and whose target
// date has passed. A stored DELAYED status is ignored; lateness is recomputed.
func MilestoneAlertFor(milestones []model.Milestone, now time.Time) model.MilestoneAlert {
	delayed := 0
	for _, m := range milestones {
		if m.Status != model.MilestoneCompleted && m.TargetDate.Before(now) {
			delayed++
		}
	}

	msg := "All milestones on track."
	switch {
	case delayed == 1:
		msg = "1 milestone delayed!"
	case delayed > 1:
		msg = fmt.Sprintf("%d milestones delayed!", delayed)
	}

	return model.MilestoneAlert{Delayed: delayed, Message: msg}
}

// GenerateProjectAlerts composes the budget, deadline and milestone alerts.
func GenerateProjectAlerts(project model.Project, totalActualCost, overheadCost decimal.Decimal, now time.Time) model.ProjectAlerts {
	return model.ProjectAlerts{
		Budget:     BudgetAlertFor(project.ProjectValue, totalActualCost, overheadCost),
		Deadline:   DeadlineAlertFor(project.Deadline, now),
		Milestones: MilestoneAlertFor(project.Milestones, now),
	}
}
