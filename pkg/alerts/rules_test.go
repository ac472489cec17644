package alerts_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/alerts"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestBudgetAlertFor_TierBoundaries(t *testing.T) {
	tests := []struct {
		spent string
		level model.AlertLevel // empty means no alert
	}{
		{"499", ""},
		{"500", model.AlertInfo},
		{"749", model.AlertInfo},
		{"750", model.AlertWarning},
		{"899", model.AlertWarning},
		{"900", model.AlertDanger},
		{"999", model.AlertDanger},
		{"1000", model.AlertCritical},
		{"1500", model.AlertCritical},
	}

	for _, tt := range tests {
		t.Run(tt.spent, func(t *testing.T) {
			alert := alerts.BudgetAlertFor(
				decimal.NewFromInt(1000),
				decimal.RequireFromString(tt.spent),
				decimal.Zero,
			)
			if tt.level == "" {
				assert.Nil(t, alert)
				return
			}
			require.NotNil(t, alert)
			assert.Equal(t, tt.level, alert.Level)
			assert.True(t, alert.ShouldNotify)
		})
	}
}

func TestBudgetAlertFor_IncludesOverhead(t *testing.T) {
	alert := alerts.BudgetAlertFor(decimal.NewFromInt(100000), decimal.NewFromInt(70000), decimal.NewFromInt(10000))

	require.NotNil(t, alert)
	assert.Equal(t, model.AlertWarning, alert.Level)
	assert.Equal(t, 80.0, alert.Percentage)
	assert.Equal(t, "Warning: 80.0% of budget used. Consider reviewing expenses.", alert.Message)
}

func TestBudgetAlertFor_RoundsPercentageButComparesUnrounded(t *testing.T) {
	// 74.996% rounds to 75.00 for display but must stay in the info tier.
	alert := alerts.BudgetAlertFor(decimal.NewFromInt(100000), decimal.NewFromInt(74996), decimal.Zero)

	require.NotNil(t, alert)
	assert.Equal(t, model.AlertInfo, alert.Level)
	assert.Equal(t, 75.0, alert.Percentage)
}

func TestBudgetAlertFor_Messages(t *testing.T) {
	value := decimal.NewFromInt(1000)

	critical := alerts.BudgetAlertFor(value, decimal.NewFromInt(1042), decimal.Zero)
	require.NotNil(t, critical)
	assert.Equal(t, "Budget exceeded! You've spent 104.2% of the project value.", critical.Message)

	danger := alerts.BudgetAlertFor(value, decimal.NewFromInt(920), decimal.Zero)
	require.NotNil(t, danger)
	assert.Equal(t, "Critical: 92.0% of budget used. Only 8.0% remaining.", danger.Message)

	info := alerts.BudgetAlertFor(value, decimal.NewFromInt(550), decimal.Zero)
	require.NotNil(t, info)
	assert.Equal(t, "Info: 55.0% of budget used. Project is on track.", info.Message)
}

func TestBudgetAlertFor_ZeroProjectValue(t *testing.T) {
	assert.Nil(t, alerts.BudgetAlertFor(decimal.Zero, decimal.NewFromInt(10), decimal.Zero))
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		pct  float64
		want model.NotificationType
	}{
		{100, model.NotificationBudgetExceeded},
		{99.9, model.NotificationBudgetWarning90},
		{90, model.NotificationBudgetWarning90},
		{89.99, model.NotificationBudgetWarning75},
		{75, model.NotificationBudgetWarning75},
		{50, model.NotificationBudgetWarning50},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.pct), func(t *testing.T) {
			tier, ok := alerts.TierFor(tt.pct)
			require.True(t, ok)
			assert.Equal(t, tt.want, tier.Type)
		})
	}

	_, ok := alerts.TierFor(49.9)
	assert.False(t, ok)
}

func TestTiers_LevelsMatchNotificationTypes(t *testing.T) {
	for _, tier := range alerts.Tiers {
		alert := alerts.BudgetAlertFor(decimal.NewFromInt(100), tier.Threshold, decimal.Zero)
		require.NotNil(t, alert)
		assert.Equal(t, tier.Level, alert.Level)

		selected, ok := alerts.TierFor(alert.Percentage)
		require.True(t, ok)
		assert.Equal(t, tier.Type, selected.Type)
	}
}

func TestDeadlineAlertFor(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Time
		days     int
		overdue  bool
		message  string
	}{
		{"overdue", now.Add(-3 * 24 * time.Hour), -3, true, "Project is 3 days overdue!"},
		{"due now", now, 0, false, "Deadline approaching! Only 0 days remaining."},
		{"partial day rounds up", now.Add(6*24*time.Hour + time.Hour), 7, false, "Deadline approaching! Only 7 days remaining."},
		{"exactly seven", now.Add(7 * 24 * time.Hour), 7, false, "Deadline approaching! Only 7 days remaining."},
		{"exactly eight", now.Add(8 * 24 * time.Hour), 8, false, "8 days until deadline."},
		{"exactly thirty", now.Add(30 * 24 * time.Hour), 30, false, "30 days until deadline."},
		{"thirty one", now.Add(31 * 24 * time.Hour), 31, false, "31 days remaining."},
		{"half day overdue", now.Add(-12 * time.Hour), 0, false, "Deadline approaching! Only 0 days remaining."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := alerts.DeadlineAlertFor(tt.deadline, now)
			assert.Equal(t, tt.days, alert.DaysRemaining)
			assert.Equal(t, tt.overdue, alert.IsOverdue)
			assert.Equal(t, tt.message, alert.Message)
		})
	}
}

func TestMilestoneAlertFor(t *testing.T) {
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	t.Run("completed past milestone is not delayed", func(t *testing.T) {
		alert := alerts.MilestoneAlertFor([]model.Milestone{
			{Status: model.MilestoneCompleted, TargetDate: past},
		}, now)
		assert.Equal(t, 0, alert.Delayed)
		assert.Equal(t, "All milestones on track.", alert.Message)
	})

	t.Run("in progress past milestone is delayed", func(t *testing.T) {
		alert := alerts.MilestoneAlertFor([]model.Milestone{
			{Status: model.MilestoneInProgress, TargetDate: past},
		}, now)
		assert.Equal(t, 1, alert.Delayed)
		assert.Equal(t, "1 milestone delayed!", alert.Message)
	})

	t.Run("stored delayed status is recomputed", func(t *testing.T) {
		alert := alerts.MilestoneAlertFor([]model.Milestone{
			{Status: model.MilestoneDelayed, TargetDate: future},
			{Status: model.MilestonePending, TargetDate: past},
			{Status: model.MilestoneDelayed, TargetDate: past},
		}, now)
		assert.Equal(t, 2, alert.Delayed)
		assert.Equal(t, "2 milestones delayed!", alert.Message)
	})

	t.Run("empty", func(t *testing.T) {
		alert := alerts.MilestoneAlertFor(nil, now)
		assert.Equal(t, 0, alert.Delayed)
	})
}

func TestGenerateProjectAlerts(t *testing.T) {
	project := model.Project{
		ProjectValue: decimal.NewFromInt(100000),
		Deadline:     now.Add(10 * 24 * time.Hour),
		Milestones: []model.Milestone{
			{Status: model.MilestonePending, TargetDate: now.Add(-time.Hour)},
		},
	}

	got := alerts.GenerateProjectAlerts(project, decimal.NewFromInt(20000), decimal.NewFromInt(2000), now)

	assert.Nil(t, got.Budget)
	assert.Equal(t, 10, got.Deadline.DaysRemaining)
	assert.Equal(t, 1, got.Milestones.Delayed)
}
