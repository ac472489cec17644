package importer_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/PnL-Guardian/internal/importer"
	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

func TestLoad_Fixture(t *testing.T) {
	p, err := importer.Load(filepath.Join("testdata", "warehouse.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "owner-1", p.OwnerID)
	assert.Equal(t, "Warehouse", p.Name)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, model.ProjectActive, p.Status)
	assert.True(t, p.ProjectValue.Equal(decimal.NewFromInt(100000)))
	assert.True(t, p.OverheadPercentage.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), p.Deadline)

	require.Len(t, p.Expenses, 2)
	steel := p.Expenses[0]
	assert.Equal(t, model.CategoryMaterials, steel.Category)
	require.True(t, steel.ActualCost.Valid)
	assert.Equal(t, "30000.5", steel.ActualCost.Decimal.String())
	require.NotNil(t, steel.DateIncurred)

	crew := p.Expenses[1]
	assert.False(t, crew.ActualCost.Valid)
	assert.True(t, crew.IsRecurring)
	assert.Equal(t, model.IntervalWeekly, crew.RecurringInterval)

	require.Len(t, p.Milestones, 2)
	assert.Equal(t, model.MilestoneCompleted, p.Milestones[0].Status)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), p.Milestones[0].TargetDate)
	assert.Equal(t, model.MilestonePending, p.Milestones[1].Status)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := importer.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read fixture")
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "owner_id: u\nproject_value: 1\ndeadline: 2026-01-01", "name is required"},
		{"missing owner", "name: x\nproject_value: 1\ndeadline: 2026-01-01", "owner_id is required"},
		{"zero value", "name: x\nowner_id: u\nproject_value: 0\ndeadline: 2026-01-01", "project_value must be positive"},
		{"bad value", "name: x\nowner_id: u\nproject_value: lots\ndeadline: 2026-01-01", "invalid amount"},
		{"missing deadline", "name: x\nowner_id: u\nproject_value: 1", "deadline is required"},
		{"bad deadline", "name: x\nowner_id: u\nproject_value: 1\ndeadline: soon", "invalid date"},
		{"overhead range", "name: x\nowner_id: u\nproject_value: 1\noverhead_percentage: 150\ndeadline: 2026-01-01", "overhead_percentage"},
		{"bad status", "name: x\nowner_id: u\nproject_value: 1\nstatus: paused\ndeadline: 2026-01-01", "unknown status"},
		{"bad category", "name: x\nowner_id: u\nproject_value: 1\ndeadline: 2026-01-01\nexpenses:\n  - name: a\n    category: food", "expenses[0]: unknown category"},
		{"milestone date", "name: x\nowner_id: u\nproject_value: 1\ndeadline: 2026-01-01\nmilestones:\n  - name: m", "milestones[0]: target_date is required"},
		{"malformed", "name: [x", "parse fixture"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.Parse([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParse_CollectsAllErrors(t *testing.T) {
	_, err := importer.Parse([]byte("project_value: -5"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "owner_id is required")
	assert.Contains(t, err.Error(), "deadline is required")
}

func TestParse_ChildIDs(t *testing.T) {
	data := `name: x
owner_id: u
project_value: 100
deadline: 2026-01-01
expenses:
  - id: exp-1
    name: Steel
  - name: Crew
milestones:
  - id: ms-1
    name: Roof
    target_date: 2026-01-01
`
	p, err := importer.Parse([]byte(data))
	require.NoError(t, err)

	require.Len(t, p.Expenses, 2)
	assert.Equal(t, "exp-1", p.Expenses[0].ID)
	assert.Empty(t, p.Expenses[1].ID)
	require.Len(t, p.Milestones, 1)
	assert.Equal(t, "ms-1", p.Milestones[0].ID)
}
