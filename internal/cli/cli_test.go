package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `id: proj-1
owner_id: owner-1
name: Warehouse Fit-out
project_value: "100000"
overhead_percentage: "10"
deadline: 2030-01-01
expenses:
  - name: Steel
    category: materials
    estimated_cost: "60000"
    actual_cost: "50000"
milestones:
  - name: Handover
    target_date: 2029-12-01
`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := "storage:\n  path: " + filepath.Join(dir, "pnlg.db") + "\nlogging:\n  level: error\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.yaml"), []byte(fixture), 0o600))
	return cfgPath
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestProjectLifecycle(t *testing.T) {
	cfgPath := setup(t)

	out := run(t, "--config", cfgPath, "project", "import", "project.yaml")
	assert.Contains(t, out, `Imported project "Warehouse Fit-out"`)
	assert.Contains(t, out, "proj-1")

	out = run(t, "--config", cfgPath, "project", "list", "--owner", "owner-1")
	assert.Contains(t, out, "Warehouse Fit-out")
	assert.Contains(t, out, "USD 100000.00")

	out = run(t, "--config", cfgPath, "project", "show", "proj-1", "--json=true")
	var report struct {
		ID           string `json:"id"`
		Calculations struct {
			NetProfit float64 `json:"netProfit"`
		} `json:"calculations"`
		Alerts struct {
			Budget struct {
				Level      string  `json:"level"`
				Percentage float64 `json:"percentage"`
			} `json:"budget"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "proj-1", report.ID)
	assert.Equal(t, 45000.0, report.Calculations.NetProfit)
	assert.Equal(t, "info", report.Alerts.Budget.Level)
	assert.Equal(t, 55.0, report.Alerts.Budget.Percentage)

	out = run(t, "--config", cfgPath, "notifications", "list", "--user", "owner-1", "--status", "", "--limit", "50")
	assert.Contains(t, out, "BUDGET_WARNING_50")
	assert.Contains(t, out, "1 unread")

	// A second read refreshes the same notification.
	run(t, "--config", cfgPath, "project", "show", "proj-1", "--json=false")
	out = run(t, "--config", cfgPath, "notifications", "read-all", "--user", "owner-1")
	assert.Contains(t, out, "Marked 1 notifications read")
}

func TestProjectReimportReplacesChildren(t *testing.T) {
	cfgPath := setup(t)

	run(t, "--config", cfgPath, "project", "import", "project.yaml")
	out := run(t, "--config", cfgPath, "project", "import", "project.yaml")
	assert.Contains(t, out, "Expenses:    1")

	out = run(t, "--config", cfgPath, "project", "show", "proj-1", "--json=true")
	var report struct {
		Expenses     []json.RawMessage `json:"expenses"`
		Milestones   []json.RawMessage `json:"milestones"`
		Calculations struct {
			TotalActualCost float64 `json:"totalActualCost"`
		} `json:"calculations"`
		Alerts struct {
			Budget struct {
				Level string `json:"level"`
			} `json:"budget"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Expenses, 1)
	assert.Len(t, report.Milestones, 1)
	assert.Equal(t, 50000.0, report.Calculations.TotalActualCost)
	assert.Equal(t, "info", report.Alerts.Budget.Level)
}

func TestExpenseAddRaisesTier(t *testing.T) {
	cfgPath := setup(t)
	run(t, "--config", cfgPath, "project", "import", "project.yaml")

	out := run(t, "--config", cfgPath, "expense", "add",
		"--project", "proj-1", "--name", "Crane hire", "--category", "tools",
		"--estimated", "30000", "--actual", "30000", "--date", "", "--recurring", "")
	assert.Contains(t, out, "Expense added: Crane hire")
	// 80000 actual plus 10% overhead is 88% of the project value.
	assert.Contains(t, out, "Warning: 88.0% of budget used.")

	out = run(t, "--config", cfgPath, "notifications", "list", "--user", "owner-1", "--status", "unread", "--limit", "50")
	assert.Contains(t, out, "BUDGET_WARNING_75")
}

func TestMilestoneAdd(t *testing.T) {
	cfgPath := setup(t)
	run(t, "--config", cfgPath, "project", "import", "project.yaml")

	out := run(t, "--config", cfgPath, "milestone", "add",
		"--project", "proj-1", "--name", "Inspection", "--target", "2029-06-30",
		"--status", "in_progress", "--completion", "40")
	assert.Contains(t, out, "Milestone added: Inspection")
	assert.Contains(t, out, "due 2029-06-30")

	out = run(t, "--config", cfgPath, "project", "show", "proj-1", "--json=false")
	assert.Contains(t, out, "Inspection")
	assert.Contains(t, out, "IN_PROGRESS")
}

func TestVersion(t *testing.T) {
	out := run(t, "version")
	assert.Equal(t, "pnlg version dev\n", out)
}
