package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

// Theme colors
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// levelStyles colors an alert line by severity.
var levelStyles = map[model.AlertLevel]lipgloss.Style{
	model.AlertInfo:     lipgloss.NewStyle().Foreground(ColorBlue),
	model.AlertWarning:  lipgloss.NewStyle().Foreground(ColorYellow),
	model.AlertDanger:   lipgloss.NewStyle().Foreground(ColorOrange),
	model.AlertCritical: lipgloss.NewStyle().Bold(true).Foreground(ColorRed),
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table. The first column is left-aligned,
// the rest are right-aligned.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	rule := func(left, mid, right string) string {
		var b strings.Builder
		b.WriteString(left)
		for i, w := range widths {
			b.WriteString(strings.Repeat("─", w+2))
			if i < numCols-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		return dimStyle.Render(b.String()) + "\n"
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮"))

	sep := dimStyle.Render("│")
	b.WriteString(sep)
	for i, h := range t.Headers {
		b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
		b.WriteString(sep)
	}
	b.WriteString("\n")
	b.WriteString(rule("├", "┼", "┤"))

	for _, row := range t.Rows {
		b.WriteString(sep)
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if i == 0 {
				b.WriteString(valueStyle.Render(" " + cell + pad + " "))
			} else {
				b.WriteString(valueStyle.Render(" " + pad + cell + " "))
			}
			b.WriteString(sep)
		}
		b.WriteString("\n")
	}

	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

// RenderReport renders a project report: financial figures, alerts, expenses
// and milestones.
func RenderReport(r *model.ProjectReport) string {
	var b strings.Builder
	b.WriteString(RenderTitle(r.Name))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s  ·  %s  ·  due %s",
		r.ID, r.Status, r.Deadline.Format(time.DateOnly))))
	b.WriteString("\n\n")

	c := r.Calculations
	b.WriteString(RenderTable(Table{
		Title:   "Financials",
		Headers: []string{"Figure", "Amount"},
		Rows: [][]string{
			{"Project value", formatMoney(r.Currency, r.ProjectValue)},
			{"Estimated cost", formatMoney(r.Currency, c.TotalEstimatedCost)},
			{"Actual cost", formatMoney(r.Currency, c.TotalActualCost)},
			{"Overhead", formatMoney(r.Currency, c.OverheadCost)},
			{"Remaining budget", formatMoney(r.Currency, c.RemainingBudget)},
			{"Gross profit", fmt.Sprintf("%s (%s)", formatMoney(r.Currency, c.GrossProfit), formatPercent(c.GrossProfitMargin))},
			{"Net profit", fmt.Sprintf("%s (%s)", formatMoney(r.Currency, c.NetProfit), formatPercent(c.NetProfitMargin))},
			{"Estimate used", formatPercent(c.BudgetPercentage)},
		},
	}))

	if r.Alerts != nil {
		b.WriteString("\n  ")
		b.WriteString(headerStyle.Render("Alerts"))
		b.WriteString("\n")
		if a := r.Alerts.Budget; a != nil {
			b.WriteString("  ")
			b.WriteString(levelStyles[a.Level].Render(fmt.Sprintf("[%s] %s", a.Level, a.Message)))
			b.WriteString("\n")
		}
		deadline := valueStyle
		if r.Alerts.Deadline.IsOverdue {
			deadline = levelStyles[model.AlertCritical]
		}
		b.WriteString("  ")
		b.WriteString(deadline.Render(r.Alerts.Deadline.Message))
		b.WriteString("\n  ")
		milestones := valueStyle
		if r.Alerts.Milestones.Delayed > 0 {
			milestones = levelStyles[model.AlertWarning]
		}
		b.WriteString(milestones.Render(r.Alerts.Milestones.Message))
		b.WriteString("\n")
	}

	if len(r.Expenses) > 0 {
		rows := make([][]string, 0, len(r.Expenses))
		for _, e := range r.Expenses {
			actual := "-"
			if e.ActualCost.Valid {
				actual = formatMoney(r.Currency, e.ActualCost.Decimal)
			}
			rows = append(rows, []string{
				e.Name,
				string(e.Category),
				formatMoney(r.Currency, e.EstimatedCost),
				actual,
			})
		}
		b.WriteString("\n")
		b.WriteString(RenderTable(Table{
			Title:   "Expenses",
			Headers: []string{"Name", "Category", "Estimated", "Actual"},
			Rows:    rows,
		}))
	}

	if len(r.Milestones) > 0 {
		rows := make([][]string, 0, len(r.Milestones))
		for _, m := range r.Milestones {
			rows = append(rows, []string{
				m.Name,
				string(m.Status),
				fmt.Sprintf("%d%%", m.CompletionPercentage),
				m.TargetDate.Format(time.DateOnly),
			})
		}
		b.WriteString("\n")
		b.WriteString(RenderTable(Table{
			Title:   "Milestones",
			Headers: []string{"Name", "Status", "Done", "Target"},
			Rows:    rows,
		}))
	}

	return b.String()
}

func formatMoney(currency string, amount decimal.Decimal) string {
	return currency + " " + amount.StringFixed(2)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
