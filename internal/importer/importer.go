// Package importer loads project fixtures from YAML files.
package importer

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

// file mirrors the YAML layout. Money is read as strings so that values
// such as 0.1 keep their exact decimal form.
type file struct {
	ID                 string          `yaml:"id"`
	OwnerID            string          `yaml:"owner_id"`
	Name               string          `yaml:"name"`
	Description        string          `yaml:"description"`
	ProjectValue       string          `yaml:"project_value"`
	OverheadPercentage string          `yaml:"overhead_percentage"`
	Currency           string          `yaml:"currency"`
	Status             string          `yaml:"status"`
	Deadline           string          `yaml:"deadline"`
	Expenses           []expenseFile   `yaml:"expenses"`
	Milestones         []milestoneFile `yaml:"milestones"`
}

type expenseFile struct {
	ID                string `yaml:"id"`
	Category          string `yaml:"category"`
	Name              string `yaml:"name"`
	Description       string `yaml:"description"`
	EstimatedCost     string `yaml:"estimated_cost"`
	ActualCost        string `yaml:"actual_cost"`
	IsRecurring       bool   `yaml:"is_recurring"`
	RecurringInterval string `yaml:"recurring_interval"`
	DateIncurred      string `yaml:"date_incurred"`
}

type milestoneFile struct {
	ID                   string `yaml:"id"`
	Name                 string `yaml:"name"`
	Description          string `yaml:"description"`
	TargetDate           string `yaml:"target_date"`
	CompletionPercentage int    `yaml:"completion_percentage"`
	Status               string `yaml:"status"`
}

// Load reads and validates a project fixture.
func Load(path string) (*model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML project fixture, applying defaults for
// currency (USD), status (ACTIVE) and overhead (0).
func Parse(data []byte) (*model.Project, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	var errs []error
	p := &model.Project{
		ID:          f.ID,
		OwnerID:     strings.TrimSpace(f.OwnerID),
		Name:        strings.TrimSpace(f.Name),
		Description: f.Description,
		Currency:    orDefault(f.Currency, "USD"),
		Status:      model.ProjectStatus(strings.ToUpper(orDefault(f.Status, string(model.ProjectActive)))),
	}

	if p.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if p.OwnerID == "" {
		errs = append(errs, errors.New("owner_id is required"))
	}
	switch p.Status {
	case model.ProjectDraft, model.ProjectActive, model.ProjectCompleted, model.ProjectArchived:
	default:
		errs = append(errs, fmt.Errorf("unknown status %q", f.Status))
	}

	value, err := parseMoney("project_value", f.ProjectValue, true)
	if err != nil {
		errs = append(errs, err)
	} else if !value.IsPositive() {
		errs = append(errs, errors.New("project_value must be positive"))
	}
	p.ProjectValue = value

	overhead, err := parseMoney("overhead_percentage", f.OverheadPercentage, false)
	if err != nil {
		errs = append(errs, err)
	} else if overhead.IsNegative() || overhead.GreaterThan(decimal.NewFromInt(100)) {
		errs = append(errs, errors.New("overhead_percentage must be between 0 and 100"))
	}
	p.OverheadPercentage = overhead

	if f.Deadline == "" {
		errs = append(errs, errors.New("deadline is required"))
	} else if p.Deadline, err = parseDate(f.Deadline); err != nil {
		errs = append(errs, fmt.Errorf("deadline: %w", err))
	}

	for i, e := range f.Expenses {
		expense, err := e.toModel()
		if err != nil {
			errs = append(errs, fmt.Errorf("expenses[%d]: %w", i, err))
			continue
		}
		p.Expenses = append(p.Expenses, expense)
	}
	for i, m := range f.Milestones {
		milestone, err := m.toModel()
		if err != nil {
			errs = append(errs, fmt.Errorf("milestones[%d]: %w", i, err))
			continue
		}
		p.Milestones = append(p.Milestones, milestone)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid fixture: %w", errors.Join(errs...))
	}
	return p, nil
}

func (e expenseFile) toModel() (model.Expense, error) {
	out := model.Expense{
		ID:                strings.TrimSpace(e.ID),
		Category:          model.ExpenseCategory(strings.ToUpper(orDefault(e.Category, string(model.CategoryOther)))),
		Name:              strings.TrimSpace(e.Name),
		Description:       e.Description,
		IsRecurring:       e.IsRecurring,
		RecurringInterval: model.RecurringInterval(strings.ToUpper(e.RecurringInterval)),
	}
	if out.Name == "" {
		return out, errors.New("name is required")
	}
	switch out.Category {
	case model.CategoryMaterials, model.CategoryManpower, model.CategoryTools, model.CategoryOther:
	default:
		return out, fmt.Errorf("unknown category %q", e.Category)
	}

	var err error
	if out.EstimatedCost, err = parseMoney("estimated_cost", e.EstimatedCost, false); err != nil {
		return out, err
	}
	if e.ActualCost != "" {
		actual, err := parseMoney("actual_cost", e.ActualCost, true)
		if err != nil {
			return out, err
		}
		out.ActualCost = decimal.NewNullDecimal(actual)
	}
	if e.DateIncurred != "" {
		d, err := parseDate(e.DateIncurred)
		if err != nil {
			return out, fmt.Errorf("date_incurred: %w", err)
		}
		out.DateIncurred = &d
	}
	return out, nil
}

func (m milestoneFile) toModel() (model.Milestone, error) {
	out := model.Milestone{
		ID:                   strings.TrimSpace(m.ID),
		Name:                 strings.TrimSpace(m.Name),
		Description:          m.Description,
		CompletionPercentage: m.CompletionPercentage,
		Status:               model.MilestoneStatus(strings.ToUpper(orDefault(m.Status, string(model.MilestonePending)))),
	}
	if out.Name == "" {
		return out, errors.New("name is required")
	}
	if out.CompletionPercentage < 0 || out.CompletionPercentage > 100 {
		return out, errors.New("completion_percentage must be between 0 and 100")
	}
	switch out.Status {
	case model.MilestonePending, model.MilestoneInProgress, model.MilestoneCompleted, model.MilestoneDelayed:
	default:
		return out, fmt.Errorf("unknown status %q", m.Status)
	}
	if m.TargetDate == "" {
		return out, errors.New("target_date is required")
	}
	var err error
	if out.TargetDate, err = parseDate(m.TargetDate); err != nil {
		return out, fmt.Errorf("target_date: %w", err)
	}
	return out, nil
}

func parseMoney(field, raw string, required bool) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return decimal.Zero, fmt.Errorf("%s is required", field)
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid amount %q", field, raw)
	}
	return d, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates (midnight UTC).
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return t, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
