package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

const projectColumns = `id, owner_id, name, description, project_value, overhead_percentage,
	currency, status, deadline, created_at, updated_at`

const expenseColumns = `id, project_id, category, name, description, estimated_cost, actual_cost,
	is_recurring, recurring_interval, date_incurred, created_at, updated_at`

const milestoneColumns = `id, project_id, name, description, target_date, completion_percentage,
	status, created_at, updated_at`

func (s *Store) SaveProject(ctx context.Context, project *model.Project) error {
	if project.ID == "" {
		project.ID = s.newID()
	}
	now := s.now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO projects (`+projectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
			  owner_id = excluded.owner_id,
			  name = excluded.name,
			  description = excluded.description,
			  project_value = excluded.project_value,
			  overhead_percentage = excluded.overhead_percentage,
			  currency = excluded.currency,
			  status = excluded.status,
			  deadline = excluded.deadline,
			  updated_at = excluded.updated_at`),
			project.ID, project.OwnerID, project.Name, project.Description,
			project.ProjectValue.String(), project.OverheadPercentage.String(),
			project.Currency, string(project.Status), toMillis(project.Deadline),
			toMillis(project.CreatedAt), toMillis(project.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("save project: %w", err)
		}

		for i := range project.Expenses {
			e := &project.Expenses[i]
			e.ProjectID = project.ID
			if err := s.putExpense(ctx, tx, e); err != nil {
				return err
			}
		}
		for i := range project.Milestones {
			m := &project.Milestones[i]
			m.ProjectID = project.ID
			if err := s.putMilestone(ctx, tx, m); err != nil {
				return err
			}
		}

		expenseIDs := make([]string, len(project.Expenses))
		for i, e := range project.Expenses {
			expenseIDs[i] = e.ID
		}
		if err := s.pruneChildren(ctx, tx, "expenses", project.ID, expenseIDs); err != nil {
			return err
		}
		milestoneIDs := make([]string, len(project.Milestones))
		for i, m := range project.Milestones {
			milestoneIDs[i] = m.ID
		}
		return s.pruneChildren(ctx, tx, "milestones", project.ID, milestoneIDs)
	})
}

// pruneChildren deletes the project's rows in table whose id is not in keep.
func (s *Store) pruneChildren(ctx context.Context, q queryer, table, projectID string, keep []string) error {
	query := "DELETE FROM " + table + " WHERE project_id = ?"
	args := []any{projectID}
	if len(keep) > 0 {
		query += " AND id NOT IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(keep)), ", ") + ")"
		for _, id := range keep {
			args = append(args, id)
		}
	}
	if _, err := q.ExecContext(ctx, s.rebind(query), args...); err != nil {
		return fmt.Errorf("prune %s: %w", table, err)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id)
	p, err := scanProject(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	if err := s.loadChildren(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context, ownerID string) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if ownerID != "" {
		query += " WHERE owner_id = ?"
		args = append(args, ownerID)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	for i := range projects {
		if err := s.loadChildren(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (s *Store) AddExpense(ctx context.Context, expense *model.Expense) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireProject(ctx, tx, expense.ProjectID); err != nil {
			return err
		}
		return s.putExpense(ctx, tx, expense)
	})
}

func (s *Store) AddMilestone(ctx context.Context, milestone *model.Milestone) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.requireProject(ctx, tx, milestone.ProjectID); err != nil {
			return err
		}
		return s.putMilestone(ctx, tx, milestone)
	})
}

func (s *Store) requireProject(ctx context.Context, q queryer, id string) error {
	var exists int
	err := q.QueryRowContext(ctx, s.rebind("SELECT 1 FROM projects WHERE id = ?"), id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	return nil
}

func (s *Store) putExpense(ctx context.Context, q queryer, e *model.Expense) error {
	if e.ID == "" {
		e.ID = s.newID()
	}
	now := s.now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	var actual sql.NullString
	if e.ActualCost.Valid {
		actual = sql.NullString{String: e.ActualCost.Decimal.String(), Valid: true}
	}

	_, err := q.ExecContext(ctx, s.rebind(`INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  category = excluded.category,
		  name = excluded.name,
		  description = excluded.description,
		  estimated_cost = excluded.estimated_cost,
		  actual_cost = excluded.actual_cost,
		  is_recurring = excluded.is_recurring,
		  recurring_interval = excluded.recurring_interval,
		  date_incurred = excluded.date_incurred,
		  updated_at = excluded.updated_at`),
		e.ID, e.ProjectID, string(e.Category), e.Name, e.Description,
		e.EstimatedCost.String(), actual, e.IsRecurring, string(e.RecurringInterval),
		nullMillis(e.DateIncurred), toMillis(e.CreatedAt), toMillis(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save expense: %w", err)
	}
	return nil
}

func (s *Store) putMilestone(ctx context.Context, q queryer, m *model.Milestone) error {
	if m.ID == "" {
		m.ID = s.newID()
	}
	now := s.now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	_, err := q.ExecContext(ctx, s.rebind(`INSERT INTO milestones (`+milestoneColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  name = excluded.name,
		  description = excluded.description,
		  target_date = excluded.target_date,
		  completion_percentage = excluded.completion_percentage,
		  status = excluded.status,
		  updated_at = excluded.updated_at`),
		m.ID, m.ProjectID, m.Name, m.Description, toMillis(m.TargetDate),
		m.CompletionPercentage, string(m.Status), toMillis(m.CreatedAt), toMillis(m.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save milestone: %w", err)
	}
	return nil
}

func (s *Store) loadChildren(ctx context.Context, p *model.Project) error {
	expenses, err := s.listExpenses(ctx, p.ID)
	if err != nil {
		return err
	}
	milestones, err := s.listMilestones(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Expenses = expenses
	p.Milestones = milestones
	return nil
}

func (s *Store) listExpenses(ctx context.Context, projectID string) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+expenseColumns+` FROM expenses WHERE project_id = ? ORDER BY created_at, id`), projectID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var (
			e                    model.Expense
			category, interval   string
			dateIncurred         sql.NullInt64
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&e.ID, &e.ProjectID, &category, &e.Name, &e.Description,
			&e.EstimatedCost, &e.ActualCost, &e.IsRecurring, &interval, &dateIncurred,
			&createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		e.Category = model.ExpenseCategory(category)
		e.RecurringInterval = model.RecurringInterval(interval)
		e.DateIncurred = timeFromNull(dateIncurred)
		e.CreatedAt = fromMillis(createdAt)
		e.UpdatedAt = fromMillis(updatedAt)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *Store) listMilestones(ctx context.Context, projectID string) ([]model.Milestone, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+milestoneColumns+` FROM milestones WHERE project_id = ? ORDER BY target_date, id`), projectID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		var (
			m                                model.Milestone
			status                           string
			targetDate, createdAt, updatedAt int64
		)
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Description, &targetDate,
			&m.CompletionPercentage, &status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan milestone row: %w", err)
		}
		m.Status = model.MilestoneStatus(status)
		m.TargetDate = fromMillis(targetDate)
		m.CreatedAt = fromMillis(createdAt)
		m.UpdatedAt = fromMillis(updatedAt)
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func scanProject(scan func(dest ...any) error) (model.Project, error) {
	var (
		p                              model.Project
		status                         string
		deadline, createdAt, updatedAt int64
	)
	if err := scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.ProjectValue,
		&p.OverheadPercentage, &p.Currency, &status, &deadline, &createdAt, &updatedAt); err != nil {
		return model.Project{}, err
	}
	p.Status = model.ProjectStatus(status)
	p.Deadline = fromMillis(deadline)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}
