package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as JSON numbers, like margins and percentages.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "DRAFT"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectArchived  ProjectStatus = "ARCHIVED"
)

// Project is a budgeted piece of work owned by a single user.
type Project struct {
	ID                 string          `json:"id"`
	OwnerID            string          `json:"ownerId"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	ProjectValue       decimal.Decimal `json:"projectValue"`
	OverheadPercentage decimal.Decimal `json:"overheadPercentage"`
	Currency           string          `json:"currency"`
	Status             ProjectStatus   `json:"status"`
	Deadline           time.Time       `json:"deadline"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	Expenses           []Expense       `json:"expenses,omitempty"`
	Milestones         []Milestone     `json:"milestones,omitempty"`
}

// ExpenseCategory groups expenses for reporting.
type ExpenseCategory string

const (
	CategoryMaterials ExpenseCategory = "MATERIALS"
	CategoryManpower  ExpenseCategory = "MANPOWER"
	CategoryTools     ExpenseCategory = "TOOLS"
	CategoryOther     ExpenseCategory = "OTHER"
)

// RecurringInterval is how often a recurring expense repeats.
type RecurringInterval string

const (
	IntervalDaily   RecurringInterval = "DAILY"
	IntervalWeekly  RecurringInterval = "WEEKLY"
	IntervalMonthly RecurringInterval = "MONTHLY"
)

// Expense is a cost line booked against a project. ActualCost stays
// invalid until the cost has been incurred.
type Expense struct {
	ID                string              `json:"id"`
	ProjectID         string              `json:"projectId"`
	Category          ExpenseCategory     `json:"category"`
	Name              string              `json:"name"`
	Description       string              `json:"description,omitempty"`
	EstimatedCost     decimal.Decimal     `json:"estimatedCost"`
	ActualCost        decimal.NullDecimal `json:"actualCost"`
	IsRecurring       bool                `json:"isRecurring"`
	RecurringInterval RecurringInterval   `json:"recurringInterval,omitempty"`
	DateIncurred      *time.Time          `json:"dateIncurred,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// MilestoneStatus is the stored progress state of a milestone.
type MilestoneStatus string

const (
	MilestonePending    MilestoneStatus = "PENDING"
	MilestoneInProgress MilestoneStatus = "IN_PROGRESS"
	MilestoneCompleted  MilestoneStatus = "COMPLETED"
	MilestoneDelayed    MilestoneStatus = "DELAYED"
)

// Milestone is a dated checkpoint inside a project.
type Milestone struct {
	ID                   string          `json:"id"`
	ProjectID            string          `json:"projectId"`
	Name                 string          `json:"name"`
	Description          string          `json:"description,omitempty"`
	TargetDate           time.Time       `json:"targetDate"`
	CompletionPercentage int             `json:"completionPercentage"`
	Status               MilestoneStatus `json:"status"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// ProjectCalculations holds the financial figures derived from a project
// and its expenses. It is recomputed on every read and never stored.
type ProjectCalculations struct {
	TotalEstimatedCost decimal.Decimal `json:"totalEstimatedCost"`
	TotalActualCost    decimal.Decimal `json:"totalActualCost"`
	OverheadCost       decimal.Decimal `json:"overheadCost"`
	RemainingBudget    decimal.Decimal `json:"remainingBudget"`
	GrossProfit        decimal.Decimal `json:"grossProfit"`
	GrossProfitMargin  float64         `json:"grossProfitMargin"`
	NetProfit          decimal.Decimal `json:"netProfit"`
	NetProfitMargin    float64         `json:"netProfitMargin"`
	BudgetPercentage   float64         `json:"budgetPercentage"`
}

// AlertLevel is the severity of a budget alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "info"
	AlertWarning  AlertLevel = "warning"
	AlertDanger   AlertLevel = "danger"
	AlertCritical AlertLevel = "critical"
)

// BudgetAlert reports how much of the project value has been consumed.
type BudgetAlert struct {
	Level        AlertLevel `json:"level"`
	Percentage   float64    `json:"percentage"`
	Message      string     `json:"message"`
	ShouldNotify bool       `json:"shouldNotify"`
}

// DeadlineAlert reports proximity to the project deadline.
type DeadlineAlert struct {
	DaysRemaining int    `json:"daysRemaining"`
	IsOverdue     bool   `json:"isOverdue"`
	Message       string `json:"message"`
}

// MilestoneAlert reports milestones that are past their target date.
type MilestoneAlert struct {
	Delayed int    `json:"delayed"`
	Message string `json:"message"`
}

// ProjectAlerts bundles the three independent alert judgments. Budget is
// nil when spending is below the lowest tier.
type ProjectAlerts struct {
	Budget     *BudgetAlert   `json:"budget"`
	Deadline   DeadlineAlert  `json:"deadline"`
	Milestones MilestoneAlert `json:"milestones"`
}

// ProjectReport is a project as returned to callers: the stored record
// plus its derived calculations and alerts.
type ProjectReport struct {
	Project
	Calculations ProjectCalculations `json:"calculations"`
	Alerts       *ProjectAlerts      `json:"alerts,omitempty"`
}

// NotificationType identifies the kind of event a notification reports.
type NotificationType string

const (
	NotificationBudgetWarning50     NotificationType = "BUDGET_WARNING_50"
	NotificationBudgetWarning75     NotificationType = "BUDGET_WARNING_75"
	NotificationBudgetWarning90     NotificationType = "BUDGET_WARNING_90"
	NotificationBudgetExceeded      NotificationType = "BUDGET_EXCEEDED"
	NotificationMilestoneDelayed    NotificationType = "MILESTONE_DELAYED"
	NotificationDeadlineApproaching NotificationType = "DEADLINE_APPROACHING"
	NotificationProjectUpdate       NotificationType = "PROJECT_UPDATE"
	NotificationMemberAdded         NotificationType = "MEMBER_ADDED"
)

// NotificationStatus is the acknowledgement state of a notification.
type NotificationStatus string

const (
	StatusUnread   NotificationStatus = "UNREAD"
	StatusRead     NotificationStatus = "READ"
	StatusArchived NotificationStatus = "ARCHIVED"
)

// Notification is a persisted, user-targeted message. ProjectID is nil for
// notifications that are not tied to a project.
type Notification struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	ProjectID *string            `json:"projectId,omitempty"`
	Type      NotificationType   `json:"type"`
	Title     string             `json:"title"`
	Message   string             `json:"message"`
	Status    NotificationStatus `json:"status"`
	Metadata  map[string]any     `json:"metadata,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	ReadAt    *time.Time         `json:"readAt,omitempty"`
}

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

// NotificationFilter controls which notifications an inbox listing returns.
type NotificationFilter struct {
	UserID string             `json:"userId"`
	Status NotificationStatus `json:"status,omitempty"`
	Limit  int                `json:"limit,omitempty"`
}

// NormalizedLimit clamps Limit into [1, MaxNotificationLimit], substituting
// the default for non-positive values.
func (f NotificationFilter) NormalizedLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultNotificationLimit
	case f.Limit > MaxNotificationLimit:
		return MaxNotificationLimit
	default:
		return f.Limit
	}
}

// IsValid reports whether s is a known notification status.
func (s NotificationStatus) IsValid() bool {
	switch s {
	case StatusUnread, StatusRead, StatusArchived:
		return true
	}
	return false
}
