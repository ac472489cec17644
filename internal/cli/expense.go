package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Manage project expenses",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Book an expense against a project",
	RunE:  runExpenseAdd,
}

func init() {
	rootCmd.AddCommand(expenseCmd)
	expenseCmd.AddCommand(expenseAddCmd)

	expenseAddCmd.Flags().StringP("project", "p", "", "Project ID")
	expenseAddCmd.Flags().StringP("name", "n", "", "Expense name")
	expenseAddCmd.Flags().StringP("category", "c", string(model.CategoryOther), "Category (MATERIALS, MANPOWER, TOOLS, OTHER)")
	expenseAddCmd.Flags().String("estimated", "0", "Estimated cost")
	expenseAddCmd.Flags().String("actual", "", "Actual cost, if already incurred")
	expenseAddCmd.Flags().String("date", "", "Date incurred (YYYY-MM-DD)")
	expenseAddCmd.Flags().String("recurring", "", "Recurring interval (DAILY, WEEKLY, MONTHLY)")
	_ = expenseAddCmd.MarkFlagRequired("project")
	_ = expenseAddCmd.MarkFlagRequired("name")
}

func runExpenseAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	projectID, _ := cmd.Flags().GetString("project")
	name, _ := cmd.Flags().GetString("name")
	category, _ := cmd.Flags().GetString("category")
	estimated, _ := cmd.Flags().GetString("estimated")
	actual, _ := cmd.Flags().GetString("actual")
	date, _ := cmd.Flags().GetString("date")
	recurring, _ := cmd.Flags().GetString("recurring")

	expense := model.Expense{
		ProjectID:         projectID,
		Name:              name,
		Category:          model.ExpenseCategory(strings.ToUpper(category)),
		IsRecurring:       recurring != "",
		RecurringInterval: model.RecurringInterval(strings.ToUpper(recurring)),
	}
	switch expense.Category {
	case model.CategoryMaterials, model.CategoryManpower, model.CategoryTools, model.CategoryOther:
	default:
		return fmt.Errorf("unknown category %q", category)
	}
	switch expense.RecurringInterval {
	case "", model.IntervalDaily, model.IntervalWeekly, model.IntervalMonthly:
	default:
		return fmt.Errorf("unknown recurring interval %q", recurring)
	}

	if expense.EstimatedCost, err = decimal.NewFromString(estimated); err != nil {
		return fmt.Errorf("invalid estimated cost %q", estimated)
	}
	if actual != "" {
		d, err := decimal.NewFromString(actual)
		if err != nil {
			return fmt.Errorf("invalid actual cost %q", actual)
		}
		expense.ActualCost = decimal.NewNullDecimal(d)
	}
	if date != "" {
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return fmt.Errorf("invalid date %q", date)
		}
		expense.DateIncurred = &d
	}

	svc, err := initServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.store.AddExpense(cmd.Context(), &expense); err != nil {
		return fmt.Errorf("add expense: %w", err)
	}

	// Re-evaluating raises a budget warning when this expense crossed a tier.
	report, err := svc.tracker.EvaluateByID(cmd.Context(), projectID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Expense added: %s (%s)\n", expense.Name, expense.ID)
	printBudgetLine(cmd, report)
	return nil
}

func printBudgetLine(cmd *cobra.Command, report *model.ProjectReport) {
	out := cmd.OutOrStdout()
	if report.Alerts == nil || report.Alerts.Budget == nil {
		fmt.Fprintf(out, "  Net profit: %s (%s)\n",
			formatMoney(report.Currency, report.Calculations.NetProfit),
			formatPercent(report.Calculations.NetProfitMargin))
		return
	}
	budget := report.Alerts.Budget
	fmt.Fprintf(out, "  %s\n", levelStyles[budget.Level].Render(budget.Message))
}
