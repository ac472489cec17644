package tracker

import (
	"github.com/shopspring/decimal"

	"github.com/ogulcanaydogan/PnL-Guardian/pkg/model"
)

var hundred = decimal.NewFromInt(100)

// ComputeMetrics derives cost, margin and budget-usage figures for a project
// from its expenses. Expense order does not matter and a missing actual cost
// counts as zero.
func ComputeMetrics(project model.Project, expenses []model.Expense) model.ProjectCalculations {
	totalEstimated := decimal.Zero
	totalActual := decimal.Zero
	for _, e := range expenses {
		totalEstimated = totalEstimated.Add(e.EstimatedCost)
		if e.ActualCost.Valid {
			totalActual = totalActual.Add(e.ActualCost.Decimal)
		}
	}

	overheadCost := totalActual.Mul(project.OverheadPercentage).Div(hundred)
	value := project.ProjectValue

	// Overhead is a reporting cost; it does not draw on the remaining budget.
	remaining := value.Sub(totalActual)
	grossProfit := value.Sub(totalActual)
	netProfit := value.Sub(totalActual.Add(overheadCost))

	calc := model.ProjectCalculations{
		TotalEstimatedCost: totalEstimated,
		TotalActualCost:    totalActual,
		OverheadCost:       overheadCost,
		RemainingBudget:    remaining,
		GrossProfit:        grossProfit,
		NetProfit:          netProfit,
	}

	if value.IsPositive() {
		calc.GrossProfitMargin = percentOf(grossProfit, value)
		calc.NetProfitMargin = percentOf(netProfit, value)
		// Budget usage is only reported once some cost has been estimated.
		if totalEstimated.IsPositive() {
			calc.BudgetPercentage = percentOf(totalActual, value)
		}
	}

	return calc
}

// percentOf returns part/whole*100. Callers guarantee whole is non-zero.
func percentOf(part, whole decimal.Decimal) float64 {
	return part.Div(whole).Mul(hundred).InexactFloat64()
}
