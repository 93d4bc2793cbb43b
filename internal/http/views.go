package http

import (
	"encoding/json"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// Amounts leave the API as JSON numbers carrying the exact decimal text.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func numberMap(m map[string]decimal.Decimal) map[string]json.Number {
	out := make(map[string]json.Number, len(m))
	for k, v := range m {
		out[k] = number(v)
	}
	return out
}

type transactionView struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Type      string      `json:"type"`
	Amount    json.Number `json:"amount"`
	Category  string      `json:"category"`
	Date      string      `json:"date"`
	Notes     string      `json:"notes"`
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
}

func newTransactionView(t core.Transaction) transactionView {
	return transactionView{
		ID:        t.ID,
		UserID:    t.UserID,
		Type:      string(t.Type),
		Amount:    number(t.Amount),
		Category:  t.Category,
		Date:      t.Date.UTC().Format(time.RFC3339),
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type monthView struct {
	Month   string      `json:"month"`
	Income  json.Number `json:"income"`
	Expense json.Number `json:"expense"`
	Savings json.Number `json:"savings"`
}

type analyticsView struct {
	MonthlyData []monthView `json:"monthlyData"`
	Year        int         `json:"year"`
}

func newAnalyticsView(s core.MonthlySeries) analyticsView {
	v := analyticsView{Year: s.Year, MonthlyData: make([]monthView, 0, len(s.Months))}
	for _, m := range s.Months {
		v.MonthlyData = append(v.MonthlyData, monthView{
			Month:   m.Month,
			Income:  number(m.Income),
			Expense: number(m.Expense),
			Savings: number(m.Savings),
		})
	}
	return v
}

type snapshotView struct {
	NetWorth              json.Number            `json:"netWorth"`
	MonthlyIncome         json.Number            `json:"monthlyIncome"`
	MonthlyExpenses       json.Number            `json:"monthlyExpenses"`
	RemainingBalance      json.Number            `json:"remainingBalance"`
	SavingsTarget         json.Number            `json:"savingsTarget"`
	ActualSavings         json.Number            `json:"actualSavings"`
	SavingsProgress       json.Number            `json:"savingsProgress"`
	SavingsGoalPercentage json.Number            `json:"savingsGoalPercentage"`
	IsOverBudget          bool                   `json:"isOverBudget"`
	ExpensePercentage     json.Number            `json:"expensePercentage"`
	ExpensesByCategory    map[string]json.Number `json:"expensesByCategory"`
	IncomeByCategory      map[string]json.Number `json:"incomeByCategory"`
}

func newSnapshotView(s core.Snapshot) snapshotView {
	return snapshotView{
		NetWorth:              number(s.NetWorth),
		MonthlyIncome:         number(s.MonthlyIncome),
		MonthlyExpenses:       number(s.MonthlyExpenses),
		RemainingBalance:      number(s.RemainingBalance),
		SavingsTarget:         number(s.SavingsTarget),
		ActualSavings:         number(s.ActualSavings),
		SavingsProgress:       number(s.SavingsProgress),
		SavingsGoalPercentage: number(s.SavingsGoalPercentage),
		IsOverBudget:          s.IsOverBudget,
		ExpensePercentage:     number(s.ExpensePercentage),
		ExpensesByCategory:    numberMap(s.ExpensesByCategory),
		IncomeByCategory:      numberMap(s.IncomeByCategory),
	}
}
