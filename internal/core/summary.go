package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OverBudgetThreshold is the share of monthly income, in percent, above which
// expenses count as over budget.
const OverBudgetThreshold = 80

var hundred = decimal.NewFromInt(100)

// MonthlyBucket holds one month of a yearly series.
type MonthlyBucket struct {
	Month   string // "Jan".."Dec"
	Income  decimal.Decimal
	Expense decimal.Decimal
	Savings decimal.Decimal
}

// MonthlySeries is the Jan..Dec rollup of one year.
type MonthlySeries struct {
	Year   int
	Months [12]MonthlyBucket
}

// Snapshot is the point-in-time financial summary of one user.
type Snapshot struct {
	NetWorth              decimal.Decimal
	MonthlyIncome         decimal.Decimal
	MonthlyExpenses       decimal.Decimal
	RemainingBalance      decimal.Decimal
	SavingsTarget         decimal.Decimal
	ActualSavings         decimal.Decimal
	SavingsProgress       decimal.Decimal
	SavingsGoalPercentage decimal.Decimal
	IsOverBudget          bool
	ExpensePercentage     decimal.Decimal
	ExpensesByCategory    map[string]decimal.Decimal
	IncomeByCategory      map[string]decimal.Decimal
}

// MonthLabel returns the three letter English label of m.
func MonthLabel(m time.Month) string {
	return m.String()[:3]
}

// YearRange returns the first and last instant of year in loc.
func YearRange(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(1, 0, 0).Add(-time.Nanosecond)
}

// MonthRange returns the first and last instant of the month containing t, in loc.
func MonthRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// SumByType totals income and expense amounts.
func SumByType(txs []Transaction) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense
}

// GroupByCategory totals the amounts of transactions of type typ per category.
// Categories without transactions are absent from the result.
func GroupByCategory(txs []Transaction, typ TransactionType) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		out[t.Category] = out[t.Category].Add(t.Amount)
	}
	return out
}

// BuildMonthlySeries buckets txs by month of year in loc.
// Transactions dated outside the year are ignored.
func BuildMonthlySeries(year int, txs []Transaction, loc *time.Location) MonthlySeries {
	s := MonthlySeries{Year: year}
	for i := range s.Months {
		s.Months[i] = MonthlyBucket{
			Month:   MonthLabel(time.Month(i + 1)),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
	}

	start, end := YearRange(year, loc)
	for _, t := range txs {
		if !inRange(t.Date, start, end) {
			continue
		}
		b := &s.Months[t.Date.In(loc).Month()-1]
		switch t.Type {
		case Income:
			b.Income = b.Income.Add(t.Amount)
		case Expense:
			b.Expense = b.Expense.Add(t.Amount)
		}
	}

	for i := range s.Months {
		s.Months[i].Savings = s.Months[i].Income.Sub(s.Months[i].Expense)
	}
	return s
}

// BuildSnapshot summarizes all of a user's transactions and the subset dated in
// the current month. goal is the user's savings goal percentage.
func BuildSnapshot(goal decimal.Decimal, all, month []Transaction) Snapshot {
	totalIncome, totalExpenses := SumByType(all)
	monthlyIncome, monthlyExpenses := SumByType(month)
	remaining := monthlyIncome.Sub(monthlyExpenses)

	s := Snapshot{
		NetWorth:              totalIncome.Sub(totalExpenses),
		MonthlyIncome:         monthlyIncome,
		MonthlyExpenses:       monthlyExpenses,
		RemainingBalance:      remaining,
		SavingsTarget:         monthlyIncome.Mul(goal).Div(hundred),
		ActualSavings:         remaining,
		SavingsGoalPercentage: goal,
		SavingsProgress:       decimal.Zero,
		ExpensePercentage:     decimal.Zero,
		ExpensesByCategory:    GroupByCategory(month, Expense),
		IncomeByCategory:      GroupByCategory(month, Income),
	}

	if monthlyIncome.IsPositive() {
		s.ExpensePercentage = monthlyExpenses.Mul(hundred).Div(monthlyIncome)
		// Compared on the exact products so no division rounding leaks in.
		s.IsOverBudget = monthlyExpenses.Mul(hundred).GreaterThan(monthlyIncome.Mul(decimal.NewFromInt(OverBudgetThreshold)))
		s.SavingsProgress = savingsProgress(s.ActualSavings, s.SavingsTarget)
	}
	return s
}

func savingsProgress(actual, target decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		if actual.IsNegative() {
			return decimal.Zero
		}
		return hundred
	}
	p := actual.Mul(hundred).Div(target)
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
