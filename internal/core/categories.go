package core

// Suggested category labels. Transactions may use any non-blank category.
var (
	IncomeCategories = []string{
		"Salary", "Freelance", "Business", "Investment", "Bonus", "Gift", "Other",
	}
	ExpenseCategories = []string{
		"Food & Dining", "Rent", "Transportation", "Shopping", "Entertainment",
		"Healthcare", "Education", "Utilities", "Travel", "Other",
	}
)

// CategoriesFor returns a copy of the suggested labels for typ.
func CategoriesFor(typ TransactionType) []string {
	var src []string
	switch typ {
	case Income:
		src = IncomeCategories
	case Expense:
		src = ExpenseCategories
	}
	return append([]string(nil), src...)
}
