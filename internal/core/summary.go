package core

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Totals is the computed summary for one month bucket.
type Totals struct {
	TotalIncome decimal.Decimal `json:"totalIncome"`
	PaidTotal   decimal.Decimal `json:"paidTotal"`
	UnpaidTotal decimal.Decimal `json:"unpaidTotal"`
	Balance     decimal.Decimal `json:"balance"`
}

// ComputeTotals aggregates a bucket. Balance only subtracts paid expenses:
// it is the cash left after honored payments.
func ComputeTotals(b *MonthBucket) Totals {
	if b == nil {
		return Totals{}
	}
	t := Totals{TotalIncome: b.Income.Add(b.ExtraIncome)}
	for _, e := range b.Expenses {
		if e.Paid {
			t.PaidTotal = t.PaidTotal.Add(e.Amount)
		} else {
			t.UnpaidTotal = t.UnpaidTotal.Add(e.Amount)
		}
	}
	t.Balance = t.TotalIncome.Sub(t.PaidTotal)
	return t
}

// OrderForDisplay returns a sorted copy: unpaid before paid, then by due
// date string ascending (empty first). The sort is stable.
func OrderForDisplay(expenses []Expense) []Expense {
	out := append([]Expense{}, expenses...)
	slices.SortStableFunc(out, func(a, b Expense) int {
		if a.Paid != b.Paid {
			if a.Paid {
				return 1
			}
			return -1
		}
		return strings.Compare(a.Due, b.Due)
	})
	return out
}
