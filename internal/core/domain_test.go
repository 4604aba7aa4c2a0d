package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		ID:     "a",
		Title:  "Rent",
		Amount: decimal.NewFromInt(1500),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		e    Expense
		want error
	}{
		{"empty title", Expense{Title: "", Amount: decimal.NewFromInt(1)}, ErrEmptyTitle},
		{"blank title", Expense{Title: "   ", Amount: decimal.NewFromInt(1)}, ErrEmptyTitle},
		{"zero amount", Expense{Title: "a", Amount: decimal.Zero}, ErrInvalidAmount},
		{"negative amount", Expense{Title: "a", Amount: decimal.NewFromInt(-5)}, ErrInvalidAmount},
		{"huge exponent", Expense{Title: "a", Amount: decimal.New(1, 30000000)}, ErrInvalidAmount},
		{"too many fraction digits", Expense{Title: "a", Amount: decimal.New(1, -3)}, ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.e.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestDocumentEnsureMonth(t *testing.T) {
	var d Document
	b := d.EnsureMonth("2026-01")
	if b == nil || len(d.Months) != 1 {
		t.Fatalf("expected bucket to be created, months=%v", d.Months)
	}
	b.Income = decimal.NewFromInt(10)
	again := d.EnsureMonth("2026-01")
	if again != b || !again.Income.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("EnsureMonth must be idempotent")
	}
}

func TestDocumentClone(t *testing.T) {
	d := &Document{SelectedMonth: "2026-01"}
	d.Active().Expenses = append(d.Active().Expenses, Expense{ID: "x", Title: "t", Amount: decimal.NewFromInt(1)})

	cp := d.Clone()
	cp.Months["2026-01"].Expenses[0].Paid = true
	cp.Months["2026-01"].Income = decimal.NewFromInt(99)

	if d.Active().Expenses[0].Paid {
		t.Fatalf("clone shares expense slice with original")
	}
	if !d.Active().Income.IsZero() {
		t.Fatalf("clone shares bucket with original")
	}
}

func TestBucketIndexOf(t *testing.T) {
	b := &MonthBucket{Expenses: []Expense{{ID: "a"}, {ID: "b"}}}
	if got := b.IndexOf("b"); got != 1 {
		t.Fatalf("IndexOf(b) = %d", got)
	}
	if got := b.IndexOf("zzz"); got != -1 {
		t.Fatalf("IndexOf(zzz) = %d", got)
	}
}
