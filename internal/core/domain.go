package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	// Expense is a single recurring obligation recorded in a month bucket.
	Expense struct {
		ID       string          `json:"id"`
		Title    string          `json:"title"`
		Category string          `json:"category"`
		Due      string          `json:"due"` // YYYY-MM-DD or empty
		Amount   decimal.Decimal `json:"amount"`
		Paid     bool            `json:"paid"`
	}

	// MonthBucket holds the income and expenses scoped to one calendar month.
	MonthBucket struct {
		Income      decimal.Decimal `json:"income"`
		ExtraIncome decimal.Decimal `json:"extraIncome"`
		Expenses    []Expense       `json:"expenses"`
	}

	// Document is the persisted root: every month bucket plus the selected month.
	Document struct {
		SchemaVersion int                     `json:"schemaVersion"`
		SelectedMonth string                  `json:"selectedMonth"`
		Months        map[string]*MonthBucket `json:"months"`
	}
)

var (
	ErrEmptyTitle      = errors.New("empty title")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidMonthKey = errors.New("invalid month key")
)

// ValidationError reports which input field was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewMonthBucket returns an empty bucket with zero incomes.
func NewMonthBucket() *MonthBucket {
	return &MonthBucket{Expenses: []Expense{}}
}

// ValidateAmount rejects zero, negative and out-of-range amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !InRange(amount) || !amount.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return nil
}

// Validate checks the title and amount invariants.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	return ValidateAmount(e.Amount)
}

// EnsureMonth inserts an empty bucket at key when absent and returns the bucket.
func (d *Document) EnsureMonth(key string) *MonthBucket {
	if d.Months == nil {
		d.Months = make(map[string]*MonthBucket)
	}
	b, ok := d.Months[key]
	if !ok || b == nil {
		b = NewMonthBucket()
		d.Months[key] = b
	}
	return b
}

// Active returns the bucket for the selected month, creating it if needed.
func (d *Document) Active() *MonthBucket {
	return d.EnsureMonth(d.SelectedMonth)
}

// Clone returns a deep copy that shares no slices or maps with d.
func (d *Document) Clone() *Document {
	out := &Document{
		SchemaVersion: d.SchemaVersion,
		SelectedMonth: d.SelectedMonth,
		Months:        make(map[string]*MonthBucket, len(d.Months)),
	}
	for k, b := range d.Months {
		if b == nil {
			continue
		}
		cp := *b
		cp.Expenses = append([]Expense{}, b.Expenses...)
		out.Months[k] = &cp
	}
	return out
}

// IndexOf returns the position of the expense with id, or -1.
func (b *MonthBucket) IndexOf(id string) int {
	for i := range b.Expenses {
		if b.Expenses[i].ID == id {
			return i
		}
	}
	return -1
}
