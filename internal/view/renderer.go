// Package view turns ledger state into the view model consumed by the UI:
// the month selector strip, the formatted totals and the expense rows in
// display order. Rendering never computes totals or ordering itself; both
// come from core.
package view

import (
	"paytrack/internal/core"
)

type (
	// MonthTab is one entry of the month selector strip.
	MonthTab struct {
		Key      string `json:"key"`
		Label    string `json:"label"`
		Selected bool   `json:"selected"`
		HasData  bool   `json:"hasData"`
	}

	// Row is one expense in display order. Amount is formatted; RawAmount
	// is the plain decimal for form inputs.
	Row struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Category  string `json:"category"`
		Due       string `json:"due"`
		Amount    string `json:"amount"`
		RawAmount string `json:"rawAmount"`
		Paid      bool   `json:"paid"`
		Editing   bool   `json:"editing"`
	}

	// View is everything the UI needs for one render of the active month.
	View struct {
		Month       string     `json:"month"`
		MonthLabel  string     `json:"monthLabel"`
		PrevMonth   string     `json:"prevMonth"`
		NextMonth   string     `json:"nextMonth"`
		Months      []MonthTab `json:"months"`
		Income      string     `json:"income"`
		ExtraIncome string     `json:"extraIncome"`
		TotalIncome string     `json:"totalIncome"`
		PaidTotal   string     `json:"paidTotal"`
		UnpaidTotal string     `json:"unpaidTotal"`
		Balance     string     `json:"balance"`
		Negative    bool       `json:"negative"`
		Rows        []Row      `json:"rows"`
		HasPaid     bool       `json:"hasPaid"`
		Editing     *Row       `json:"editing,omitempty"`
	}
)

// Renderer is a pure function of ledger state to View.
type Renderer struct {
	formatter Formatter
	months    core.MonthNames
	radius    int
}

// NewRenderer returns a renderer showing radius months on each side of the
// selected month in the strip.
func NewRenderer(f Formatter, months core.MonthNames, radius int) *Renderer {
	if radius < 0 {
		radius = 0
	}
	return &Renderer{formatter: f, months: months, radius: radius}
}

// Render builds the view for doc's selected month. editing is the id of the
// current edit target, or "".
func (r *Renderer) Render(doc *core.Document, editing string) View {
	key := doc.SelectedMonth
	bucket := doc.Months[key]
	if bucket == nil {
		bucket = core.NewMonthBucket()
	}
	totals := core.ComputeTotals(bucket)

	v := View{
		Month:       key,
		MonthLabel:  core.MonthLabelIn(key, r.months),
		PrevMonth:   core.ShiftKey(key, -1),
		NextMonth:   core.ShiftKey(key, 1),
		Months:      r.strip(doc),
		Income:      bucket.Income.String(),
		ExtraIncome: bucket.ExtraIncome.String(),
		TotalIncome: r.formatter.Format(totals.TotalIncome),
		PaidTotal:   r.formatter.Format(totals.PaidTotal),
		UnpaidTotal: r.formatter.Format(totals.UnpaidTotal),
		Balance:     r.formatter.Format(totals.Balance),
		Negative:    totals.Balance.IsNegative(),
		Rows:        make([]Row, 0, len(bucket.Expenses)),
	}

	for _, e := range core.OrderForDisplay(bucket.Expenses) {
		row := Row{
			ID:        e.ID,
			Title:     e.Title,
			Category:  e.Category,
			Due:       e.Due,
			Amount:    r.formatter.Format(e.Amount),
			RawAmount: e.Amount.String(),
			Paid:      e.Paid,
			Editing:   editing != "" && e.ID == editing,
		}
		if row.Editing {
			cp := row
			v.Editing = &cp
		}
		if e.Paid {
			v.HasPaid = true
		}
		v.Rows = append(v.Rows, row)
	}
	return v
}

func (r *Renderer) strip(doc *core.Document) []MonthTab {
	tabs := make([]MonthTab, 0, 2*r.radius+1)
	for d := -r.radius; d <= r.radius; d++ {
		k := core.ShiftKey(doc.SelectedMonth, d)
		if d != 0 && k == doc.SelectedMonth {
			continue
		}
		b, ok := doc.Months[k]
		tabs = append(tabs, MonthTab{
			Key:      k,
			Label:    core.MonthLabelIn(k, r.months),
			Selected: d == 0,
			HasData:  ok && b != nil && (len(b.Expenses) > 0 || !b.Income.IsZero() || !b.ExtraIncome.IsZero()),
		})
	}
	return tabs
}
