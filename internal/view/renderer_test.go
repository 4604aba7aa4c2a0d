package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"paytrack/internal/core"
)

type plainFormatter struct{}

func (plainFormatter) Format(d decimal.Decimal) string { return d.StringFixed(2) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testDoc() *core.Document {
	d := &core.Document{SelectedMonth: "2026-01"}
	b := d.EnsureMonth("2026-01")
	b.Income = dec("1000")
	b.ExtraIncome = dec("50")
	b.Expenses = []core.Expense{
		{ID: "p", Title: "Rent", Category: "Housing", Due: "2026-01-01", Amount: dec("1200"), Paid: true},
		{ID: "u2", Title: "Phone", Due: "2026-01-20", Amount: dec("40")},
		{ID: "u1", Title: "Gym", Amount: dec("30.5")},
	}
	d.EnsureMonth("2025-12").Expenses = []core.Expense{{ID: "z", Title: "Old", Amount: dec("1")}}
	d.EnsureMonth("2026-02")
	return d
}

func TestRender(t *testing.T) {
	r := NewRenderer(plainFormatter{}, core.EnglishMonths, 1)
	v := r.Render(testDoc(), "")

	assert.Equal(t, "2026-01", v.Month)
	assert.Equal(t, "January 2026", v.MonthLabel)
	assert.Equal(t, "2025-12", v.PrevMonth)
	assert.Equal(t, "2026-02", v.NextMonth)
	assert.Equal(t, "1000", v.Income)
	assert.Equal(t, "50", v.ExtraIncome)
	assert.Equal(t, "1050.00", v.TotalIncome)
	assert.Equal(t, "1200.00", v.PaidTotal)
	assert.Equal(t, "70.50", v.UnpaidTotal)
	assert.Equal(t, "-150.00", v.Balance)
	assert.True(t, v.Negative)
	assert.True(t, v.HasPaid)
	assert.Nil(t, v.Editing)

	require.Len(t, v.Rows, 3)
	assert.Equal(t, []string{"u1", "u2", "p"}, []string{v.Rows[0].ID, v.Rows[1].ID, v.Rows[2].ID})
	assert.Equal(t, "30.50", v.Rows[0].Amount)
	assert.Equal(t, "30.5", v.Rows[0].RawAmount)
}

func TestRenderMonthStrip(t *testing.T) {
	r := NewRenderer(plainFormatter{}, core.EnglishMonths, 1)
	v := r.Render(testDoc(), "")

	require.Len(t, v.Months, 3)
	assert.Equal(t, MonthTab{Key: "2025-12", Label: "December 2025", HasData: true}, v.Months[0])
	assert.Equal(t, MonthTab{Key: "2026-01", Label: "January 2026", Selected: true, HasData: true}, v.Months[1])
	// empty bucket does not count as data
	assert.Equal(t, MonthTab{Key: "2026-02", Label: "February 2026"}, v.Months[2])

	v = NewRenderer(plainFormatter{}, core.EnglishMonths, -4).Render(testDoc(), "")
	assert.Len(t, v.Months, 1)
}

func TestRenderEditTarget(t *testing.T) {
	r := NewRenderer(plainFormatter{}, core.TurkishMonths, 0)
	v := r.Render(testDoc(), "u2")

	require.NotNil(t, v.Editing)
	assert.Equal(t, "u2", v.Editing.ID)
	assert.Equal(t, "Ocak 2026", v.MonthLabel)
	editing := 0
	for _, row := range v.Rows {
		if row.Editing {
			editing++
		}
	}
	assert.Equal(t, 1, editing)
}

func TestRenderMissingBucket(t *testing.T) {
	r := NewRenderer(plainFormatter{}, core.EnglishMonths, 0)
	v := r.Render(&core.Document{SelectedMonth: "2026-03"}, "")
	assert.Empty(t, v.Rows)
	assert.Equal(t, "0.00", v.Balance)
	assert.False(t, v.HasPaid)
}

func TestLocaleFormatter(t *testing.T) {
	en := NewLocaleFormatter(language.English, "")
	assert.Equal(t, "1,234.57", en.Format(dec("1234.567")))
	assert.Equal(t, "1,500", en.Format(dec("1500")))

	withSymbol := NewLocaleFormatter(language.English, "TL")
	assert.Equal(t, "12.5 TL", withSymbol.Format(dec("12.50")))
}

func TestLocaleFormatterKeepsEveryDigit(t *testing.T) {
	en := NewLocaleFormatter(language.English, "")
	assert.Equal(t, "999,999,999,999,999.99", en.Format(dec("999999999999999.99")))
	assert.Equal(t, "9,007,199,254,740,993", en.Format(dec("9007199254740993")))
	assert.Equal(t, "0.05", en.Format(dec("0.05")))
	assert.Equal(t, "-0.5", en.Format(dec("-0.5")))
	assert.Equal(t, "-1,234.5", en.Format(dec("-1234.50")))

	tr := NewLocaleFormatter(language.Turkish, "")
	assert.Equal(t, "12.345,5", tr.Format(dec("12345.5")))
}

func TestRenderMonthStripAtYearEdge(t *testing.T) {
	r := NewRenderer(plainFormatter{}, core.EnglishMonths, 2)
	v := r.Render(&core.Document{SelectedMonth: "9999-12"}, "")

	require.Len(t, v.Months, 3)
	assert.Equal(t, "9999-10", v.Months[0].Key)
	assert.Equal(t, "9999-11", v.Months[1].Key)
	assert.Equal(t, "9999-12", v.Months[2].Key)
	assert.True(t, v.Months[2].Selected)
	assert.Equal(t, "9999-12", v.NextMonth)
}

func TestLocaleHelpers(t *testing.T) {
	assert.Equal(t, language.Turkish, ParseLocale("!!"))
	assert.Equal(t, core.TurkishMonths, MonthNamesFor(ParseLocale("tr-TR")))
	assert.Equal(t, core.EnglishMonths, MonthNamesFor(ParseLocale("en")))
}
