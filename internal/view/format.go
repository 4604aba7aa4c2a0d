package view

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"paytrack/internal/core"
)

// Formatter turns an amount into display text.
type Formatter interface {
	Format(amount decimal.Decimal) string
}

// LocaleFormatter groups digits and picks the decimal separator for a
// language, showing at most two fraction digits.
type LocaleFormatter struct {
	printer *message.Printer
	symbol  string

	// separator and minus are the locale's decimal separator and minus
	// sign, read back from the printer once.
	separator string
	minus     string
}

// NewLocaleFormatter builds a formatter for tag. A non-empty symbol is
// appended after the number.
func NewLocaleFormatter(tag language.Tag, symbol string) *LocaleFormatter {
	p := message.NewPrinter(tag)
	f := &LocaleFormatter{printer: p, symbol: symbol, separator: ".", minus: "-"}
	if sep := strings.TrimSuffix(strings.TrimPrefix(p.Sprint(number.Decimal(1.5)), "1"), "5"); sep != "" && len(sep) <= 4 {
		f.separator = sep
	}
	if m := strings.TrimSuffix(p.Sprint(number.Decimal(-1)), "1"); m != "" && len(m) <= 4 {
		f.minus = m
	}
	return f
}

// Format works in whole cents so large amounts keep every digit. The integer
// part goes through the locale printer; the fraction is appended by hand.
func (f *LocaleFormatter) Format(amount decimal.Decimal) string {
	var s string
	cents := amount.Round(2).Shift(2)
	if c := cents.BigInt(); c.IsInt64() && c.Int64() > -maxCents && c.Int64() < maxCents {
		s = f.formatCents(c.Int64())
	} else {
		v, _ := amount.Round(2).Float64()
		s = f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
	}
	if f.symbol != "" {
		s += " " + f.symbol
	}
	return s
}

const maxCents = 1 << 62

func (f *LocaleFormatter) formatCents(c int64) string {
	neg := c < 0
	if neg {
		c = -c
	}
	s := f.printer.Sprint(number.Decimal(c / 100))
	if frac := c % 100; frac != 0 {
		digits := strconv.FormatInt(frac+100, 10)[1:]
		s += f.separator + strings.TrimRight(digits, "0")
	}
	if neg {
		s = f.minus + s
	}
	return s
}

// ParseLocale parses a BCP 47 tag, falling back to Turkish.
func ParseLocale(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Turkish
	}
	return tag
}

// MonthNamesFor picks the month-name table for tag.
func MonthNamesFor(tag language.Tag) core.MonthNames {
	base, _ := tag.Base()
	if base.String() == "tr" {
		return core.TurkishMonths
	}
	return core.EnglishMonths
}
