package core

import (
	"strconv"
	"time"
)

const (
	monthKeyLayout = "2006-01"

	minKeyYear = 0
	maxKeyYear = 9999
	maxShift   = 12 * (maxKeyYear + 1)
)

// MonthNames is a fixed ordered table of month names; index = month number - 1.
type MonthNames [12]string

var (
	TurkishMonths = MonthNames{
		"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
		"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
	}
	EnglishMonths = MonthNames{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
)

// CurrentMonthKey formats now as a YYYY-MM key.
func CurrentMonthKey(now time.Time) string {
	return now.Format(monthKeyLayout)
}

// ParseMonthKey parses a YYYY-MM key. The month must be zero-padded.
func ParseMonthKey(key string) (year int, month time.Month, err error) {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return 0, 0, &ValidationError{Field: "month", Err: ErrInvalidMonthKey}
	}
	return t.Year(), t.Month(), nil
}

// ValidMonthKey reports whether key is a well formed YYYY-MM key.
func ValidMonthKey(key string) bool {
	_, _, err := ParseMonthKey(key)
	return err == nil
}

// MonthLabel maps a key to "<MonthName> <Year>" using the Turkish table.
func MonthLabel(key string) string {
	return MonthLabelIn(key, TurkishMonths)
}

// MonthLabelIn maps a key to "<MonthName> <Year>" using names.
// Malformed keys are returned unchanged.
func MonthLabelIn(key string, names MonthNames) string {
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return key
	}
	return names[month-1] + " " + strconv.Itoa(year)
}

// ShiftKey returns the key delta months away from key. time.Date normalizes
// the month overflow, so any positive or negative delta rolls over years.
// Malformed keys, and shifts landing outside the years 0000-9999, return key
// unchanged: only four-digit years parse back as keys.
func ShiftKey(key string, delta int) string {
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return key
	}
	if delta > maxShift || delta < -maxShift {
		return key
	}
	t := time.Date(year, month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	if t.Year() < minKeyYear || t.Year() > maxKeyYear {
		return key
	}
	return t.Format(monthKeyLayout)
}
