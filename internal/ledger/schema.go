package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"paytrack/internal/core"
)

// SchemaVersion is the version written by Save.
//
// Version history:
//
//	1  single month: {income, extraIncome, expenses}
//	2  month buckets: {selectedMonth, months}; early v2 blobs carry no
//	   schemaVersion field and are recognized by the months map
const SchemaVersion = 2

var ErrUnsupportedSchema = errors.New("unsupported schema version")

// rawDocument decodes every shape the ledger has ever persisted.
type rawDocument struct {
	SchemaVersion int                          `json:"schemaVersion"`
	SelectedMonth string                       `json:"selectedMonth"`
	Months        map[string]*core.MonthBucket `json:"months"`

	Income      decimal.Decimal `json:"income"`
	ExtraIncome decimal.Decimal `json:"extraIncome"`
	Expenses    []core.Expense  `json:"expenses"`
}

// Migrate decodes a persisted blob of any known version and upgrades it to
// SchemaVersion. Single-month v1 data lands in the bucket for now's month.
// The second return value lists records dropped for violating invariants.
func Migrate(raw []byte, now time.Time) (*core.Document, int, error) {
	var rd rawDocument
	if err := json.Unmarshal(raw, &rd); err != nil {
		return nil, 0, fmt.Errorf("decode document: %w", err)
	}

	var doc *core.Document
	switch {
	case rd.SchemaVersion > SchemaVersion:
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedSchema, rd.SchemaVersion)
	case rd.SchemaVersion == SchemaVersion, rd.SchemaVersion == 0 && rd.Months != nil:
		doc = &core.Document{SelectedMonth: rd.SelectedMonth, Months: rd.Months}
	default:
		doc = fromV1(rd, now)
	}
	doc.SchemaVersion = SchemaVersion

	dropped := normalize(doc, now)
	return doc, dropped, nil
}

func fromV1(rd rawDocument, now time.Time) *core.Document {
	key := core.CurrentMonthKey(now)
	expenses := rd.Expenses
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return &core.Document{
		SelectedMonth: key,
		Months: map[string]*core.MonthBucket{
			key: {Income: rd.Income, ExtraIncome: rd.ExtraIncome, Expenses: expenses},
		},
	}
}

// normalize restores the document invariants after decoding: valid month
// keys only, the selected month present, no records with an empty title or
// a non-positive or out-of-range amount. Out-of-range incomes reset to zero.
func normalize(doc *core.Document, now time.Time) int {
	dropped := 0
	for key, b := range doc.Months {
		if !core.ValidMonthKey(key) {
			if b != nil {
				dropped += len(b.Expenses)
			}
			delete(doc.Months, key)
			continue
		}
		if b == nil {
			doc.Months[key] = core.NewMonthBucket()
			continue
		}
		if !core.InRange(b.Income) {
			b.Income = decimal.Zero
		}
		if !core.InRange(b.ExtraIncome) {
			b.ExtraIncome = decimal.Zero
		}
		kept := make([]core.Expense, 0, len(b.Expenses))
		for _, e := range b.Expenses {
			e.Title = strings.TrimSpace(e.Title)
			if e.Validate() != nil {
				dropped++
				continue
			}
			kept = append(kept, e)
		}
		b.Expenses = kept
	}
	if !core.ValidMonthKey(doc.SelectedMonth) {
		doc.SelectedMonth = core.CurrentMonthKey(now)
	}
	doc.EnsureMonth(doc.SelectedMonth)
	return dropped
}

// NewDocument returns a fresh document selecting now's month.
func NewDocument(now time.Time) *core.Document {
	doc := &core.Document{
		SchemaVersion: SchemaVersion,
		SelectedMonth: core.CurrentMonthKey(now),
	}
	doc.EnsureMonth(doc.SelectedMonth)
	return doc
}

// EnsureMonth idempotently inserts an empty bucket at key.
func EnsureMonth(doc *core.Document, key string) {
	doc.EnsureMonth(key)
}
