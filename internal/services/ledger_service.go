package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"paytrack/internal/core"
	"paytrack/internal/log"
)

// ErrNotFound is reported by lookups for an id absent from the active
// bucket. Mutations on such ids are silent no-ops and never return it.
var ErrNotFound = errors.New("expense not found")

// DocumentStore persists the ledger document.
type DocumentStore interface {
	Load(ctx context.Context) *core.Document
	Save(ctx context.Context, doc *core.Document) error
	SetSelectedMonth(ctx context.Context, doc *core.Document, key string) error
}

// ExpenseInput carries the user-editable fields of an expense.
type ExpenseInput struct {
	Title    string
	Category string
	Due      string
	Amount   decimal.Decimal
}

// LedgerService is the only component that mutates the ledger. Every
// successful mutation is saved immediately and then announced to the
// registered notifiers.
//
// LedgerService is not safe for concurrent use; callers serialize access
// so each action runs to completion before the next starts.
type LedgerService struct {
	store     DocumentStore
	doc       *core.Document
	ids       core.IDGenerator
	notifiers []Notifier
	now       func() time.Time
	logger    *log.Logger

	editing string
}

type Option func(*LedgerService)

func WithIDGenerator(g core.IDGenerator) Option {
	return func(s *LedgerService) { s.ids = g }
}

func WithNotifier(n Notifier) Option {
	return func(s *LedgerService) {
		if n != nil {
			s.notifiers = append(s.notifiers, n)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) { s.logger = l.WithComponent(log.ComponentLedger) }
}

// NewLedgerService loads the document from store and takes ownership of it.
func NewLedgerService(ctx context.Context, store DocumentStore, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:  store,
		ids:    core.UUIDGenerator{},
		now:    time.Now,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.doc = store.Load(ctx)
	return s
}

// Document returns a deep copy of the current state for rendering.
func (s *LedgerService) Document() *core.Document {
	return s.doc.Clone()
}

// SelectedMonth returns the active month key.
func (s *LedgerService) SelectedMonth() string {
	return s.doc.SelectedMonth
}

// Totals computes the totals of the active bucket.
func (s *LedgerService) Totals() core.Totals {
	return core.ComputeTotals(s.doc.Active())
}

// SetIncome coerces value to a number (non-numeric becomes zero) and stores
// it as the active month's primary income.
func (s *LedgerService) SetIncome(ctx context.Context, value string) {
	s.doc.Active().Income = core.CoerceNumber(value)
	s.commit(ctx, log.OpSetIncome)
}

// SetExtraIncome is SetIncome for the secondary income.
func (s *LedgerService) SetExtraIncome(ctx context.Context, value string) {
	s.doc.Active().ExtraIncome = core.CoerceNumber(value)
	s.commit(ctx, log.OpSetExtraIncome)
}

// AddExpense validates in and appends an unpaid record to the active
// bucket. On a validation error nothing is changed.
func (s *LedgerService) AddExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	e := core.Expense{
		Title:    strings.TrimSpace(in.Title),
		Category: strings.TrimSpace(in.Category),
		Due:      strings.TrimSpace(in.Due),
		Amount:   in.Amount,
	}
	if err := e.Validate(); err != nil {
		s.logRejected(ctx, log.OpAddExpense, err)
		return core.Expense{}, err
	}
	e.ID = s.ids.NewID()

	b := s.doc.Active()
	b.Expenses = append(b.Expenses, e)

	s.logger.InfoContext(ctx, "Expense added",
		log.NewFields().WithOperation(log.OpAddExpense).WithMonth(s.doc.SelectedMonth).
			WithExpense(e.ID, e.Title, e.Amount.String()).ToSlice()...)
	s.commit(ctx, log.OpAddExpense)
	return e, nil
}

// EditExpense validates in and replaces the mutable fields of the record
// with id. An unknown id is a silent no-op. A successful edit clears the
// edit target.
func (s *LedgerService) EditExpense(ctx context.Context, id string, in ExpenseInput) error {
	e := core.Expense{
		ID:       id,
		Title:    strings.TrimSpace(in.Title),
		Category: strings.TrimSpace(in.Category),
		Due:      strings.TrimSpace(in.Due),
		Amount:   in.Amount,
	}
	if err := e.Validate(); err != nil {
		s.logRejected(ctx, log.OpEditExpense, err)
		return err
	}

	b := s.doc.Active()
	i := b.IndexOf(id)
	if i < 0 {
		s.logMissing(ctx, log.OpEditExpense, id)
		return nil
	}
	e.Paid = b.Expenses[i].Paid
	b.Expenses[i] = e
	if s.editing == id {
		s.editing = ""
	}
	s.commit(ctx, log.OpEditExpense)
	return nil
}

// TogglePaid sets the paid flag of the record with id.
func (s *LedgerService) TogglePaid(ctx context.Context, id string, paid bool) {
	b := s.doc.Active()
	i := b.IndexOf(id)
	if i < 0 {
		s.logMissing(ctx, log.OpTogglePaid, id)
		return
	}
	b.Expenses[i].Paid = paid
	s.commit(ctx, log.OpTogglePaid)
}

// DeleteExpense removes the record with id from the active bucket.
func (s *LedgerService) DeleteExpense(ctx context.Context, id string) {
	b := s.doc.Active()
	i := b.IndexOf(id)
	if i < 0 {
		s.logMissing(ctx, log.OpDeleteExpense, id)
		return
	}
	b.Expenses = append(b.Expenses[:i], b.Expenses[i+1:]...)
	if s.editing == id {
		s.editing = ""
	}
	s.commit(ctx, log.OpDeleteExpense)
}

// ClearPaid removes every paid record from the active bucket and returns
// how many were removed. Confirmation is the caller's job.
func (s *LedgerService) ClearPaid(ctx context.Context) int {
	b := s.doc.Active()
	kept := b.Expenses[:0]
	removed := 0
	for _, e := range b.Expenses {
		if e.Paid {
			if e.ID == s.editing {
				s.editing = ""
			}
			removed++
			continue
		}
		kept = append(kept, e)
	}
	b.Expenses = kept
	s.commit(ctx, log.OpClearPaid)
	return removed
}

// SelectMonth makes key the active month, creating its bucket if needed.
func (s *LedgerService) SelectMonth(ctx context.Context, key string) error {
	if _, _, err := core.ParseMonthKey(key); err != nil {
		s.logRejected(ctx, log.OpSelectMonth, err)
		return err
	}
	s.editing = ""
	if err := s.store.SetSelectedMonth(ctx, s.doc, key); err != nil {
		s.logSaveError(ctx, log.OpSelectMonth, err)
	}
	s.notify(ctx, log.OpSelectMonth)
	return nil
}

// ShiftMonth moves the selection delta months forward or back.
func (s *LedgerService) ShiftMonth(ctx context.Context, delta int) error {
	return s.SelectMonth(ctx, core.ShiftKey(s.doc.SelectedMonth, delta))
}

// Lookup returns the record with id from the active bucket.
func (s *LedgerService) Lookup(id string) (core.Expense, error) {
	b := s.doc.Active()
	i := b.IndexOf(id)
	if i < 0 {
		return core.Expense{}, ErrNotFound
	}
	return b.Expenses[i], nil
}

// BeginEdit makes id the edit target, replacing any previous target.
func (s *LedgerService) BeginEdit(id string) (core.Expense, error) {
	s.editing = ""
	e, err := s.Lookup(id)
	if err != nil {
		return core.Expense{}, err
	}
	s.editing = id
	return e, nil
}

// CancelEdit clears the edit target.
func (s *LedgerService) CancelEdit() {
	s.editing = ""
}

// EditTarget returns the id being edited, or "" when none.
func (s *LedgerService) EditTarget() string {
	return s.editing
}

// commit saves the document and signals a refresh. A failed save is logged
// and otherwise ignored; the in-memory state stays authoritative.
func (s *LedgerService) commit(ctx context.Context, op string) {
	if err := s.store.Save(ctx, s.doc); err != nil {
		s.logSaveError(ctx, op, err)
	}
	s.notify(ctx, op)
}

func (s *LedgerService) notify(ctx context.Context, op string) {
	if len(s.notifiers) == 0 {
		return
	}
	c := Change{
		Operation: op,
		Month:     s.doc.SelectedMonth,
		Totals:    core.ComputeTotals(s.doc.Active()),
		At:        s.now(),
	}
	for _, n := range s.notifiers {
		n.Notify(ctx, c)
	}
}

func (s *LedgerService) logSaveError(ctx context.Context, op string, err error) {
	s.logger.ErrorContext(ctx, "Failed to persist ledger",
		log.NewFields().WithOperation(op).WithMonth(s.doc.SelectedMonth).
			WithError(err).WithErrorType(log.ErrorTypeDatabase).ToSlice()...)
}

func (s *LedgerService) logRejected(ctx context.Context, op string, err error) {
	s.logger.WarnContext(ctx, "Mutation rejected",
		log.NewFields().WithOperation(op).WithError(err).
			WithErrorType(log.ErrorTypeValidation).ToSlice()...)
}

func (s *LedgerService) logMissing(ctx context.Context, op, id string) {
	s.logger.DebugContext(ctx, "Expense not in active month, ignoring",
		log.FieldOperation, op, log.FieldExpenseID, id, log.FieldMonth, s.doc.SelectedMonth)
}
