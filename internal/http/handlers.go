package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"paytrack/internal/core"
	"paytrack/internal/log"
	"paytrack/internal/services"
	"paytrack/internal/view"
)

// pageData is the template payload: the rendered view plus an optional
// user-facing error from the last action.
type pageData struct {
	view.View
	Error string
}

const (
	msgBadForm    = "Geçersiz istek"
	msgNoTitle    = "Açıklama yaz"
	msgBadAmount  = "Tutar sıfırdan büyük olmalı"
	msgBadMonth   = "Geçersiz ay"
	msgBadDelta   = "Geçersiz ay kaydırma değeri"
	msgRenderFail = "Sayfa oluşturulamadı"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "")
}

func (s *Server) handleViewJSON(w http.ResponseWriter, r *http.Request) {
	v := s.renderer.Render(s.ledger.Document(), s.ledger.EditTarget())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "View encoding failed",
			log.NewFields().WithOperation(log.OpRender).WithError(err).ToSlice()...)
	}
}

func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	s.ledger.SetIncome(r.Context(), sanitizeInput(r.Form.Get("value")))
	s.done(w, r)
}

func (s *Server) handleSetExtraIncome(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	s.ledger.SetExtraIncome(r.Context(), sanitizeInput(r.Form.Get("value")))
	s.done(w, r)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	in, ok := s.expenseInput(w, r)
	if !ok {
		return
	}
	if _, err := s.ledger.AddExpense(r.Context(), in); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}
	s.done(w, r)
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	in, ok := s.expenseInput(w, r)
	if !ok {
		return
	}
	if err := s.ledger.EditExpense(r.Context(), r.PathValue("id"), in); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}
	s.done(w, r)
}

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ledger.BeginEdit(r.PathValue("id")); err != nil {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Edit target not found",
			log.FieldExpenseID, r.PathValue("id"), log.FieldErrorType, log.ErrorTypeNotFound)
	}
	s.render(w, r, http.StatusOK, "")
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	s.ledger.CancelEdit()
	s.done(w, r)
}

func (s *Server) handleTogglePaid(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	s.ledger.TogglePaid(r.Context(), r.PathValue("id"), parseChecked(r.Form.Get("paid")))
	s.done(w, r)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.ledger.DeleteExpense(r.Context(), r.PathValue("id"))
	s.done(w, r)
}

func (s *Server) handleClearPaid(w http.ResponseWriter, r *http.Request) {
	removed := s.ledger.ClearPaid(r.Context())
	log.FromContext(r.Context()).InfoContext(r.Context(), "Paid expenses cleared",
		log.FieldOperation, log.OpClearPaid, "removed", removed)
	s.done(w, r)
}

func (s *Server) handleSelectMonth(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	if err := s.ledger.SelectMonth(r.Context(), strings.TrimSpace(r.Form.Get("month"))); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, msgBadMonth)
		return
	}
	s.done(w, r)
}

func (s *Server) handleShiftMonth(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	delta, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("delta")))
	if err != nil {
		s.render(w, r, http.StatusBadRequest, msgBadDelta)
		return
	}
	if err := s.ledger.ShiftMonth(r.Context(), delta); err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, msgBadMonth)
		return
	}
	s.done(w, r)
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Parse form error",
			log.NewFields().WithError(err).WithErrorType(log.ErrorTypeValidation).ToSlice()...)
		s.render(w, r, http.StatusBadRequest, msgBadForm)
		return false
	}
	return true
}

// expenseInput reads the expense form fields. An unparsable amount is
// answered with 422 here; the remaining checks belong to the controller.
func (s *Server) expenseInput(w http.ResponseWriter, r *http.Request) (services.ExpenseInput, bool) {
	in := services.ExpenseInput{
		Title:    sanitizeInput(r.Form.Get("title")),
		Category: sanitizeInput(r.Form.Get("category")),
		Due:      sanitizeInput(r.Form.Get("due")),
	}
	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		s.render(w, r, http.StatusUnprocessableEntity, validationMessage(err))
		return in, false
	}
	in.Amount = amount
	return in, true
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyTitle):
		return msgNoTitle
	case errors.Is(err, core.ErrInvalidAmount):
		return msgBadAmount
	default:
		return msgBadForm
	}
}

// done answers a successful mutation: htmx requests get the refreshed panel,
// plain form posts are redirected back to the page.
func (s *Server) done(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		s.render(w, r, http.StatusOK, "")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// render writes the full page, or only the ledger panel for htmx requests.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	name := "index.html"
	if isHTMX(r) {
		name = "ledger"
	}
	data := pageData{
		View:  s.renderer.Render(s.ledger.Document(), s.ledger.EditTarget()),
		Error: errMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.NewFields().WithOperation(log.OpRender).WithError(err).
				WithErrorType(log.ErrorTypeInternal).ToSlice()...)
		_, _ = w.Write([]byte(`<div class="error">` + msgRenderFail + `</div>`))
	}
}
