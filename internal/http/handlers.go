package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gastos/internal/core"
	"gastos/internal/ledger"
	applog "gastos/internal/log"
	"gastos/internal/store"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	cats := s.getCategories(r.Context())

	data := struct {
		Today      string
		Month      int
		Year       int
		Categories []core.Category
	}{
		Today:      core.Today().ISO(),
		Month:      int(now.Month()),
		Year:       now.Year(),
		Categories: cats,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed",
			applog.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	dateStr := strings.TrimSpace(r.Form.Get("date"))
	if dateStr == "" {
		dateStr = core.Today().ISO()
	}
	date, err := parseDate(dateStr)
	if err != nil {
		UnprocessableEntityError("Fecha no válida").Write(w)
		return
	}

	amountStr := strings.TrimSpace(r.Form.Get("amount"))
	cents, err := core.ParseAmountToCents(amountStr)
	if err != nil {
		UnprocessableEntityError("Monto no válido").Write(w)
		return
	}

	categoryID, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("category_id")), 10, 64)
	if err != nil || categoryID <= 0 {
		UnprocessableEntityError("Categoría no válida").Write(w)
		return
	}

	desc := sanitizeInput(r.Form.Get("description"))

	tx := core.Transaction{
		Date:        date,
		Amount:      core.Money{Cents: cents},
		CategoryID:  categoryID,
		Description: desc,
	}
	if err := tx.Validate(); err != nil {
		UnprocessableEntityError("Datos no válidos: " + err.Error()).Write(w)
		return
	}

	if ok := s.ledger.AddTransaction(r.Context(), date, tx.Amount, categoryID, desc); !ok {
		slog.ErrorContext(r.Context(), "Transaction create failed",
			applog.FieldAmountCents, cents,
			applog.FieldCategory, categoryID)
		InternalServerError("Error al guardar el movimiento").Write(w)
		return
	}

	s.invalidateReport(date.Year, date.Month)

	NewHTMXResponse().
		TriggerTransactionCreated(date.Year, date.Month).
		TriggerReportRefresh(date.Year, date.Month).
		TriggerFormReset().
		BodyHTML(`<div class="success">Movimiento registrado: ` +
			template.HTMLEscapeString(desc) + ` por ` + formatAmount(cents) + `</div>`).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("id")), 10, 64)
	if err != nil || id <= 0 {
		UnprocessableEntityError("Identificador no válido").Write(w)
		return
	}

	params := ParseMonthParams(r.Form)

	if ok := s.ledger.DeleteTransaction(r.Context(), id); !ok {
		ErrorResponse(http.StatusNotFound, "No se encontró el movimiento").Write(w)
		return
	}

	s.invalidateReport(params.Year, params.Month)

	NewHTMXResponse().
		TriggerTransactionDeleted(params.Year, params.Month).
		TriggerReportRefresh(params.Year, params.Month).
		BodyHTML(`<div class="success">Movimiento eliminado</div>`).
		Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	typ := core.ExpenseType(sanitizeInput(r.Form.Get("type")))

	cat, err := s.ledger.AddCategory(r.Context(), name, typ)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrIncompleteData):
			UnprocessableEntityError("Datos incompletos: nombre y tipo son obligatorios").Write(w)
		case errors.Is(err, store.ErrDuplicateCategory):
			ErrorResponse(http.StatusConflict, "La categoría ya existe").Write(w)
		default:
			slog.ErrorContext(r.Context(), "Category create failed",
				applog.FieldError, err,
				applog.FieldCategory, name)
			InternalServerError("Error al crear la categoría").Write(w)
		}
		return
	}

	s.invalidateCategories()

	NewHTMXResponse().
		TriggerCategoryCreated(cat.Name).
		TriggerFormReset().
		BodyHTML(`<div class="success">Categoría creada: ` +
			template.HTMLEscapeString(cat.Name) + ` (` + string(cat.Type) + `)</div>`).
		Write(w)
}

// handleMonthReport renders the monthly report partial.
func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	params := ParseMonthParams(r.URL.Query())
	entries := s.getReport(r.Context(), params.Year, params.Month)
	summary := core.Summarize(entries)

	if s.templates == nil {
		_, _ = w.Write([]byte(`<section id="month-report" class="month-report"><div class="placeholder">Total: ` + formatAmount(summary.Total.Cents) + `</div></section>`))
		return
	}

	type row struct {
		ID       int64
		Date     string
		Category string
		Type     string
		Amount   string
	}
	data := struct {
		Year     int
		Month    int
		Rows     []row
		Fixed    string
		Variable string
		Total    string
		Empty    bool
	}{
		Year:     params.Year,
		Month:    params.Month,
		Fixed:    formatAmount(summary.Fixed.Cents),
		Variable: formatAmount(summary.Variable.Cents),
		Total:    formatAmount(summary.Total.Cents),
		Empty:    len(entries) == 0,
	}
	for _, e := range entries {
		data.Rows = append(data.Rows, row{
			ID:       e.ID,
			Date:     e.Date.ISO(),
			Category: e.CategoryName,
			Type:     string(e.Type),
			Amount:   formatAmount(e.Amount.Cents),
		})
	}

	if err := s.templates.ExecuteTemplate(w, "month_report.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error",
			applog.FieldError, err,
			"template", "month_report.html",
			applog.FieldYear, params.Year,
			applog.FieldMonth, params.Month)
		_, _ = w.Write([]byte(`<section id="month-report" class="month-report"><div class="placeholder">Error al generar el reporte</div></section>`))
	}
}
