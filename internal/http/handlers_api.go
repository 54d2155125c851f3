package http

import (
	"errors"
	"net/http"

	"bizdash/internal/core"
	applog "bizdash/internal/log"
	"bizdash/internal/prefs"
)

const (
	msgFetchFailed = "failed to fetch expenses"
	msgSaveFailed  = "failed to save expense summary"
	msgRateLimited = "Rate limit exceeded. Please try again later."
)

// handleListExpenses serves the whole source collection. It is the single
// read endpoint the dashboard aggregates from.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := s.fetchRecords(ctx)
	if err != nil {
		s.events.LogError(ctx, "Expense source fetch failed", err, applog.ComponentHTTP, applog.OpList, nil)
		writeJSONError(w, r, http.StatusBadGateway, msgFetchFailed)
		return
	}
	if records == nil {
		records = []core.ExpenseRecord{}
	}
	writeJSON(w, r, http.StatusOK, records)
}

// handleExpensesByCategory aggregates the collection server-side with the
// configured policies.
func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	criteria := ParseCriteria(r.URL.Query())

	records, err := s.fetchRecords(ctx)
	if err != nil {
		s.events.LogError(ctx, "Expense source fetch failed", err, applog.ComponentHTTP, applog.OpList, nil)
		writeJSONError(w, r, http.StatusBadGateway, msgFetchFailed)
		return
	}

	totals, err := s.aggregator.Aggregate(records, criteria)
	if err != nil {
		fields := applog.NewFields().WithCriteria(criteria.SelectedCategory, criteria.StartDate, criteria.EndDate)
		s.events.LogError(ctx, "Aggregation failed", err, applog.ComponentAggregate, applog.OpAggregate, fields)
		if errors.Is(err, core.ErrInvalidRecord) {
			writeJSONError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSONError(w, r, http.StatusInternalServerError, "aggregation failed")
		return
	}
	s.events.LogAggregation(ctx, criteria.SelectedCategory, criteria.StartDate, criteria.EndDate, len(records), len(totals))

	writeJSON(w, r, http.StatusOK, totals)
}

// handleCreateExpense records a new summary from JSON or an htmx form post.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	htmx := isHTMX(r)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Invalid request body", applog.FieldError, err)
		if htmx {
			BadRequestError("Invalid request body").Write(w)
			return
		}
		writeJSONError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	rec := parser.Record()
	if err := rec.Validate(); err != nil {
		fields := applog.NewFields().WithRecord(rec.Category, rec.Date, rec.Amount).WithOperation(applog.OpValidate)
		applog.FromContext(ctx).WarnContext(ctx, "Expense summary rejected", fields.WithError(err).ToSlice()...)
		if htmx {
			UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
			return
		}
		writeJSONError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ref, err := s.writer.Append(ctx, rec)
	if err != nil {
		fields := applog.NewFields().WithRecord(rec.Category, rec.Date, rec.Amount)
		s.events.LogError(ctx, "Expense summary append failed", err, applog.ComponentStorage, applog.OpCreate, fields)
		if htmx {
			InternalServerError("Error saving expense summary").TriggerErrorNotification("Error saving expense summary").Write(w)
			return
		}
		writeJSONError(w, r, http.StatusInternalServerError, msgSaveFailed)
		return
	}

	s.invalidateRecords()
	s.events.LogSummaryRecorded(ctx, rec.Category, rec.Date, rec.Amount, ref)

	if htmx {
		NewHTMXResponse().
			Status(http.StatusCreated).
			TriggerSummaryCreated(rec.Category, ref).
			TriggerChartRefresh().
			TriggerFormReset().
			TriggerSuccessNotification("Saved " + rec.Category + " " + rec.Amount).
			BodyHTML(`<div class="success">Saved</div>`).
			Write(w)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]string{"ref": ref})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.prefs.Get())
}

// handlePutPreferences applies the fields present in the body and leaves the
// others unchanged.
func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Invalid preferences body", applog.FieldError, err)
		writeJSONError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	sidebar, sidebarOK := parser.Bool("sidebarCollapsed")
	dark, darkOK := parser.Bool("darkMode")
	if parser.Has("sidebarCollapsed") && !sidebarOK || parser.Has("darkMode") && !darkOK {
		writeJSONError(w, r, http.StatusUnprocessableEntity, "preferences must be booleans")
		return
	}

	next := s.prefs.Update(func(p *prefs.Preferences) {
		if sidebarOK {
			p.SidebarCollapsed = sidebar
		}
		if darkOK {
			p.DarkMode = dark
		}
	})

	writeJSON(w, r, http.StatusOK, next)
}

// handleToggleSidebar and handleToggleDarkMode back the shell buttons; the
// page reloads to pick up the new classes.
func (s *Server) handleToggleSidebar(w http.ResponseWriter, r *http.Request) {
	next := s.prefs.ToggleSidebar()
	NewHTMXResponse().
		Status(http.StatusNoContent).
		TriggerPreferencesChanged(next).
		Header("HX-Refresh", "true").
		Write(w)
}

func (s *Server) handleToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	next := s.prefs.ToggleDarkMode()
	NewHTMXResponse().
		Status(http.StatusNoContent).
		TriggerPreferencesChanged(next).
		Header("HX-Refresh", "true").
		Write(w)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	applog.FromContext(ctx).WithComponent(applog.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
		applog.FieldClientIP, s.clientIP.ClientIP(r),
		applog.FieldPath, r.URL.Path)
	if isHTMX(r) {
		TooManyRequestsError(msgRateLimited).Write(w)
		return
	}
	writeJSONError(w, r, http.StatusTooManyRequests, msgRateLimited)
}
