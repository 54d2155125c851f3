package http

import (
	"bytes"
	"net/http"

	"bizdash/internal/chart"
	"bizdash/internal/core"
	applog "bizdash/internal/log"
	"bizdash/internal/prefs"
)

// Chart states shown in place of the pie.
const (
	chartLoading       = "Loading..."
	chartFetchFailed   = "Failed to fetch Expenses"
	chartInvalidRecord = "Invalid expense data"
)

// pageView is shared by the full-page templates.
type pageView struct {
	Title   string
	Nav     string
	Prefs   prefs.Preferences
	Options []core.CategoryOption
	Params  ChartParams
	Loading string
}

// chartView feeds expenses_chart.html.
type chartView struct {
	Params ChartParams
	Chart  chart.PieChart
	Active *chart.Slice
	Links  []string // per slice, re-renders with that slice highlighted
	Error  string
	Detail string
}

func (s *Server) newPageView(r *http.Request, title, nav string) pageView {
	return pageView{
		Title:   title,
		Nav:     nav,
		Prefs:   s.prefs.Get(),
		Options: core.CategoryOptions(),
		Params:  ParseChartParams(r.URL.Query()),
		Loading: chartLoading,
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "dashboard.html", s.newPageView(r, "Dashboard", "dashboard"))
}

func (s *Server) handleExpensesPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "expenses.html", s.newPageView(r, "Expenses", "expenses"))
}

// handleExpensesChart renders the pie partial for the requested filters. A
// source failure is terminal for this render; the page offers no retry.
func (s *Server) handleExpensesChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := ParseChartParams(r.URL.Query())
	view := chartView{Params: params}

	records, err := s.fetchRecords(ctx)
	if err != nil {
		s.events.LogError(ctx, "Expense source fetch failed", err, applog.ComponentHTTP, applog.OpList, nil)
		view.Error = chartFetchFailed
		s.render(w, r, "expenses_chart.html", view)
		return
	}

	criteria := params.Criteria
	totals, err := s.aggregator.Aggregate(records, criteria)
	if err != nil {
		fields := applog.NewFields().WithCriteria(criteria.SelectedCategory, criteria.StartDate, criteria.EndDate)
		s.events.LogError(ctx, "Aggregation failed", err, applog.ComponentAggregate, applog.OpAggregate, fields)
		view.Error = chartInvalidRecord
		view.Detail = err.Error()
		s.render(w, r, "expenses_chart.html", view)
		return
	}
	s.events.LogAggregation(ctx, criteria.SelectedCategory, criteria.StartDate, criteria.EndDate, len(records), len(totals))

	view.Chart = chart.Pie(totals, params.Active)
	view.Links = make([]string, len(view.Chart.Slices))
	for i := range view.Chart.Slices {
		if view.Chart.Slices[i].Active {
			view.Active = &view.Chart.Slices[i]
		}
		link := params
		link.Active = i
		view.Links[i] = "/ui/expenses-chart?" + link.Values().Encode()
	}
	s.render(w, r, "expenses_chart.html", view)
}

// render executes a template into a buffer so a failing template never
// leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	ctx := r.Context()
	if s.templates == nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.events.LogError(ctx, "Template execution failed", err, applog.ComponentTemplate, applog.OpRender,
			applog.LogFields{"template": name})
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
