package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bizdash/internal/core"
)

func TestParseCriteria(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  core.FilterCriteria
	}{
		{
			name:  "empty query selects all",
			query: url.Values{},
			want:  core.FilterCriteria{SelectedCategory: core.AllCategories},
		},
		{
			name:  "category and both dates",
			query: url.Values{"category": {"Office"}, "startDate": {"2024-02-01"}, "endDate": {"2024-02-28"}},
			want:  core.FilterCriteria{SelectedCategory: "Office", StartDate: "2024-02-01", EndDate: "2024-02-28"},
		},
		{
			name:  "end date stays on its own field",
			query: url.Values{"endDate": {"2024-03-31"}},
			want:  core.FilterCriteria{SelectedCategory: core.AllCategories, EndDate: "2024-03-31"},
		},
		{
			name:  "whitespace and control characters trimmed",
			query: url.Values{"category": {" Salaries\x00 "}},
			want:  core.FilterCriteria{SelectedCategory: "Salaries"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCriteria(tt.query); got != tt.want {
				t.Errorf("ParseCriteria() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseChartParams(t *testing.T) {
	tests := []struct {
		active string
		want   int
	}{
		{"", 0},
		{"2", 2},
		{"-1", 0},
		{"x", 0},
	}
	for _, tt := range tests {
		p := ParseChartParams(url.Values{"active": {tt.active}})
		if p.Active != tt.want {
			t.Errorf("active=%q: got %d, want %d", tt.active, p.Active, tt.want)
		}
	}
}

func TestChartParamsValuesRoundTrip(t *testing.T) {
	in := ChartParams{
		Criteria: core.FilterCriteria{SelectedCategory: "Office", StartDate: "2024-01-01", EndDate: "2024-01-31"},
		Active:   3,
	}
	if got := ParseChartParams(in.Values()); got != in {
		t.Fatalf("round trip = %+v, want %+v", got, in)
	}

	v := ChartParams{Criteria: core.FilterCriteria{SelectedCategory: core.AllCategories}}.Values()
	if v.Has("startDate") || v.Has("endDate") {
		t.Fatalf("empty dates should be omitted: %v", v)
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"category": "Office", "date": "2024-01-05", "amount": 42, "darkMode": true}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := core.ExpenseRecord{Category: "Office", Date: "2024-01-05", Amount: "42"}
	if rec := parser.Record(); rec != want {
		t.Errorf("Record() = %+v, want %+v", rec, want)
	}

	if v, ok := parser.Bool("darkMode"); !ok || !v {
		t.Errorf("Bool('darkMode') = %v, %v", v, ok)
	}
	if _, ok := parser.Bool("sidebarCollapsed"); ok {
		t.Error("Bool on a missing key should report !ok")
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "category=Salaries&date=2024-01-20&amount=500&darkMode=nope"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if rec := parser.Record(); rec.Category != "Salaries" || rec.Amount != "500" {
		t.Errorf("Record() = %+v", rec)
	}

	if !parser.Has("darkMode") {
		t.Error("Has('darkMode') = false")
	}
	if _, ok := parser.Bool("darkMode"); ok {
		t.Error("Bool should reject a non-boolean value")
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"category":`))
	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err == nil {
		t.Fatal("expected parse error")
	}
	// Parse is memoised.
	if err := parser.Parse(); err == nil {
		t.Fatal("expected memoised parse error")
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
	if parser.Has("nonexistent") {
		t.Error("Has('nonexistent') = true")
	}
}
