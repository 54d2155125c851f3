// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Filter parameters are shared by the chart partial and the aggregation API,
// and write bodies may arrive as JSON or as htmx form posts.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bizdash/internal/core"
)

// maxBodyBytes caps request bodies on write endpoints.
const maxBodyBytes = 64 << 10

// ChartParams holds the filter and highlight state of a chart request.
type ChartParams struct {
	Criteria core.FilterCriteria
	Active   int
}

// ParseCriteria extracts the filter criteria from query parameters. A missing
// category selects every category; date bounds are passed through as given
// and only applied when both are present.
func ParseCriteria(query url.Values) core.FilterCriteria {
	criteria := core.FilterCriteria{
		SelectedCategory: sanitizeInput(query.Get("category")),
		StartDate:        sanitizeInput(query.Get("startDate")),
		EndDate:          sanitizeInput(query.Get("endDate")),
	}
	if criteria.SelectedCategory == "" {
		criteria.SelectedCategory = core.AllCategories
	}
	return criteria
}

// ParseChartParams extracts criteria plus the active slice index, which
// defaults to the first slice.
func ParseChartParams(query url.Values) ChartParams {
	params := ChartParams{Criteria: ParseCriteria(query)}
	if v := strings.TrimSpace(query.Get("active")); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			params.Active = i
		}
	}
	return params
}

// Values renders the params back into a query string for hx-get links.
func (p ChartParams) Values() url.Values {
	v := url.Values{}
	v.Set("category", p.Criteria.SelectedCategory)
	if p.Criteria.StartDate != "" {
		v.Set("startDate", p.Criteria.StartDate)
	}
	if p.Criteria.EndDate != "" {
		v.Set("endDate", p.Criteria.EndDate)
	}
	v.Set("active", strconv.Itoa(p.Active))
	return v
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	trimmed := strings.TrimSpace(string(p.body))
	if strings.HasPrefix(trimmed, "{") {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// Has reports whether key was present in the body.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		return p.formData.Has(key)
	}
	return false
}

// Bool parses key as a boolean. Missing or unparseable values report ok=false.
func (p *RequestBodyParser) Bool(key string) (value, ok bool) {
	if !p.Has(key) {
		return false, false
	}
	b, err := strconv.ParseBool(p.Get(key))
	if err != nil {
		return false, false
	}
	return b, true
}

// Record builds an expense record from the category, date and amount fields.
func (p *RequestBodyParser) Record() core.ExpenseRecord {
	return core.ExpenseRecord{
		Category: p.Get("category"),
		Date:     p.Get("date"),
		Amount:   p.Get("amount"),
	}
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
