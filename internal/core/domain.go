package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// AllCategories disables category filtering when selected.
const AllCategories = "All"

type (
	// ExpenseRecord is one expense-by-category summary as served by the
	// expense source. Amount stays a string on the wire.
	ExpenseRecord struct {
		Category string `json:"category"`
		Date     string `json:"date"`
		Amount   string `json:"amount"`
	}

	// CategoryTotal is one pie slice: a category, its amount and display colour.
	CategoryTotal struct {
		Name   string
		Amount float64 // NaN when the source amount was malformed
		Color  string  // #rrggbb
	}

	// FilterCriteria holds the user-selected filters applied before aggregation.
	FilterCriteria struct {
		SelectedCategory string
		StartDate        string
		EndDate          string
	}
)

var (
	ErrInvalidRecord = errors.New("invalid record")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
)

// Validate checks a record before it is written to a source.
func (r ExpenseRecord) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if len(r.Category) > 100 {
		return errors.New("category too long (max 100 characters)")
	}
	if _, err := NormalizeDate(r.Date); err != nil {
		return err
	}
	if math.IsNaN(ParseAmount(r.Amount)) {
		return fmt.Errorf("%w: %q", ErrInvalidAmount, r.Amount)
	}
	return nil
}

// Valid reports whether the amount is a usable number.
func (t CategoryTotal) Valid() bool {
	return !math.IsNaN(t.Amount)
}

type categoryTotalJSON struct {
	Name   string   `json:"name"`
	Amount *float64 `json:"amount"`
	Color  string   `json:"color"`
	Valid  bool     `json:"valid"`
}

// MarshalJSON encodes a NaN amount as null since JSON has no NaN.
func (t CategoryTotal) MarshalJSON() ([]byte, error) {
	out := categoryTotalJSON{Name: t.Name, Color: t.Color, Valid: t.Valid()}
	if out.Valid {
		amount := t.Amount
		out.Amount = &amount
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (t *CategoryTotal) UnmarshalJSON(data []byte) error {
	var in categoryTotalJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t.Name, t.Color = in.Name, in.Color
	if in.Amount == nil {
		t.Amount = math.NaN()
	} else {
		t.Amount = *in.Amount
	}
	return nil
}

// CategoryOption is one entry of the category dropdown.
type CategoryOption struct {
	Label string
	Value string
}

// CategoryOptions returns the fixed dropdown set. Every option filters on its
// own category name.
func CategoryOptions() []CategoryOption {
	return []CategoryOption{
		{Label: AllCategories, Value: AllCategories},
		{Label: "Office", Value: "Office"},
		{Label: "Professional", Value: "Professional"},
		{Label: "Salaries", Value: "Salaries"},
	}
}
