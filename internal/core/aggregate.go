package core

import (
	"fmt"
	"math"
)

// ReducePolicy decides how amounts of the same category combine.
type ReducePolicy int

const (
	// ReduceFirstWins keeps the amount of the first matching record per
	// category and ignores later records of that category.
	ReduceFirstWins ReducePolicy = iota
	// ReduceSum adds up every matching record of a category.
	ReduceSum
)

// MalformedPolicy decides what happens to records with a bad date or amount.
type MalformedPolicy int

const (
	// MalformedPropagate fails the pass on an unparseable date and keeps NaN
	// amounts in the output.
	MalformedPropagate MalformedPolicy = iota
	// MalformedSkip drops records whose date or amount cannot be parsed.
	MalformedSkip
)

// Aggregator turns expense records into per-category totals. The zero value
// reduces first-wins, colours randomly and propagates malformed records.
type Aggregator struct {
	Reduce    ReducePolicy
	Colors    ColorPolicy
	Malformed MalformedPolicy
}

// Aggregate runs the zero-value Aggregator.
func Aggregate(records []ExpenseRecord, criteria FilterCriteria) ([]CategoryTotal, error) {
	return Aggregator{}.Aggregate(records, criteria)
}

// Aggregate filters records by criteria and reduces them to one CategoryTotal
// per category, in order of first occurrence among the filtered records.
// Every record's date is normalized, whether or not a date range is set.
func (a Aggregator) Aggregate(records []ExpenseRecord, criteria FilterCriteria) ([]CategoryTotal, error) {
	index := make(map[string]int)
	out := make([]CategoryTotal, 0)

	for i, rec := range records {
		date, err := NormalizeDate(rec.Date)
		if err != nil {
			if a.Malformed == MalformedSkip {
				continue
			}
			return nil, fmt.Errorf("%w: record %d (%s): %w", ErrInvalidRecord, i, rec.Category, err)
		}
		if !criteria.Matches(rec, date) {
			continue
		}
		amount := ParseAmount(rec.Amount)
		if math.IsNaN(amount) && a.Malformed == MalformedSkip {
			continue
		}

		pos, seen := index[rec.Category]
		if !seen {
			index[rec.Category] = len(out)
			out = append(out, CategoryTotal{
				Name:   rec.Category,
				Amount: amount,
				Color:  a.Colors.colorFor(rec.Category),
			})
			continue
		}
		if a.Reduce == ReduceSum {
			out[pos].Amount += amount
		}
	}
	return out, nil
}

// Matches reports whether a record passes the filter. date must already be
// normalized to YYYY-MM-DD; the range is inclusive and only applies when both
// bounds are set.
func (c FilterCriteria) Matches(rec ExpenseRecord, date string) bool {
	if c.SelectedCategory != AllCategories && rec.Category != c.SelectedCategory {
		return false
	}
	if c.StartDate == "" || c.EndDate == "" {
		return true
	}
	return date >= c.StartDate && date <= c.EndDate
}

// ParseReducePolicy maps a config value to a ReducePolicy.
func ParseReducePolicy(s string) (ReducePolicy, error) {
	switch s {
	case "first", "":
		return ReduceFirstWins, nil
	case "sum":
		return ReduceSum, nil
	default:
		return 0, fmt.Errorf("unknown aggregation policy %q", s)
	}
}

// ParseMalformedPolicy maps a config value to a MalformedPolicy.
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch s {
	case "propagate", "":
		return MalformedPropagate, nil
	case "skip":
		return MalformedSkip, nil
	default:
		return 0, fmt.Errorf("unknown malformed-record policy %q", s)
	}
}
