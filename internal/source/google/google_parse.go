package google

import (
	"fmt"
	"strings"

	"bizdash/internal/core"
)

// parseSummaryRows converts a values matrix into records. Columns are located
// by header name when the first row is a header, otherwise A=Category,
// B=Date, C=Amount. Rows without a category are skipped; other cells are
// passed through untouched so malformed data reaches the aggregator as is.
func parseSummaryRows(values [][]interface{}) []core.ExpenseRecord {
	if len(values) == 0 {
		return nil
	}
	colCat, colDate, colAmount := 0, 1, 2
	start := 0
	headers := toStrings(values[0])
	if i := indexOf(headers, "Category"); i != -1 {
		colCat = i
		if j := indexOf(headers, "Date"); j != -1 {
			colDate = j
		}
		if k := indexOf(headers, "Amount"); k != -1 {
			colAmount = k
		}
		start = 1
	}

	out := make([]core.ExpenseRecord, 0, len(values)-start)
	for _, raw := range values[start:] {
		row := toStrings(raw)
		category := safeGet(row, colCat)
		if category == "" {
			continue
		}
		out = append(out, core.ExpenseRecord{
			Category: category,
			Date:     safeGet(row, colDate),
			Amount:   safeGet(row, colAmount),
		})
	}
	return out
}

func summaryRow(rec core.ExpenseRecord) []any {
	return []any{rec.Category, rec.Date, rec.Amount}
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(v, target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
