// Package session turns an edited workout grid into packed records and
// upserts them into the historical log.
package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/claude/liftlog/internal/models"
)

// rawString normalizes a raw grid cell to its textual form. The bool result
// is false when the cell is empty: nil, blank text, or the NaN marker a
// spreadsheet-style surface produces for untouched cells.
func rawString(raw any) (string, bool) {
	switch x := raw.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(x)
		if s == "" || strings.EqualFold(s, "nan") {
			return "", false
		}
		return s, true
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case models.Value:
		if x.IsEmpty() {
			return "", false
		}
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

// CoerceReps converts a raw reps cell. Reps are whole numbers or nothing:
// an integer parses to Int, blank to Empty, and anything else — including
// fractional input — is preserved verbatim so the bad value stays visible in
// the saved record.
func CoerceReps(raw any) models.Value {
	s, ok := rawString(raw)
	if !ok {
		return models.EmptyValue()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return models.IntValue(n)
	}
	return models.TextValue(s)
}

// CoerceWeight converts a raw weight cell. A value whose textual form has no
// decimal separator parses to Int, fractional input to Decimal, blank to
// Empty; unparseable input is preserved verbatim.
func CoerceWeight(raw any) models.Value {
	s, ok := rawString(raw)
	if !ok {
		return models.EmptyValue()
	}
	if !strings.Contains(s, ".") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return models.IntValue(n)
		}
	}
	// ParseFloat accepts spellings like "inf" that have no JSON encoding;
	// only finite numbers become Decimal.
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return models.DecimalValue(f)
	}
	return models.TextValue(s)
}
