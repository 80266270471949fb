package tableutil

import (
	"fmt"
	"sort"
	"time"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// FieldFunc extracts the sortable value of one column from an item. A nil
// return marks the value as absent.
type FieldFunc[T any] func(item T) any

// SortState tracks the active sort column and direction across requests.
// The zero value means "unsorted".
type SortState struct {
	Key       string
	Direction Direction
}

// Request applies the column-header click semantics: asking for the current
// key again flips the direction, asking for a new key resets to ascending.
func (s *SortState) Request(key string) {
	dir := Ascending
	if s.Key == key && s.Direction == Ascending {
		dir = Descending
	}
	s.Key = key
	s.Direction = dir
}

// Indicator returns the direction shown for a column header, or "" when the
// column is not the active sort key.
func (s *SortState) Indicator(key string) Direction {
	if s.Key != key {
		return ""
	}
	return s.Direction
}

// Active reports whether any sort is in effect.
func (s *SortState) Active() bool { return s.Key != "" }

// SortBy returns a new slice ordered by the extracted field. Absent (nil)
// values sort after every present value in BOTH directions; that matches the
// dashboard's long-standing table behavior and is covered by tests, so keep it
// unless the ordering policy is revisited for all screens at once.
// Ties keep their input order (sort.SliceStable).
func SortBy[T any](items []T, field FieldFunc[T], dir Direction) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		av, bv := field(out[i]), field(out[j])
		if av == nil {
			return false
		}
		if bv == nil {
			return true
		}
		c := compareValues(av, bv)
		if dir == Descending {
			c = -c
		}
		return c < 0
	})
	return out
}

// compareValues orders two non-nil values of the same column. Numeric kinds
// are widened to float64; unknown kinds fall back to their string form.
func compareValues(a, b any) int {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	as, bs := toString(a), toString(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
