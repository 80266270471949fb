package tableutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type row struct {
	name string
	due  *time.Time
	seen int
}

func tp(s string) *time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return &t
}

func dueField(r row) any {
	if r.due == nil {
		return nil
	}
	return *r.due
}

func TestSortStateToggle(t *testing.T) {
	var s SortState

	s.Request("email")
	assert.Equal(t, "email", s.Key)
	assert.Equal(t, Ascending, s.Direction)

	s.Request("email")
	assert.Equal(t, Descending, s.Direction)

	s.Request("email")
	assert.Equal(t, Ascending, s.Direction)
}

func TestSortStateNewKeyResetsToAscending(t *testing.T) {
	var s SortState
	s.Request("email")
	s.Request("email")
	assert.Equal(t, Descending, s.Direction)

	s.Request("createdAt")
	assert.Equal(t, "createdAt", s.Key)
	assert.Equal(t, Ascending, s.Direction)
}

func TestSortStateIndicator(t *testing.T) {
	var s SortState
	assert.False(t, s.Active())
	assert.Equal(t, Direction(""), s.Indicator("email"))

	s.Request("email")
	assert.True(t, s.Active())
	assert.Equal(t, Ascending, s.Indicator("email"))
	assert.Equal(t, Direction(""), s.Indicator("name"))
}

func TestSortByString(t *testing.T) {
	rows := []row{{name: "carla"}, {name: "alice"}, {name: "bruno"}}

	asc := SortBy(rows, func(r row) any { return r.name }, Ascending)
	assert.Equal(t, []string{"alice", "bruno", "carla"}, names(asc))

	desc := SortBy(rows, func(r row) any { return r.name }, Descending)
	assert.Equal(t, []string{"carla", "bruno", "alice"}, names(desc))
}

func TestSortByDoesNotMutateInput(t *testing.T) {
	rows := []row{{name: "b"}, {name: "a"}}
	_ = SortBy(rows, func(r row) any { return r.name }, Ascending)
	assert.Equal(t, "b", rows[0].name)
}

func TestSortByNilsLastBothDirections(t *testing.T) {
	rows := []row{
		{name: "no-date"},
		{name: "early", due: tp("2024-01-01")},
		{name: "late", due: tp("2025-06-01")},
		{name: "also-no-date"},
	}

	asc := SortBy(rows, dueField, Ascending)
	assert.Equal(t, []string{"early", "late", "no-date", "also-no-date"}, names(asc))

	desc := SortBy(rows, dueField, Descending)
	assert.Equal(t, []string{"late", "early", "no-date", "also-no-date"}, names(desc))
}

func TestSortByNumericWidening(t *testing.T) {
	rows := []row{{name: "ten", seen: 10}, {name: "two", seen: 2}, {name: "thirty", seen: 30}}

	asc := SortBy(rows, func(r row) any { return r.seen }, Ascending)
	assert.Equal(t, []string{"two", "ten", "thirty"}, names(asc))
}

func TestSortByStableOnTies(t *testing.T) {
	rows := []row{
		{name: "first", seen: 1},
		{name: "second", seen: 1},
		{name: "third", seen: 1},
	}
	sorted := SortBy(rows, func(r row) any { return r.seen }, Descending)
	assert.Equal(t, []string{"first", "second", "third"}, names(sorted))
}

func names(rows []row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.name
	}
	return out
}
