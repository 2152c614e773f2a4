package stock

import (
	"testing"
	"time"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func day(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return t
}

func mustInterval(t *testing.T, start, end string) Interval {
	t.Helper()
	iv, err := NewInterval(day(start), day(end))
	require.NoError(t, err)
	return iv
}

func TestOverlapsTouchingEndpoints(t *testing.T) {
	a := mustInterval(t, "2024-01-01", "2024-01-10")
	b := mustInterval(t, "2024-01-10", "2024-01-15")
	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))

	a = mustInterval(t, "2024-01-01", "2024-01-05")
	c := mustInterval(t, "2024-01-06", "2024-01-10")
	assert.False(t, a.Overlaps(c))
	assert.False(t, c.Overlaps(a))

	single := mustInterval(t, "2024-01-05", "2024-01-05")
	assert.True(t, a.Overlaps(single))
}

func TestNewIntervalRejectsInvertedRange(t *testing.T) {
	_, err := NewInterval(day("2024-02-10"), day("2024-02-01"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = NewInterval(time.Time{}, day("2024-02-01"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestNewIntervalNormalizesToUTCDays(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	iv, err := NewInterval(time.Date(2024, 3, 1, 22, 30, 0, 0, loc), time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, day("2024-03-02"), iv.Start)
	assert.Equal(t, day("2024-03-02"), iv.End)
}

// The overlap predicate must agree with the expanded three-way range test.
func TestOverlapsMatchesThreeClauseForm(t *testing.T) {
	base := day("2024-01-01")
	rapid.Check(t, func(t *rapid.T) {
		s1 := rapid.IntRange(0, 60).Draw(t, "s1")
		e1 := s1 + rapid.IntRange(0, 20).Draw(t, "len1")
		s2 := rapid.IntRange(0, 60).Draw(t, "s2")
		e2 := s2 + rapid.IntRange(0, 20).Draw(t, "len2")

		a := Interval{Start: base.AddDate(0, 0, s1), End: base.AddDate(0, 0, e1)}
		b := Interval{Start: base.AddDate(0, 0, s2), End: base.AddDate(0, 0, e2)}

		threeClause := (s2 <= s1 && e2 >= s1) ||
			(s2 <= e1 && e2 >= e1) ||
			(s2 >= s1 && e2 <= e1)
		if a.Overlaps(b) != threeClause {
			t.Fatalf("predicate mismatch for [%d,%d] vs [%d,%d]", s1, e1, s2, e2)
		}
	})
}

func TestFoldCountsLegacyAndItemsOnce(t *testing.T) {
	window := mustInterval(t, "2024-01-05", "2024-01-08")
	legacy := uuid.New()
	item := uuid.New()
	cancelled := uuid.New()
	outside := uuid.New()

	reservations := []Reservation{
		{Source: SourceLegacy, BookingID: legacy, Start: day("2024-01-01"), End: day("2024-01-05"), Status: enums.BookingStatusConfirmed, Quantity: 7},
		{Source: SourceItem, BookingID: item, Start: day("2024-01-08"), End: day("2024-01-12"), Status: enums.BookingStatusPending, Quantity: 3},
		{Source: SourceItem, BookingID: cancelled, Start: day("2024-01-05"), End: day("2024-01-06"), Status: enums.BookingStatusCancelled, Quantity: 9},
		{Source: SourceItem, BookingID: outside, Start: day("2024-01-09"), End: day("2024-01-12"), Status: enums.BookingStatusConfirmed, Quantity: 9},
	}

	reserved, conflicts := Fold(window, reservations, nil)
	assert.Equal(t, 4, reserved)
	require.Len(t, conflicts, 2)
	assert.Equal(t, 1, conflicts[0].Quantity)

	reserved, conflicts = Fold(window, reservations, &item)
	assert.Equal(t, 1, reserved)
	require.Len(t, conflicts, 1)
	assert.Equal(t, legacy, conflicts[0].BookingID)
}

func TestPeriodCapacity(t *testing.T) {
	b := Buckets{Total: 10, Available: 7, Reserved: 3}
	assert.Equal(t, 7, PeriodCapacity(b, 3))

	b = Buckets{Total: 10, Available: 5, Reserved: 2, Maintenance: 2, Damaged: 1}
	assert.Equal(t, 4, PeriodCapacity(b, 3))
}
