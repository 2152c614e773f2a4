package pagination

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-4))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, 8, LimitWithBuffer(7))
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 123, time.FixedZone("x", 3600)), ID: uuid.New()}
	encoded := EncodeCursor(in)
	assert.NotContains(t, encoded, "=")

	out, err := ParseCursor(encoded)
	require.NoError(t, err)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	got, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, raw := range []string{"%%%", "bm90LWpzb24", "e30"} {
		_, err := ParseCursor(raw)
		assert.True(t, errors.Is(err, ErrInvalidCursor), raw)
	}
}

func TestSplit(t *testing.T) {
	id := uuid.New()
	cursorOf := func(n int) Cursor { return Cursor{CreatedAt: time.Unix(int64(n), 0), ID: id} }

	rows, next := Split([]int{1, 2, 3}, 3, cursorOf)
	assert.Len(t, rows, 3)
	assert.Empty(t, next)

	rows, next = Split([]int{1, 2, 3, 4}, 3, cursorOf)
	assert.Equal(t, []int{1, 2, 3}, rows)
	c, err := ParseCursor(next)
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.CreatedAt.Unix())
}
