package sqlite

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp_SortsLexically(t *testing.T) {
	early := time.Date(2026, 1, 10, 9, 0, 0, 5, time.UTC)
	late := time.Date(2026, 1, 10, 9, 0, 0, 500, time.UTC)

	assert.Less(t, FormatTimestamp(early), FormatTimestamp(late))
}

func TestParseTimestamp_RoundTrip(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2026, 1, 10, 11, 30, 15, 123456789, loc)

	parsed, err := ParseTimestamp(FormatTimestamp(at))
	require.NoError(t, err)
	assert.True(t, at.Equal(parsed))
	assert.Equal(t, time.UTC, parsed.Location())

	parsed, err = ParseTimestamp("2026-01-10T09:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 9, parsed.Hour())

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestNullTimestamp(t *testing.T) {
	assert.False(t, NullTimestamp(nil).Valid)

	got, err := ParseNullTimestamp(sql.NullString{})
	require.NoError(t, err)
	assert.Nil(t, got)

	at := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	got, err = ParseNullTimestamp(NullTimestamp(&at))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, at.Equal(*got))
}
