package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/habitrack/habitrack/internal/shared/domain"
)

func TestDateOf(t *testing.T) {
	instant := time.Date(2026, 1, 10, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, NewDate(2026, 1, 10), DateOf(instant, nil))
	assert.Equal(t, NewDate(2026, 1, 11), DateOf(instant, time.FixedZone("UTC+2", 2*3600)))
	assert.Equal(t, NewDate(2026, 1, 10), DateOf(instant.Add(-20*time.Hour), time.FixedZone("UTC-5", -5*3600)))
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2026, 2, 27)

	assert.Equal(t, NewDate(2026, 3, 1), d.AddDays(2))
	assert.Equal(t, 2, d.AddDays(2).DaysSince(d))
	assert.Equal(t, -2, d.DaysSince(d.AddDays(2)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.Between(d, d))
	assert.False(t, d.Between(d.AddDays(1), d.AddDays(3)))
	assert.Equal(t, time.Friday, d.Weekday())
}

func TestDate_DaysSinceAcrossCenturies(t *testing.T) {
	first := MustParseDate("0001-01-01")
	last := MustParseDate("9999-12-31")

	assert.Equal(t, 3652058, last.DaysSince(first))
	assert.Equal(t, -3652058, first.DaysSince(last))
	assert.Equal(t, 1, MustParseDate("0001-01-02").DaysSince(first))
	assert.Equal(t, 366, NewDate(2001, 1, 1).DaysSince(NewDate(2000, 1, 1)))
}

func TestDate_KeyEquality(t *testing.T) {
	parsed := MustParseDate("2026-01-10")
	built := NewDate(2026, 1, 10)
	walked := NewDate(2026, 1, 1).AddDays(9)

	set := map[Date]bool{parsed: true}
	assert.True(t, set[built])
	assert.True(t, set[walked])
	assert.True(t, set[DateOf(time.Date(2026, 1, 10, 12, 0, 0, 0, time.Local), time.Local)])
}

func TestDate_Text(t *testing.T) {
	d := NewDate(2026, 1, 10)
	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2026-01-10", string(text))

	var decoded Date
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, d, decoded)

	_, err = ParseDate("10/01/2026")
	assert.Error(t, err)
}

func TestParseActionType(t *testing.T) {
	for _, action := range ActionTypes {
		parsed, err := ParseActionType(string(action))
		require.NoError(t, err)
		assert.Equal(t, action, parsed)
		assert.NotEqual(t, "Unknown action.", action.Description())
	}

	_, err := ParseActionType("exploded")
	assert.ErrorIs(t, err, ErrInvalidActionType)
}

func TestToday_UsesLocation(t *testing.T) {
	clock := sharedDomain.NewFixedClock(time.Date(2026, 1, 10, 23, 30, 0, 0, time.UTC))
	tokyo := time.FixedZone("JST", 9*60*60)

	assert.Equal(t, NewDate(2026, 1, 10), Today(clock, time.UTC))
	assert.Equal(t, NewDate(2026, 1, 11), Today(clock, tokyo))
}
