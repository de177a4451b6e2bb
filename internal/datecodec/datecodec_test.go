package datecodec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSecondGranularity(t *testing.T) {
	parsed, gran, err := Parse("2021-06-15T10:30:00Z", StartOfDay)
	assert.NoError(t, err)
	assert.Equal(t, Second, gran)
	assert.Equal(t, 2021, parsed.Year())
	assert.Equal(t, 10, parsed.Hour())
	assert.Equal(t, 30, parsed.Minute())
}

func TestParseDayGranularityUsesDefaultTime(t *testing.T) {
	from, gran, err := Parse("2021-06-15", StartOfDay)
	assert.NoError(t, err)
	assert.Equal(t, Day, gran)
	assert.Equal(t, 0, from.Hour())

	until, gran, err := Parse("2021-06-15", EndOfDay)
	assert.NoError(t, err)
	assert.Equal(t, Day, gran)
	assert.Equal(t, 23, until.Hour())
	assert.Equal(t, 59, until.Minute())
	assert.Equal(t, 59, until.Second())
}

func TestParseRejectsUnsupportedShapes(t *testing.T) {
	for _, bad := range []string{"", "2021", "2021/06/15", "2021-06-15T10:30:00", "not-a-date"} {
		_, _, err := Parse(bad, StartOfDay)
		assert.Error(t, err, bad)
	}
}

func TestFormatIsAlwaysSecondGranularity(t *testing.T) {
	ts := time.Date(2021, 6, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, "2021-06-15T10:30:00Z", Format(ts))
}

func TestRoundTrip(t *testing.T) {
	parsed, gran, err := Parse("2021-06-15T10:30:45Z", StartOfDay)
	assert.NoError(t, err)
	assert.Equal(t, Second, gran)
	assert.Equal(t, "2021-06-15T10:30:45Z", Format(parsed))
}

func TestNowIsSecondGranularity(t *testing.T) {
	now := Now()
	assert.Zero(t, now.Nanosecond())
}
