package timeparse

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday 2019-05-24 10:15 UTC.
var now = time.Date(2019, time.May, 24, 10, 15, 0, 0, time.UTC)

func TestParseExplicitLayouts(t *testing.T) {
	p := New(time.UTC)

	tests := map[string]struct {
		in   string
		want time.Time
	}{
		"date and minutes": {
			in:   "2019-05-25 10:42",
			want: time.Date(2019, time.May, 25, 10, 42, 0, 0, time.UTC),
		},
		"date only": {
			in:   "2019-05-25",
			want: time.Date(2019, time.May, 25, 0, 0, 0, 0, time.UTC),
		},
		"rfc3339 keeps its offset": {
			in:   "2019-05-25T10:42:00+02:00",
			want: time.Date(2019, time.May, 25, 8, 42, 0, 0, time.UTC),
		},
		"slash date is day first": {
			in:   "05/06/2019 10:00",
			want: time.Date(2019, time.June, 5, 10, 0, 0, 0, time.UTC),
		},
		"surrounding spaces": {
			in:   "  2019-05-25 10:42 ",
			want: time.Date(2019, time.May, 25, 10, 42, 0, 0, time.UTC),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := p.Parse(tc.in, now)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %s, want %s", got, tc.want)
		})
	}
}

func TestHelpDocumentsSlashDates(t *testing.T) {
	assert.Contains(t, Help, "(day/month/year)")

	got, err := New(time.UTC).Parse("25/05/2019 10:42", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, time.May, 25, 10, 42, 0, 0, time.UTC), got)
}

func TestParseUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	got, err := New(loc).Parse("2019-05-25 10:42", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, time.May, 25, 7, 42, 0, 0, time.UTC), got.UTC())
}

func TestParsePhrases(t *testing.T) {
	p := New(time.UTC)

	got, err := p.Parse("tomorrow", now)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Day())

	got, err = p.Parse("in 2 days", now)
	require.NoError(t, err)
	assert.Equal(t, 26, got.Day())

	got, err = p.Parse("today at 19:00", now)
	require.NoError(t, err)
	assert.Equal(t, 24, got.Day())
	assert.Equal(t, 19, got.Hour())
	assert.Equal(t, 0, got.Minute())
}

func TestParseUnrecognized(t *testing.T) {
	p := New(nil)

	for _, in := range []string{"", "   ", "whenever you like"} {
		_, err := p.Parse(in, now)
		assert.True(t, errors.Is(err, ErrUnrecognized), "input %q: %v", in, err)
	}
}
