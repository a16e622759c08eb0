package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"19:30", 1170, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
		{"9", 0, true},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.wantErr {
			assert.Error(t, err, "input %q", c.in)
			continue
		}
		require.NoError(t, err, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "09:05", "13:30", "23:45"} {
		min, err := ParseClock(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatClock(min))
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     int
		want                           bool
	}{
		{"disjoint before", 540, 600, 600, 660, false},
		{"disjoint after", 600, 660, 540, 600, false},
		{"identical", 540, 600, 540, 600, true},
		{"partial head", 540, 630, 600, 660, true},
		{"partial tail", 600, 660, 540, 630, true},
		{"contained", 540, 720, 600, 660, true},
		{"containing", 600, 660, 540, 720, true},
		{"touching boundaries only", 540, 600, 480, 540, false},
		{"one minute shared", 540, 601, 600, 660, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Overlaps(c.aStart, c.aEnd, c.bStart, c.bEnd))
			// Overlap is symmetric.
			assert.Equal(t, c.want, Overlaps(c.bStart, c.bEnd, c.aStart, c.aEnd))
		})
	}
}
