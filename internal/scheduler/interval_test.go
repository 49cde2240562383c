package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseIntervalDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"15m", 15 * time.Minute, true},
		{"1h", time.Hour, true},
		{"4h", 4 * time.Hour, true},
		{"1d", 24 * time.Hour, true},
		{"1w", 7 * 24 * time.Hour, true},
		{" 30M ", 30 * time.Minute, true},
		{"", 0, false},
		{"m", 0, false},
		{"0m", 0, false},
		{"-5m", 0, false},
		{"15x", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseIntervalDuration(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestAlignedSchedulerNextTimes(t *testing.T) {
	s := &AlignedScheduler{Interval: 15 * time.Minute, Offset: 5 * time.Second}
	now := time.Date(2026, 3, 1, 10, 7, 30, 0, time.UTC)

	boundary, wakeAt, wait := s.nextTimes(now)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC), boundary)
	assert.Equal(t, boundary.Add(5*time.Second), wakeAt)
	assert.Equal(t, wakeAt.Sub(now), wait)
}
