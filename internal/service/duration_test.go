package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateDuration(t *testing.T) {
	day := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	at := func(h, m, s int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second) }

	d, err := CalculateDuration(at(10, 0, 0), at(11, 30, 0))
	require.NoError(t, err)
	assert.Equal(t, Duration{Hours: 1, Minutes: 30, TotalMinutes: 90}, d)
	assert.Equal(t, "1h 30m", d.String())

	d, err = CalculateDuration(at(10, 0, 0), at(10, 45, 59))
	require.NoError(t, err)
	assert.Equal(t, 45, d.TotalMinutes)
	assert.Equal(t, "0h 45m", d.String())

	d, err = CalculateDuration(at(0, 0, 0), at(24, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, 24, d.Hours)
}

func TestCalculateDurationRejects(t *testing.T) {
	base := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	cases := map[string][2]time.Time{
		"equal":          {base, base},
		"reversed":       {base, base.Add(-time.Minute)},
		"under a minute": {base, base.Add(59 * time.Second)},
		"over a day":     {base, base.Add(24*time.Hour + time.Minute)},
		"missing":        {time.Time{}, base},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := CalculateDuration(c[0], c[1])
			assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
		})
	}
}

func TestDurationFromMinutes(t *testing.T) {
	assert.Equal(t, "2h 5m", DurationFromMinutes(125).String())
	assert.Equal(t, "0h 0m", DurationFromMinutes(-4).String())
}
