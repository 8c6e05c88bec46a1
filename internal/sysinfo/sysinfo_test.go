package sysinfo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5с"},
		{2*time.Minute + 3*time.Second, "2м 3с"},
		{3*time.Hour + 4*time.Minute, "3ч 4м 0с"},
		{49*time.Hour + time.Second, "2д 1ч 0м 1с"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatUptime(c.d))
	}
}

func TestSnapshot(t *testing.T) {
	p := New()
	s := p.Snapshot()
	assert.Greater(t, s.MemoryMB, 0.0)
	assert.Greater(t, s.Goroutines, 0)
	assert.NotEmpty(t, s.Uptime)
	assert.GreaterOrEqual(t, s.CPUPercent, 0.0)
}
