package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)
	yesterday := now.Add(-24 * time.Hour)
	sameDay := now.Add(-2 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	tests := []struct {
		name       string
		current    int
		lastActive *time.Time
		want       int
	}{
		{"first activity ever", 0, nil, 1},
		{"same day keeps streak", 5, &sameDay, 5},
		{"consecutive day increments", 5, &yesterday, 6},
		{"gap resets to one", 12, &lastWeek, 1},
		{"same day floors at one", 0, &sameDay, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextStreak(tt.current, tt.lastActive, now))
		})
	}
}
