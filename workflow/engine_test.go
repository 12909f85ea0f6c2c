package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdvance(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		out  Outcome
		want map[string]any
	}{
		{
			name: "done_parks_the_run",
			out:  Outcome{Done: true},
			want: map[string]any{"status": RunDone},
		},
		{
			name: "delay_sets_the_wake_up",
			out:  Outcome{Next: 3, Delay: 24 * time.Hour},
			want: map[string]any{"step": 3, "wake_at": now.Add(24 * time.Hour)},
		},
		{
			name: "zero_delay_wakes_on_the_next_tick",
			out:  Outcome{Next: 5},
			want: map[string]any{"step": 5, "wake_at": now},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, advance(tc.out, now))
		})
	}
}
