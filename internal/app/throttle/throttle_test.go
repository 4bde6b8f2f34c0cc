package throttle

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func Test_Limiter_Allow(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := newLimiter(30*time.Second, c.now)

	assert.True(t, l.Allow("accept failed"), "first report")
	assert.False(t, l.Allow("accept failed"), "repeat within cooldown")

	c.advance(29 * time.Second)
	assert.False(t, l.Allow("accept failed"), "still within cooldown")

	assert.True(t, l.Allow("pipe busy"), "different message")
	assert.True(t, l.Allow("accept failed"), "differs from last reported")

	c.advance(30 * time.Second)
	assert.True(t, l.Allow("accept failed"), "cooldown elapsed")
}

func Test_Limiter_Concurrent(t *testing.T) {
	l := NewLimiter(time.Hour)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if l.Allow("same") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, allowed)
}

func Test_Backoff(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, time.Second)

	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}

	for i, want := range expected {
		assert.Equal(t, want, b.Next(), "step %d", i)
	}

	b.Reset()
	assert.Equal(t, 100*time.Millisecond, b.Next())
}

func Test_Backoff_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		initial  time.Duration
		max      time.Duration
		expected []time.Duration
	}{
		{
			name:     "zero initial uses floor",
			initial:  0,
			max:      40 * time.Millisecond,
			expected: []time.Duration{MinBackoff, 2 * MinBackoff, 4 * MinBackoff, 4 * MinBackoff},
		},
		{
			name:     "negative initial uses floor",
			initial:  -time.Second,
			max:      0,
			expected: []time.Duration{MinBackoff, MinBackoff},
		},
		{
			name:     "max below initial is raised",
			initial:  time.Second,
			max:      time.Millisecond,
			expected: []time.Duration{time.Second, time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackoff(tt.initial, tt.max)
			for i, want := range tt.expected {
				assert.Equal(t, want, b.Next(), "step %d", i)
			}
		})
	}
}
