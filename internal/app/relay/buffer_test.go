package relay

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Buffer_Push(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		pushes   int
		expected []string
		dropped  uint64
	}{
		{name: "Below capacity", capacity: 3, pushes: 2, expected: []string{"m0", "m1"}},
		{name: "At capacity", capacity: 3, pushes: 3, expected: []string{"m0", "m1", "m2"}},
		{name: "Oldest dropped when full", capacity: 3, pushes: 5, expected: []string{"m2", "m3", "m4"}, dropped: 2},
		{name: "Zero capacity keeps one", capacity: 0, pushes: 2, expected: []string{"m1"}, dropped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(tt.capacity)

			for i := 0; i < tt.pushes; i++ {
				b.Push("m" + strconv.Itoa(i))
			}

			assert.Equal(t, len(tt.expected), b.Len())
			assert.Equal(t, tt.dropped, b.Dropped())

			var got []string

			for {
				msg, ok := b.Peek()
				if !ok {
					break
				}

				got = append(got, msg)
				b.Pop()
			}

			assert.Equal(t, tt.expected, got)
		})
	}
}

func Test_Buffer_PushReportsDrop(t *testing.T) {
	b := NewBuffer(1)

	assert.False(t, b.Push("a"))
	assert.True(t, b.Push("b"))

	msg, ok := b.Peek()
	assert.True(t, ok)
	assert.Equal(t, "b", msg)
}

func Test_Buffer_EmptyPop(t *testing.T) {
	b := NewBuffer(2)

	b.Pop()

	_, ok := b.Peek()
	assert.False(t, ok)
	assert.Equal(t, 0, b.Len())
}
