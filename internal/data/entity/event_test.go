package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatLabel(t *testing.T) {
	cases := map[int]string{
		0:   "A1",
		9:   "A10",
		10:  "B1",
		25:  "C6",
		259: "Z10",
		260: "AA1",
	}
	for pos, want := range cases {
		assert.Equal(t, want, SeatLabel(pos), "position %d", pos)
	}
}

func TestBuildSeats_GrowthKeepsExistingSeats(t *testing.T) {
	initial := BuildSeats(0, 12)
	require.Len(t, initial, 12)
	initial[3].IsBooked = true

	grown := append(append([]Seat{}, initial...), BuildSeats(12, 25)...)
	require.Len(t, grown, 25)

	// the prefix is untouched
	assert.Equal(t, initial, grown[:12])
	assert.True(t, grown[3].IsBooked)

	seen := make(map[string]bool)
	for i, s := range grown {
		assert.Equal(t, i, s.Position)
		assert.False(t, seen[s.Number], "duplicate seat %s", s.Number)
		seen[s.Number] = true
	}
	assert.Equal(t, "B3", grown[12].Number)
	assert.False(t, grown[12].IsBooked)
}

func TestBuildSeats_NoShrink(t *testing.T) {
	assert.Nil(t, BuildSeats(10, 10))
	assert.Nil(t, BuildSeats(10, 4))
}

func TestEvent_AvailableSeats(t *testing.T) {
	e := &Event{Seats: BuildSeats(0, 3)}
	e.Seats[1].IsBooked = true
	assert.Equal(t, 2, e.AvailableSeats())
}
