package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeenSetEviction(t *testing.T) {
	s := NewSeenSet(100, nil)
	for i := 1; i <= 101; i++ {
		s.Add(fmt.Sprint(i))
	}
	assert.Equal(t, 100, s.Len())
	assert.False(t, s.Contains("1"))
	assert.True(t, s.Contains("2"))
	assert.True(t, s.Contains("101"))
	assert.Equal(t, "2", s.IDs()[0])
}

func TestSeenSetAddReturnsEvicted(t *testing.T) {
	s := NewSeenSet(2, []string{"a", "b"})
	assert.Nil(t, s.Add("b"))
	assert.Equal(t, []string{"a"}, s.Add("c"))
	assert.Equal(t, []string{"b", "c"}, s.IDs())
}

func TestSeenSetLoadKeepsNewest(t *testing.T) {
	s := NewSeenSet(3, []string{"1", "2", "3", "4", "5"})
	assert.Equal(t, []string{"3", "4", "5"}, s.IDs())

	ids := s.IDs()
	ids[0] = "x"
	assert.True(t, s.Contains("3"), "IDs must return a copy")
}

func TestParseTradingHours(t *testing.T) {
	h, err := ParseTradingHours("UTC", []string{"09:30-16:00"})
	require.NoError(t, err)

	mon := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	assert.True(t, h.Open(mon))
	assert.False(t, h.Open(mon.Add(7*time.Hour)))
	assert.False(t, h.Open(mon.AddDate(0, 0, 5)), "saturday")

	_, err = ParseTradingHours("UTC", []string{"16:00-09:30"})
	assert.Error(t, err)
	_, err = ParseTradingHours("UTC", []string{"9h"})
	assert.Error(t, err)

	none, err := ParseTradingHours("UTC", nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUnavailablePlaceholder(t *testing.T) {
	inst := Instrument{Key: "gold", Label: "伦敦金", Glyph: "💰"}
	fq := inst.Unavailable()
	assert.Equal(t, "💰 伦敦金: --", fq.Text)
	assert.False(t, fq.Available)

	inst.Placeholder = "gold: n/a"
	assert.Equal(t, "gold: n/a", inst.Unavailable().Text)
}
