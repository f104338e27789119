package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

var nine = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestGenerate_HourIntoQuarters(t *testing.T) {
	g := NewGenerator(DefaultSlotDuration, 0)

	slots, err := g.Generate(7, "Math", nine, nine.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, slots, 4)

	for i, slot := range slots {
		assert.Equal(t, int64(7), slot.TutorID)
		assert.Equal(t, "Math", slot.Subject)
		assert.Equal(t, nine.Add(time.Duration(i)*15*time.Minute), slot.StartTime)
		assert.Equal(t, slot.StartTime.Add(15*time.Minute), slot.EndTime)
		assert.False(t, slot.IsBooked)
		assert.Equal(t, slots[0].BatchID, slot.BatchID)
		if i > 0 {
			assert.Equal(t, slots[i-1].EndTime, slot.StartTime)
		}
	}
}

func TestGenerate_RemainderDropped(t *testing.T) {
	g := NewGenerator(DefaultSlotDuration, 0)

	slots, err := g.Generate(7, "Math", nine, nine.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, slots)

	slots, err = g.Generate(7, "Math", nine, nine.Add(40*time.Minute))
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, nine.Add(30*time.Minute), slots[1].EndTime)
}

func TestGenerate_InvalidRange(t *testing.T) {
	g := NewGenerator(DefaultSlotDuration, 0)

	_, err := g.Generate(7, "Math", nine, nine)
	assert.True(t, model.IsCode(err, model.ErrCodeValidation))

	_, err = g.Generate(7, "Math", nine.Add(time.Hour), nine)
	assert.True(t, model.IsCode(err, model.ErrCodeValidation))
}

func TestNewGenerator_Step(t *testing.T) {
	assert.Equal(t, DefaultSlotDuration, NewGenerator(0, 0).Step())
	assert.Equal(t, DefaultSlotDuration, NewGenerator(-time.Minute, 0).Step())

	g := NewGenerator(30*time.Minute, 0)
	slots, err := g.Generate(1, "", nine, nine.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}

func TestGenerate_BatchesDiffer(t *testing.T) {
	g := NewGenerator(DefaultSlotDuration, 0)

	a, err := g.Generate(1, "", nine, nine.Add(time.Hour))
	require.NoError(t, err)
	b, err := g.Generate(1, "", nine, nine.Add(time.Hour))
	require.NoError(t, err)

	assert.NotEqual(t, a[0].BatchID, b[0].BatchID)
}

func TestGenerate_RangeLimit(t *testing.T) {
	g := NewGenerator(DefaultSlotDuration, 7*24*time.Hour)

	slots, err := g.Generate(1, "", nine, nine.Add(7*24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, slots, 7*24*4)

	_, err = g.Generate(1, "", nine, nine.Add(7*24*time.Hour+15*time.Minute))
	assert.True(t, model.IsCode(err, model.ErrCodeValidation))

	decades := time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = NewGenerator(0, 0).Generate(1, "", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), decades)
	assert.True(t, model.IsCode(err, model.ErrCodeValidation))
}
