package transport

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTime_UnmarshalFormats(t *testing.T) {
	want := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		`"2026-03-02T09:00:00Z"`,
		`"2026-03-02T12:00:00+03:00"`,
		`"2026-03-02T09:00:00"`,
		`"2026-03-02T09:00"`,
		`"2026-03-02 09:00"`,
	} {
		var got Time
		require.NoError(t, json.Unmarshal([]byte(raw), &got), raw)
		assert.True(t, want.Equal(got.Time), raw)
	}
}

func TestTime_NullAndEmpty(t *testing.T) {
	var req struct {
		Deadline *Time `json:"deadline"`
		Start    Time  `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"deadline":null,"start":""}`), &req))
	assert.Nil(t, req.Deadline.Ptr())
	assert.True(t, req.Start.IsZero())
}

func TestTime_Invalid(t *testing.T) {
	var got Time
	assert.Error(t, json.Unmarshal([]byte(`"tomorrow"`), &got))
	assert.Error(t, json.Unmarshal([]byte(`42`), &got))
}
