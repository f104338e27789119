package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTaskStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to TaskStatus
		ok       bool
	}{
		{TaskStatusOpen, TaskStatusInProgress, true},
		{TaskStatusInProgress, TaskStatusCompleted, true},
		{TaskStatusOpen, TaskStatusCompleted, false},
		{TaskStatusOpen, TaskStatusOpen, false},
		{TaskStatusInProgress, TaskStatusOpen, false},
		{TaskStatusCompleted, TaskStatusOpen, false},
		{TaskStatusCompleted, TaskStatusInProgress, false},
		{TaskStatusCompleted, TaskStatusCompleted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTaskStatus_Valid(t *testing.T) {
	assert.True(t, TaskStatusOpen.Valid())
	assert.False(t, TaskStatus("open").Valid())
	assert.False(t, TaskStatus("").Valid())
}

func TestError_IsAndCode(t *testing.T) {
	wrapped := fmt.Errorf("decide: %w", ErrAlreadyDecided)

	assert.True(t, errors.Is(wrapped, ErrAlreadyDecided))
	assert.False(t, errors.Is(wrapped, ErrSlotTaken))
	assert.Equal(t, ErrCodeConflict, CodeOf(wrapped))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("db down")))
	assert.False(t, IsCode(nil, ErrCodeInternal))

	cause := errors.New("cause")
	err := WrapError(ErrCodeNotFound, "task not found", cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Equal(t, "task not found: cause", err.Error())
}

func TestUser_DisplayName(t *testing.T) {
	u := &User{Email: "a@b.c"}
	assert.Equal(t, "a@b.c", u.DisplayName())

	u.FirstName = "Ada"
	assert.Equal(t, "Ada", u.DisplayName())

	u.LastName = "Lovelace"
	assert.Equal(t, "Ada Lovelace", u.DisplayName())
}

func TestAppointment_IsActive(t *testing.T) {
	assert.True(t, (&Appointment{Status: AppointmentStatusPending}).IsActive())
	assert.True(t, (&Appointment{Status: AppointmentStatusAccepted}).IsActive())
	assert.False(t, (&Appointment{Status: AppointmentStatusRejected}).IsActive())
}

func TestValidateMoney(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"0", true},
		{"25.5", true},
		{"25.50", true},
		{"9999999999.99", true},
		{"10000000000", false},
		{"25.505", false},
		{"0.001", false},
		{"-1", false},
	}

	for _, tc := range cases {
		err := ValidateMoney("budget", decimal.RequireFromString(tc.in))
		if tc.ok {
			assert.NoError(t, err, tc.in)
			continue
		}
		assert.True(t, IsCode(err, ErrCodeValidation), "%s: %v", tc.in, err)
	}
}

func TestProfileUpdate_Apply(t *testing.T) {
	u := &User{FirstName: "Ada", Profile: Profile{Address: "Paris", Bio: "old"}}

	bio := "  new bio "
	rate := decimal.RequireFromString("40")
	changed := ProfileUpdate{Bio: &bio, HourlyRate: &rate}.Apply(u)
	assert.False(t, changed)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "new bio", u.Bio)
	assert.True(t, u.HourlyRate.Valid)
	assert.Equal(t, "40", u.HourlyRate.Decimal.String())

	same := "Paris "
	assert.False(t, ProfileUpdate{Address: &same}.Apply(u))

	moved := "London"
	assert.True(t, ProfileUpdate{Address: &moved}.Apply(u))
	assert.Equal(t, "London", u.Address)
}
