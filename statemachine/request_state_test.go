package statemachine

import (
	"testing"

	"promo-restaurant-api/models"

	"github.com/stretchr/testify/assert"
)

func TestPendingCanBeResolvedByAdmin(t *testing.T) {
	assert.NoError(t, CanTransition(models.RequestPending, models.RequestApproved, models.RoleAdmin))
	assert.NoError(t, CanTransition(models.RequestPending, models.RequestRejected, models.RoleAdmin))
}

func TestOnlyAdminResolves(t *testing.T) {
	err := CanTransition(models.RequestPending, models.RequestApproved, models.RoleCustomer)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyResolved)
}

func TestTerminalStatesCannotBeLeft(t *testing.T) {
	for _, from := range []models.RequestStatus{models.RequestApproved, models.RequestRejected} {
		assert.True(t, IsTerminal(from))
		for _, to := range []models.RequestStatus{models.RequestApproved, models.RequestRejected, models.RequestPending} {
			assert.ErrorIs(t, CanTransition(from, to, models.RoleAdmin), ErrAlreadyResolved)
		}
	}
	assert.False(t, IsTerminal(models.RequestPending))
}

func TestParseResolution(t *testing.T) {
	cases := []struct {
		in   string
		want models.RequestStatus
		ok   bool
	}{
		{"aprobado", models.RequestApproved, true},
		{" Aprobada ", models.RequestApproved, true},
		{"RECHAZADO", models.RequestRejected, true},
		{"rechazada", models.RequestRejected, true},
		{"pendiente", "", false},
		{"approved", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseResolution(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	got, ok := ParseFilter("Pendiente")
	assert.True(t, ok)
	assert.Equal(t, models.RequestPending, got)
}
