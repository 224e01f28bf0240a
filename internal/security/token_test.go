package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret)

	token, err := tm.GenerateStaffToken(7, "Dana", 3, "station_staff", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.StaffID)
	assert.Equal(t, "Dana", claims.Name)
	assert.Equal(t, int64(3), claims.StationID)
	assert.Equal(t, "station_staff", claims.Role)

	actor := claims.Actor()
	assert.Equal(t, int64(7), actor.StaffID)
	assert.Equal(t, int64(3), actor.StationID)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	tm := NewTokenManager(testSecret)

	token, err := tm.GenerateStaffToken(7, "Dana", 3, "station_staff", -time.Minute)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret)
	other := NewTokenManager("another-secret-key-also-32-chars-xx")

	token, err := tm.GenerateStaffToken(7, "Dana", 3, "station_staff", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm := NewTokenManager(testSecret)
	_, err := tm.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
