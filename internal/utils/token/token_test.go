package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestNewAndParse(t *testing.T) {
	signed, err := New(testSecret, "user-1", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	sub, err := Parse(testSecret, signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestParse_WrongSecret(t *testing.T) {
	signed, err := New(testSecret, "user-1", time.Minute)
	require.NoError(t, err)

	_, err = Parse("other-secret", signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expired(t *testing.T) {
	signed, err := New(testSecret, "user-1", -time.Minute)
	require.NoError(t, err)

	_, err = Parse(testSecret, signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	_, err := Parse(testSecret, "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
