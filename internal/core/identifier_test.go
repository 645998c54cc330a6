package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentifier(t *testing.T) {
	id, err := ParseIdentifier("3520112345671")
	require.NoError(t, err)
	assert.Equal(t, "3520112345671", id.String())
	assert.False(t, id.IsZero())

	_, err = ParseIdentifier("35201-1234567-1")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Contains(t, err.Error(), "must be 13 digits without dashes")
}

func TestIdentifier_Formatted(t *testing.T) {
	id, err := ParseIdentifier("3520112345671")
	require.NoError(t, err)
	assert.Equal(t, "35201-1234567-1", id.Formatted())

	var zero Identifier
	assert.True(t, zero.IsZero())
	assert.Equal(t, "", zero.Formatted())
}
