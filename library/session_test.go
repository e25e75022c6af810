package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	acc := NewAccount("alice", "pw", "Alice", "Smith", TypeUser)

	normal := NewSession(acc, false)
	impersonated := NewSession(acc, true)

	require.NotEmpty(t, normal.ID)
	assert.NotEqual(t, normal.ID, impersonated.ID, "every session gets its own id")
	assert.False(t, normal.Impersonated)
	assert.True(t, impersonated.Impersonated)
	assert.Equal(t, acc, normal.Account)
	assert.False(t, normal.StartedAt.IsZero())
}
