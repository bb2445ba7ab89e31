package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSecrets_GeneratesMissingValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	require.NoError(t, cfg.ensureSecrets())
	// 32 random bytes hex-encoded -> 64 chars.
	assert.Len(t, cfg.Security.SessionSecret, 64)
}

func TestEnsureSecrets_PreservesProvidedValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{Security: SecurityConfig{SessionSecret: "abcdefghijklmnopqrstuvwxyzABCDEF123456"}}
	require.NoError(t, cfg.ensureSecrets())
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyzABCDEF123456", cfg.Security.SessionSecret)
}
