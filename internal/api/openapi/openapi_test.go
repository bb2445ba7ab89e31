package openapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := Load()
	require.NoError(t, err)

	for _, path := range []string{
		"/auth/register", "/auth/login", "/auth/logout", "/auth/me",
		"/dashboard", "/employees", "/employees/{id}",
		"/computers", "/computers/{id}", "/computers/{id}/holder",
		"/health/live", "/health/ready",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}
