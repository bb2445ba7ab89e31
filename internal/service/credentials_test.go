package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/pkg/worker"
	"managerh.io/managerh/internal/repository/memory"
)

func newCredentialStore(t *testing.T) (*CredentialStore, *memory.Store) {
	t.Helper()
	pools, err := worker.NewPools(context.Background(), worker.PoolConfig{GeneralPoolSize: 2, CryptoPoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(pools.Shutdown)

	store := memory.NewStore()
	creds, err := NewCredentialStore(store, pools.Crypto, bcrypt.MinCost, domain.NewEventDispatcher())
	require.NoError(t, err)
	return creds, store
}

func TestCredentialStore_HashVerify(t *testing.T) {
	creds, _ := newCredentialStore(t)
	ctx := context.Background()

	h1, err := creds.Hash(ctx, "secret123")
	require.NoError(t, err)
	h2, err := creds.Hash(ctx, "secret123")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "hashes must be salted")
	assert.NotContains(t, h1, "secret123")
	assert.True(t, mustVerify(t, creds, "secret123", h1))
	assert.False(t, mustVerify(t, creds, "secret124", h1))
	assert.False(t, mustVerify(t, creds, "secret123", "not-a-hash"))
}

func mustVerify(t *testing.T, creds *CredentialStore, secret, hash string) bool {
	t.Helper()
	ok, err := creds.Verify(context.Background(), secret, hash)
	require.NoError(t, err)
	return ok
}

func TestCredentialStore_AuthenticateCryptoUnavailable(t *testing.T) {
	pools, err := worker.NewPools(context.Background(), worker.PoolConfig{GeneralPoolSize: 2, CryptoPoolSize: 2})
	require.NoError(t, err)
	creds, err := NewCredentialStore(memory.NewStore(), pools.Crypto, bcrypt.MinCost, domain.NewEventDispatcher())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = creds.Register(ctx, RegisterInput{BusinessID: "12345678901234", Password: "secret123", Name: "Acme"})
	require.NoError(t, err)

	t.Run("cancelled request", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := creds.Authenticate(cctx, "12345678901234", "secret123")
		require.ErrorIs(t, err, context.Canceled)
		assert.False(t, apperrors.HasCode(err, apperrors.CodeAuthFailed))
	})

	t.Run("crypto pool closed", func(t *testing.T) {
		pools.Shutdown()
		_, err := creds.Authenticate(ctx, "12345678901234", "secret123")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal), "got %v", err)
		assert.False(t, apperrors.HasCode(err, apperrors.CodeAuthFailed))
	})
}

func TestCredentialStore_RegisterDuplicate(t *testing.T) {
	creds, _ := newCredentialStore(t)
	ctx := context.Background()

	tenant, err := creds.Register(ctx, RegisterInput{BusinessID: "12345678901234", Password: "secret123", Name: "Acme"})
	require.NoError(t, err)
	assert.NotEmpty(t, tenant.ID)
	assert.NotEqual(t, "secret123", tenant.PasswordHash)

	_, err = creds.Register(ctx, RegisterInput{BusinessID: "12345678901234", Password: "other1234", Name: "Acme 2"})
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeBusinessIDRegistered, appErr.Code)
	assert.Equal(t, "12345678901234", appErr.Params["business_id"])

	// the first registration is untouched
	stored, err := creds.FindTenantByBusinessID(ctx, "12345678901234")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, stored.ID)
	assert.Equal(t, "Acme", stored.Name)
	assert.Equal(t, tenant.PasswordHash, stored.PasswordHash)

	got, err := creds.Authenticate(ctx, "12345678901234", "secret123")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
	_, err = creds.Authenticate(ctx, "12345678901234", "other1234")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAuthFailed))
}

func TestCredentialStore_RegisterValidation(t *testing.T) {
	creds, store := newCredentialStore(t)
	ctx := context.Background()

	_, err := creds.Register(ctx, RegisterInput{BusinessID: "1234", Password: "secret", Name: "Acme"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = store.Tenants().GetByBusinessID(ctx, "1234")
	assert.Error(t, err)
}

func TestCredentialStore_AuthenticateNonDisclosure(t *testing.T) {
	creds, _ := newCredentialStore(t)
	ctx := context.Background()

	_, err := creds.Register(ctx, RegisterInput{BusinessID: "12345678901234", Password: "secret123", Name: "Acme"})
	require.NoError(t, err)

	tenant, err := creds.Authenticate(ctx, "12345678901234", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "Acme", tenant.Name)

	tests := []struct {
		name       string
		businessID string
		secret     string
	}{
		{"wrong secret", "12345678901234", "wrong1234"},
		{"unknown id", "99999999999999", "secret123"},
		{"malformed id", "abc", "secret123"},
		{"empty secret", "12345678901234", ""},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := creds.Authenticate(ctx, tt.businessID, tt.secret)
			require.Error(t, err)
			appErr, ok := apperrors.IsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.CodeAuthFailed, appErr.Code)
			assert.Empty(t, appErr.Params)
			messages = append(messages, appErr.Error())
		})
	}
	for _, m := range messages[1:] {
		assert.Equal(t, messages[0], m)
	}
}

func TestCredentialStore_FindTenantByBusinessID(t *testing.T) {
	creds, _ := newCredentialStore(t)
	ctx := context.Background()

	_, err := creds.FindTenantByBusinessID(ctx, "12345678901234")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTenantNotFound))

	_, err = creds.Register(ctx, RegisterInput{BusinessID: "12345678901234", Password: "secret123", Name: "Acme"})
	require.NoError(t, err)

	got, err := creds.FindTenantByBusinessID(ctx, "12345678901234")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
}

func TestNewCredentialStore_RejectsBadCost(t *testing.T) {
	_, err := NewCredentialStore(memory.NewStore(), nil, 99, nil)
	assert.Error(t, err)
}
