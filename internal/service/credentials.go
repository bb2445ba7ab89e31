package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"managerh.io/managerh/internal/domain"
	apperrors "managerh.io/managerh/internal/pkg/errors"
	"managerh.io/managerh/internal/pkg/logger"
	"managerh.io/managerh/internal/pkg/worker"
	"managerh.io/managerh/internal/repository"
	"managerh.io/managerh/internal/validation"
)

// DefaultBcryptCost lands around 100-250ms per hash on current server CPUs.
const DefaultBcryptCost = 12

// dummySecret is hashed once at startup; unknown business identifiers are
// compared against it so both failure paths cost one bcrypt comparison.
const dummySecret = "managerh-dummy-secret-0"

// RegisterInput is a tenant registration request.
type RegisterInput struct {
	BusinessID   string
	Password     string
	Name         string
	DirectorName *string
}

// CredentialStore hashes and verifies secrets and authenticates tenants.
type CredentialStore struct {
	store      repository.Store
	crypto     *worker.Pool
	cost       int
	dummyHash  []byte
	dispatcher *domain.EventDispatcher
	now        func() time.Time
}

// NewCredentialStore creates a CredentialStore. crypto may be nil, in which
// case hashing runs on the calling goroutine.
func NewCredentialStore(store repository.Store, crypto *worker.Pool, cost int, dispatcher *domain.EventDispatcher) (*CredentialStore, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(dummySecret), cost)
	if err != nil {
		return nil, fmt.Errorf("hash dummy secret: %w", err)
	}
	return &CredentialStore{
		store:      store,
		crypto:     crypto,
		cost:       cost,
		dummyHash:  dummy,
		dispatcher: dispatcher,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *CredentialStore) runCrypto(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.crypto == nil {
		return fn(ctx)
	}
	return s.crypto.Do(ctx, fn)
}

// Hash returns the salted bcrypt hash of secret.
func (s *CredentialStore) Hash(ctx context.Context, secret string) (string, error) {
	var hash []byte
	err := s.runCrypto(ctx, func(context.Context) error {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(secret), s.cost)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether secret matches hash. bcrypt compares in constant time.
// The error is non-nil only when the comparison could not run at all.
func (s *CredentialStore) Verify(ctx context.Context, secret, hash string) (bool, error) {
	ok := false
	err := s.runCrypto(ctx, func(context.Context) error {
		ok = bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("verify secret: %w", err)
	}
	return ok, nil
}

// FindTenantByBusinessID returns the tenant registered under businessID.
func (s *CredentialStore) FindTenantByBusinessID(ctx context.Context, businessID string) (*domain.Tenant, error) {
	t, err := s.store.Tenants().GetByBusinessID(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrEntityNotFound(apperrors.KindTenant, businessID)
		}
		return nil, StorageError(ctx, "find tenant by business id", err)
	}
	return t, nil
}

// Authenticate checks a business identifier and secret pair.
// Unknown identifier and wrong secret both yield AUTH_FAILED after one bcrypt comparison.
func (s *CredentialStore) Authenticate(ctx context.Context, businessID, secret string) (*domain.Tenant, error) {
	businessID = strings.TrimSpace(businessID)

	var tenant *domain.Tenant
	if validation.BusinessID(businessID) == nil {
		t, err := s.store.Tenants().GetByBusinessID(ctx, businessID)
		switch {
		case err == nil:
			tenant = t
		case errors.Is(err, repository.ErrNotFound):
		default:
			return nil, StorageError(ctx, "authenticate", err)
		}
	}

	hash := string(s.dummyHash)
	if tenant != nil {
		hash = tenant.PasswordHash
	}
	ok, err := s.Verify(ctx, secret, hash)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.FromContext(ctx).Error("Credential check could not run", zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "could not process credentials", http.StatusInternalServerError)
	}
	if !ok || tenant == nil {
		return nil, apperrors.ErrAuthFailed()
	}
	return tenant, nil
}

// Register creates a tenant after validating the payload.
func (s *CredentialStore) Register(ctx context.Context, in RegisterInput) (*domain.Tenant, error) {
	in.BusinessID = strings.TrimSpace(in.BusinessID)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Registration(in.BusinessID, in.Password, in.Name, in.DirectorName); err != nil {
		return nil, err
	}

	hash, err := s.Hash(ctx, in.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "could not process credentials", http.StatusInternalServerError)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate tenant id: %w", err)
	}
	now := s.now()
	tenant := &domain.Tenant{
		ID:           id.String(),
		BusinessID:   in.BusinessID,
		Name:         in.Name,
		DirectorName: in.DirectorName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Tenants().Create(ctx, tenant); err != nil {
		if name, ok := repository.ViolatedConstraint(err); ok && name == repository.ConstraintTenantBusinessID {
			return nil, apperrors.ErrDuplicateIdentifier(in.BusinessID)
		}
		return nil, StorageError(ctx, "register tenant", err)
	}

	logger.FromContext(ctx).Info("Tenant registered", zap.String("tenant_id", tenant.ID))
	_ = s.dispatcher.Dispatch(ctx, domain.NewEvent(domain.EventTenantRegistered, tenant.ID, apperrors.KindTenant, tenant.ID, nil))
	return tenant, nil
}
