package policy

import (
	"context"

	"github.com/calvinballing/server/models"
	"github.com/calvinballing/server/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockPolicyRepository is a mock implementation of PolicyRepository
type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	args := m.Called(ctx, id)
	if policy := args.Get(0); policy != nil {
		return policy.(*models.Policy), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPolicyRepository) GetByOrganizationIDType(ctx context.Context, organizationID uuid.UUID, policyType models.PolicyType) (*models.Policy, error) {
	args := m.Called(ctx, organizationID, policyType)
	if policy := args.Get(0); policy != nil {
		return policy.(*models.Policy), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPolicyRepository) GetManyByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]*models.Policy, error) {
	args := m.Called(ctx, organizationID)
	if policies := args.Get(0); policies != nil {
		return policies.([]*models.Policy), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPolicyRepository) GetManyByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Policy, error) {
	args := m.Called(ctx, userID)
	if policies := args.Get(0); policies != nil {
		return policies.([]*models.Policy), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPolicyRepository) Upsert(ctx context.Context, policy *models.Policy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockPolicyRepository) WithTx(tx repositories.Transaction) repositories.PolicyRepository {
	args := m.Called(tx)
	return args.Get(0).(repositories.PolicyRepository)
}

// MockOrganizationRepository is a mock implementation of OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if org := args.Get(0); org != nil {
		return org.(*models.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizationRepository) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	args := m.Called(ctx, slug)
	if org := args.Get(0); org != nil {
		return org.(*models.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizationRepository) List(ctx context.Context, limit, offset int) ([]*models.Organization, error) {
	args := m.Called(ctx, limit, offset)
	if orgs := args.Get(0); orgs != nil {
		return orgs.([]*models.Organization), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) WithTx(tx repositories.Transaction) repositories.OrganizationRepository {
	args := m.Called(tx)
	return args.Get(0).(repositories.OrganizationRepository)
}

// MockOrganizationUserRepository is a mock implementation of OrganizationUserRepository
type MockOrganizationUserRepository struct {
	mock.Mock
}

func (m *MockOrganizationUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizationUser, error) {
	args := m.Called(ctx, id)
	if orgUser := args.Get(0); orgUser != nil {
		return orgUser.(*models.OrganizationUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizationUserRepository) GetManyDetailsByOrganizationID(ctx context.Context, organizationID uuid.UUID) ([]*models.OrganizationUser, error) {
	args := m.Called(ctx, organizationID)
	if orgUsers := args.Get(0); orgUsers != nil {
		return orgUsers.([]*models.OrganizationUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizationUserRepository) GetManyByManyUsers(ctx context.Context, userIDs []uuid.UUID) ([]*models.OrganizationUser, error) {
	args := m.Called(ctx, userIDs)
	if orgUsers := args.Get(0); orgUsers != nil {
		return orgUsers.([]*models.OrganizationUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrganizationUserRepository) Create(ctx context.Context, orgUser *models.OrganizationUser) error {
	args := m.Called(ctx, orgUser)
	return args.Error(0)
}

func (m *MockOrganizationUserRepository) Update(ctx context.Context, orgUser *models.OrganizationUser) error {
	args := m.Called(ctx, orgUser)
	return args.Error(0)
}

func (m *MockOrganizationUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrganizationUserRepository) WithTx(tx repositories.Transaction) repositories.OrganizationUserRepository {
	args := m.Called(tx)
	return args.Get(0).(repositories.OrganizationUserRepository)
}

// MockSsoConfigRepository is a mock implementation of SsoConfigRepository
type MockSsoConfigRepository struct {
	mock.Mock
}

func (m *MockSsoConfigRepository) GetByOrganizationID(ctx context.Context, organizationID uuid.UUID) (*models.SsoConfig, error) {
	args := m.Called(ctx, organizationID)
	if cfg := args.Get(0); cfg != nil {
		return cfg.(*models.SsoConfig), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSsoConfigRepository) WithTx(tx repositories.Transaction) repositories.SsoConfigRepository {
	args := m.Called(tx)
	return args.Get(0).(repositories.SsoConfigRepository)
}

// MockEventLogger is a mock implementation of EventLogger
type MockEventLogger struct {
	mock.Mock
}

func (m *MockEventLogger) LogPolicyUpdated(policy *models.Policy, actingUserID *uuid.UUID) error {
	args := m.Called(policy, actingUserID)
	return args.Error(0)
}

// MockMemberRemover is a mock implementation of MemberRemover
type MockMemberRemover struct {
	mock.Mock
}

func (m *MockMemberRemover) Remove(ctx context.Context, organizationID, organizationUserID uuid.UUID, actingUserID *uuid.UUID) error {
	args := m.Called(ctx, organizationID, organizationUserID, actingUserID)
	return args.Error(0)
}

// MockTwoFactorChecker is a mock implementation of TwoFactorChecker
type MockTwoFactorChecker struct {
	mock.Mock
}

func (m *MockTwoFactorChecker) TwoFactorIsEnabled(ctx context.Context, orgUser *models.OrganizationUser) (bool, error) {
	args := m.Called(ctx, orgUser)
	return args.Bool(0), args.Error(1)
}

// MockMailer is a mock implementation of mail.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendRemovedForTwoFactor(ctx context.Context, orgName, email string) error {
	args := m.Called(ctx, orgName, email)
	return args.Error(0)
}

func (m *MockMailer) SendRemovedForSingleOrg(ctx context.Context, orgName, email string) error {
	args := m.Called(ctx, orgName, email)
	return args.Error(0)
}
