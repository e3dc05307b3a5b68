package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/calvinballing/server/models"
	"github.com/calvinballing/server/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
	mu           sync.Mutex
	insertedLogs []*models.AuditLog
}

func (m *MockAuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	args := m.Called(ctx, log)
	m.insertedLogs = append(m.insertedLogs, log)
	return args.Error(0)
}

func (m *MockAuditRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.AuditLog, error) {
	args := m.Called(ctx, id)
	if log := args.Get(0); log != nil {
		return log.(*models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditRepository) GetByOrganizationID(ctx context.Context, organizationID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	if logs := args.Get(0); logs != nil {
		return logs.([]*models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditRepository) GetByAction(ctx context.Context, organizationID uuid.UUID, action models.AuditAction, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, organizationID, action, limit, offset)
	if logs := args.Get(0); logs != nil {
		return logs.([]*models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditRepository) WithTx(tx repositories.Transaction) repositories.AuditRepository {
	args := m.Called(tx)
	return args.Get(0).(repositories.AuditRepository)
}

func (m *MockAuditRepository) GetInsertedLogs() []*models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertedLogs
}

func TestAuditService_StartStop(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mockRepo := new(MockAuditRepository)
	config := Config{
		BufferSize:  10,
		WorkerCount: 2,
	}

	service := NewAuditService(mockRepo, logger, config)

	// Start service
	err := service.Start()
	require.NoError(t, err)

	stats := service.GetStats()
	assert.True(t, stats.Started)
	assert.Equal(t, 2, stats.WorkerCount)
	assert.Equal(t, 10, stats.BufferSize)

	// Cannot start again
	err = service.Start()
	assert.Error(t, err)

	// Stop service
	err = service.Stop(5 * time.Second)
	require.NoError(t, err)
}

func TestAuditService_LogEvent(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mockRepo := new(MockAuditRepository)
	config := Config{
		BufferSize:  100,
		WorkerCount: 2,
	}

	service := NewAuditService(mockRepo, logger, config)
	err := service.Start()
	require.NoError(t, err)
	defer service.Stop(5 * time.Second)

	organizationID := uuid.New()
	log := models.NewAuditLog(organizationID, models.AuditActionPolicyUpdated, "policy")

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	event := &AuditEvent{
		Log:      log,
		Priority: 1,
	}

	// Log event (non-blocking)
	err = service.LogEvent(event)
	require.NoError(t, err)

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	// Verify event was processed
	insertedLogs := mockRepo.GetInsertedLogs()
	assert.Equal(t, 1, len(insertedLogs))
	assert.Equal(t, organizationID, insertedLogs[0].OrganizationID)
	assert.Equal(t, models.AuditActionPolicyUpdated, insertedLogs[0].Action)
}

func TestAuditService_LogEventBlocking(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mockRepo := new(MockAuditRepository)
	config := Config{
		BufferSize:  100,
		WorkerCount: 2,
	}

	service := NewAuditService(mockRepo, logger, config)
	err := service.Start()
	require.NoError(t, err)
	defer service.Stop(5 * time.Second)

	organizationID := uuid.New()
	log := models.NewAuditLog(organizationID, models.AuditActionOrganizationUserInvited, "organization_user")

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	event := &AuditEvent{
		Log:      log,
		Priority: 1,
	}

	ctx := context.Background()
	err = service.LogEventBlocking(ctx, event)
	require.NoError(t, err)

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	// Verify event was processed
	insertedLogs := mockRepo.GetInsertedLogs()
	assert.GreaterOrEqual(t, len(insertedLogs), 1)
}

func TestAuditService_MultipleEvents(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mockRepo := new(MockAuditRepository)
	config := Config{
		BufferSize:  100,
		WorkerCount: 3,
	}

	service := NewAuditService(mockRepo, logger, config)
	err := service.Start()
	require.NoError(t, err)
	defer service.Stop(5 * time.Second)

	organizationID := uuid.New()
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	// Log multiple events
	eventCount := 50
	for i := 0; i < eventCount; i++ {
		log := models.NewAuditLog(organizationID, models.AuditActionPolicyUpdated, "policy")
		event := &AuditEvent{
			Log:      log,
			Priority: 1,
		}
		err = service.LogEvent(event)
		require.NoError(t, err)
	}

	// Wait for all events to be processed
	time.Sleep(500 * time.Millisecond)

	// Verify all events were processed
	insertedLogs := mockRepo.GetInsertedLogs()
	assert.Equal(t, eventCount, len(insertedLogs))
}

func TestAuditService_ConcurrentLogging(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mockRepo := new(MockAuditRepository)
	config := Config{
		BufferSize:  1000,
		WorkerCount: 5,
	}

	service := NewAuditService(mockRepo, logger, config)
	err := service.Start()
	require.NoError(t, err)
	defer service.Stop(5 * time.Second)

	organizationID := uuid.New()
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	// Log events concurrently
	goroutineCount := 10
	eventsPerGoroutine := 10
	var wg sync.WaitGroup

	for i := 0; i < goroutineCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				log := models.NewAuditLog(organizationID, models.AuditActionPolicyUpdated, "policy")
				event := &AuditEvent{
					Log:      log,
					Priority: 1,
				}
				service.LogEvent(event)
			}
		}()
	}

	wg.Wait()

	// Wait for all events to be processed
	time.Sleep(1 * time.Second)

	// Verify all events were processed
	insertedLogs := mockRepo.GetInsertedLogs()
	expectedCount := goroutineCount * eventsPerGoroutine
	assert.Equal(t, expectedCount, len(insertedLogs))
}

func TestAuditService_LogPolicyUpdated(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mockRepo := new(MockAuditRepository)
	config := DefaultConfig()

	service := NewAuditService(mockRepo, logger, config)
	err := service.Start()
	require.NoError(t, err)
	defer service.Stop(5 * time.Second)

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	policy := models.NewPolicy(uuid.New(), models.PolicyTypeSingleOrg, nil, true)
	policy.ID = uuid.New()
	actingUserID := uuid.New()

	err = service.LogPolicyUpdated(policy, &actingUserID)
	require.NoError(t, err)

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	insertedLogs := mockRepo.GetInsertedLogs()
	require.Equal(t, 1, len(insertedLogs))
	assert.Equal(t, models.AuditActionPolicyUpdated, insertedLogs[0].Action)
	assert.Equal(t, policy.OrganizationID, insertedLogs[0].OrganizationID)
	require.NotNil(t, insertedLogs[0].ActingUserID)
	assert.Equal(t, actingUserID, *insertedLogs[0].ActingUserID)
	require.NotNil(t, insertedLogs[0].ResourceID)
	assert.Equal(t, policy.ID, *insertedLogs[0].ResourceID)
}

func TestAuditService_LogOrganizationUserRemoved(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mockRepo := new(MockAuditRepository)
	config := DefaultConfig()

	service := NewAuditService(mockRepo, logger, config)
	err := service.Start()
	require.NoError(t, err)
	defer service.Stop(5 * time.Second)

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil)

	orgUser := models.NewOrganizationUser(uuid.New(), "member@example.com", models.OrganizationUserTypeUser)
	orgUser.Status = models.OrganizationUserStatusConfirmed

	err = service.LogOrganizationUserRemoved(orgUser, models.PolicyTypeTwoFactorAuthentication, nil)
	require.NoError(t, err)

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	insertedLogs := mockRepo.GetInsertedLogs()
	require.Equal(t, 1, len(insertedLogs))
	assert.Equal(t, models.AuditActionOrganizationUserRemoved, insertedLogs[0].Action)
	assert.Nil(t, insertedLogs[0].ActingUserID)
	require.NotNil(t, insertedLogs[0].ResourceID)
	assert.Equal(t, orgUser.ID, *insertedLogs[0].ResourceID)
}

func TestAuditService_BufferFull(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mockRepo := new(MockAuditRepository)
	config := Config{
		BufferSize:  5,
		WorkerCount: 1,
	}

	service := NewAuditService(mockRepo, logger, config)
	err := service.Start()
	require.NoError(t, err)
	defer service.Stop(5 * time.Second)

	organizationID := uuid.New()

	// Slow down processing
	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		time.Sleep(100 * time.Millisecond)
	})

	// Fill buffer
	successCount := 0
	for i := 0; i < 20; i++ {
		log := models.NewAuditLog(organizationID, models.AuditActionPolicyUpdated, "policy")
		event := &AuditEvent{
			Log:      log,
			Priority: 1,
		}
		if err := service.LogEvent(event); err == nil {
			successCount++
		}
	}

	// Some events should have been rejected
	assert.Less(t, successCount, 20)
}

func TestAuditService_NotStarted(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	mockRepo := new(MockAuditRepository)

	service := NewAuditService(mockRepo, logger, DefaultConfig())

	log := models.NewAuditLog(uuid.New(), models.AuditActionPolicyUpdated, "policy")
	event := &AuditEvent{Log: log, Priority: 1}

	err := service.LogEvent(event)
	assert.Error(t, err)

	err = service.LogEventBlocking(context.Background(), event)
	assert.Error(t, err)

	err = service.Stop(time.Second)
	assert.Error(t, err)
}
