package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/calvinballing/server/models"
	"github.com/calvinballing/server/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEvent represents an event to be audited
type AuditEvent struct {
	Log      *models.AuditLog
	Priority int // Higher priority events are processed first (for future enhancements)
}

// AuditService handles asynchronous audit logging
type AuditService struct {
	auditRepo   repositories.AuditRepository
	logger      *zap.Logger
	eventChan   chan *AuditEvent
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	mu          sync.Mutex
}

// Config holds configuration for the AuditService
type Config struct {
	BufferSize  int // Size of the event buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  10000, // Buffer up to 10k events
		WorkerCount: 5,     // 5 concurrent workers
	}
}

// NewAuditService creates a new AuditService instance
func NewAuditService(auditRepo repositories.AuditRepository, logger *zap.Logger, config Config) *AuditService {
	ctx, cancel := context.WithCancel(context.Background())

	return &AuditService{
		auditRepo:   auditRepo,
		logger:      logger,
		eventChan:   make(chan *AuditEvent, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
		ctx:         ctx,
		cancel:      cancel,
		started:     false,
	}
}

// Start starts the background workers
func (s *AuditService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	// Start worker goroutines
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop gracefully stops the audit service
// Waits for all pending events to be processed
func (s *AuditService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_events", len(s.eventChan)))

	// Close the event channel (no more events will be accepted)
	close(s.eventChan)

	// Wait for workers to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully")
		s.cancel()
		return nil
	case <-time.After(timeout):
		s.cancel()
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// LogEvent logs an event asynchronously (non-blocking)
// Returns immediately, event is processed in background
func (s *AuditService) LogEvent(event *AuditEvent) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.mu.Unlock()

	// Try to send event to channel (non-blocking)
	select {
	case s.eventChan <- event:
		return nil
	default:
		// Channel is full, log warning and drop event
		s.logger.Warn("audit event channel full, dropping event",
			zap.String("action", string(event.Log.Action)),
			zap.String("organization_id", event.Log.OrganizationID.String()))
		return fmt.Errorf("audit event buffer full")
	}
}

// LogEventBlocking logs an event synchronously (blocking)
// Waits until event is queued or context is cancelled
func (s *AuditService) LogEventBlocking(ctx context.Context, event *AuditEvent) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.mu.Unlock()

	select {
	case s.eventChan <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return fmt.Errorf("audit service stopped")
	}
}

// worker processes events from the channel
func (s *AuditService) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for event := range s.eventChan {
		if err := s.processEvent(event); err != nil {
			s.logger.Error("failed to process audit event",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(event.Log.Action)),
				zap.String("organization_id", event.Log.OrganizationID.String()))
		}
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

// processEvent processes a single audit event
func (s *AuditService) processEvent(event *AuditEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.auditRepo.Insert(ctx, event.Log); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// GetStats returns statistics about the audit service
func (s *AuditService) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:    s.bufferSize,
		PendingEvents: len(s.eventChan),
		WorkerCount:   s.workerCount,
		Started:       s.started,
	}
}

// Stats represents audit service statistics
type Stats struct {
	BufferSize    int
	PendingEvents int
	WorkerCount   int
	Started       bool
}

// Convenience methods for logging common events

// LogPolicyUpdated logs a policy save (create or update) event
func (s *AuditService) LogPolicyUpdated(policy *models.Policy, actingUserID *uuid.UUID) error {
	log := models.NewAuditLog(policy.OrganizationID, models.AuditActionPolicyUpdated, "policy")
	log.WithActingUser(actingUserID)
	log.WithResource(policy.ID)
	log.WithDetails(map[string]interface{}{
		"policy_type": policy.Type,
		"enabled":     policy.Enabled,
	})

	return s.LogEvent(&AuditEvent{Log: log, Priority: 1})
}

// LogOrganizationUserRemoved logs a membership removal, including the
// policy type that drove it when the removal came out of remediation
func (s *AuditService) LogOrganizationUserRemoved(orgUser *models.OrganizationUser, policyType models.PolicyType, actingUserID *uuid.UUID) error {
	log := models.NewAuditLog(orgUser.OrganizationID, models.AuditActionOrganizationUserRemoved, "organization_user")
	log.WithActingUser(actingUserID)
	log.WithResource(orgUser.ID)

	details := map[string]interface{}{
		"email":  orgUser.Email,
		"status": orgUser.Status,
	}
	if policyType != "" {
		details["policy_type"] = policyType
	}
	log.WithDetails(details)

	// Removals matter more than routine saves
	return s.LogEvent(&AuditEvent{Log: log, Priority: 2})
}

// LogOrganizationUserInvited logs an invitation event
func (s *AuditService) LogOrganizationUserInvited(orgUser *models.OrganizationUser, actingUserID *uuid.UUID) error {
	log := models.NewAuditLog(orgUser.OrganizationID, models.AuditActionOrganizationUserInvited, "organization_user")
	log.WithActingUser(actingUserID)
	log.WithResource(orgUser.ID)
	log.WithDetails(map[string]interface{}{
		"email": orgUser.Email,
		"type":  orgUser.Type,
	})

	return s.LogEvent(&AuditEvent{Log: log, Priority: 1})
}
