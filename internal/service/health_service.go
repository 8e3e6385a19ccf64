package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/assignment-helper-api/internal/dto"
)

const (
	// ServiceName identifies the API in health and root responses.
	ServiceName = "academic-assignment-helper"
	// Version is the public API version.
	Version = "2.0.0"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// HealthService reports dependency status without ever failing.
type HealthService struct {
	db            pinger
	llmConfigured bool
	timeout       time.Duration
	logger        *zap.Logger
}

// NewHealthService constructs a HealthService.
func NewHealthService(db pinger, llmConfigured bool, logger *zap.Logger) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{db: db, llmConfigured: llmConfigured, timeout: 2 * time.Second, logger: logger}
}

// Check probes the database and reports configuration.
func (s *HealthService) Check(ctx context.Context) dto.HealthResponse {
	status := "connected"
	if s.db == nil {
		status = "disconnected"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if err := s.db.PingContext(pingCtx); err != nil {
			s.logger.Warn("database ping failed", zap.Error(err))
			status = "disconnected"
		}
	}

	return dto.HealthResponse{
		Status:           "healthy",
		Service:          ServiceName,
		Database:         status,
		OpenAIConfigured: s.llmConfigured,
		Version:          Version,
	}
}
