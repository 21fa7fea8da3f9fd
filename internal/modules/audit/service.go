package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Service exposes read access to the audit trail.
type Service interface {
	// GetAuditLog returns every recorded correction for a sale, newest first.
	GetAuditLog(ctx context.Context, transactionID string) ([]*Entry, error)
}

type service struct {
	recorder Recorder
	logger   *zap.Logger
}

func NewService(recorder Recorder, logger *zap.Logger) Service {
	return &service{recorder: recorder, logger: logger}
}

func (s *service) GetAuditLog(ctx context.Context, transactionID string) ([]*Entry, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transaction_id is required", ErrValidation)
	}
	entries, err := s.recorder.ListByTransaction(ctx, transactionID)
	if err != nil {
		s.logger.Error("failed to load audit log",
			zap.String("transaction_id", transactionID), zap.Error(err))
		return nil, err
	}
	return entries, nil
}
