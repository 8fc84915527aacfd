package audit

import (
	"context"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository"
)

type Service interface {
	GetRecentActivities(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error)
}

type service struct {
	auditRepo repository.AuditLogRepository
}

func NewService(auditRepo repository.AuditLogRepository) Service {
	return &service{auditRepo: auditRepo}
}

func (s *service) GetRecentActivities(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error) {
	logs, total, err := s.auditRepo.List(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.AuditLog]{}, err
	}

	return domain.NewPaginatedResponse(logs, params.Page, params.PageSize, total), nil
}
