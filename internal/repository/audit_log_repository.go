package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"portfolio-backend/internal/domain"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *sqlx.DB
}

func NewAuditLogRepository(db *sqlx.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, old_value, new_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		log.ID, log.UserID, log.Action, log.EntityType, log.EntityID, log.OldValue, log.NewValue,
	).Scan(&log.CreatedAt)
}

func (r *auditLogRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM audit_logs`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT
			al.*,
			u.full_name as user_name
		FROM audit_logs al
		LEFT JOIN users u ON al.user_id = u.user_id
		ORDER BY al.created_at DESC
		LIMIT $1 OFFSET $2`

	var logs []domain.AuditLog
	err := r.db.SelectContext(ctx, &logs, query, params.PageSize, params.Offset())
	return logs, total, err
}

func CreateAuditLog(repo AuditLogRepository, ctx context.Context, input domain.CreateAuditLogInput) error {
	oldValueJSON, _ := json.Marshal(input.OldValue)
	newValueJSON, _ := json.Marshal(input.NewValue)

	log := &domain.AuditLog{
		ID:         uuid.New(),
		UserID:     input.UserID,
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		OldValue:   oldValueJSON,
		NewValue:   newValueJSON,
	}

	return repo.Create(ctx, log)
}
