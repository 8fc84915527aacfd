package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"portfolio-backend/internal/domain"
)

type MediaRepository interface {
	Create(ctx context.Context, media *domain.Media) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Media, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCommentIDs(ctx context.Context, commentIDs []uuid.UUID) ([]domain.Media, error)
}

type mediaRepository struct {
	db *sqlx.DB
}

func NewMediaRepository(db *sqlx.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) Create(ctx context.Context, media *domain.Media) error {
	query := `
		INSERT INTO review_media (media_id, comment_id, uploaded_by, file_name, file_size, mime_type, storage_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		media.ID, media.CommentID, media.UploadedBy,
		media.FileName, media.FileSize, media.MimeType, media.StoragePath,
	).Scan(&media.CreatedAt)
}

func (r *mediaRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Media, error) {
	var media domain.Media
	query := `SELECT * FROM review_media WHERE media_id = $1`

	err := r.db.GetContext(ctx, &media, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *mediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM review_media WHERE media_id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *mediaRepository) ListByCommentIDs(ctx context.Context, commentIDs []uuid.UUID) ([]domain.Media, error) {
	if len(commentIDs) == 0 {
		return []domain.Media{}, nil
	}

	ids := make([]string, len(commentIDs))
	for i, id := range commentIDs {
		ids[i] = id.String()
	}

	var media []domain.Media
	query := `SELECT * FROM review_media WHERE comment_id = ANY($1) ORDER BY created_at ASC`

	err := r.db.SelectContext(ctx, &media, query, pq.Array(ids))
	return media, err
}
