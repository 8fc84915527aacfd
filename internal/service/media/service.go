package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository"
)

var (
	ErrNotFound           = errors.New("media not found")
	ErrForbidden          = errors.New("insufficient permissions to modify this media")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrStorageUnavailable = errors.New("media storage is not available")
)

const treeCachePattern = "reviews:*"

type Service interface {
	Upload(ctx context.Context, userID, commentID uuid.UUID, fileName string, fileSize int64, mimeType string, reader io.Reader) (*domain.Media, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ListByComments(ctx context.Context, commentIDs []uuid.UUID) ([]domain.Media, error)
	RemoveObjects(ctx context.Context, mediaList []domain.Media) error
}

// objectStore is the slice of the MinIO client the service needs.
type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// treeCache is the slice of the Redis client used to drop cached tree pages.
type treeCache interface {
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type service struct {
	mediaRepo   repository.MediaRepository
	commentRepo repository.CommentRepository
	store       objectStore
	cache       treeCache
	cfg         *config.Config
}

func NewService(mediaRepo repository.MediaRepository, commentRepo repository.CommentRepository, minioClient *minio.Client, redisClient *redis.Client, cfg *config.Config) Service {
	s := &service{
		mediaRepo:   mediaRepo,
		commentRepo: commentRepo,
		cfg:         cfg,
	}
	if minioClient != nil {
		s.store = minioClient
	}
	if redisClient != nil {
		s.cache = redisClient
	}
	return s
}

// Upload stores the object and records the attachment. Only the comment's
// author may attach media to it.
func (s *service) Upload(ctx context.Context, userID, commentID uuid.UUID, fileName string, fileSize int64, mimeType string, reader io.Reader) (*domain.Media, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	if comment.UserID != userID {
		return nil, ErrForbidden
	}

	mediaID := uuid.New()
	storagePath := fmt.Sprintf("reviews/%s/%s", time.Now().Format("2006/01"), mediaID.String())

	_, err = s.store.PutObject(ctx, s.cfg.MinIOBucket, storagePath, reader, fileSize, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	media := &domain.Media{
		ID:          mediaID,
		CommentID:   commentID,
		UploadedBy:  userID,
		FileName:    fileName,
		FileSize:    fileSize,
		MimeType:    mimeType,
		StoragePath: storagePath,
	}

	if err := s.mediaRepo.Create(ctx, media); err != nil {
		_ = s.store.RemoveObject(ctx, s.cfg.MinIOBucket, storagePath, minio.RemoveObjectOptions{})
		return nil, err
	}

	s.invalidateTreeCache(ctx)

	media.URL = s.getPublicURL(storagePath)
	return media, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	media, err := s.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if media == nil {
		return ErrNotFound
	}
	if media.UploadedBy != userID {
		return ErrForbidden
	}

	if err := s.mediaRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.store != nil {
		_ = s.store.RemoveObject(ctx, s.cfg.MinIOBucket, media.StoragePath, minio.RemoveObjectOptions{})
	}

	s.invalidateTreeCache(ctx)
	return nil
}

func (s *service) ListByComments(ctx context.Context, commentIDs []uuid.UUID) ([]domain.Media, error) {
	mediaList, err := s.mediaRepo.ListByCommentIDs(ctx, commentIDs)
	if err != nil {
		return nil, err
	}

	for i := range mediaList {
		mediaList[i].URL = s.getPublicURL(mediaList[i].StoragePath)
	}
	return mediaList, nil
}

// RemoveObjects deletes the stored objects for media rows that are already
// gone, e.g. cascaded away with their comments. Callers must capture the list
// while the rows still exist.
func (s *service) RemoveObjects(ctx context.Context, mediaList []domain.Media) error {
	if s.store == nil {
		return nil
	}

	var lastErr error
	for _, m := range mediaList {
		if err := s.store.RemoveObject(ctx, s.cfg.MinIOBucket, m.StoragePath, minio.RemoveObjectOptions{}); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// invalidateTreeCache drops every cached tree page: attachments are baked
// into the cached query results, so media mutations invalidate like comment
// mutations do.
func (s *service) invalidateTreeCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys, _ := s.cache.Keys(ctx, treeCachePattern).Result()
	if len(keys) > 0 {
		_ = s.cache.Del(ctx, keys...).Err()
	}
}

func (s *service) getPublicURL(storagePath string) string {
	scheme := "http"
	if s.cfg.MinIOPublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.MinIOPublicEndpoint, s.cfg.MinIOBucket, storagePath)
}
