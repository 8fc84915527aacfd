package review

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/repository"
	"portfolio-backend/internal/service/email"
	"portfolio-backend/internal/service/media"
)

var (
	ErrNotFound          = errors.New("comment not found")
	ErrForbidden         = errors.New("insufficient permissions to modify this comment")
	ErrParentNotFound    = errors.New("parent comment not found")
	ErrEmptyText         = errors.New("comment text cannot be empty")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInvalidWebsiteURL = errors.New("website url must be a valid URL")
	ErrInvalidPackage    = errors.New("unknown service package")
)

const (
	cacheTTL          = 5 * time.Minute
	cacheKeyPattern   = "reviews:*"
	ratingCacheKey    = "reviews:rating"
	commentEntityType = "comment"
)

type Service interface {
	GetCommentTree(ctx context.Context, filter domain.CommentFilter) (*domain.CommentTreeResult, error)
	GetAverageRating(ctx context.Context) (*domain.RatingSummary, error)
	Add(ctx context.Context, userID uuid.UUID, input domain.CreateCommentInput) error
	Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, input domain.UpdateCommentInput) error
	Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error
	SetEmailService(emailService email.Service)
	SetMediaService(mediaService media.Service)
}

type service struct {
	commentRepo  repository.CommentRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditLogRepository
	redis        *redis.Client
	emailService email.Service
	mediaService media.Service
}

func NewService(commentRepo repository.CommentRepository, userRepo repository.UserRepository, auditRepo repository.AuditLogRepository, redis *redis.Client) Service {
	return &service{
		commentRepo: commentRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		redis:       redis,
	}
}

func (s *service) SetEmailService(emailService email.Service) {
	s.emailService = emailService
}

func (s *service) SetMediaService(mediaService media.Service) {
	s.mediaService = mediaService
}

// GetCommentTree returns the requested page of review threads. Pagination
// applies to whole threads: the page is decided on top-level reviews alone,
// then every descendant of those reviews is pulled in by repeated frontier
// expansion, so a thread is never split across pages.
func (s *service) GetCommentTree(ctx context.Context, filter domain.CommentFilter) (*domain.CommentTreeResult, error) {
	filter.Normalize()
	cacheKey := filter.CacheKey()

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var result domain.CommentTreeResult
			if json.Unmarshal([]byte(cached), &result) == nil {
				return &result, nil
			}
		}
	}

	total, err := s.commentRepo.CountRoots(ctx, filter)
	if err != nil {
		return nil, err
	}

	roots, err := s.commentRepo.ListRoots(ctx, filter)
	if err != nil {
		return nil, err
	}

	flat, err := s.expandThreads(ctx, roots)
	if err != nil {
		return nil, err
	}

	if err := s.attachMedia(ctx, flat); err != nil {
		return nil, err
	}

	result := &domain.CommentTreeResult{
		CommentTree: BuildTree(flat),
		TotalPages:  domain.TotalPages(total, filter.PageSize),
	}

	if s.redis != nil {
		if resultJSON, err := json.Marshal(result); err == nil {
			_ = s.redis.Set(ctx, cacheKey, resultJSON, cacheTTL).Err()
		}
	}

	return result, nil
}

// expandThreads absorbs descendants level by level until the frontier is
// empty. Every row fetched has its full ancestor chain already in the
// accumulated set, so BuildTree never sees an orphan here.
func (s *service) expandThreads(ctx context.Context, roots []domain.Comment) ([]domain.Comment, error) {
	flat := append([]domain.Comment{}, roots...)
	seen := make(map[uuid.UUID]bool, len(roots))

	frontier := make([]uuid.UUID, 0, len(roots))
	for _, c := range roots {
		seen[c.ID] = true
		frontier = append(frontier, c.ID)
	}

	for len(frontier) > 0 {
		children, err := s.commentRepo.ListByParentIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, c := range children {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			flat = append(flat, c)
			frontier = append(frontier, c.ID)
		}
	}

	return flat, nil
}

func (s *service) attachMedia(ctx context.Context, comments []domain.Comment) error {
	if s.mediaService == nil || len(comments) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}

	mediaList, err := s.mediaService.ListByComments(ctx, ids)
	if err != nil {
		return err
	}

	byComment := make(map[uuid.UUID][]domain.Media)
	for _, m := range mediaList {
		byComment[m.CommentID] = append(byComment[m.CommentID], m)
	}

	for i := range comments {
		comments[i].Media = byComment[comments[i].ID]
	}
	return nil
}

// GetAverageRating aggregates over top-level reviews only; the repository
// excludes replies from the counts regardless of any stored rating value.
func (s *service) GetAverageRating(ctx context.Context) (*domain.RatingSummary, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, ratingCacheKey).Result(); err == nil {
			var summary domain.RatingSummary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				return &summary, nil
			}
		}
	}

	counts, err := s.commentRepo.RatingCounts(ctx)
	if err != nil {
		return nil, err
	}

	distribution := make(map[int]int, 5)
	total := 0
	sum := 0
	for star := 1; star <= 5; star++ {
		distribution[star] = counts[star]
		total += counts[star]
		sum += star * counts[star]
	}

	summary := &domain.RatingSummary{
		RatingCount:        total,
		RatingDistribution: distribution,
	}
	if total > 0 {
		summary.AverageRating = float64(sum) / float64(total)
	}

	if s.redis != nil {
		if summaryJSON, err := json.Marshal(summary); err == nil {
			_ = s.redis.Set(ctx, ratingCacheKey, summaryJSON, cacheTTL).Err()
		}
	}

	return summary, nil
}

func (s *service) Add(ctx context.Context, userID uuid.UUID, input domain.CreateCommentInput) error {
	if strings.TrimSpace(input.Text) == "" {
		return ErrEmptyText
	}
	if err := validateOptionalFields(input.Rating, input.Package); err != nil {
		return err
	}

	websiteURL, err := normalizeWebsiteURL(input.WebsiteURL)
	if err != nil {
		return err
	}

	var parent *domain.Comment
	if input.ParentID != nil {
		parent, err = s.commentRepo.GetByID(ctx, *input.ParentID)
		if err != nil {
			return err
		}
		if parent == nil {
			return ErrParentNotFound
		}
	}

	comment := &domain.Comment{
		ID:         uuid.New(),
		UserID:     userID,
		ParentID:   input.ParentID,
		Text:       input.Text,
		Rating:     input.Rating,
		WebsiteURL: websiteURL,
		Package:    input.Package,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return err
	}

	s.invalidateCaches(ctx)
	s.writeAudit(ctx, userID, "CREATE", comment.ID, nil, comment)
	s.notifyAsync(parent, comment)

	return nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, id uuid.UUID, input domain.UpdateCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrNotFound
	}
	if comment.UserID != userID {
		return ErrForbidden
	}

	if strings.TrimSpace(input.Text) == "" {
		return ErrEmptyText
	}
	if err := validateOptionalFields(input.Rating, input.Package); err != nil {
		return err
	}
	websiteURL, err := normalizeWebsiteURL(input.WebsiteURL)
	if err != nil {
		return err
	}

	old := *comment
	comment.Text = input.Text
	comment.Rating = input.Rating
	comment.WebsiteURL = websiteURL
	comment.Package = input.Package

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return err
	}

	s.invalidateCaches(ctx)
	s.writeAudit(ctx, userID, "UPDATE", comment.ID, &old, comment)

	return nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrNotFound
	}
	if comment.UserID != userID {
		return ErrForbidden
	}

	subtreeIDs, err := s.collectSubtreeIDs(ctx, id)
	if err != nil {
		return err
	}

	// Attachment paths must be captured before the row delete: the store
	// cascades the media rows with the comments, taking the paths with them.
	var subtreeMedia []domain.Media
	if s.mediaService != nil {
		subtreeMedia, err = s.mediaService.ListByComments(ctx, subtreeIDs)
		if err != nil {
			log.Printf("Failed to list media for comment %s: %v", id, err)
		}
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.mediaService != nil && len(subtreeMedia) > 0 {
		if err := s.mediaService.RemoveObjects(ctx, subtreeMedia); err != nil {
			log.Printf("Failed to clean up media for comment %s: %v", id, err)
		}
	}

	s.invalidateCaches(ctx)
	s.writeAudit(ctx, userID, "DELETE", id, comment, nil)

	return nil
}

func (s *service) collectSubtreeIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{id}
	frontier := []uuid.UUID{id}

	for len(frontier) > 0 {
		children, err := s.commentRepo.ListByParentIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, c := range children {
			ids = append(ids, c.ID)
			frontier = append(frontier, c.ID)
		}
	}

	return ids, nil
}

// invalidateCaches drops every cached tree page and the rating summary, so
// the next read fetches authoritative data. Mutations never patch the server
// cache in place.
func (s *service) invalidateCaches(ctx context.Context) {
	if s.redis == nil {
		return
	}
	keys, _ := s.redis.Keys(ctx, cacheKeyPattern).Result()
	if len(keys) > 0 {
		_ = s.redis.Del(ctx, keys...).Err()
	}
}

func (s *service) writeAudit(ctx context.Context, userID uuid.UUID, action string, entityID uuid.UUID, oldValue, newValue interface{}) {
	if s.auditRepo == nil {
		return
	}
	err := repository.CreateAuditLog(s.auditRepo, ctx, domain.CreateAuditLogInput{
		UserID:     userID,
		Action:     action,
		EntityType: commentEntityType,
		EntityID:   entityID,
		OldValue:   oldValue,
		NewValue:   newValue,
	})
	if err != nil {
		log.Printf("Failed to write audit log: %v", err)
	}
}

func (s *service) notifyAsync(parent *domain.Comment, comment *domain.Comment) {
	if s.emailService == nil {
		return
	}

	go func() {
		ctx := context.Background()

		author, err := s.userRepo.GetByID(ctx, comment.UserID)
		if err != nil || author == nil {
			return
		}

		if parent == nil {
			rating := 0
			if comment.Rating != nil {
				rating = *comment.Rating
			}
			if err := s.emailService.SendNewReviewEmail(ctx, author.FullName, rating, comment.Text); err != nil {
				log.Printf("Failed to send new review email: %v", err)
			}
			return
		}

		if parent.UserID == comment.UserID {
			return
		}
		recipient, err := s.userRepo.GetByID(ctx, parent.UserID)
		if err != nil || recipient == nil {
			return
		}
		if err := s.emailService.SendReplyEmail(ctx, recipient.Email, recipient.FullName, author.FullName, comment.Text); err != nil {
			log.Printf("Failed to send reply email: %v", err)
		}
	}()
}

func validateOptionalFields(rating *int, pkg *string) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return ErrInvalidRating
	}
	if pkg != nil && !domain.ServicePackage(*pkg).IsValid() {
		return ErrInvalidPackage
	}
	return nil
}

// normalizeWebsiteURL stores an omitted or empty URL as NULL and rejects
// anything that does not parse as an absolute URL.
func normalizeWebsiteURL(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, ErrInvalidWebsiteURL
	}
	return &trimmed, nil
}
