package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"portfolio-backend/internal/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountRoots(ctx context.Context, filter domain.CommentFilter) (int64, error)
	ListRoots(ctx context.Context, filter domain.CommentFilter) ([]domain.Comment, error)
	ListByParentIDs(ctx context.Context, parentIDs []uuid.UUID) ([]domain.Comment, error)
	RatingCounts(ctx context.Context) (map[int]int, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (comment_id, user_id, parent_id, text, rating, website_url, package)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.UserID, comment.ParentID, comment.Text,
		comment.Rating, comment.WebsiteURL, comment.Package,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	query := `
		SELECT comment_id, user_id, parent_id, text, rating, website_url, package, created_at, updated_at
		FROM comments WHERE comment_id = $1`

	err := r.db.GetContext(ctx, &comment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update overwrites the mutable fields only. Parent, author and creation time
// are immutable.
func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	query := `
		UPDATE comments
		SET text = $2, rating = $3, website_url = $4, package = $5, updated_at = NOW()
		WHERE comment_id = $1
		RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.Text, comment.Rating, comment.WebsiteURL, comment.Package,
	).Scan(&comment.UpdatedAt)
}

// Delete removes the row; the parent_id foreign key is declared
// ON DELETE CASCADE, so the whole descendant subtree goes with it atomically.
func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM comments WHERE comment_id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// rootFilterClause builds the WHERE conditions for top-level reviews. The
// rating/package filters apply to roots only; replies are fetched through
// ListByParentIDs and are never filtered individually.
func rootFilterClause(filter domain.CommentFilter, args []interface{}) (string, []interface{}) {
	conditions := []string{"c.parent_id IS NULL"}

	if len(filter.Rating) > 0 {
		args = append(args, pq.Array(filter.Rating))
		conditions = append(conditions, fmt.Sprintf("c.rating = ANY($%d)", len(args)))
	}
	if len(filter.PackageType) > 0 {
		args = append(args, pq.Array(filter.PackageType))
		conditions = append(conditions, fmt.Sprintf("c.package = ANY($%d)", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func rootOrderClause(sortKey string) string {
	switch sortKey {
	case domain.SortCreatedAsc:
		return "c.created_at ASC, c.comment_id ASC"
	case domain.SortRatingDesc:
		return "c.rating DESC NULLS LAST, c.created_at DESC, c.comment_id ASC"
	case domain.SortRatingAsc:
		return "c.rating ASC NULLS LAST, c.created_at DESC, c.comment_id ASC"
	default:
		return "c.created_at DESC, c.comment_id ASC"
	}
}

func (r *commentRepository) CountRoots(ctx context.Context, filter domain.CommentFilter) (int64, error) {
	where, args := rootFilterClause(filter, nil)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM comments c WHERE %s`, where)

	var total int64
	err := r.db.GetContext(ctx, &total, query, args...)
	return total, err
}

// ListRoots selects exactly the page of top-level reviews, with the author
// projection joined in. Which reviews are "on this page" depends only on the
// filters and sort, never on how many replies they have.
func (r *commentRepository) ListRoots(ctx context.Context, filter domain.CommentFilter) ([]domain.Comment, error) {
	where, args := rootFilterClause(filter, nil)
	args = append(args, filter.PageSize, filter.Offset())

	query := fmt.Sprintf(`
		SELECT
			c.comment_id, c.user_id, c.parent_id, c.text, c.rating, c.website_url, c.package,
			c.created_at, c.updated_at,
			u.user_id, u.full_name, u.avatar_url
		FROM comments c
		INNER JOIN users u ON c.user_id = u.user_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		where, rootOrderClause(filter.Sort), len(args)-1, len(args))

	return r.scanCommentsWithUser(ctx, query, args...)
}

// ListByParentIDs returns every direct child of the given parents, in
// chronological order. Callers loop this to a fixpoint to expand whole
// threads.
func (r *commentRepository) ListByParentIDs(ctx context.Context, parentIDs []uuid.UUID) ([]domain.Comment, error) {
	if len(parentIDs) == 0 {
		return []domain.Comment{}, nil
	}

	ids := make([]string, len(parentIDs))
	for i, id := range parentIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT
			c.comment_id, c.user_id, c.parent_id, c.text, c.rating, c.website_url, c.package,
			c.created_at, c.updated_at,
			u.user_id, u.full_name, u.avatar_url
		FROM comments c
		INNER JOIN users u ON c.user_id = u.user_id
		WHERE c.parent_id = ANY($1)
		ORDER BY c.created_at ASC, c.comment_id ASC`

	return r.scanCommentsWithUser(ctx, query, pq.Array(ids))
}

func (r *commentRepository) scanCommentsWithUser(ctx context.Context, query string, args ...interface{}) ([]domain.Comment, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		var user domain.CommentUser
		err := rows.Scan(
			&c.ID, &c.UserID, &c.ParentID, &c.Text, &c.Rating, &c.WebsiteURL, &c.Package,
			&c.CreatedAt, &c.UpdatedAt,
			&user.ID, &user.FullName, &user.AvatarURL,
		)
		if err != nil {
			return nil, err
		}
		c.User = &user
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// RatingCounts aggregates star counts over top-level reviews only. Replies
// are excluded by the parent_id predicate even if a rating value was ever
// stored on one.
func (r *commentRepository) RatingCounts(ctx context.Context) (map[int]int, error) {
	query := `
		SELECT rating, COUNT(*)
		FROM comments
		WHERE parent_id IS NULL AND rating IS NOT NULL
		GROUP BY rating`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var star, count int
		if err := rows.Scan(&star, &count); err != nil {
			return nil, err
		}
		counts[star] = count
	}

	return counts, rows.Err()
}
