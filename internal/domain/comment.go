package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment represents both top-level reviews and nested replies. A row with a
// NULL parent_id is a review and may carry rating/website_url/package; a row
// with a parent_id is a reply at arbitrary depth.
type Comment struct {
	ID         uuid.UUID  `json:"id" db:"comment_id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	ParentID   *uuid.UUID `json:"parent_id" db:"parent_id"`
	Text       string     `json:"text" db:"text"`
	Rating     *int       `json:"rating,omitempty" db:"rating"`
	WebsiteURL *string    `json:"website_url,omitempty" db:"website_url"`
	Package    *string    `json:"package,omitempty" db:"package"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`

	User  *CommentUser `json:"user,omitempty"`
	Media []Media      `json:"media,omitempty"`
}

type CommentUser struct {
	ID        uuid.UUID `json:"id" db:"user_id"`
	FullName  string    `json:"full_name" db:"user_full_name"`
	AvatarURL *string   `json:"avatar_url" db:"user_avatar_url"`
}

// CommentTree is the nested, per-request projection of a comment and its
// replies. Replies are ordered by the active sort rule (created_at ascending
// within a thread). Never persisted.
type CommentTree struct {
	Comment
	Replies []CommentTree `json:"replies"`
}

type CommentTreeResult struct {
	CommentTree []CommentTree `json:"comment_tree"`
	TotalPages  int           `json:"total_pages"`
}

type RatingSummary struct {
	AverageRating      float64     `json:"average_rating"`
	RatingCount        int         `json:"rating_count"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

type ServicePackage string

const (
	PackageBasic    ServicePackage = "basic"
	PackageStandard ServicePackage = "standard"
)

func (p ServicePackage) IsValid() bool {
	switch p {
	case PackageBasic, PackageStandard:
		return true
	default:
		return false
	}
}

const (
	SortCreatedDesc = "created-desc"
	SortCreatedAsc  = "created-asc"
	SortRatingDesc  = "rating-desc"
	SortRatingAsc   = "rating-asc"

	DefaultReviewSort     = SortCreatedDesc
	DefaultReviewPageSize = 10
)

type CreateCommentInput struct {
	Text       string     `json:"text" validate:"required,min=1"`
	ParentID   *uuid.UUID `json:"parent_id"`
	Rating     *int       `json:"rating" validate:"omitempty,min=1,max=5"`
	WebsiteURL *string    `json:"website_url"`
	Package    *string    `json:"package"`
}

type UpdateCommentInput struct {
	Text       string  `json:"text" validate:"required,min=1"`
	Rating     *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	WebsiteURL *string `json:"website_url"`
	Package    *string `json:"package"`
}
