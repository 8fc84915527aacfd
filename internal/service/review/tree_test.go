package review_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/service/review"
)

func makeComment(id uuid.UUID, parentID *uuid.UUID, text string, createdAt time.Time) domain.Comment {
	return domain.Comment{
		ID:        id,
		UserID:    uuid.New(),
		ParentID:  parentID,
		Text:      text,
		CreatedAt: createdAt,
	}
}

func countNodes(tree []domain.CommentTree) int {
	total := 0
	for _, n := range tree {
		total += 1 + countNodes(n.Replies)
	}
	return total
}

func TestBuildTree(t *testing.T) {
	t0 := time.Now()
	r1 := uuid.New()
	r2 := uuid.New()
	c1 := uuid.New()
	c2 := uuid.New()
	c3 := uuid.New()

	flat := []domain.Comment{
		makeComment(r1, nil, "first review", t0),
		makeComment(r2, nil, "second review", t0.Add(time.Minute)),
		makeComment(c1, &r1, "reply to first", t0.Add(2*time.Minute)),
		makeComment(c2, &r1, "another reply to first", t0.Add(3*time.Minute)),
		makeComment(c3, &c1, "nested reply", t0.Add(4*time.Minute)),
	}

	tree := review.BuildTree(flat)

	assert.Equal(t, 5, countNodes(tree))
	assert.Len(t, tree, 2)
	assert.Equal(t, r1, tree[0].ID)
	assert.Equal(t, r2, tree[1].ID)
	assert.Len(t, tree[0].Replies, 2)
	assert.Equal(t, c1, tree[0].Replies[0].ID)
	assert.Equal(t, c2, tree[0].Replies[1].ID)
	assert.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, c3, tree[0].Replies[0].Replies[0].ID)
	assert.Empty(t, tree[1].Replies)

	// Field values survive the round trip.
	assert.Equal(t, "nested reply", tree[0].Replies[0].Replies[0].Text)
	assert.Equal(t, flat[0].UserID, tree[0].UserID)
}

func TestBuildTree_DropsOrphans(t *testing.T) {
	t0 := time.Now()
	missing := uuid.New()
	r1 := uuid.New()
	orphan := uuid.New()

	flat := []domain.Comment{
		makeComment(r1, nil, "review", t0),
		makeComment(orphan, &missing, "reply whose root is on another page", t0),
	}

	tree := review.BuildTree(flat)

	// The orphan is excluded entirely, never promoted to root.
	assert.Len(t, tree, 1)
	assert.Equal(t, r1, tree[0].ID)
	assert.Equal(t, 1, countNodes(tree))
}

func TestInsertNode(t *testing.T) {
	t0 := time.Now()
	r1 := uuid.New()
	c1 := uuid.New()
	tree := review.BuildTree([]domain.Comment{
		makeComment(r1, nil, "review", t0),
		makeComment(c1, &r1, "reply", t0.Add(time.Minute)),
	})

	t.Run("Prepend At Root", func(t *testing.T) {
		node := domain.CommentTree{Comment: makeComment(uuid.New(), nil, "new review", t0), Replies: []domain.CommentTree{}}

		got := review.InsertNode(tree, node, nil)

		assert.Len(t, got, 2)
		assert.Equal(t, node.ID, got[0].ID)
		assert.Equal(t, r1, got[1].ID)
		// Input tree is untouched.
		assert.Len(t, tree, 1)
	})

	t.Run("Append Under Nested Parent", func(t *testing.T) {
		node := domain.CommentTree{Comment: makeComment(uuid.New(), &c1, "nested", t0), Replies: []domain.CommentTree{}}

		got := review.InsertNode(tree, node, &c1)

		assert.Len(t, got[0].Replies[0].Replies, 1)
		assert.Equal(t, node.ID, got[0].Replies[0].Replies[0].ID)
		assert.Empty(t, tree[0].Replies[0].Replies)
	})

	t.Run("Unresolved Parent Drops Node", func(t *testing.T) {
		ghost := uuid.New()
		node := domain.CommentTree{Comment: makeComment(uuid.New(), &ghost, "dropped", t0), Replies: []domain.CommentTree{}}

		got := review.InsertNode(tree, node, &ghost)

		assert.Equal(t, tree, got)
	})
}

func TestRemoveNode(t *testing.T) {
	t0 := time.Now()
	r1 := uuid.New()
	c1 := uuid.New()
	c2 := uuid.New()
	tree := review.BuildTree([]domain.Comment{
		makeComment(r1, nil, "review", t0),
		makeComment(c1, &r1, "reply", t0.Add(time.Minute)),
		makeComment(c2, &c1, "nested reply", t0.Add(2*time.Minute)),
	})

	t.Run("Removes Node And Descendants", func(t *testing.T) {
		got := review.RemoveNode(tree, c1)

		assert.Len(t, got, 1)
		assert.Empty(t, got[0].Replies)
		// Original still has the full thread.
		assert.Len(t, tree[0].Replies, 1)
	})

	t.Run("Removes Root", func(t *testing.T) {
		got := review.RemoveNode(tree, r1)

		assert.Empty(t, got)
	})

	t.Run("Absent ID Is A No-Op", func(t *testing.T) {
		got := review.RemoveNode(tree, uuid.New())

		assert.Equal(t, tree, got)
	})
}

func TestUpdateNode(t *testing.T) {
	t0 := time.Now()
	r1 := uuid.New()
	c1 := uuid.New()
	rating := 4
	website := "https://example.com"
	tree := review.BuildTree([]domain.Comment{
		{ID: r1, UserID: uuid.New(), Text: "review", Rating: &rating, WebsiteURL: &website, CreatedAt: t0},
		makeComment(c1, &r1, "reply", t0.Add(time.Minute)),
	})

	t.Run("Shallow Merge", func(t *testing.T) {
		text := "edited"
		newRating := 5
		ratingPtr := &newRating

		got := review.UpdateNode(tree, review.NodePatch{ID: r1, Text: &text, Rating: &ratingPtr})

		assert.Equal(t, "edited", got[0].Text)
		assert.Equal(t, 5, *got[0].Rating)
		// Untouched fields survive; placement does not change.
		assert.Equal(t, website, *got[0].WebsiteURL)
		assert.Len(t, got[0].Replies, 1)
		assert.Equal(t, "review", tree[0].Text)
	})

	t.Run("Set Field To NULL", func(t *testing.T) {
		var cleared *string

		got := review.UpdateNode(tree, review.NodePatch{ID: r1, WebsiteURL: &cleared})

		assert.Nil(t, got[0].WebsiteURL)
		assert.NotNil(t, tree[0].WebsiteURL)
	})

	t.Run("Updates Nested Node", func(t *testing.T) {
		text := "edited reply"

		got := review.UpdateNode(tree, review.NodePatch{ID: c1, Text: &text})

		assert.Equal(t, "edited reply", got[0].Replies[0].Text)
		assert.Equal(t, "review", got[0].Text)
	})
}
