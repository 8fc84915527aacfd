package review_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/service/review"
)

type mockCommentRepository struct {
	mock.Mock
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *mockCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *mockCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *mockCommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCommentRepository) CountRoots(ctx context.Context, filter domain.CommentFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCommentRepository) ListRoots(ctx context.Context, filter domain.CommentFilter) ([]domain.Comment, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *mockCommentRepository) ListByParentIDs(ctx context.Context, parentIDs []uuid.UUID) ([]domain.Comment, error) {
	args := m.Called(ctx, parentIDs)
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *mockCommentRepository) RatingCounts(ctx context.Context) (map[int]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[int]int), args.Error(1)
}

type mockMediaService struct {
	mock.Mock
}

func (m *mockMediaService) Upload(ctx context.Context, userID, commentID uuid.UUID, fileName string, fileSize int64, mimeType string, reader io.Reader) (*domain.Media, error) {
	args := m.Called(ctx, userID, commentID, fileName, fileSize, mimeType, reader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Media), args.Error(1)
}

func (m *mockMediaService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *mockMediaService) ListByComments(ctx context.Context, commentIDs []uuid.UUID) ([]domain.Media, error) {
	args := m.Called(ctx, commentIDs)
	return args.Get(0).([]domain.Media), args.Error(1)
}

func (m *mockMediaService) RemoveObjects(ctx context.Context, mediaList []domain.Media) error {
	args := m.Called(ctx, mediaList)
	return args.Error(0)
}

func TestReviewService_GetCommentTree(t *testing.T) {
	ctx := context.Background()
	t0 := time.Now()

	t.Run("Threads Are Fetched Whole", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		rating5 := 5
		rating3 := 3
		r1 := domain.Comment{ID: uuid.New(), UserID: uuid.New(), Text: "great", Rating: &rating5, CreatedAt: t0}
		r3 := domain.Comment{ID: uuid.New(), UserID: uuid.New(), Text: "okay", Rating: &rating3, CreatedAt: t0.Add(2 * time.Minute)}
		r2 := domain.Comment{ID: uuid.New(), UserID: uuid.New(), ParentID: &r1.ID, Text: "thanks", CreatedAt: t0.Add(time.Minute)}

		mockRepo.On("CountRoots", ctx, mock.Anything).Return(int64(2), nil).Once()
		mockRepo.On("ListRoots", ctx, mock.Anything).Return([]domain.Comment{r1, r3}, nil).Once()
		mockRepo.On("ListByParentIDs", ctx, mock.Anything).Return([]domain.Comment{r2}, nil).Once()
		mockRepo.On("ListByParentIDs", ctx, mock.Anything).Return([]domain.Comment{}, nil).Once()

		result, err := svc.GetCommentTree(ctx, domain.CommentFilter{Sort: domain.SortRatingDesc, Page: 1, PageSize: 10})

		assert.NoError(t, err)
		assert.Equal(t, 1, result.TotalPages)
		assert.Len(t, result.CommentTree, 2)
		assert.Equal(t, r1.ID, result.CommentTree[0].ID)
		assert.Len(t, result.CommentTree[0].Replies, 1)
		assert.Equal(t, r2.ID, result.CommentTree[0].Replies[0].ID)
		assert.Equal(t, r3.ID, result.CommentTree[1].ID)
		assert.Empty(t, result.CommentTree[1].Replies)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Second Page Gets Only Its Thread", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		c3 := domain.Comment{ID: uuid.New(), UserID: uuid.New(), Text: "third review", CreatedAt: t0}
		rep1 := domain.Comment{ID: uuid.New(), UserID: uuid.New(), ParentID: &c3.ID, Text: "reply one", CreatedAt: t0.Add(time.Minute)}
		rep2 := domain.Comment{ID: uuid.New(), UserID: uuid.New(), ParentID: &c3.ID, Text: "reply two", CreatedAt: t0.Add(2 * time.Minute)}

		mockRepo.On("CountRoots", ctx, mock.Anything).Return(int64(3), nil).Once()
		mockRepo.On("ListRoots", ctx, mock.MatchedBy(func(f domain.CommentFilter) bool {
			return f.Page == 2 && f.PageSize == 2
		})).Return([]domain.Comment{c3}, nil).Once()
		mockRepo.On("ListByParentIDs", ctx, []uuid.UUID{c3.ID}).Return([]domain.Comment{rep1, rep2}, nil).Once()
		mockRepo.On("ListByParentIDs", ctx, mock.Anything).Return([]domain.Comment{}, nil).Once()

		result, err := svc.GetCommentTree(ctx, domain.CommentFilter{Page: 2, PageSize: 2})

		assert.NoError(t, err)
		assert.Equal(t, 2, result.TotalPages)
		assert.Len(t, result.CommentTree, 1)
		assert.Len(t, result.CommentTree[0].Replies, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Empty Page", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		mockRepo.On("CountRoots", ctx, mock.Anything).Return(int64(3), nil).Once()
		mockRepo.On("ListRoots", ctx, mock.Anything).Return([]domain.Comment{}, nil).Once()

		result, err := svc.GetCommentTree(ctx, domain.CommentFilter{Page: 5, PageSize: 10})

		assert.NoError(t, err)
		assert.Empty(t, result.CommentTree)
		assert.Equal(t, 1, result.TotalPages)
		mockRepo.AssertExpectations(t)
	})
}

func TestReviewService_GetAverageRating(t *testing.T) {
	ctx := context.Background()

	t.Run("Mean Count And Distribution", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		// The repository query already excludes replies.
		mockRepo.On("RatingCounts", ctx).Return(map[int]int{5: 3, 3: 1}, nil).Once()

		summary, err := svc.GetAverageRating(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 4, summary.RatingCount)
		assert.InDelta(t, 4.5, summary.AverageRating, 0.001)
		assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 1, 4: 0, 5: 3}, summary.RatingDistribution)
		mockRepo.AssertExpectations(t)
	})

	t.Run("No Ratings", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		mockRepo.On("RatingCounts", ctx).Return(map[int]int{}, nil).Once()

		summary, err := svc.GetAverageRating(ctx)

		assert.NoError(t, err)
		assert.Zero(t, summary.AverageRating)
		assert.Zero(t, summary.RatingCount)
	})
}

func TestReviewService_Add(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		rating := 5
		pkg := "basic"
		mockRepo.On("Create", ctx, mock.MatchedBy(func(c *domain.Comment) bool {
			return c.UserID == userID && c.Text == "great work" && *c.Rating == 5 && c.ParentID == nil
		})).Return(nil).Once()

		err := svc.Add(ctx, userID, domain.CreateCommentInput{Text: "great work", Rating: &rating, Package: &pkg})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Reply Requires Existing Parent", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		parentID := uuid.New()
		mockRepo.On("GetByID", ctx, parentID).Return(nil, nil).Once()

		err := svc.Add(ctx, userID, domain.CreateCommentInput{Text: "reply", ParentID: &parentID})

		assert.ErrorIs(t, err, review.ErrParentNotFound)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Blank Text", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		err := svc.Add(ctx, userID, domain.CreateCommentInput{Text: "   "})

		assert.ErrorIs(t, err, review.ErrEmptyText)
	})

	t.Run("Rating Out Of Range", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		rating := 6
		err := svc.Add(ctx, userID, domain.CreateCommentInput{Text: "text", Rating: &rating})

		assert.ErrorIs(t, err, review.ErrInvalidRating)
	})

	t.Run("Malformed Website URL", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		website := "not a url"
		err := svc.Add(ctx, userID, domain.CreateCommentInput{Text: "text", WebsiteURL: &website})

		assert.ErrorIs(t, err, review.ErrInvalidWebsiteURL)
	})

	t.Run("Empty Website URL Stored As NULL", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		website := ""
		mockRepo.On("Create", ctx, mock.MatchedBy(func(c *domain.Comment) bool {
			return c.WebsiteURL == nil
		})).Return(nil).Once()

		err := svc.Add(ctx, userID, domain.CreateCommentInput{Text: "text", WebsiteURL: &website})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Unknown Package", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		pkg := "enterprise"
		err := svc.Add(ctx, userID, domain.CreateCommentInput{Text: "text", Package: &pkg})

		assert.ErrorIs(t, err, review.ErrInvalidPackage)
	})
}

func TestReviewService_Update(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	commentID := uuid.New()

	existing := func() *domain.Comment {
		return &domain.Comment{ID: commentID, UserID: userID, Text: "original", CreatedAt: time.Now()}
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		mockRepo.On("GetByID", ctx, commentID).Return(existing(), nil).Once()
		mockRepo.On("Update", ctx, mock.MatchedBy(func(c *domain.Comment) bool {
			return c.ID == commentID && c.Text == "edited" && c.UserID == userID
		})).Return(nil).Once()

		err := svc.Update(ctx, userID, commentID, domain.UpdateCommentInput{Text: "edited"})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		mockRepo.On("GetByID", ctx, commentID).Return(nil, nil).Once()

		err := svc.Update(ctx, userID, commentID, domain.UpdateCommentInput{Text: "edited"})

		assert.ErrorIs(t, err, review.ErrNotFound)
	})

	t.Run("Forbidden For Non-Owner", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		mockRepo.On("GetByID", ctx, commentID).Return(existing(), nil).Once()

		err := svc.Update(ctx, uuid.New(), commentID, domain.UpdateCommentInput{Text: "edited"})

		assert.ErrorIs(t, err, review.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Update")
	})
}

func TestReviewService_Delete(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	commentID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		existing := &domain.Comment{ID: commentID, UserID: userID, Text: "review"}
		mockRepo.On("GetByID", ctx, commentID).Return(existing, nil).Once()
		mockRepo.On("ListByParentIDs", ctx, []uuid.UUID{commentID}).Return([]domain.Comment{}, nil).Once()
		mockRepo.On("Delete", ctx, commentID).Return(nil).Once()

		err := svc.Delete(ctx, userID, commentID)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Captures Media Paths Before The Cascade", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		mockMedia := new(mockMediaService)
		svc := review.NewService(mockRepo, nil, nil, nil)
		svc.SetMediaService(mockMedia)

		replyID := uuid.New()
		existing := &domain.Comment{ID: commentID, UserID: userID, Text: "review"}
		reply := domain.Comment{ID: replyID, UserID: uuid.New(), ParentID: &commentID, Text: "reply"}
		attachments := []domain.Media{
			{ID: uuid.New(), CommentID: replyID, StoragePath: "reviews/2026/08/img"},
		}

		// The row delete cascades the media rows, so the paths must be listed
		// first and the objects removed after.
		var order []string
		mockRepo.On("GetByID", ctx, commentID).Return(existing, nil).Once()
		mockRepo.On("ListByParentIDs", ctx, []uuid.UUID{commentID}).Return([]domain.Comment{reply}, nil).Once()
		mockRepo.On("ListByParentIDs", ctx, []uuid.UUID{replyID}).Return([]domain.Comment{}, nil).Once()
		mockMedia.On("ListByComments", ctx, []uuid.UUID{commentID, replyID}).Run(func(mock.Arguments) {
			order = append(order, "list media")
		}).Return(attachments, nil).Once()
		mockRepo.On("Delete", ctx, commentID).Run(func(mock.Arguments) {
			order = append(order, "delete rows")
		}).Return(nil).Once()
		mockMedia.On("RemoveObjects", ctx, attachments).Run(func(mock.Arguments) {
			order = append(order, "remove objects")
		}).Return(nil).Once()

		err := svc.Delete(ctx, userID, commentID)

		assert.NoError(t, err)
		assert.Equal(t, []string{"list media", "delete rows", "remove objects"}, order)
		mockRepo.AssertExpectations(t)
		mockMedia.AssertExpectations(t)
	})

	t.Run("Forbidden For Non-Owner", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		existing := &domain.Comment{ID: commentID, UserID: userID}
		mockRepo.On("GetByID", ctx, commentID).Return(existing, nil).Once()

		err := svc.Delete(ctx, uuid.New(), commentID)

		assert.ErrorIs(t, err, review.ErrForbidden)
		mockRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("Not Found", func(t *testing.T) {
		mockRepo := new(mockCommentRepository)
		svc := review.NewService(mockRepo, nil, nil, nil)

		mockRepo.On("GetByID", ctx, commentID).Return(nil, nil).Once()

		err := svc.Delete(ctx, userID, commentID)

		assert.ErrorIs(t, err, review.ErrNotFound)
	})
}
