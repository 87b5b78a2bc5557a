package service

import (
	"context"
	"strconv"
	"strings"

	"workshophub/internal/models"
	"workshophub/internal/observability"
	"workshophub/internal/repository"
	"workshophub/internal/validation"
)

const maxReviewCommentLen = 5000

type ReviewService struct {
	reviews repository.ReviewRepository
}

type CreateReviewInput struct {
	UserID     uint
	WorkshopID uint   `json:"workshop"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

type UpdateReviewInput struct {
	UserID   uint
	ReviewID uint
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

func NewReviewService(reviews repository.ReviewRepository) *ReviewService {
	return &ReviewService{reviews: reviews}
}

// CreateReview stores a review. The rating is checked before anything is written.
func (s *ReviewService) CreateReview(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	if err := validation.Rating(in.Rating); err != nil {
		return nil, err
	}
	if in.WorkshopID == 0 {
		return nil, models.NewValidationError("workshop is required")
	}
	comment, err := normalizeComment(in.Comment)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		UserID:     in.UserID,
		WorkshopID: in.WorkshopID,
		Rating:     in.Rating,
		Comment:    comment,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	observability.ReviewsCreated.WithLabelValues(strconv.Itoa(review.Rating)).Inc()
	return review, nil
}

// ListReviews returns the reviews of a workshop when workshopID is set, otherwise the caller's own.
func (s *ReviewService) ListReviews(ctx context.Context, userID, workshopID uint) ([]models.Review, error) {
	if workshopID != 0 {
		return s.reviews.ListByWorkshop(ctx, workshopID)
	}
	return s.reviews.ListByUser(ctx, userID)
}

func (s *ReviewService) GetReview(ctx context.Context, userID, reviewID uint) (*models.Review, error) {
	return s.reviews.GetForUser(ctx, userID, reviewID)
}

func (s *ReviewService) UpdateReview(ctx context.Context, in UpdateReviewInput) (*models.Review, error) {
	if err := validation.Rating(in.Rating); err != nil {
		return nil, err
	}
	comment, err := normalizeComment(in.Comment)
	if err != nil {
		return nil, err
	}

	review := &models.Review{ID: in.ReviewID, UserID: in.UserID, Rating: in.Rating, Comment: comment}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID uint) error {
	return s.reviews.Delete(ctx, userID, reviewID)
}

func normalizeComment(comment string) (string, error) {
	comment = strings.TrimSpace(comment)
	if len(comment) > maxReviewCommentLen {
		return "", models.NewValidationError("Comment too long (max 5000 characters)")
	}
	return comment, nil
}
