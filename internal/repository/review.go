package repository

import (
	"context"

	"workshophub/internal/models"

	"gorm.io/gorm"
)

const msgAlreadyReviewed = "You have already reviewed this workshop"

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, userID, reviewID uint) error
	GetForUser(ctx context.Context, userID, reviewID uint) (*models.Review, error)
	ListByWorkshop(ctx context.Context, workshopID uint) ([]models.Review, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository returns a new ReviewRepository implementation.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create stores a review. One review per (user, workshop) is enforced by a unique index.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	db := r.db.WithContext(ctx)
	if err := workshopExists(db, review.WorkshopID); err != nil {
		return err
	}
	if err := db.Create(review).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictErrorWithReason(models.ConflictReasonDuplicate, msgAlreadyReviewed)
		}
		return models.NewInternalError(err)
	}
	r.fill(ctx, review)
	return nil
}

// Update rewrites rating and comment of a review owned by review.UserID.
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	res := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ? AND user_id = ?", review.ID, review.UserID).
		Updates(map[string]interface{}{"rating": review.Rating, "comment": review.Comment})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Review", review.ID)
	}
	updated, err := r.GetForUser(ctx, review.UserID, review.ID)
	if err != nil {
		return err
	}
	*review = *updated
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, userID, reviewID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", reviewID, userID).Delete(&models.Review{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Review", reviewID)
	}
	return nil
}

func (r *reviewRepository) GetForUser(ctx context.Context, userID, reviewID uint) (*models.Review, error) {
	var review models.Review
	err := r.withNames(r.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", reviewID, userID).
		First(&review).Error
	if err != nil {
		return nil, translate(err, "Review", reviewID)
	}
	fillReviewNames(&review)
	return &review, nil
}

func (r *reviewRepository) ListByWorkshop(ctx context.Context, workshopID uint) ([]models.Review, error) {
	return r.list(r.db.WithContext(ctx).Where("workshop_id = ?", workshopID))
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID uint) ([]models.Review, error) {
	return r.list(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *reviewRepository) list(q *gorm.DB) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.withNames(q).Order("created_at DESC").Order("id DESC").Find(&reviews).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range reviews {
		fillReviewNames(&reviews[i])
	}
	return reviews, nil
}

func (r *reviewRepository) withNames(q *gorm.DB) *gorm.DB {
	return q.Preload("User").Preload("Workshop")
}

// fill sets the display names on a freshly created review. Lookups are best effort.
func (r *reviewRepository) fill(ctx context.Context, review *models.Review) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("id", "username").First(&user, review.UserID).Error; err == nil {
		review.UserName = user.Username
	}
	var workshop models.Workshop
	if err := r.db.WithContext(ctx).Select("id", "title").First(&workshop, review.WorkshopID).Error; err == nil {
		review.WorkshopTitle = workshop.Title
	}
}

func fillReviewNames(r *models.Review) {
	if r.User != nil {
		r.UserName = r.User.Username
	}
	if r.Workshop != nil {
		r.WorkshopTitle = r.Workshop.Title
	}
}
