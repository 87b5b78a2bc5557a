package repository

import (
	"context"

	"workshophub/internal/models"

	"gorm.io/gorm"
)

const msgAlreadyWishlisted = "Workshop is already in your wishlist"

// WishlistRepository defines persistence operations for wishlist entries.
type WishlistRepository interface {
	Toggle(ctx context.Context, userID, workshopID uint) (models.ToggleResult, error)
	Add(ctx context.Context, userID, workshopID uint) (*models.Wishlist, error)
	Remove(ctx context.Context, userID, wishlistID uint) error
	GetForUser(ctx context.Context, userID, wishlistID uint) (*models.Wishlist, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Wishlist, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository returns a new WishlistRepository implementation.
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// Toggle removes the (user, workshop) entry if present, otherwise creates it.
// A concurrent toggle that wins the insert race surfaces as Conflict.
func (r *wishlistRepository) Toggle(ctx context.Context, userID, workshopID uint) (models.ToggleResult, error) {
	var result models.ToggleResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := workshopExists(tx, workshopID); err != nil {
			return err
		}

		del := tx.Where("user_id = ? AND workshop_id = ?", userID, workshopID).Delete(&models.Wishlist{})
		if del.Error != nil {
			return models.NewInternalError(del.Error)
		}
		if del.RowsAffected > 0 {
			result = models.ToggleResult{Action: models.WishlistActionRemoved, Wishlisted: false}
			return nil
		}

		if err := tx.Create(&models.Wishlist{UserID: userID, WorkshopID: workshopID}).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictErrorWithReason(models.ConflictReasonDuplicate, msgAlreadyWishlisted)
			}
			return models.NewInternalError(err)
		}
		result = models.ToggleResult{Action: models.WishlistActionAdded, Wishlisted: true}
		return nil
	})
	if err != nil {
		return models.ToggleResult{}, err
	}
	return result, nil
}

// Add creates a wishlist entry. A duplicate is a Conflict, not a toggle.
func (r *wishlistRepository) Add(ctx context.Context, userID, workshopID uint) (*models.Wishlist, error) {
	db := r.db.WithContext(ctx)
	if err := workshopExists(db, workshopID); err != nil {
		return nil, err
	}

	entry := &models.Wishlist{UserID: userID, WorkshopID: workshopID}
	if err := db.Create(entry).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, models.NewConflictErrorWithReason(models.ConflictReasonDuplicate, msgAlreadyWishlisted)
		}
		return nil, models.NewInternalError(err)
	}
	return entry, nil
}

// Remove deletes one of the caller's wishlist entries by id.
func (r *wishlistRepository) Remove(ctx context.Context, userID, wishlistID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", wishlistID, userID).Delete(&models.Wishlist{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Wishlist", wishlistID)
	}
	return nil
}

func (r *wishlistRepository) GetForUser(ctx context.Context, userID, wishlistID uint) (*models.Wishlist, error) {
	var entry models.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Workshop.Category").
		Where("id = ? AND user_id = ?", wishlistID, userID).
		First(&entry).Error
	if err != nil {
		return nil, translate(err, "Wishlist", wishlistID)
	}
	return &entry, nil
}

func (r *wishlistRepository) ListByUser(ctx context.Context, userID uint) ([]models.Wishlist, error) {
	var entries []models.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Workshop.Category").
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Order("id DESC").
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}

func (r *wishlistRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Wishlist{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func workshopExists(db *gorm.DB, workshopID uint) error {
	var n int64
	if err := db.Model(&models.Workshop{}).Where("id = ?", workshopID).Count(&n).Error; err != nil {
		return models.NewInternalError(err)
	}
	if n == 0 {
		return models.NewNotFoundError("Workshop", workshopID)
	}
	return nil
}
