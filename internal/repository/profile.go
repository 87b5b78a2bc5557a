package repository

import (
	"context"

	"workshophub/internal/models"

	"gorm.io/gorm"
)

// ProfileUpdate lists the editable profile fields. Nil leaves a field unchanged.
type ProfileUpdate struct {
	Bio    *string
	Phone  *string
	Avatar *string
}

// ProfileRepository defines persistence operations for user profiles.
type ProfileRepository interface {
	GetOrCreate(ctx context.Context, userID uint) (*models.UserProfile, error)
	Update(ctx context.Context, userID uint, update ProfileUpdate) (*models.UserProfile, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// GetOrCreate returns the user's profile, creating an empty one for accounts that predate profiles.
func (r *profileRepository) GetOrCreate(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).
		Where(models.UserProfile{UserID: userID}).
		FirstOrCreate(&profile).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			// lost a create race; the row exists now
			if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
				return nil, translate(err, "Profile", userID)
			}
			return &profile, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, userID uint, update ProfileUpdate) (*models.UserProfile, error) {
	profile, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.Bio != nil {
		fields["bio"] = *update.Bio
	}
	if update.Phone != nil {
		fields["phone"] = *update.Phone
	}
	if update.Avatar != nil {
		fields["avatar"] = *update.Avatar
	}
	if len(fields) == 0 {
		return profile, nil
	}

	if err := r.db.WithContext(ctx).Model(profile).Updates(fields).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).First(profile, profile.ID).Error; err != nil {
		return nil, translate(err, "Profile", userID)
	}
	return profile, nil
}
