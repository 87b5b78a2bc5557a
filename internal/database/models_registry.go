package database

import "workshophub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters: referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserProfile{},
		&models.Category{},
		&models.Workshop{},
		&models.Enrollment{},
		&models.Wishlist{},
		&models.Review{},
		&models.PasswordReset{},
		&models.RevokedToken{},
	}
}
