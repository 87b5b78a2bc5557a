package seed

import (
	"fmt"
	"log"
	"strings"

	"workshophub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password123"

// DemoOptions control demo data generation.
type DemoOptions struct {
	Users int
	// Seed makes the generated names reproducible. Zero picks a random seed.
	Seed int64
	// ReviewsPerUser caps how many workshops each demo user reviews.
	ReviewsPerUser int
}

// Demo creates demo accounts with profiles, a few reviews and a wishlist entry
// each. Usernames that already exist are skipped. It returns the users created.
func Demo(db *gorm.DB, opts DemoOptions) ([]models.User, error) {
	if opts.Users <= 0 {
		return nil, nil
	}
	if opts.ReviewsPerUser <= 0 {
		opts.ReviewsPerUser = 2
	}
	faker := gofakeit.New(opts.Seed)

	var workshops []models.Workshop
	if err := db.Where("is_active = ?", true).Order("id").Find(&workshops).Error; err != nil {
		return nil, fmt.Errorf("load workshops: %w", err)
	}

	// Every demo account shares one hash.
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	// Names are drawn up front so a fixed seed yields the same accounts.
	accounts := make([]models.User, opts.Users)
	for i := range accounts {
		first, last := faker.FirstName(), faker.LastName()
		username := fmt.Sprintf("%s_%s%d", strings.ToLower(first), strings.ToLower(last), i+1)
		accounts[i] = models.User{
			Username:  username,
			Email:     username + "@demo.workshophub.local",
			Password:  string(hash),
			FirstName: first,
			LastName:  last,
		}
	}

	created := make([]models.User, 0, opts.Users)
	for _, user := range accounts {
		username := user.Username

		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				user.ID = 0
				return nil
			}

			profile := models.UserProfile{
				UserID: user.ID,
				Bio:    faker.Sentence(10),
				Avatar: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", faker.UUID()),
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			if len(workshops) == 0 {
				return nil
			}

			for _, w := range pickWorkshops(faker, workshops, opts.ReviewsPerUser) {
				review := models.Review{
					UserID:     user.ID,
					WorkshopID: w.ID,
					Rating:     faker.Number(models.MinRating+2, models.MaxRating),
					Comment:    faker.Sentence(12),
				}
				if err := tx.Create(&review).Error; err != nil {
					return err
				}
			}

			saved := workshops[faker.Number(0, len(workshops)-1)]
			return tx.Create(&models.Wishlist{UserID: user.ID, WorkshopID: saved.ID}).Error
		})
		if err != nil {
			return created, fmt.Errorf("seed demo user %s: %w", username, err)
		}
		if user.ID != 0 {
			created = append(created, user)
		}
	}

	log.Printf("Seeded %d demo users (password: %s)", len(created), DemoPassword)
	return created, nil
}

// pickWorkshops returns up to n distinct workshops.
func pickWorkshops(faker *gofakeit.Faker, workshops []models.Workshop, n int) []models.Workshop {
	if n > len(workshops) {
		n = len(workshops)
	}
	picked := make([]models.Workshop, 0, n)
	seen := make(map[int]bool, n)
	for len(picked) < n {
		idx := faker.Number(0, len(workshops)-1)
		if seen[idx] {
			continue
		}
		seen[idx] = true
		picked = append(picked, workshops[idx])
	}
	return picked
}
