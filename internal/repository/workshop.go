package repository

import (
	"context"
	"strings"

	"workshophub/internal/models"

	"gorm.io/gorm"
)

// WorkshopFilter is the fixed set of optional predicates accepted by workshop listings.
// Zero values mean "no constraint". Inactive workshops are excluded unless IncludeInactive is set.
type WorkshopFilter struct {
	CategorySlug    string
	Difficulty      models.Difficulty
	Search          string
	IncludeInactive bool
}

// Apply composes the filter's predicates onto a query over workshops.
func (f WorkshopFilter) Apply(db *gorm.DB) *gorm.DB {
	q := db
	if !f.IncludeInactive {
		q = q.Where("workshops.is_active = ?", true)
	}
	if slug := strings.TrimSpace(f.CategorySlug); slug != "" {
		q = q.Joins("JOIN categories ON categories.id = workshops.category_id").
			Where("categories.slug = ?", slug)
	}
	if f.Difficulty != "" {
		q = q.Where("workshops.difficulty = ?", f.Difficulty)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		q = q.Where(`LOWER(workshops.title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(term))+"%")
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// WorkshopRepository defines read operations for workshops and their derived aggregates.
type WorkshopRepository interface {
	List(ctx context.Context, filter WorkshopFilter) ([]models.Workshop, error)
	GetBySlug(ctx context.Context, slug string) (*models.Workshop, error)
	GetByID(ctx context.Context, id uint) (*models.Workshop, error)
	Stats(ctx context.Context, ids []uint) (map[uint]models.WorkshopStats, error)
	ViewerStates(ctx context.Context, userID uint, ids []uint) (map[uint]models.ViewerState, error)
}

type workshopRepository struct {
	db *gorm.DB
}

// NewWorkshopRepository returns a new WorkshopRepository implementation.
func NewWorkshopRepository(db *gorm.DB) WorkshopRepository {
	return &workshopRepository{db: db}
}

func (r *workshopRepository) List(ctx context.Context, filter WorkshopFilter) ([]models.Workshop, error) {
	workshops := []models.Workshop{}
	err := filter.Apply(r.db.WithContext(ctx).Model(&models.Workshop{})).
		Select("workshops.*").
		Preload("Category").
		Order("workshops.created_at DESC").
		Order("workshops.id DESC").
		Find(&workshops).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return workshops, nil
}

// GetBySlug returns an active workshop by slug.
func (r *workshopRepository) GetBySlug(ctx context.Context, slug string) (*models.Workshop, error) {
	var workshop models.Workshop
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&workshop).Error
	if err != nil {
		return nil, translate(err, "Workshop", slug)
	}
	return &workshop, nil
}

// GetByID returns a workshop regardless of its active flag.
func (r *workshopRepository) GetByID(ctx context.Context, id uint) (*models.Workshop, error) {
	var workshop models.Workshop
	if err := r.db.WithContext(ctx).Preload("Category").First(&workshop, id).Error; err != nil {
		return nil, translate(err, "Workshop", id)
	}
	return &workshop, nil
}

// Stats computes enrollment and review aggregates for the given workshops from committed rows.
func (r *workshopRepository) Stats(ctx context.Context, ids []uint) (map[uint]models.WorkshopStats, error) {
	return workshopStats(r.db.WithContext(ctx), ids)
}

func workshopStats(db *gorm.DB, ids []uint) (map[uint]models.WorkshopStats, error) {
	stats := make(map[uint]models.WorkshopStats, len(ids))
	if len(ids) == 0 {
		return stats, nil
	}

	var enrolled []struct {
		WorkshopID uint
		N          int64
	}
	err := db.Model(&models.Enrollment{}).
		Select("workshop_id, COUNT(*) AS n").
		Where("workshop_id IN ? AND status = ?", ids, models.EnrollmentStatusEnrolled).
		Group("workshop_id").
		Scan(&enrolled).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var reviews []struct {
		WorkshopID uint
		N          int64
		Total      int64
	}
	err = db.Model(&models.Review{}).
		Select("workshop_id, COUNT(*) AS n, COALESCE(SUM(rating), 0) AS total").
		Where("workshop_id IN ?", ids).
		Group("workshop_id").
		Scan(&reviews).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	for _, row := range enrolled {
		s := stats[row.WorkshopID]
		s.EnrolledCount = row.N
		stats[row.WorkshopID] = s
	}
	for _, row := range reviews {
		s := stats[row.WorkshopID]
		s.ReviewCount = row.N
		s.RatingSum = row.Total
		stats[row.WorkshopID] = s
	}
	return stats, nil
}

func countEnrolled(db *gorm.DB, workshopID uint) (int64, error) {
	var n int64
	err := db.Model(&models.Enrollment{}).
		Where("workshop_id = ? AND status = ?", workshopID, models.EnrollmentStatusEnrolled).
		Count(&n).Error
	return n, err
}

// ViewerStates reports, per workshop, whether userID is enrolled, has it wishlisted,
// and the user's own review if any.
func (r *workshopRepository) ViewerStates(ctx context.Context, userID uint, ids []uint) (map[uint]models.ViewerState, error) {
	states := make(map[uint]models.ViewerState, len(ids))
	if userID == 0 || len(ids) == 0 {
		return states, nil
	}
	db := r.db.WithContext(ctx)

	var enrolledIDs []uint
	err := db.Model(&models.Enrollment{}).
		Where("user_id = ? AND workshop_id IN ? AND status = ?", userID, ids, models.EnrollmentStatusEnrolled).
		Pluck("workshop_id", &enrolledIDs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var wishlistedIDs []uint
	err = db.Model(&models.Wishlist{}).
		Where("user_id = ? AND workshop_id IN ?", userID, ids).
		Pluck("workshop_id", &wishlistedIDs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var reviews []models.Review
	err = db.Where("user_id = ? AND workshop_id IN ?", userID, ids).Find(&reviews).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	for _, id := range enrolledIDs {
		s := states[id]
		s.IsEnrolled = true
		states[id] = s
	}
	for _, id := range wishlistedIDs {
		s := states[id]
		s.IsWishlisted = true
		states[id] = s
	}
	for _, rv := range reviews {
		s := states[rv.WorkshopID]
		s.Review = &models.UserReview{Rating: rv.Rating, Comment: rv.Comment}
		states[rv.WorkshopID] = s
	}
	return states, nil
}
