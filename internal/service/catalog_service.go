// Package service holds the application's use cases on top of the repositories.
package service

import (
	"context"
	"strings"

	"workshophub/internal/models"
	"workshophub/internal/repository"
	"workshophub/internal/validation"
)

type CatalogService struct {
	categories repository.CategoryRepository
	workshops  repository.WorkshopRepository
}

// ListWorkshopsInput carries the query-string filters of the workshop list.
// ViewerID is 0 for anonymous callers.
type ListWorkshopsInput struct {
	Category   string `json:"category" validate:"omitempty,max=50"`
	Difficulty string `json:"difficulty" validate:"omitempty,max=20"`
	Search     string `json:"search" validate:"omitempty,max=200"`
	ViewerID   uint   `json:"-"`
}

func NewCatalogService(categories repository.CategoryRepository, workshops repository.WorkshopRepository) *CatalogService {
	return &CatalogService{categories: categories, workshops: workshops}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	return s.categories.GetBySlug(ctx, slug)
}

// ListWorkshops returns active workshops matching the filters, each decorated with
// live stats and, for an authenticated viewer, their own enrollment/wishlist/review state.
// An unknown difficulty matches nothing rather than failing.
func (s *CatalogService) ListWorkshops(ctx context.Context, in ListWorkshopsInput) ([]models.Workshop, error) {
	in.Category = strings.TrimSpace(in.Category)
	in.Difficulty = strings.ToLower(strings.TrimSpace(in.Difficulty))
	in.Search = strings.TrimSpace(in.Search)
	if err := validation.Struct(ctx, in); err != nil {
		return nil, err
	}

	workshops, err := s.workshops.List(ctx, repository.WorkshopFilter{
		CategorySlug: in.Category,
		Difficulty:   models.Difficulty(in.Difficulty),
		Search:       in.Search,
	})
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, in.ViewerID, workshops); err != nil {
		return nil, err
	}
	return workshops, nil
}

// GetWorkshop returns one active workshop by slug.
func (s *CatalogService) GetWorkshop(ctx context.Context, slug string, viewerID uint) (*models.Workshop, error) {
	workshop, err := s.workshops.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	list := []models.Workshop{*workshop}
	if err := s.decorate(ctx, viewerID, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Decorate fills derived stats and viewer state on workshops loaded elsewhere,
// e.g. the ones embedded in enrollments and wishlist entries.
func (s *CatalogService) Decorate(ctx context.Context, viewerID uint, workshops ...*models.Workshop) error {
	if len(workshops) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(workshops))
	for _, w := range workshops {
		ids = append(ids, w.ID)
	}
	stats, err := s.workshops.Stats(ctx, ids)
	if err != nil {
		return err
	}
	viewer, err := s.workshops.ViewerStates(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	for _, w := range workshops {
		w.ApplyStats(stats[w.ID])
		w.ApplyViewer(viewer[w.ID])
	}
	return nil
}

func (s *CatalogService) decorate(ctx context.Context, viewerID uint, workshops []models.Workshop) error {
	ptrs := make([]*models.Workshop, len(workshops))
	for i := range workshops {
		ptrs[i] = &workshops[i]
	}
	return s.Decorate(ctx, viewerID, ptrs...)
}
