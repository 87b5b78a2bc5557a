package service

import (
	"context"

	"workshophub/internal/models"
	"workshophub/internal/observability"
	"workshophub/internal/repository"
)

type WishlistService struct {
	wishlists repository.WishlistRepository
	catalog   *CatalogService
}

func NewWishlistService(wishlists repository.WishlistRepository, catalog *CatalogService) *WishlistService {
	return &WishlistService{wishlists: wishlists, catalog: catalog}
}

// Toggle flips the wishlist membership of a workshop for the user.
func (s *WishlistService) Toggle(ctx context.Context, userID, workshopID uint) (models.ToggleResult, error) {
	if workshopID == 0 {
		return models.ToggleResult{}, models.NewValidationError("workshop is required")
	}
	result, err := s.wishlists.Toggle(ctx, userID, workshopID)
	if err != nil {
		return models.ToggleResult{}, err
	}
	observability.WishlistToggles.WithLabelValues(string(result.Action)).Inc()
	return result, nil
}

func (s *WishlistService) Add(ctx context.Context, userID, workshopID uint) (*models.Wishlist, error) {
	if workshopID == 0 {
		return nil, models.NewValidationError("workshop is required")
	}
	entry, err := s.wishlists.Add(ctx, userID, workshopID)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, userID, entry.ID)
}

func (s *WishlistService) Remove(ctx context.Context, userID, wishlistID uint) error {
	return s.wishlists.Remove(ctx, userID, wishlistID)
}

func (s *WishlistService) List(ctx context.Context, userID uint) ([]models.Wishlist, error) {
	entries, err := s.wishlists.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, userID, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *WishlistService) get(ctx context.Context, userID, wishlistID uint) (*models.Wishlist, error) {
	entry, err := s.wishlists.GetForUser(ctx, userID, wishlistID)
	if err != nil {
		return nil, err
	}
	list := []models.Wishlist{*entry}
	if err := s.decorate(ctx, userID, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *WishlistService) decorate(ctx context.Context, userID uint, entries []models.Wishlist) error {
	if s.catalog == nil {
		return nil
	}
	workshops := make([]*models.Workshop, 0, len(entries))
	for i := range entries {
		if entries[i].Workshop != nil {
			workshops = append(workshops, entries[i].Workshop)
		}
	}
	return s.catalog.Decorate(ctx, userID, workshops...)
}
