package server

import (
	"workshophub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListCategories handles GET /api/categories
// @Summary List categories
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.catalog.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// GetCategory handles GET /api/categories/:slug
// @Summary Get category by slug
// @Tags catalog
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} models.Category
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{slug} [get]
func (s *Server) GetCategory(c *fiber.Ctx) error {
	category, err := s.catalog.GetCategory(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(category)
}

// ListWorkshops handles GET /api/workshops
// @Summary List active workshops
// @Description Filter by category slug, difficulty and title search. Authenticated
// @Description callers also get is_enrolled, is_wishlisted and user_review.
// @Tags catalog
// @Produce json
// @Param category query string false "Category slug"
// @Param difficulty query string false "beginner, intermediate or advanced"
// @Param search query string false "Case-insensitive title search"
// @Success 200 {array} models.Workshop
// @Failure 400 {object} models.ErrorResponse
// @Router /workshops [get]
func (s *Server) ListWorkshops(c *fiber.Ctx) error {
	workshops, err := s.catalog.ListWorkshops(c.UserContext(), service.ListWorkshopsInput{
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
		Search:     c.Query("search"),
		ViewerID:   s.optionalUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workshops)
}

// GetWorkshop handles GET /api/workshops/:slug
// @Summary Get workshop by slug
// @Tags catalog
// @Produce json
// @Param slug path string true "Workshop slug"
// @Success 200 {object} models.Workshop
// @Failure 404 {object} models.ErrorResponse
// @Router /workshops/{slug} [get]
func (s *Server) GetWorkshop(c *fiber.Ctx) error {
	workshop, err := s.catalog.GetWorkshop(c.UserContext(), c.Params("slug"), s.optionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(workshop)
}
