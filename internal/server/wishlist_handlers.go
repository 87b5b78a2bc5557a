package server

import (
	"workshophub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListWishlist handles GET /api/wishlist
// @Summary List my wishlist
// @Tags wishlist
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Wishlist
// @Router /wishlist [get]
func (s *Server) ListWishlist(c *fiber.Ctx) error {
	entries, err := s.wishlists.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// AddWishlist handles POST /api/wishlist
// @Summary Add a workshop to my wishlist
// @Tags wishlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{workshop_id=int} true "Workshop"
// @Success 201 {object} models.Wishlist
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /wishlist [post]
func (s *Server) AddWishlist(c *fiber.Ctx) error {
	var req workshopRef
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	entry, err := s.wishlists.Add(c.UserContext(), currentUserID(c), req.id())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// ToggleWishlist handles POST /api/wishlist/toggle
// @Summary Toggle wishlist membership
// @Tags wishlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{workshop=int} true "Workshop (workshop or workshop_id)"
// @Success 200 {object} models.ToggleResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /wishlist/toggle [post]
func (s *Server) ToggleWishlist(c *fiber.Ctx) error {
	var req workshopRef
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.id() == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("workshop_id required"))
	}

	result, err := s.wishlists.Toggle(c.UserContext(), currentUserID(c), req.id())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// DeleteWishlist handles DELETE /api/wishlist/:id
// @Summary Remove a wishlist entry
// @Tags wishlist
// @Security BearerAuth
// @Param id path int true "Wishlist entry ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /wishlist/{id} [delete]
func (s *Server) DeleteWishlist(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.wishlists.Remove(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
