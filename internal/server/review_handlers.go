package server

import (
	"workshophub/internal/models"
	"workshophub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListReviews handles GET /api/reviews
// @Summary List reviews
// @Description With ?workshop=<id> returns that workshop's reviews, otherwise the caller's own.
// @Tags reviews
// @Security BearerAuth
// @Produce json
// @Param workshop query int false "Workshop ID"
// @Success 200 {array} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Router /reviews [get]
func (s *Server) ListReviews(c *fiber.Ctx) error {
	var workshopID uint
	if raw := c.Query("workshop"); raw != "" {
		id := c.QueryInt("workshop", 0)
		if id <= 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid workshop ID"))
		}
		workshopID = uint(id)
	}

	reviews, err := s.reviews.ListReviews(c.UserContext(), currentUserID(c), workshopID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reviews)
}

// CreateReview handles POST /api/reviews
// @Summary Review a workshop
// @Tags reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.CreateReviewInput true "Review"
// @Success 201 {object} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /reviews [post]
func (s *Server) CreateReview(c *fiber.Ctx) error {
	var req service.CreateReviewInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)

	review, err := s.reviews.CreateReview(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetReview handles GET /api/reviews/:id
// @Summary Get one of my reviews
// @Tags reviews
// @Security BearerAuth
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} models.Review
// @Failure 404 {object} models.ErrorResponse
// @Router /reviews/{id} [get]
func (s *Server) GetReview(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	review, err := s.reviews.GetReview(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(review)
}

// UpdateReview handles PUT/PATCH /api/reviews/:id
// @Summary Update one of my reviews
// @Tags reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param request body service.UpdateReviewInput true "Rating and comment"
// @Success 200 {object} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reviews/{id} [put]
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateReviewInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)
	req.ReviewID = id

	review, err := s.reviews.UpdateReview(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(review)
}

// DeleteReview handles DELETE /api/reviews/:id
// @Summary Delete one of my reviews
// @Tags reviews
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /reviews/{id} [delete]
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.reviews.DeleteReview(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
