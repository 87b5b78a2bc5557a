package server

import (
	"workshophub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// workshopRef accepts the workshop id under either "workshop" or "workshop_id".
type workshopRef struct {
	Workshop   uint `json:"workshop"`
	WorkshopID uint `json:"workshop_id"`
}

func (r workshopRef) id() uint {
	if r.Workshop != 0 {
		return r.Workshop
	}
	return r.WorkshopID
}

// ListEnrollments handles GET /api/enrollments
// @Summary List my enrollments
// @Tags enrollments
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Enrollment
// @Router /enrollments [get]
func (s *Server) ListEnrollments(c *fiber.Ctx) error {
	enrollments, err := s.enrollments.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(enrollments)
}

// CreateEnrollment handles POST /api/enrollments
// @Summary Enroll in a workshop
// @Tags enrollments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{workshop_id=int} true "Workshop to enroll in"
// @Success 201 {object} models.Enrollment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /enrollments [post]
func (s *Server) CreateEnrollment(c *fiber.Ctx) error {
	var req workshopRef
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	enrollment, err := s.enrollments.Enroll(c.UserContext(), service.EnrollInput{
		UserID:     currentUserID(c),
		WorkshopID: req.id(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(enrollment)
}

// GetEnrollment handles GET /api/enrollments/:id
// @Summary Get one of my enrollments
// @Tags enrollments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} models.Enrollment
// @Failure 404 {object} models.ErrorResponse
// @Router /enrollments/{id} [get]
func (s *Server) GetEnrollment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	enrollment, err := s.enrollments.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(enrollment)
}

// CancelEnrollment handles POST /api/enrollments/:id/cancel
// @Summary Cancel an enrollment
// @Description Sets the status to cancelled and frees the seat. The row is kept.
// @Tags enrollments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Enrollment ID"
// @Success 200 {object} object{status=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /enrollments/{id}/cancel [post]
func (s *Server) CancelEnrollment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := s.enrollments.Cancel(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "enrollment cancelled"})
}
