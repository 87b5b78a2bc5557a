package server

import "github.com/gofiber/fiber/v2"

type featureFlagsResponse struct {
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
}

// GetFeatureFlags reports the configured flags and how they resolve for the caller,
// e.g. whether a reset request will echo the token or seat updates are pushed.
// @Summary Feature flags
// @Tags system
// @Security BearerAuth
// @Produce json
// @Success 200 {object} featureFlagsResponse
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	resp := featureFlagsResponse{
		Raw:       map[string]string{},
		Evaluated: map[string]bool{},
	}
	if s.featureFlags != nil {
		resp.Raw = s.featureFlags.Raw()
		resp.Evaluated = s.featureFlags.Snapshot(currentUserID(c))
	}
	return c.JSON(resp)
}
