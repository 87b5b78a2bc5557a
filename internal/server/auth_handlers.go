package server

import (
	"time"

	"workshophub/internal/middleware"
	"workshophub/internal/models"
	"workshophub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired returns the authentication middleware. It accepts a Bearer session
// token, rejects revoked tokens and stores the user and token claims in locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := middleware.BearerToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if claims.JTI != "" {
			revoked, err := s.revocations.IsRevoked(c.UserContext(), claims.JTI)
			if err != nil {
				return respondError(c, err)
			}
			if revoked {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("userID", claims.UserID)
		c.Locals("claims", claims)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), claims.UserID))
		return c.Next()
	}
}

// optionalUserID extracts the caller from the Authorization header without enforcing it.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	token := middleware.BearerToken(c)
	if token == "" {
		return 0
	}
	claims, err := middleware.ParseToken(s.config.JWTSecret, token)
	if err != nil {
		return 0
	}
	if claims.JTI != "" {
		if revoked, err := s.revocations.IsRevoked(c.UserContext(), claims.JTI); err != nil || revoked {
			return 0
		}
	}
	return claims.UserID
}

func (s *Server) issueToken(user *models.User) (string, error) {
	token, _, err := middleware.IssueToken(s.config.JWTSecret,
		time.Duration(s.config.JWTTTLHours)*time.Hour, user.ID, user.Username)
	return token, err
}

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an account and its empty profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration request"
// @Success 201 {object} object{token=string,user=models.User,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.auth.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":   token,
		"user":    user,
		"message": "Registration successful",
	})
}

// Login handles POST /api/auth/login
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login credentials"
// @Success 200 {object} object{token=string,user=models.User,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.auth.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token":   token,
		"user":    user,
		"message": "Login successful",
	})
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the session token used for this request
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*middleware.SessionClaims)
	if !ok || claims.JTI == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Something went wrong"))
	}

	if err := s.revocations.Revoke(c.UserContext(), claims.JTI, claims.UserID, claims.ExpiresAt); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

// GetProfile handles GET /api/auth/profile
// @Summary Current user profile
// @Description User, profile, active enrollments and wishlist of the caller
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.ProfileView
// @Router /auth/profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	view, err := s.profiles.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(view)
}

// UpdateProfile handles PUT /api/auth/profile
// @Summary Update profile
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileInput true "Profile fields"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)

	profile, err := s.profiles.UpdateProfile(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// RequestPasswordReset handles POST /api/auth/request-password-reset
// @Summary Request a password reset
// @Description Verify username and email and issue a single-use reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RequestResetInput true "Account identity"
// @Success 200 {object} service.ResetRequestResult
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/request-password-reset [post]
func (s *Server) RequestPasswordReset(c *fiber.Ctx) error {
	var req service.RequestResetInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.auth.RequestPasswordReset(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// ResetPassword handles POST /api/auth/reset-password
// @Summary Reset password
// @Description Redeem a reset token and set a new password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.ResetPasswordInput true "Token and new password"
// @Success 200 {object} object{message=string,username=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/reset-password [post]
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req service.ResetPasswordInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.auth.ResetPassword(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Password reset successful! You can now login with your new password.",
		"username": user.Username,
	})
}
