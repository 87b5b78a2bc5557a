package service

import (
	"context"
	"strings"

	"workshophub/internal/models"
	"workshophub/internal/repository"
	"workshophub/internal/validation"
)

type ProfileService struct {
	users       repository.UserRepository
	profiles    repository.ProfileRepository
	enrollments *EnrollmentService
	wishlists   *WishlistService

	enrollmentRepo repository.EnrollmentRepository
	wishlistRepo   repository.WishlistRepository
}

// ProfileView is the caller's own profile page.
type ProfileView struct {
	User          *models.User        `json:"user"`
	Profile       *models.UserProfile `json:"profile"`
	Enrollments   []models.Enrollment `json:"enrollments"`
	Wishlist      []models.Wishlist   `json:"wishlist"`
	EnrolledCount int64               `json:"total_enrollments"`
	WishlistCount int64               `json:"wishlist_count"`
}

type UpdateProfileInput struct {
	UserID uint    `json:"-"`
	Bio    *string `json:"bio" validate:"omitempty,max=2000"`
	Phone  *string `json:"phone" validate:"omitempty,max=20"`
	Avatar *string `json:"avatar" validate:"omitempty,url,max=500"`
}

func NewProfileService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	enrollmentRepo repository.EnrollmentRepository,
	wishlistRepo repository.WishlistRepository,
	enrollments *EnrollmentService,
	wishlists *WishlistService,
) *ProfileService {
	return &ProfileService{
		users:       users,
		profiles:    profiles,
		enrollments: enrollments,
		wishlists:   wishlists,

		enrollmentRepo: enrollmentRepo,
		wishlistRepo:   wishlistRepo,
	}
}

// GetProfile returns the user with profile, active enrollments and wishlist.
func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	wishlist, err := s.wishlists.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	enrolledCount, err := s.enrollmentRepo.CountByUser(ctx, userID, models.EnrollmentStatusEnrolled)
	if err != nil {
		return nil, err
	}
	wishlistCount, err := s.wishlistRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileView{
		User:          user,
		Profile:       profile,
		Enrollments:   enrollments,
		Wishlist:      wishlist,
		EnrolledCount: enrolledCount,
		WishlistCount: wishlistCount,
	}, nil
}

// UpdateProfile changes only the fields present in the input.
func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.UserProfile, error) {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	in.Bio, in.Phone, in.Avatar = trim(in.Bio), trim(in.Phone), trim(in.Avatar)
	if err := validation.Struct(ctx, in); err != nil {
		return nil, err
	}
	return s.profiles.Update(ctx, in.UserID, repository.ProfileUpdate{
		Bio:    in.Bio,
		Phone:  in.Phone,
		Avatar: in.Avatar,
	})
}
