// Package identity resolves the signed-in customer and their seller flag.
package identity

import (
	"context"

	"github.com/Corxo91/Proyecto-EPDMC-plantilla/internal/domain/identity"
	"github.com/google/uuid"
)

// Profile is the signed-in user with the derived profile checks
type Profile struct {
	User          *identity.User         `json:"user"`
	IsSeller      bool                   `json:"is_seller"`
	ProfileStatus identity.ProfileStatus `json:"profile_status"`
}

// Service reads user profiles
type Service struct {
	users identity.UserRepository
}

// NewService creates a new identity service
func NewService(users identity.UserRepository) *Service {
	return &Service{users: users}
}

// CurrentUser returns the profile of userID
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		User:          user,
		IsSeller:      user.IsSeller,
		ProfileStatus: user.ProfileStatus(),
	}, nil
}

// IsSeller reports whether userID may manage products
func (s *Service) IsSeller(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsSeller, nil
}

// ProfileStatus lists the profile fields userID still has to fill in
func (s *Service) ProfileStatus(ctx context.Context, userID uuid.UUID) (identity.ProfileStatus, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return identity.ProfileStatus{}, err
	}
	return user.ProfileStatus(), nil
}
