package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/wghub/wg-backend/internal/auth"
	"github.com/wghub/wg-backend/internal/domain"
	"github.com/wghub/wg-backend/internal/policy"
	"github.com/wghub/wg-backend/internal/repository"
)

// UserResponse is the profile representation.
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	HomeWGID  *uint  `json:"home_wg_id"`
	CreatedAt string `json:"created_at"`
}

// UpdateProfileRequest carries optional profile changes. Pointer
// fields distinguish "not provided" from a zero value; HomeWGID with
// an explicit 0 clears the preference.
type UpdateProfileRequest struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	NewPassword *string `json:"new_password"`
	HomeWGID    *uint   `json:"home_wg_id"`
}

// UpdateProfileResponse returns the updated profile together with a
// re-issued token carrying the new identity claims.
type UpdateProfileResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// UserService manages the authenticated user's own account and their
// self-service group membership.
type UserService interface {
	Get(ctx context.Context, userID uint) (*UserResponse, error)
	Update(ctx context.Context, userID uint, req UpdateProfileRequest) (*UpdateProfileResponse, error)
	Delete(ctx context.Context, userID uint) error
	JoinWG(ctx context.Context, userID, wgID uint) error
	LeaveWG(ctx context.Context, userID, wgID uint) error
}

type userService struct {
	users  repository.UserRepository
	groups repository.GroupRepository
	jwt    *auth.JWTManager
}

// NewUserService creates the user service.
func NewUserService(users repository.UserRepository, groups repository.GroupRepository, jwt *auth.JWTManager) UserService {
	return &userService{users: users, groups: groups, jwt: jwt}
}

func newUserResponse(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		HomeWGID:  user.HomeWGID,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *userService) Get(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return newUserResponse(user), nil
}

// Update applies the provided profile changes. Uniqueness is
// re-checked only for fields that actually change; a home WG must be
// one the user belongs to.
func (s *userService) Update(ctx context.Context, userID uint, req UpdateProfileRequest) (*UpdateProfileResponse, error) {
	if req.Username == nil && req.Email == nil && req.NewPassword == nil && req.HomeWGID == nil {
		return nil, fmt.Errorf("%w: no data provided for update", ErrValidation)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		if *req.Username == "" {
			return nil, fmt.Errorf("%w: username must not be empty", ErrValidation)
		}
		if _, err := s.users.FindByUsername(ctx, *req.Username); err == nil {
			return nil, fmt.Errorf("%w: username already exists", ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Username = *req.Username
	}

	if req.Email != nil && *req.Email != user.Email {
		if *req.Email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", ErrValidation)
		}
		if _, err := s.users.FindByEmail(ctx, *req.Email); err == nil {
			return nil, fmt.Errorf("%w: email already exists", ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = *req.Email
	}

	if req.NewPassword != nil {
		if err := auth.ValidatePassword(*req.NewPassword); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		digest, err := auth.HashPassword(*req.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = digest
	}

	if req.HomeWGID != nil {
		if *req.HomeWGID == 0 {
			user.HomeWGID = nil
		} else {
			wg, err := s.groups.FindByID(ctx, *req.HomeWGID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("%w: wg", ErrNotFound)
				}
				return nil, err
			}
			if !policy.IsMember(wg, userID) {
				return nil, fmt.Errorf("%w: home wg requires membership", ErrForbidden)
			}
			user.HomeWGID = req.HomeWGID
		}
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("profile updated", "user_id", user.ID)
	return &UpdateProfileResponse{User: *newUserResponse(user), Token: token}, nil
}

// Delete removes the account. An account still holding creator status
// of any WG must transfer it first.
func (s *userService) Delete(ctx context.Context, userID uint) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return err
	}

	created, err := s.users.CountCreatedWGs(ctx, userID)
	if err != nil {
		return err
	}
	if created > 0 {
		return fmt.Errorf("%w: transfer creator status of your WGs first", ErrConflict)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	slog.Info("user deleted", "user_id", userID)
	return nil
}

// JoinWG adds the user to a public WG.
func (s *userService) JoinWG(ctx context.Context, userID, wgID uint) error {
	wg, err := s.groups.FindByID(ctx, wgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: wg", ErrNotFound)
		}
		return err
	}
	if policy.IsMember(wg, userID) {
		return fmt.Errorf("%w: already a member of this WG", ErrConflict)
	}
	if !wg.IsPublic {
		return fmt.Errorf("%w: this WG is private and requires an invitation", ErrConflict)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.groups.AddMember(ctx, wg, user); err != nil {
		return fmt.Errorf("failed to join WG: %w", err)
	}
	slog.Info("user joined wg", "user_id", userID, "wg_id", wgID)
	return nil
}

// LeaveWG removes the user from a WG. The creator cannot leave;
// leaving strips admin status and clears a home preference pointing at
// this WG.
func (s *userService) LeaveWG(ctx context.Context, userID, wgID uint) error {
	wg, err := s.groups.FindByID(ctx, wgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: wg", ErrNotFound)
		}
		return err
	}
	if !policy.IsMember(wg, userID) {
		return fmt.Errorf("%w: not a member of this WG", ErrForbidden)
	}
	if wg.CreatorID == userID {
		return fmt.Errorf("%w: creator cannot leave, transfer creator status first", ErrForbidden)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.groups.RemoveMember(ctx, wg, user); err != nil {
		return fmt.Errorf("failed to leave WG: %w", err)
	}
	slog.Info("user left wg", "user_id", userID, "wg_id", wgID)
	return nil
}
