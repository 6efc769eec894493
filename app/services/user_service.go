package services

import (
	"context"
	"fmt"

	"github.com/crowdfork/crowdfork/app/models"
	"github.com/crowdfork/crowdfork/app/repositories"
	"github.com/crowdfork/crowdfork/pkg/apperror"
	"github.com/crowdfork/crowdfork/pkg/identity"
	"github.com/crowdfork/crowdfork/pkg/logger"
)

type SignupInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
	Tagline  string `json:"tagline"`
	Location string `json:"location"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate holds the fields of PUT /users/me. Nil fields are left as
// they are.
type ProfileUpdate struct {
	Email    *string `json:"email"     validate:"nullable,email"`
	Name     *string `json:"name"      validate:"nullable,max=100"`
	Tagline  *string `json:"tagline"   validate:"nullable,max=200"`
	Location *string `json:"location"  validate:"nullable,max=100"`
	ImageURL *string `json:"image_url" validate:"nullable,url"`
}

type UserService struct {
	users    *repositories.UserRepository
	identity identity.Provider
	now      clock
}

func NewUserService(users *repositories.UserRepository, provider identity.Provider) *UserService {
	return &UserService{users: users, identity: provider, now: utcNow}
}

// Signup registers the account with the identity provider, then stores the
// profile under the provider's uid. When the profile cannot be stored the
// account is deleted again so the email stays free. It returns the
// confirmation message.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (string, error) {
	account, err := s.identity.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		return "", err
	}
	uid := account.UserID

	user := models.User{
		ID:       uid,
		Email:    normalizeEmail(in.Email),
		Name:     in.Name,
		Tagline:  in.Tagline,
		Location: in.Location,
		JoinedAt: s.now(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		log := logger.WithCtx(ctx)
		log.Error("profile create failed after sign-up", "uid", uid, "error", err)
		if derr := s.identity.DeleteAccount(ctx, account); derr != nil {
			log.Error("orphaned account left after sign-up", "uid", uid, "error", derr)
		}
		return "", apperror.Upstream("Failed to create user profile", err)
	}

	return fmt.Sprintf("User account successfully for User %s", uid), nil
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (string, error) {
	return s.identity.SignIn(ctx, in.Email, in.Password)
}

func (s *UserService) Me(ctx context.Context, p identity.Principal) (models.User, error) {
	user, err := s.users.FindByID(ctx, p.UserID)
	return user, storeError("Failed to fetch user", err)
}

// UpdateMe merges the non-nil fields into the profile. A changed email is
// pushed to the identity provider first.
func (s *UserService) UpdateMe(ctx context.Context, p identity.Principal, in ProfileUpdate) (models.User, error) {
	current, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return models.User{}, storeError("Failed to fetch user", err)
	}

	fields := map[string]interface{}{}
	if in.Email != nil {
		if email := normalizeEmail(*in.Email); email != normalizeEmail(current.Email) {
			if err := s.identity.UpdateEmail(ctx, p, email); err != nil {
				return models.User{}, err
			}
			fields["email"] = email
		}
	}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Tagline != nil {
		fields["tagline"] = *in.Tagline
	}
	if in.Location != nil {
		fields["location"] = *in.Location
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}

	if len(fields) == 0 {
		return current, nil
	}
	if err := s.users.Update(ctx, p.UserID, fields); err != nil {
		return models.User{}, storeError("Failed to update user", err)
	}
	updated, err := s.users.FindByID(ctx, p.UserID)
	return updated, storeError("Failed to fetch user", err)
}
