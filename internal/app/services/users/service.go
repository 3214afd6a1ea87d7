package users

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"autorent/internal/domain/auth"
	"autorent/internal/domain/user"
)

// PasswordHasher mirrors the auth service's hashing contract so admins can
// reset passwords through user management.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Service is the admin user-management surface: list, inspect, update and
// soft-delete accounts.
type Service struct {
	Users     user.Repository
	Passwords PasswordHasher
	Sessions  auth.SessionStore
	Logger    *slog.Logger
	Now       func() time.Time
}

type UpdateParams struct {
	Email    *string
	FullName *string
	Password *string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) Get(ctx context.Context, id user.ID) (*user.User, error) {
	if s.Users == nil {
		return nil, errors.New("users: repository required")
	}
	return s.Users.ByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f user.Filter) ([]*user.User, error) {
	if s.Users == nil {
		return nil, errors.New("users: repository required")
	}
	return s.Users.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, updaterID string, id user.ID, params UpdateParams) (*user.User, error) {
	if s.Users == nil {
		return nil, errors.New("users: repository required")
	}
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if params.Email != nil {
		normalized := user.NormalizeEmail(*params.Email)
		if existing, err := s.Users.ByEmail(ctx, normalized); err == nil && existing.ID != u.ID {
			return nil, user.ErrEmailAlreadyUsed
		} else if err != nil && !errors.Is(err, user.ErrNotFound) {
			return nil, err
		}
		if err := u.UpdateEmail(normalized, updaterID, now); err != nil {
			return nil, err
		}
	}
	if params.FullName != nil {
		if err := u.UpdateFullName(*params.FullName, updaterID, now); err != nil {
			return nil, err
		}
	}
	if params.Password != nil {
		if s.Passwords == nil {
			return nil, errors.New("users: password hasher required")
		}
		hash, err := s.Passwords.Hash(*params.Password)
		if err != nil {
			return nil, err
		}
		if err := u.SetPasswordHash(hash, updaterID, now); err != nil {
			return nil, err
		}
	}
	if err := s.Users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, updaterID string, id user.ID) error {
	if s.Users == nil {
		return errors.New("users: repository required")
	}
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return err
	}
	u.SoftDelete(updaterID, s.now())
	if err := s.Users.Save(ctx, u); err != nil {
		return err
	}
	if s.Sessions != nil {
		if err := s.Sessions.DeleteByUser(ctx, u.ID); err != nil && s.Logger != nil {
			s.Logger.Warn("session revocation failed", "user_id", u.ID, "error", err)
		}
	}
	if s.Logger != nil {
		s.Logger.Info("user deleted", "user_id", u.ID, "by", updaterID)
	}
	return nil
}
