package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"autorent/internal/domain/shared/meta"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrNameRequired        = errors.New("user: full name is required")
	ErrInvalidRole         = errors.New("user: invalid role")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrNotFound            = errors.New("user: not found")
)

type ID string

type Role string

const (
	RoleClient  Role = "client"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleClient:
		return RoleClient, nil
	case RoleManager:
		return RoleManager, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

type User struct {
	ID           ID
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	Deleted      bool
	Meta         meta.Meta
}

type CreateParams struct {
	ID           ID
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	CreatorID    string
	Now          time.Time
}

func New(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	name := strings.TrimSpace(params.FullName)
	if name == "" {
		return nil, ErrNameRequired
	}
	role, err := ParseRole(string(params.Role))
	if err != nil {
		return nil, err
	}
	return &User{
		ID:           ID(id),
		Email:        email,
		FullName:     name,
		PasswordHash: params.PasswordHash,
		Role:         role,
		Meta:         meta.New(params.CreatorID, params.Now),
	}, nil
}

func (u *User) UpdateEmail(email, updaterID string, now time.Time) error {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		return ErrEmailRequired
	}
	u.Email = normalized
	u.Meta = u.Meta.Touch(updaterID, now)
	return nil
}

func (u *User) UpdateFullName(name, updaterID string, now time.Time) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrNameRequired
	}
	u.FullName = trimmed
	u.Meta = u.Meta.Touch(updaterID, now)
	return nil
}

func (u *User) SetPasswordHash(hash, updaterID string, now time.Time) error {
	if strings.TrimSpace(hash) == "" {
		return ErrPasswordHashMissing
	}
	u.PasswordHash = hash
	u.Meta = u.Meta.Touch(updaterID, now)
	return nil
}

func (u *User) SoftDelete(updaterID string, now time.Time) {
	if u.Deleted {
		return
	}
	u.Deleted = true
	u.Meta = u.Meta.Touch(updaterID, now)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Filter narrows user listings. Zero values mean "any".
type Filter struct {
	Email    string
	FullName string
	Role     Role
	Page     int
	Limit    int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, u *User) error
	List(ctx context.Context, f Filter) ([]*User, error)
}
