package dto

import (
	"time"

	domainuser "autorent/internal/domain/user"
)

type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuthResponse struct {
	User      UserProfile `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

type UserCollection struct {
	Items []UserProfile `json:"items"`
}

func MapUserProfile(user *domainuser.User) UserProfile {
	if user == nil {
		return UserProfile{}
	}
	return UserProfile{
		ID:        string(user.ID),
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		CreatedAt: user.Meta.CreatedAt,
		UpdatedAt: user.Meta.UpdatedAt,
	}
}

func NewAuthResponse(user *domainuser.User, token string, expiresAt time.Time) AuthResponse {
	return AuthResponse{
		User:      MapUserProfile(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}
}

func MapUserCollection(users []*domainuser.User) UserCollection {
	items := make([]UserProfile, 0, len(users))
	for _, u := range users {
		items = append(items, MapUserProfile(u))
	}
	return UserCollection{Items: items}
}
