package handler

import (
	"lifeline/internal/auth/models"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type AuthResponse struct {
	User   UserResponse     `json:"user"`
	Tokens models.TokenPair `json:"tokens"`
}

type RefreshResponse struct {
	Access string `json:"access"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
	}
}

func toAuthResponse(result *models.AuthResult) AuthResponse {
	return AuthResponse{User: ToUserResponse(result.User), Tokens: result.Tokens}
}
