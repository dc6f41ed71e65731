package handler

import (
	"strings"

	"lifeline/internal/auth/models"
	dErrors "lifeline/pkg/domain-errors"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

// Validate checks presence only; password policy lives in the service.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	required := []struct{ field, value string }{
		{"username", r.Username},
		{"email", r.Email},
		{"password", r.Password},
		{"password2", r.Password2},
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
	}
	for _, f := range required {
		if f.value == "" {
			return dErrors.New(dErrors.CodeValidation, f.field+" is required").WithDetails("field", f.field)
		}
	}
	if len(r.Email) > 254 || !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "Enter a valid email address.").WithDetails("field", "email")
	}
	return nil
}

func (r *RegisterRequest) toRegistration() models.Registration {
	return models.Registration{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		Password2: r.Password2,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      r.Role,
	}
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

func (r *LoginRequest) Validate() error {
	if r == nil || r.Username == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "Must include username and password.")
	}
	return nil
}

// RefreshRequest is the body of POST /auth/token/refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

func (r *RefreshRequest) Validate() error {
	if r == nil || strings.TrimSpace(r.Refresh) == "" {
		return dErrors.New(dErrors.CodeValidation, "refresh is required").WithDetails("field", "refresh")
	}
	return nil
}

// LogoutRequest is the optional body of POST /auth/logout.
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}
