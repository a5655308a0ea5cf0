package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/minhlong-dev/industro-backend/pkg/db/models"
	"github.com/minhlong-dev/industro-backend/pkg/enums"
)

// Profile is the user shape returned by the API. The password hash
// never leaves this package.
type Profile struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	FullName    string         `json:"full_name"`
	Phone       string         `json:"phone,omitempty"`
	Role        enums.UserRole `json:"role"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ToProfile maps a stored user onto its API shape.
func ToProfile(user *models.User) Profile {
	var phone string
	if user.Phone != nil {
		phone = *user.Phone
	}
	return Profile{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Phone:       phone,
		Role:        user.Role,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
