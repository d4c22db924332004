package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      entity.UserRole `json:"role"`
	BirthDate *string         `json:"birthDate,omitempty"`
	Gender    *entity.Gender  `json:"gender,omitempty"`
	Location  *string         `json:"location,omitempty"`
	Interests []string        `json:"interests"`
	CreatedAt time.Time       `json:"createdAt"`
}

func UserToResponse(user *entity.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Gender:    user.Gender,
		Location:  user.Location,
		Interests: user.Interests,
		CreatedAt: user.CreatedAt,
	}
	if resp.Interests == nil {
		resp.Interests = []string{}
	}
	if user.BirthDate != nil {
		d := user.BirthDate.Format("2006-01-02")
		resp.BirthDate = &d
	}
	return resp
}
