package request

type RegisterRequest struct {
	Name      string   `json:"name" validate:"required,min=2,max=100"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=6,max=72"`
	BirthDate string   `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Gender    string   `json:"gender" validate:"omitempty,oneof=male female other"`
	Location  string   `json:"location" validate:"omitempty,max=100"`
	Interests []string `json:"interests" validate:"omitempty,max=20,dive,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ClientInfo is recorded on the session row.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}
