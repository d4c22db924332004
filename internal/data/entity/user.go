package entity

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type User struct {
	Base
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password"`
	Role         UserRole   `db:"role"`
	BirthDate    *time.Time `db:"birth_date"`
	Gender       *Gender    `db:"gender"`
	Location     *string    `db:"location"`
	Interests    []string   `db:"interests"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
