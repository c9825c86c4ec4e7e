package user

import (
	"time"

	"github.com/ferdiebergado/storyboard/internal/model"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	model.Model
	Email        string
	PasswordHash string
	Role         string
	VerifiedAt   *time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
