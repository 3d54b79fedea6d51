package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User authenticates by email. There is no username column.
type User struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email              string    `gorm:"column:email;type:text;not null;uniqueIndex:idx_users_email"`
	PasswordHash       string    `gorm:"column:password_hash;type:text;not null"`
	FirstName          string    `gorm:"column:first_name;type:text;not null"`
	LastName           string    `gorm:"column:last_name;type:text;not null"`
	IsActive           bool      `gorm:"column:is_active;not null"`
	EmailNotifications bool      `gorm:"column:email_notifications;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName returns "First Last" when either part is set, falling back to
// the email address so notification greetings never come out blank.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
