package users

import (
	"time"

	"github.com/google/uuid"
)

// User is the account + profile row owned by the auth subsystem.
// This service only reads it.
type User struct {
	ID             uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	FirstName      string     `json:"first_name" gorm:"not null"`
	LastName       string     `json:"last_name" gorm:"not null"`
	Password       string     `json:"-" gorm:"not null"` // hide in json
	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	Phone          string     `json:"phone" gorm:"type:varchar(20)"`
	DocumentNumber string     `json:"document_number" gorm:"type:varchar(8);index"`
	BirthDate      *time.Time `json:"birth_date,omitempty" gorm:"type:date"`
	Gender         string     `json:"gender" gorm:"type:varchar(10)"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName sets the table name for User
func (User) TableName() string {
	return "users"
}

// BirthDateString renders the birth date the way passenger forms carry it
func (u *User) BirthDateString() string {
	if u.BirthDate == nil {
		return ""
	}
	return u.BirthDate.Format("2006-01-02")
}
