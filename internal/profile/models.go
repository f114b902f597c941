package profile

import (
	"context"

	"movitex/internal/users"
)

// Profile is the autofill view of an authenticated user.
type Profile struct {
	UserID         string `json:"userId"`
	DocumentNumber string `json:"documentNumber"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	BirthDate      string `json:"birthDate"`
	Gender         string `json:"gender"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

func FromUser(u *users.User) *Profile {
	return &Profile{
		UserID:         u.ID.String(),
		DocumentNumber: u.DocumentNumber,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		BirthDate:      u.BirthDateString(),
		Gender:         u.Gender,
		Email:          u.Email,
		Phone:          u.Phone,
	}
}

type ctxKey struct{}

// WithUserID marks the request as authenticated.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
