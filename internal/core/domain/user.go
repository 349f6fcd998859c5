package domain

import "time"

// User models a principal: an end user or, with IsSuperuser set, an admin.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name,omitempty"`
	VisaStatus   string    `json:"visa_status,omitempty"`
	Education    string    `json:"education,omitempty"`
	Nationality  string    `json:"nationality,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileUpdate carries the optional profile fields a user may change.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FullName    *string
	VisaStatus  *string
	Education   *string
	Nationality *string
}

// IsEmpty reports whether the update would change nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.FullName == nil && p.VisaStatus == nil && p.Education == nil && p.Nationality == nil
}
