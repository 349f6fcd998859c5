package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type registerRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	Username    string `json:"username"     validate:"required,notblank,min=3,max=50"`
	Password    string `json:"password"     validate:"required,min=8,maxbytes=72"`
	FullName    string `json:"full_name"    validate:"max=100"`
	VisaStatus  string `json:"visa_status"  validate:"max=50"`
	Education   string `json:"education"    validate:"max=100"`
	Nationality string `json:"nationality"  validate:"max=50"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	FullName    *string `json:"full_name"    validate:"omitempty,max=100"`
	VisaStatus  *string `json:"visa_status"  validate:"omitempty,max=50"`
	Education   *string `json:"education"    validate:"omitempty,max=100"`
	Nationality *string `json:"nationality"  validate:"omitempty,max=50"`
}

// --- Response types ---

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name,omitempty"`
	VisaStatus  string    `json:"visa_status,omitempty"`
	Education   string    `json:"education,omitempty"`
	Nationality string    `json:"nationality,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsVerified  bool      `json:"is_verified"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	Message     string       `json:"message"`
	User        userResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}
