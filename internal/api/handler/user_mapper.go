package handler

import (
	"github.com/sunflower/sunflower-api/internal/core/domain"
	"github.com/sunflower/sunflower-api/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		FullName:    req.FullName,
		VisaStatus:  req.VisaStatus,
		Education:   req.Education,
		Nationality: req.Nationality,
	}
}

func toProfileUpdate(req updateProfileRequest) domain.ProfileUpdate {
	return domain.ProfileUpdate{
		FullName:    req.FullName,
		VisaStatus:  req.VisaStatus,
		Education:   req.Education,
		Nationality: req.Nationality,
	}
}

// --- Service result → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName,
		VisaStatus:  u.VisaStatus,
		Education:   u.Education,
		Nationality: u.Nationality,
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt.UTC(),
	}
}

func toLoginResponse(r *ports.LoginResult) loginResponse {
	return loginResponse{
		AccessToken: r.AccessToken,
		TokenType:   r.TokenType,
		ExpiresIn:   int(r.ExpiresIn.Seconds()),
		Message:     r.Message,
		User:        toUserResponse(r.User),
	}
}
