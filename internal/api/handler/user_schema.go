package handler

import (
	"time"

	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

// --- Requests ---

type registerRequest struct {
	Name        string `json:"name" validate:"required"`
	Password    string `json:"password" validate:"strongpassword"`
	Address     string `json:"address" validate:"required"`
	DoB         string `json:"DoB" validate:"required,dob"`
	Citizenship string `json:"citizenship" validate:"required"`
	Phone       string `json:"phone" validate:"len=10,number"`
	Email       string `json:"email" validate:"required,email"`
	UserType    string `json:"usertype" validate:"omitempty,oneof=admin client"`
}

func (r registerRequest) toInput() ports.RegisterInput {
	return ports.RegisterInput{
		Name:        r.Name,
		Password:    r.Password,
		Address:     r.Address,
		DateOfBirth: r.DoB,
		Citizenship: r.Citizenship,
		Phone:       r.Phone,
		Email:       r.Email,
		UserType:    r.UserType,
	}
}

type loginRequest struct {
	Citizenship string `json:"citizenship" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// updateProfileRequest accepts an id for compatibility with older clients;
// it is never used, the authenticated id is.
type updateProfileRequest struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Phone   string `json:"phone" validate:"omitempty,len=10,number"`
	Email   string `json:"email" validate:"omitempty,email"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,strongpassword"`
}

// --- Responses ---

// userResponse is the public view of a user. It has no password field.
type userResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	DoB         string    `json:"DoB"`
	Citizenship string    `json:"citizenship"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	UserType    string    `json:"usertype"`
	IsVoted     bool      `json:"isvoted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:          u.ID,
		Name:        u.Name,
		Address:     u.Address,
		DoB:         u.DateOfBirth,
		Citizenship: u.Citizenship,
		Phone:       u.Phone,
		Email:       u.Email,
		UserType:    u.UserType,
		IsVoted:     u.IsVoted,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerResponse struct {
	Message  string        `json:"message"`
	Register *userResponse `json:"register"`
}

type loginResponse struct {
	Message string        `json:"message"`
	Token   string        `json:"token"`
	User    *userResponse `json:"user"`
}

type userEnvelope struct {
	Message string        `json:"message"`
	User    *userResponse `json:"user"`
}
