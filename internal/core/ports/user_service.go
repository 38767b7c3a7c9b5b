package ports

import (
	"context"

	"github.com/civicvote/voting-system/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name        string
	Password    string
	Address     string
	DateOfBirth string
	Citizenship string
	Phone       string
	Email       string
	UserType    string
}

// UserService defines user account use cases.
type UserService interface {
	// CheckRegistration runs the lookups that guard uniqueness and returns
	// a *domain.ValidationError listing every conflict, or nil.
	CheckRegistration(ctx context.Context, in RegisterInput) error
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, citizenship, password string) (string, *domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) error
}
