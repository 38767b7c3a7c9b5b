package ports

import (
	"context"

	"github.com/civicvote/voting-system/internal/core/domain"
)

// ProfileUpdate carries the mutable contact fields of a user. Empty fields
// are left untouched.
type ProfileUpdate struct {
	Address string
	Phone   string
	Email   string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	// Create inserts a user. A unique-index violation is reported as
	// domain.ErrDuplicate wrapped with the offending field.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByCitizenship(ctx context.Context, citizenship string) (*domain.User, error)

	ExistsByCitizenship(ctx context.Context, citizenship string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	AdminExists(ctx context.Context) (bool, error)

	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// ClaimVote atomically flips isvoted from false to true for a non-admin
	// user. It returns domain.ErrUserNotFound, domain.ErrAlreadyVoted or
	// domain.ErrAdminCannotVote when the flip does not happen.
	ClaimVote(ctx context.Context, id string) error
	// ReleaseVote undoes a ClaimVote whose vote could not be recorded.
	ReleaseVote(ctx context.Context, id string) error
}
