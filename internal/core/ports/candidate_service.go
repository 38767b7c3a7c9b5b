package ports

import (
	"context"

	"github.com/civicvote/voting-system/internal/core/domain"
)

// CreateCandidateInput carries a new candidate and its image.
type CreateCandidateInput struct {
	Name  string
	Party string
	Image ImageUpload
}

// UpdateCandidateInput carries a partial candidate update; Image is optional.
type UpdateCandidateInput struct {
	ID    string
	Name  string
	Party string
	Image *ImageUpload
}

// CandidateService defines candidate management and voting use cases.
type CandidateService interface {
	Create(ctx context.Context, in CreateCandidateInput) (*domain.Candidate, error)
	Update(ctx context.Context, in UpdateCandidateInput) (*domain.Candidate, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Candidate, error)
	Vote(ctx context.Context, userID, candidateID string) error
	Tally(ctx context.Context) ([]domain.Tally, error)
}
