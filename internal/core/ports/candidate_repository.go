package ports

import (
	"context"
	"time"

	"github.com/civicvote/voting-system/internal/core/domain"
)

// CandidateUpdate carries a partial candidate update. Empty fields are left
// untouched.
type CandidateUpdate struct {
	Name  string
	Party string
	Image string
}

// CandidateRepository defines persistence operations for candidates.
type CandidateRepository interface {
	Create(ctx context.Context, c *domain.Candidate) (*domain.Candidate, error)
	FindByID(ctx context.Context, id string) (*domain.Candidate, error)
	List(ctx context.Context) ([]*domain.Candidate, error)
	Update(ctx context.Context, id string, upd CandidateUpdate) (*domain.Candidate, error)
	// Delete removes the candidate and returns the removed document.
	Delete(ctx context.Context, id string) (*domain.Candidate, error)

	// AddVote increments voteCount and appends a vote entry in one update.
	AddVote(ctx context.Context, candidateID, userID string, at time.Time) error
	// Tally returns every candidate's party and vote count, highest first.
	Tally(ctx context.Context) ([]domain.Tally, error)
}
