package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

// CandidateService implements candidate management and vote casting.
type CandidateService struct {
	candidates ports.CandidateRepository
	users      ports.UserRepository
	images     ports.ImageStore
	cleaner    ports.ImageCleaner
	now        func() time.Time
	log        zerolog.Logger
}

func NewCandidateService(
	candidates ports.CandidateRepository,
	users ports.UserRepository,
	images ports.ImageStore,
	cleaner ports.ImageCleaner,
	log zerolog.Logger,
) *CandidateService {
	return &CandidateService{
		candidates: candidates,
		users:      users,
		images:     images,
		cleaner:    cleaner,
		now:        time.Now,
		log:        log,
	}
}

// Create stores the image and then the candidate. The image is discarded if
// the candidate cannot be stored.
func (s *CandidateService) Create(ctx context.Context, in ports.CreateCandidateInput) (*domain.Candidate, error) {
	if in.Image.Content == nil {
		return nil, domain.ErrImageRequired
	}

	filename, err := s.images.Save(ctx, in.Image.Filename, in.Image.Content)
	if err != nil {
		return nil, fmt.Errorf("save image: %w", err)
	}

	now := s.now().UTC()
	created, err := s.candidates.Create(ctx, &domain.Candidate{
		Name:      in.Name,
		Party:     in.Party,
		Image:     filename,
		Votes:     []domain.VoteRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.cleaner.Discard(filename)
		return nil, err
	}

	s.log.Info().Str("candidate_id", created.ID).Str("party", created.Party).Msg("candidate created")
	return created, nil
}

// Update applies a partial update. A replaced image file is discarded once
// the new one is referenced.
func (s *CandidateService) Update(ctx context.Context, in ports.UpdateCandidateInput) (*domain.Candidate, error) {
	current, err := s.candidates.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	upd := ports.CandidateUpdate{Name: in.Name, Party: in.Party}
	if in.Image != nil {
		filename, err := s.images.Save(ctx, in.Image.Filename, in.Image.Content)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		upd.Image = filename
	}

	updated, err := s.candidates.Update(ctx, in.ID, upd)
	if err != nil {
		if upd.Image != "" {
			s.cleaner.Discard(upd.Image)
		}
		return nil, err
	}

	if upd.Image != "" && current.Image != "" && current.Image != upd.Image {
		s.cleaner.Discard(current.Image)
	}

	s.log.Info().Str("candidate_id", updated.ID).Msg("candidate updated")
	return updated, nil
}

func (s *CandidateService) Delete(ctx context.Context, id string) error {
	removed, err := s.candidates.Delete(ctx, id)
	if err != nil {
		return err
	}
	if removed.Image != "" {
		s.cleaner.Discard(removed.Image)
	}
	s.log.Info().Str("candidate_id", id).Msg("candidate deleted")
	return nil
}

func (s *CandidateService) List(ctx context.Context) ([]*domain.Candidate, error) {
	return s.candidates.List(ctx)
}

// Vote records one vote by userID for candidateID. The user's isvoted flag is
// claimed first with a conditional update, so concurrent requests from the
// same user cannot both reach the candidate update.
func (s *CandidateService) Vote(ctx context.Context, userID, candidateID string) error {
	if _, err := s.candidates.FindByID(ctx, candidateID); err != nil {
		return err
	}

	if err := s.users.ClaimVote(ctx, userID); err != nil {
		return err
	}

	if err := s.candidates.AddVote(ctx, candidateID, userID, s.now().UTC()); err != nil {
		if relErr := s.users.ReleaseVote(ctx, userID); relErr != nil {
			s.log.Error().Err(relErr).Str("user_id", userID).Msg("failed to release vote claim")
		}
		return fmt.Errorf("record vote: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("candidate_id", candidateID).Msg("vote cast")
	return nil
}

// Tally returns party/count pairs ordered by count, highest first. Equal
// counts have no guaranteed relative order.
func (s *CandidateService) Tally(ctx context.Context) ([]domain.Tally, error) {
	return s.candidates.Tally(ctx)
}
