package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory user repository
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
	// creates counts successful Create calls.
	creates int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Citizenship == user.Citizenship {
			return nil, &domain.DuplicateFieldError{Field: "citizenship"}
		}
		if u.Phone == user.Phone {
			return nil, &domain.DuplicateFieldError{Field: "phone"}
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[c.ID] = c
	r.creates++
	return cloneUser(c), nil
}

func (r *stubUserRepo) put(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = cloneUser(u)
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByCitizenship(_ context.Context, citizenship string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Citizenship == citizenship {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) exists(match func(*domain.User) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return true
		}
	}
	return false
}

func (r *stubUserRepo) ExistsByCitizenship(_ context.Context, citizenship string) (bool, error) {
	return r.exists(func(u *domain.User) bool { return u.Citizenship == citizenship }), nil
}

func (r *stubUserRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	return r.exists(func(u *domain.User) bool { return u.Phone == phone }), nil
}

func (r *stubUserRepo) AdminExists(_ context.Context) (bool, error) {
	return r.exists(func(u *domain.User) bool { return u.UserType == domain.RoleAdmin }), nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, upd ports.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Address != "" {
		u.Address = upd.Address
	}
	if upd.Phone != "" {
		u.Phone = upd.Phone
	}
	if upd.Email != "" {
		u.Email = upd.Email
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

// ClaimVote mirrors the conditional update of the Mongo repository.
func (r *stubUserRepo) ClaimVote(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	switch {
	case !ok:
		return domain.ErrUserNotFound
	case u.IsVoted:
		return domain.ErrAlreadyVoted
	case u.IsAdmin():
		return domain.ErrAdminCannotVote
	}
	u.IsVoted = true
	return nil
}

func (r *stubUserRepo) ReleaseVote(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsVoted = false
	}
	return nil
}

// ---------------------------------------------------------------------------
// In-memory candidate repository
// ---------------------------------------------------------------------------

type stubCandidateRepo struct {
	mu         sync.Mutex
	candidates map[string]*domain.Candidate
	nextID     int
	createErr  error
	addVoteErr error
}

func newStubCandidateRepo() *stubCandidateRepo {
	return &stubCandidateRepo{candidates: make(map[string]*domain.Candidate)}
}

func cloneCandidate(c *domain.Candidate) *domain.Candidate {
	cp := *c
	cp.Votes = append([]domain.VoteRecord(nil), c.Votes...)
	return &cp
}

func (r *stubCandidateRepo) Create(_ context.Context, c *domain.Candidate) (*domain.Candidate, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	cp := cloneCandidate(c)
	cp.ID = fmt.Sprintf("cand-%d", r.nextID)
	r.candidates[cp.ID] = cp
	return cloneCandidate(cp), nil
}

func (r *stubCandidateRepo) put(c *domain.Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates[c.ID] = cloneCandidate(c)
}

func (r *stubCandidateRepo) FindByID(_ context.Context, id string) (*domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	return cloneCandidate(c), nil
}

func (r *stubCandidateRepo) List(_ context.Context) ([]*domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		out = append(out, cloneCandidate(c))
	}
	return out, nil
}

func (r *stubCandidateRepo) Update(_ context.Context, id string, upd ports.CandidateUpdate) (*domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	if upd.Name != "" {
		c.Name = upd.Name
	}
	if upd.Party != "" {
		c.Party = upd.Party
	}
	if upd.Image != "" {
		c.Image = upd.Image
	}
	return cloneCandidate(c), nil
}

func (r *stubCandidateRepo) Delete(_ context.Context, id string) (*domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}
	delete(r.candidates, id)
	return c, nil
}

func (r *stubCandidateRepo) AddVote(_ context.Context, candidateID, userID string, at time.Time) error {
	if r.addVoteErr != nil {
		return r.addVoteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[candidateID]
	if !ok {
		return domain.ErrCandidateNotFound
	}
	c.VoteCount++
	c.Votes = append(c.Votes, domain.VoteRecord{UserID: userID, VotedAt: at})
	return nil
}

func (r *stubCandidateRepo) Tally(_ context.Context) ([]domain.Tally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Tally, 0, len(r.candidates))
	for _, c := range r.candidates {
		out = append(out, domain.Tally{Party: c.Party, Count: c.VoteCount})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// ---------------------------------------------------------------------------
// Image store / cleaner / token stubs
// ---------------------------------------------------------------------------

type stubImageStore struct {
	saved   []string
	saveErr error
}

func (s *stubImageStore) Save(_ context.Context, originalName string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	name := fmt.Sprintf("stored-%d-%s", len(s.saved)+1, originalName)
	s.saved = append(s.saved, name)
	return name, nil
}

func (s *stubImageStore) Remove(_ context.Context, _ string) error { return nil }

type recordingCleaner struct {
	discarded []string
}

func (c *recordingCleaner) Discard(filename string) {
	c.discarded = append(c.discarded, filename)
}

type stubTokens struct {
	err error
}

func (s stubTokens) Issue(userID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + userID, nil
}

var errBoom = errors.New("boom")
