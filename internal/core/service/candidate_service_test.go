package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

type candidateFixture struct {
	svc        *CandidateService
	candidates *stubCandidateRepo
	users      *stubUserRepo
	images     *stubImageStore
	cleaner    *recordingCleaner
}

func newCandidateFixture() *candidateFixture {
	f := &candidateFixture{
		candidates: newStubCandidateRepo(),
		users:      newStubUserRepo(),
		images:     &stubImageStore{},
		cleaner:    &recordingCleaner{},
	}
	f.svc = NewCandidateService(f.candidates, f.users, f.images, f.cleaner, discardLogger)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func pngUpload(name string) ports.ImageUpload {
	return ports.ImageUpload{Filename: name, Content: strings.NewReader("\x89PNG\r\n\x1a\nrest")}
}

func TestCandidateService_Create(t *testing.T) {
	f := newCandidateFixture()

	c, err := f.svc.Create(context.Background(), ports.CreateCandidateInput{
		Name: "Ram", Party: "Green", Image: pngUpload("ram.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "stored-1-ram.png", c.Image)
	assert.Equal(t, 0, c.VoteCount)
	assert.Empty(t, c.Votes)
	assert.Empty(t, f.cleaner.discarded)
}

func TestCandidateService_Create_RequiresImage(t *testing.T) {
	f := newCandidateFixture()

	_, err := f.svc.Create(context.Background(), ports.CreateCandidateInput{Name: "Ram", Party: "Green"})
	assert.ErrorIs(t, err, domain.ErrImageRequired)
	assert.Empty(t, f.images.saved)
}

func TestCandidateService_Create_DiscardsImageOnStoreFailure(t *testing.T) {
	f := newCandidateFixture()
	f.candidates.createErr = errBoom

	_, err := f.svc.Create(context.Background(), ports.CreateCandidateInput{
		Name: "Ram", Party: "Green", Image: pngUpload("ram.png"),
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"stored-1-ram.png"}, f.cleaner.discarded)
}

func TestCandidateService_Update(t *testing.T) {
	f := newCandidateFixture()
	f.candidates.put(&domain.Candidate{ID: "c1", Name: "Ram", Party: "Green", Image: "old.png"})

	t.Run("partial fields keep stored values", func(t *testing.T) {
		c, err := f.svc.Update(context.Background(), ports.UpdateCandidateInput{ID: "c1", Party: "Blue"})
		require.NoError(t, err)
		assert.Equal(t, "Ram", c.Name)
		assert.Equal(t, "Blue", c.Party)
		assert.Equal(t, "old.png", c.Image)
		assert.Empty(t, f.cleaner.discarded)
	})

	t.Run("new image discards the old file", func(t *testing.T) {
		img := pngUpload("new.png")
		c, err := f.svc.Update(context.Background(), ports.UpdateCandidateInput{ID: "c1", Image: &img})
		require.NoError(t, err)
		assert.Equal(t, "stored-1-new.png", c.Image)
		assert.Equal(t, []string{"old.png"}, f.cleaner.discarded)
	})

	t.Run("missing candidate", func(t *testing.T) {
		_, err := f.svc.Update(context.Background(), ports.UpdateCandidateInput{ID: "nope", Name: "x"})
		assert.ErrorIs(t, err, domain.ErrCandidateNotFound)
	})
}

func TestCandidateService_Delete(t *testing.T) {
	f := newCandidateFixture()
	f.candidates.put(&domain.Candidate{ID: "c1", Image: "c1.png"})

	require.NoError(t, f.svc.Delete(context.Background(), "c1"))
	assert.Equal(t, []string{"c1.png"}, f.cleaner.discarded)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), "c1"), domain.ErrCandidateNotFound)
}

func TestCandidateService_Vote_Success(t *testing.T) {
	f := newCandidateFixture()
	f.candidates.put(&domain.Candidate{ID: "c1", Party: "Green"})
	f.users.put(&domain.User{ID: "u1", UserType: domain.RoleClient})

	require.NoError(t, f.svc.Vote(context.Background(), "u1", "c1"))

	c, _ := f.candidates.FindByID(context.Background(), "c1")
	assert.Equal(t, 1, c.VoteCount)
	require.Len(t, c.Votes, 1)
	assert.Equal(t, "u1", c.Votes[0].UserID)
	assert.Equal(t, fixedNow, c.Votes[0].VotedAt)

	u, _ := f.users.FindByID(context.Background(), "u1")
	assert.True(t, u.IsVoted)

	// Second attempt by the same user is rejected without touching the tally.
	assert.ErrorIs(t, f.svc.Vote(context.Background(), "u1", "c1"), domain.ErrAlreadyVoted)
	c, _ = f.candidates.FindByID(context.Background(), "c1")
	assert.Equal(t, 1, c.VoteCount)
	assert.Len(t, c.Votes, 1)
}

func TestCandidateService_Vote_Rejections(t *testing.T) {
	f := newCandidateFixture()
	f.candidates.put(&domain.Candidate{ID: "c1"})
	f.users.put(&domain.User{ID: "voted", UserType: domain.RoleClient, IsVoted: true})
	f.users.put(&domain.User{ID: "admin", UserType: domain.RoleAdmin})

	cases := []struct {
		name       string
		user, cand string
		wantErr    error
	}{
		{"already voted", "voted", "c1", domain.ErrAlreadyVoted},
		{"admin", "admin", "c1", domain.ErrAdminCannotVote},
		{"unknown user", "ghost", "c1", domain.ErrUserNotFound},
		{"unknown candidate", "voted", "nope", domain.ErrCandidateNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, f.svc.Vote(context.Background(), tc.user, tc.cand), tc.wantErr)
		})
	}

	c, _ := f.candidates.FindByID(context.Background(), "c1")
	assert.Equal(t, 0, c.VoteCount)
	assert.Empty(t, c.Votes)

	admin, _ := f.users.FindByID(context.Background(), "admin")
	assert.False(t, admin.IsVoted)
}

func TestCandidateService_Vote_ReleasesClaimWhenRecordFails(t *testing.T) {
	f := newCandidateFixture()
	f.candidates.put(&domain.Candidate{ID: "c1"})
	f.users.put(&domain.User{ID: "u1", UserType: domain.RoleClient})
	f.candidates.addVoteErr = errBoom

	assert.ErrorIs(t, f.svc.Vote(context.Background(), "u1", "c1"), errBoom)

	u, _ := f.users.FindByID(context.Background(), "u1")
	assert.False(t, u.IsVoted, "claim must be released so the user can retry")
}

func TestCandidateService_Vote_ConcurrentDoubleSubmit(t *testing.T) {
	f := newCandidateFixture()
	f.candidates.put(&domain.Candidate{ID: "c1"})
	f.users.put(&domain.User{ID: "u1", UserType: domain.RoleClient})

	const attempts = 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.svc.Vote(context.Background(), "u1", "c1")
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
	}
	assert.Equal(t, 1, succeeded)

	c, _ := f.candidates.FindByID(context.Background(), "c1")
	assert.Equal(t, 1, c.VoteCount)
	assert.Len(t, c.Votes, 1)
}

func TestCandidateService_Tally(t *testing.T) {
	f := newCandidateFixture()
	f.candidates.put(&domain.Candidate{ID: "a", Party: "A", VoteCount: 2})
	f.candidates.put(&domain.Candidate{ID: "b", Party: "B", VoteCount: 7})
	f.candidates.put(&domain.Candidate{ID: "c", Party: "C", VoteCount: 4})

	tally, err := f.svc.Tally(context.Background())
	require.NoError(t, err)
	require.Len(t, tally, 3)
	for i := 1; i < len(tally); i++ {
		assert.GreaterOrEqual(t, tally[i-1].Count, tally[i].Count)
	}
	assert.Equal(t, domain.Tally{Party: "B", Count: 7}, tally[0])
}
