package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/civicvote/voting-system/internal/api/middleware"
	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

type stubUserService struct {
	checkFn          func(ctx context.Context, in ports.RegisterInput) error
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn          func(ctx context.Context, citizenship, password string) (string, *domain.User, error)
	getFn            func(ctx context.Context, id string) (*domain.User, error)
	updateProfileFn  func(ctx context.Context, id string, upd ports.ProfileUpdate) (*domain.User, error)
	updatePasswordFn func(ctx context.Context, id, oldPassword, newPassword string) error
}

func (s *stubUserService) CheckRegistration(ctx context.Context, in ports.RegisterInput) error {
	if s.checkFn == nil {
		return nil
	}
	return s.checkFn(ctx, in)
}

func (s *stubUserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubUserService) Login(ctx context.Context, citizenship, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, citizenship, password)
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, id string, upd ports.ProfileUpdate) (*domain.User, error) {
	return s.updateProfileFn(ctx, id, upd)
}

func (s *stubUserService) UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	return s.updatePasswordFn(ctx, id, oldPassword, newPassword)
}

type stubCandidateService struct {
	createFn func(ctx context.Context, in ports.CreateCandidateInput) (*domain.Candidate, error)
	updateFn func(ctx context.Context, in ports.UpdateCandidateInput) (*domain.Candidate, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context) ([]*domain.Candidate, error)
	voteFn   func(ctx context.Context, userID, candidateID string) error
	tallyFn  func(ctx context.Context) ([]domain.Tally, error)
}

func (s *stubCandidateService) Create(ctx context.Context, in ports.CreateCandidateInput) (*domain.Candidate, error) {
	return s.createFn(ctx, in)
}

func (s *stubCandidateService) Update(ctx context.Context, in ports.UpdateCandidateInput) (*domain.Candidate, error) {
	return s.updateFn(ctx, in)
}

func (s *stubCandidateService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubCandidateService) List(ctx context.Context) ([]*domain.Candidate, error) {
	return s.listFn(ctx)
}

func (s *stubCandidateService) Vote(ctx context.Context, userID, candidateID string) error {
	return s.voteFn(ctx, userID, candidateID)
}

func (s *stubCandidateService) Tally(ctx context.Context) ([]domain.Tally, error) {
	return s.tallyFn(ctx)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// authed marks the context as if the Auth middleware had run.
func authed(c echo.Context, userID string) echo.Context {
	c.Set(middleware.ContextUserID, userID)
	return c
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func fieldNames(t *testing.T, resp map[string]any) []string {
	t.Helper()
	raw, ok := resp["errors"].([]any)
	if !ok {
		t.Fatalf("expected errors array, got %+v", resp)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		out = append(out, item.(map[string]any)["field"].(string))
	}
	return out
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
