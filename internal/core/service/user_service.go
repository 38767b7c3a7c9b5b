package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/civicvote/voting-system/internal/core/domain"
	"github.com/civicvote/voting-system/internal/core/ports"
)

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserService implements registration, login and profile management.
type UserService struct {
	repo       ports.UserRepository
	tokens     TokenIssuer
	bcryptCost int
	now        func() time.Time
	log        zerolog.Logger
}

func NewUserService(repo ports.UserRepository, tokens TokenIssuer, bcryptCost int, log zerolog.Logger) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{repo: repo, tokens: tokens, bcryptCost: bcryptCost, now: time.Now, log: log}
}

// CheckRegistration looks up citizenship, phone and the admin slot and
// reports every conflict at once.
func (s *UserService) CheckRegistration(ctx context.Context, in ports.RegisterInput) error {
	var ve domain.ValidationError

	if in.Citizenship != "" {
		taken, err := s.repo.ExistsByCitizenship(ctx, in.Citizenship)
		if err != nil {
			return fmt.Errorf("check citizenship: %w", err)
		}
		if taken {
			ve.Add("citizenship", "citizenship number already exists")
		}
	}

	if in.Phone != "" {
		taken, err := s.repo.ExistsByPhone(ctx, in.Phone)
		if err != nil {
			return fmt.Errorf("check phone: %w", err)
		}
		if taken {
			ve.Add("phone", "Phone already exists")
		}
	}

	if in.UserType == domain.RoleAdmin {
		taken, err := s.repo.AdminExists(ctx)
		if err != nil {
			return fmt.Errorf("check admin: %w", err)
		}
		if taken {
			ve.Add("usertype", "admin already exists")
		}
	}

	return ve.OrNil()
}

// Register enforces the minimum age, hashes the password and stores the user.
func (s *UserService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	dob, err := domain.ParseDateOfBirth(in.DateOfBirth)
	if err != nil {
		ve := &domain.ValidationError{}
		ve.Add("DoB", "Date of birth must be a valid date (YYYY-MM-DD)")
		return nil, ve
	}
	if domain.AgeOn(dob, s.now()) < domain.MinVotingAge {
		return nil, domain.ErrUnderage
	}

	userType := in.UserType
	if userType == "" {
		userType = domain.RoleClient
	}
	if !domain.ValidUserType(userType) {
		ve := &domain.ValidationError{}
		ve.Add("usertype", "usertype must be one of: admin client")
		return nil, ve
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		PasswordHash: string(hash),
		Address:      in.Address,
		DateOfBirth:  in.DateOfBirth,
		Citizenship:  in.Citizenship,
		Phone:        in.Phone,
		Email:        in.Email,
		UserType:     userType,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, duplicateAsValidation(err)
	}

	s.log.Info().Str("user_id", created.ID).Str("usertype", created.UserType).Msg("user registered")
	return created, nil
}

// Login verifies credentials. Unknown citizenship and a wrong password both
// yield domain.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, citizenship, password string) (string, *domain.User, error) {
	if citizenship == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByCitizenship(ctx, citizenship)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}

	user.PasswordHash = ""
	return token, user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, upd ports.ProfileUpdate) (*domain.User, error) {
	user, err := s.repo.UpdateProfile(ctx, id, upd)
	if err != nil {
		return nil, duplicateAsValidation(err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrIncorrectPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, id, string(hash)); err != nil {
		return err
	}

	s.log.Info().Str("user_id", id).Msg("password changed")
	return nil
}

// duplicateAsValidation turns a unique-index violation into a field error so
// racing registrations surface the same way as the pre-checks.
func duplicateAsValidation(err error) error {
	var dup *domain.DuplicateFieldError
	if errors.As(err, &dup) {
		ve := &domain.ValidationError{}
		ve.Add(dup.Field, dup.Field+" already exists")
		return ve
	}
	if errors.Is(err, domain.ErrDuplicate) {
		ve := &domain.ValidationError{}
		ve.Add("user", "user already exists")
		return ve
	}
	return err
}
