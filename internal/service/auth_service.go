package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"session-auth/internal/domain"
	"session-auth/internal/repository"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// callers cannot reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when the email or mobile is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when a userId resolves to no record.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError reports malformed or missing input. Message is safe to
// return to the client verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

// bcrypt cost 10 matches the credential hashes already in the store.
const hashCost = 10

// AuthService describes account lifecycle operations.
type AuthService interface {
	Register(ctx context.Context, email, mobile, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByUserID(ctx context.Context, userID string) (*domain.User, error)
}

type authService struct {
	users repository.UserRepository
}

func NewAuthService(users repository.UserRepository) AuthService {
	return &authService{users: users}
}

func (s *authService) Register(ctx context.Context, email, mobile, password string) (*domain.User, error) {
	if email == "" || mobile == "" || password == "" {
		return nil, &ValidationError{Message: "All fields required"}
	}
	if !mobilePattern.MatchString(mobile) {
		return nil, &ValidationError{Message: "Mobile number must be exactly 10 digits"}
	}

	// The unique indexes are the real guard; this read just rejects the
	// common case before paying for a hash.
	if _, err := s.users.FindByEmailOrMobile(ctx, email, mobile); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		UserID:       uuid.NewString(),
		Email:        email,
		Mobile:       mobile,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *authService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, &ValidationError{Message: "Email and password required"}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *authService) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		UserID:    user.UserID,
		Email:     user.Email,
		Mobile:    user.Mobile,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
