package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"video-platform/dto"
	"video-platform/entities"
	"video-platform/repository"
)

const MinPasswordLength = 8

var validate = validator.New()

type AuthOptions struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BCryptCost int
}

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userId uuid.UUID) (*entities.User, error)
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

type authService struct {
	repo repository.Repository
	opts AuthOptions
	now  func() time.Time
}

func NewAuthService(repo repository.Repository, opts AuthOptions) AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BCryptCost < bcrypt.MinCost || opts.BCryptCost > bcrypt.MaxCost {
		opts.BCryptCost = bcrypt.DefaultCost
	}
	return &authService{repo: repo, opts: opts, now: time.Now}
}

type claims struct {
	UserId string `json:"uid"`
	jwt.RegisteredClaims
}

var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if err := validate.Var(email, "required,email,max=255"); err != nil {
		return nil, validationError("a valid email is required")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, validationError("password must be at least %d characters", MinPasswordLength)
	}
	if len(req.Password) > 72 {
		return nil, validationError("password must be at most 72 bytes")
	}

	_, err := s.repo.FindUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BCryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user registered")
	return &dto.AuthResponse{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{User: user, Token: token}, nil
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*entities.User, error) {
	user, err := s.repo.FindUserById(ctx, userId)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("user")
	}
	return user, err
}

func (s *authService) issue(userId uuid.UUID) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserId: userId.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userId.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		},
	})
	return token.SignedString([]byte(s.opts.JWTSecret))
}

// Authenticate verifies a bearer token and returns the user it was issued to.
func (s *authService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	parsed := &claims{}
	_, err := jwt.ParseWithClaims(token, parsed, func(t *jwt.Token) (any, error) {
		return []byte(s.opts.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("invalid token")
		return uuid.Nil, fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
	}

	userId, err := uuid.Parse(parsed.UserId)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
	}
	return userId, nil
}
