package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/domain"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/pkg/utils"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest, client request.ClientInfo) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest, client request.ClientInfo) (*response.AuthResponse, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	Me(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	EnsureAdmin(ctx context.Context, cfg utils.AdminConfig) error
}

type authService struct {
	repo   *repository.Repository // grouping userRepo & sessionRepo
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest, client request.ClientInfo) (*response.AuthResponse, error) {
	// 1. Cek email sudah terdaftar
	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, errors.Wrapf(domain.ErrEmailTaken, "%s", email)
	}

	// 2. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 3. Build user, role is never taken from the request
	user := &entity.User{
		Base:         entity.NewBase(time.Now()),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         entity.RoleUser,
		Interests:    req.Interests,
	}
	if req.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return nil, domain.Validation("birthDate must be YYYY-MM-DD")
		}
		user.BirthDate = &birth
	}
	if req.Gender != "" {
		gender := entity.Gender(req.Gender)
		user.Gender = &gender
	}
	if loc := strings.TrimSpace(req.Location); loc != "" {
		user.Location = &loc
	}
	if user.Interests == nil {
		user.Interests = []string{}
	}

	// 4. Save user
	if err := s.repo.User.Create(ctx, user); err != nil {
		return nil, err
	}

	// 5. Auto login setelah register
	resp, err := s.startSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest, client request.ClientInfo) (*response.AuthResponse, error) {
	// 1. Find user by email
	user, err := s.repo.User.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	// 2. Unknown email and wrong password look the same to the caller
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("email", req.Email))
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Create session
	resp, err := s.startSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return resp, nil
}

func (s *authService) startSession(ctx context.Context, user *entity.User, client request.ClientInfo) (*response.AuthResponse, error) {
	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		UserID:     user.ID,
		ExpiresAt:  now.Add(s.config.JWT.TTL()),
	}
	if client.UserAgent != "" {
		session.UserAgent = &client.UserAgent
	}
	if client.IPAddress != "" {
		session.IPAddress = &client.IPAddress
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	token, expiresAt, err := utils.SignSessionToken(s.config.JWT, user.ID, session.ID, string(user.Role), now)
	if err != nil {
		s.log.Error("Failed to sign session token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &response.AuthResponse{
		User:      response.UserToResponse(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.repo.Session.Revoke(ctx, sessionID); err != nil {
		return err
	}
	s.log.Info("Session revoked", zap.String("session_id", sessionID.String()))
	return nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.Wrapf(domain.ErrUserNotFound, "%s", userID)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// EnsureAdmin creates the configured admin account, or promotes an existing
// user with that email. It does nothing when no admin is configured.
func (s *authService) EnsureAdmin(ctx context.Context, cfg utils.AdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("look up admin: %w", err)
	}

	if user != nil {
		if user.IsAdmin() {
			return nil
		}
		user.Role = entity.RoleAdmin
		user.UpdatedAt = time.Now()
		if err := s.repo.User.Update(ctx, user); err != nil {
			return err
		}
		s.log.Info("Existing user promoted to admin", zap.String("email", email))
		return nil
	}

	hashedPassword, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &entity.User{
		Base:         entity.NewBase(time.Now()),
		Name:         cfg.Name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         entity.RoleAdmin,
		Interests:    []string{},
	}
	if err := s.repo.User.Create(ctx, admin); err != nil {
		return err
	}

	s.log.Info("Admin account created", zap.String("email", email))
	return nil
}
