package usecase

import (
	"context"

	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type userService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	log         *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, log *zap.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		log:         log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetAllUsers(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	// Get users with pagination
	users, err := us.userRepo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, err
	}

	// Get total count
	total, err := us.userRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	// Convert to response
	items := make([]response.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, response.UserToResponse(user))
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	return response.NewPaginatedResponse(items, page, req.Limit(), total), nil
}

func (us *userService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := us.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	// deleted users lose every open session right away
	if err := us.sessionRepo.RevokeAllUserSessions(ctx, userID); err != nil {
		return err
	}

	us.log.Info("User deleted", zap.String("user_id", userID.String()))
	return nil
}
