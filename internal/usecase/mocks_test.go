package usecase

import (
	"context"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct {
	mock.Mock
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	args := m.Called(ctx, limit, offset)
	users, _ := args.Get(0).([]*entity.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) FindIDsByRole(ctx context.Context, role entity.UserRole) ([]uuid.UUID, error) {
	args := m.Called(ctx, role)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

func (m *mockUserRepo) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockSessionRepo struct {
	mock.Mock
}

var _ repository.SessionRepository = (*mockSessionRepo)(nil)

func (m *mockSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionRepo) FindValidSession(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*entity.Session)
	return s, args.Error(1)
}

func (m *mockSessionRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSessionRepo) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockSessionRepo) CleanExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockEventRepo struct {
	mock.Mock
}

var _ repository.EventRepository = (*mockEventRepo)(nil)

func (m *mockEventRepo) Create(ctx context.Context, event *entity.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*entity.Event)
	return e, args.Error(1)
}

func (m *mockEventRepo) List(ctx context.Context, filter repository.EventFilter) ([]*entity.Event, int64, error) {
	args := m.Called(ctx, filter)
	events, _ := args.Get(0).([]*entity.Event)
	return events, args.Get(1).(int64), args.Error(2)
}

func (m *mockEventRepo) Update(ctx context.Context, event *entity.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) SetStatus(ctx context.Context, id uuid.UUID, status entity.EventStatus) (*entity.Event, error) {
	args := m.Called(ctx, id, status)
	e, _ := args.Get(0).(*entity.Event)
	return e, args.Error(1)
}

func (m *mockEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEventRepo) FindPublishedBetween(ctx context.Context, from, to time.Time) ([]*entity.Event, error) {
	args := m.Called(ctx, from, to)
	events, _ := args.Get(0).([]*entity.Event)
	return events, args.Error(1)
}
