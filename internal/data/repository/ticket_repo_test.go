package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/domain"
	"event-ticketing/migrations"
	"event-ticketing/pkg/database"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// startPostgres runs a throwaway Postgres with the schema applied.
func startPostgres(t *testing.T) database.PgxIface {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "events",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/events?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := database.NewDB(pool)
	require.NoError(t, database.Migrate(ctx, db, migrations.FS, zap.NewNop()))
	return db
}

type fixture struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	events   repository.EventRepository
	tickets  repository.TicketRepository
}

func newFixture(t *testing.T) fixture {
	db := startPostgres(t)
	log := zap.NewNop()
	return fixture{
		users:    repository.NewUserRepository(db, log),
		sessions: repository.NewSessionRepository(db, log),
		events:   repository.NewEventRepository(db, log),
		tickets:  repository.NewTicketRepository(db, log),
	}
}

func (f fixture) user(t *testing.T, email string) *entity.User {
	u := &entity.User{
		Base:         entity.NewBase(time.Now()),
		Name:         email,
		Email:        email,
		PasswordHash: "x",
		Role:         entity.RoleUser,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f fixture) event(t *testing.T, seats int, status entity.EventStatus) *entity.Event {
	e := &entity.Event{
		Base:       entity.NewBase(time.Now()),
		Title:      "Launch night",
		Date:       time.Now().Add(72 * time.Hour),
		Venue:      "Hall 1",
		Price:      decimal.RequireFromString("12.50"),
		TotalSeats: seats,
		Status:     status,
		Seats:      entity.BuildSeats(0, seats),
	}
	require.NoError(t, f.events.Create(context.Background(), e))
	return e
}

func issue(id uuid.UUID) (string, error) { return "qr-" + id.String(), nil }

func TestTicketRepository_Book(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	buyer := f.user(t, "buyer@example.com")
	event := f.event(t, 10, entity.EventStatusPublished)

	tickets, err := f.tickets.Book(ctx, repository.BookingRequest{
		EventID:       event.ID,
		UserID:        buyer.ID,
		Seats:         []string{"A1", "A2"},
		PaymentMethod: entity.PaymentMethodCard,
		IssueToken:    issue,
	})
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.True(t, tickets[0].PricePaid.Equal(decimal.RequireFromString("12.50")))

	// A2 is gone, so A3 must not be claimed either
	_, err = f.tickets.Book(ctx, repository.BookingRequest{
		EventID: event.ID, UserID: buyer.ID, Seats: []string{"A3", "A2"}, IssueToken: issue,
	})
	assert.True(t, errors.Is(err, domain.ErrSeatTaken))

	_, err = f.tickets.Book(ctx, repository.BookingRequest{
		EventID: event.ID, UserID: buyer.ID, Seats: []string{"Z9"}, IssueToken: issue,
	})
	assert.True(t, errors.Is(err, domain.ErrUnknownSeat))

	got, err := f.events.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.AvailableSeats())
	assert.Equal(t, 2, got.Popularity)

	mine, err := f.tickets.FindByUser(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestTicketRepository_BookDraftRejected(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "early@example.com")
	event := f.event(t, 5, entity.EventStatusDraft)

	_, err := f.tickets.Book(context.Background(), repository.BookingRequest{
		EventID: event.ID, UserID: buyer.ID, Seats: []string{"A1"}, IssueToken: issue,
	})
	assert.True(t, errors.Is(err, domain.ErrNotBookable))
}

func TestTicketRepository_ConcurrentBookingSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 4, entity.EventStatusPublished)

	const attempts = 16
	buyers := make([]*entity.User, attempts)
	for i := range buyers {
		buyers[i] = f.user(t, fmt.Sprintf("racer%d@example.com", i))
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(u *entity.User) {
			defer wg.Done()
			_, err := f.tickets.Book(ctx, repository.BookingRequest{
				EventID: event.ID, UserID: u.ID, Seats: []string{"A1"}, IssueToken: issue,
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, domain.ErrSeatTaken), "unexpected error: %v", err)
		}(buyers[i])
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	sold, err := f.tickets.FindByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, sold, 1)
}

func TestTicketRepository_MarkCheckedInOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.user(t, "door@example.com")
	event := f.event(t, 2, entity.EventStatusPublished)

	tickets, err := f.tickets.Book(ctx, repository.BookingRequest{
		EventID: event.ID, UserID: buyer.ID, Seats: []string{"A1"}, IssueToken: issue,
	})
	require.NoError(t, err)

	byToken, err := f.tickets.FindByQRToken(ctx, tickets[0].QRToken)
	require.NoError(t, err)
	require.NotNil(t, byToken)
	assert.Equal(t, tickets[0].ID, byToken.ID)

	checked, err := f.tickets.MarkCheckedIn(ctx, tickets[0].ID, time.Now())
	require.NoError(t, err)
	assert.True(t, checked.CheckedIn)
	assert.NotNil(t, checked.CheckedInAt)

	_, err = f.tickets.MarkCheckedIn(ctx, tickets[0].ID, time.Now())
	assert.True(t, errors.Is(err, domain.ErrAlreadyCheckedIn))
}
