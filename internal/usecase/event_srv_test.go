package usecase

import (
	"context"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/domain"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/queue"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testNow() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

func newEventFixture() (*eventService, *mockEventRepo, *recordingPublisher) {
	repo := &mockEventRepo{}
	jobs := &recordingPublisher{}
	svc := NewEventService(repo, jobs, zap.NewNop()).(*eventService)
	svc.now = testNow
	return svc, repo, jobs
}

func storedEvent(seats int, status entity.EventStatus) *entity.Event {
	return &entity.Event{
		Base:       entity.NewBase(testNow()),
		Title:      "Open Air",
		Venue:      "Park",
		Date:       testNow().Add(7 * 24 * time.Hour),
		Price:      decimal.RequireFromString("15"),
		TotalSeats: seats,
		Status:     status,
		Seats:      entity.BuildSeats(0, seats),
	}
}

func TestCreateEvent(t *testing.T) {
	t.Run("builds seats and defaults to draft", func(t *testing.T) {
		svc, repo, jobs := newEventFixture()
		admin := uuid.New()

		repo.On("Create", mock.Anything, mock.MatchedBy(func(e *entity.Event) bool {
			return e.Status == entity.EventStatusDraft &&
				len(e.Seats) == 12 &&
				e.Seats[0].Number == "A1" && e.Seats[11].Number == "B2" &&
				e.CreatedBy != nil && *e.CreatedBy == admin
		})).Return(nil).Once()

		resp, err := svc.Create(context.Background(), admin, &request.CreateEventRequest{
			Title:      " Open Air ",
			Date:       testNow().Add(48 * time.Hour),
			Venue:      "Park",
			Price:      ptr(19.999),
			TotalSeats: 12,
		})
		require.NoError(t, err)

		assert.Equal(t, "Open Air", resp.Title)
		assert.Equal(t, 20.0, resp.Price)
		assert.Len(t, resp.Seats, resp.TotalSeats)
		repo.AssertExpectations(t)

		sent := jobs.byType(queue.JobNotifyAll)
		require.Len(t, sent, 1)
		var p NotifyPayload
		require.NoError(t, sent[0].Decode(&p))
		assert.Equal(t, entity.NotificationEventCreated, p.Type)
		assert.Equal(t, resp.ID, p.EventID)
	})

	t.Run("date in the past", func(t *testing.T) {
		svc, repo, jobs := newEventFixture()

		_, err := svc.Create(context.Background(), uuid.New(), &request.CreateEventRequest{
			Title: "Late", Date: testNow().Add(-time.Hour), Venue: "Park", Price: ptr(1.0), TotalSeats: 1,
		})
		assert.True(t, errors.Is(err, domain.ErrValidation))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, jobs.jobs)
	})
}

func TestUpdateEvent_SeatGrowth(t *testing.T) {
	svc, repo, _ := newEventFixture()
	current := storedEvent(10, entity.EventStatusPublished)
	current.Seats[3].IsBooked = true

	grown := *current
	grown.TotalSeats = 15
	grown.Seats = append(append([]entity.Seat{}, current.Seats...), entity.BuildSeats(10, 15)...)

	repo.On("FindByID", mock.Anything, current.ID).Return(current, nil).Once()
	repo.On("Update", mock.Anything, mock.MatchedBy(func(e *entity.Event) bool {
		return e.TotalSeats == 15
	})).Return(nil).Once()
	repo.On("FindByID", mock.Anything, current.ID).Return(&grown, nil).Once()

	resp, err := svc.Update(context.Background(), current.ID, &request.UpdateEventRequest{TotalSeats: ptr(15)})
	require.NoError(t, err)

	require.Len(t, resp.Seats, 15)
	assert.Equal(t, "A4", resp.Seats[3].Number)
	assert.True(t, resp.Seats[3].IsBooked)
	assert.Equal(t, "B1", resp.Seats[10].Number)
	assert.Equal(t, "B5", resp.Seats[14].Number)
	repo.AssertExpectations(t)
}

func TestUpdateEvent_ShrinkRejected(t *testing.T) {
	svc, repo, _ := newEventFixture()
	current := storedEvent(10, entity.EventStatusDraft)
	repo.On("FindByID", mock.Anything, current.ID).Return(current, nil).Once()

	_, err := svc.Update(context.Background(), current.ID, &request.UpdateEventRequest{TotalSeats: ptr(9)})
	assert.True(t, errors.Is(err, domain.ErrSeatShrink))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateEvent_Missing(t *testing.T) {
	svc, repo, _ := newEventFixture()
	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, nil).Once()

	_, err := svc.Update(context.Background(), id, &request.UpdateEventRequest{Title: ptr("x")})
	assert.True(t, errors.Is(err, domain.ErrEventNotFound))
}

func TestPublishEvent_ReturnsSeatsAndNotifies(t *testing.T) {
	svc, repo, jobs := newEventFixture()
	published := storedEvent(8, entity.EventStatusPublished)
	repo.On("SetStatus", mock.Anything, published.ID, entity.EventStatusPublished).Return(published, nil).Once()

	resp, err := svc.Publish(context.Background(), published.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.EventStatusPublished, resp.Status)
	assert.Len(t, resp.Seats, resp.TotalSeats)

	sent := jobs.byType(queue.JobNotifyAll)
	require.Len(t, sent, 1)
	var p NotifyPayload
	require.NoError(t, sent[0].Decode(&p))
	assert.Equal(t, entity.NotificationUpcomingEvent, p.Type)
	assert.Equal(t, entity.PriorityHigh, p.Priority)
}

func TestGetEvent(t *testing.T) {
	svc, repo, _ := newEventFixture()
	ev := storedEvent(4, entity.EventStatusPublished)
	ev.Seats[0].IsBooked = true
	missing := uuid.New()

	repo.On("FindByID", mock.Anything, ev.ID).Return(ev, nil).Once()
	repo.On("FindByID", mock.Anything, missing).Return(nil, nil).Once()

	detail, err := svc.Get(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.AvailableSeats)

	_, err = svc.Get(context.Background(), missing)
	assert.True(t, errors.Is(err, domain.ErrEventNotFound))
}
