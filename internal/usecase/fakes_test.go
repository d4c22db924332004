package usecase

import (
	"context"
	"sync"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/domain"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/queue"
	"event-ticketing/pkg/mailer"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memTickets is an in-memory ticket ledger with the same all-or-nothing
// contract as the PostgreSQL one.
type memTickets struct {
	mu      sync.Mutex
	events  map[uuid.UUID]*entity.Event
	tickets map[uuid.UUID]*entity.Ticket
}

var _ repository.TicketRepository = (*memTickets)(nil)

func newMemTickets() *memTickets {
	return &memTickets{
		events:  make(map[uuid.UUID]*entity.Event),
		tickets: make(map[uuid.UUID]*entity.Ticket),
	}
}

func (m *memTickets) addEvent(status entity.EventStatus, price string, seats int) *entity.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &entity.Event{
		Base:       entity.NewBase(time.Now()),
		Title:      "Concert",
		Price:      decimal.RequireFromString(price),
		TotalSeats: seats,
		Status:     status,
		Seats:      entity.BuildSeats(0, seats),
	}
	m.events[e.ID] = e
	return e
}

func (m *memTickets) seatState(eventID uuid.UUID) map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool)
	for _, s := range m.events[eventID].Seats {
		out[s.Number] = s.IsBooked
	}
	return out
}

func (m *memTickets) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets)
}

func (m *memTickets) Book(_ context.Context, req repository.BookingRequest) ([]*entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[req.EventID]
	if !ok || e.Status != entity.EventStatusPublished {
		return nil, errors.Wrapf(domain.ErrNotBookable, "event %s", req.EventID)
	}

	index := make(map[string]int, len(e.Seats))
	for i, s := range e.Seats {
		index[s.Number] = i
	}
	for _, seat := range req.Seats {
		i, ok := index[seat]
		if !ok {
			return nil, errors.Wrapf(domain.ErrUnknownSeat, "seat %s", seat)
		}
		if e.Seats[i].IsBooked {
			return nil, errors.Wrapf(domain.ErrSeatTaken, "seat %s", seat)
		}
	}

	var out []*entity.Ticket
	for _, seat := range req.Seats {
		t := &entity.Ticket{
			BaseNoDelete:  entity.BaseNoDelete{ID: uuid.New(), CreatedAt: time.Now()},
			EventID:       e.ID,
			UserID:        req.UserID,
			SeatNumber:    seat,
			PricePaid:     e.Price,
			PaymentStatus: entity.PaymentStatusPaid,
			PaymentMethod: req.PaymentMethod,
		}
		token, err := req.IssueToken(t.ID)
		if err != nil {
			return nil, err
		}
		t.QRToken = token
		out = append(out, t)
	}

	for _, t := range out {
		e.Seats[index[t.SeatNumber]].IsBooked = true
		m.tickets[t.ID] = t
	}
	e.Popularity += len(out)
	return out, nil
}

func (m *memTickets) detail(t *entity.Ticket) *entity.TicketDetail {
	cp := *t
	d := &entity.TicketDetail{Ticket: cp, UserEmail: "holder@example.com", UserName: "Holder"}
	if e := m.events[t.EventID]; e != nil {
		d.EventTitle, d.EventDate, d.EventVenue = e.Title, e.Date, e.Venue
	}
	return d
}

func (m *memTickets) FindByID(_ context.Context, id uuid.UUID) (*entity.TicketDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, nil
	}
	return m.detail(t), nil
}

func (m *memTickets) FindByQRToken(_ context.Context, token string) (*entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.QRToken == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memTickets) list(match func(*entity.Ticket) bool) []*entity.TicketDetail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.TicketDetail
	for _, t := range m.tickets {
		if match(t) {
			out = append(out, m.detail(t))
		}
	}
	return out
}

func (m *memTickets) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.TicketDetail, error) {
	return m.list(func(t *entity.Ticket) bool { return t.UserID == userID }), nil
}

func (m *memTickets) FindByEvent(_ context.Context, eventID uuid.UUID) ([]*entity.TicketDetail, error) {
	return m.list(func(t *entity.Ticket) bool { return t.EventID == eventID }), nil
}

func (m *memTickets) FindAll(_ context.Context) ([]*entity.TicketDetail, error) {
	return m.list(func(*entity.Ticket) bool { return true }), nil
}

func (m *memTickets) MarkCheckedIn(_ context.Context, id uuid.UUID, at time.Time) (*entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok || t.CheckedIn {
		return nil, errors.Wrapf(domain.ErrAlreadyCheckedIn, "ticket %s", id)
	}
	t.CheckedIn = true
	t.CheckedInAt = &at
	cp := *t
	return &cp, nil
}

// recordingPublisher keeps published jobs instead of running them.
type recordingPublisher struct {
	mu   sync.Mutex
	jobs []queue.Job
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, job queue.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) byType(t queue.JobType) []queue.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []queue.Job
	for _, j := range p.jobs {
		if j.Type == t {
			out = append(out, j)
		}
	}
	return out
}

// emitted is one call to recordingEmitter.Emit.
type emitted struct {
	Room, Event string
	Payload     any
}

type recordingEmitter struct {
	mu    sync.Mutex
	calls []emitted
}

func (e *recordingEmitter) Emit(_ context.Context, room, event string, payload any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, emitted{room, event, payload})
}

// stubEvents answers only the reminder query.
type stubEvents struct {
	repository.EventRepository
	published []*entity.Event
	from, to  time.Time
}

func (s *stubEvents) FindPublishedBetween(_ context.Context, from, to time.Time) ([]*entity.Event, error) {
	s.from, s.to = from, to
	return s.published, nil
}

// stubUsers answers only recipient lookups.
type stubUsers struct {
	repository.UserRepository
	byRole map[entity.UserRole][]uuid.UUID
	asked  []entity.UserRole
}

func (s *stubUsers) FindIDsByRole(_ context.Context, role entity.UserRole) ([]uuid.UUID, error) {
	s.asked = append(s.asked, role)
	if role == "" {
		var all []uuid.UUID
		for _, ids := range s.byRole {
			all = append(all, ids...)
		}
		return all, nil
	}
	return s.byRole[role], nil
}

type sentNote struct {
	UserIDs []string
	Payload NotifyPayload
}

// recordingNotifier captures notification writes.
type recordingNotifier struct {
	NotificationService
	mu    sync.Mutex
	notes []sentNote
	err   error
}

func (n *recordingNotifier) Create(_ context.Context, userID string, in NotifyPayload) (*response.NotificationResponse, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return nil, n.err
	}
	n.notes = append(n.notes, sentNote{UserIDs: []string{userID}, Payload: in})
	return &response.NotificationResponse{UserID: userID, Type: in.Type, Title: in.Title}, nil
}

func (n *recordingNotifier) CreateForUsers(_ context.Context, userIDs []string, in NotifyPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.notes = append(n.notes, sentNote{UserIDs: userIDs, Payload: in})
	return nil
}

// recordingMailer keeps messages instead of sending them.
type recordingMailer struct {
	mu   sync.Mutex
	msgs []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msg)
	return nil
}
