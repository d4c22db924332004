package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/domain"
	"event-ticketing/pkg/database"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// EventFilter narrows the public event list. Nil fields are ignored.
type EventFilter struct {
	Query    string
	Status   string
	From     *time.Time
	To       *time.Time
	MinPrice *float64
	MaxPrice *float64
	Sort     string
	Limit    int
	Offset   int
}

var eventSortColumns = map[string]string{
	"date":        "date ASC",
	"-date":       "date DESC",
	"price":       "price ASC",
	"-price":      "price DESC",
	"title":       "title ASC",
	"-title":      "title DESC",
	"popularity":  "popularity ASC",
	"-popularity": "popularity DESC",
}

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	List(ctx context.Context, filter EventFilter) ([]*entity.Event, int64, error)
	// Update saves event fields and appends seats up to event.TotalSeats.
	Update(ctx context.Context, event *entity.Event) error
	SetStatus(ctx context.Context, id uuid.UUID, status entity.EventStatus) (*entity.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindPublishedBetween(ctx context.Context, from, to time.Time) ([]*entity.Event, error)
}

type eventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewEventRepository(db database.PgxIface, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log.With(zap.String("repository", "event")),
	}
}

const eventColumns = `id, title, description, date, venue, price, total_seats, status,
		       created_by, popularity, created_at, updated_at, deleted_at`

func scanEvent(row pgx.Row) (*entity.Event, error) {
	var e entity.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Date,
		&e.Venue,
		&e.Price,
		&e.TotalSeats,
		&e.Status,
		&e.CreatedBy,
		&e.Popularity,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO events (id, title, description, date, venue, price, total_seats,
			                    status, created_by, popularity, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			event.ID,
			event.Title,
			event.Description,
			event.Date,
			event.Venue,
			event.Price,
			event.TotalSeats,
			event.Status,
			event.CreatedBy,
			event.Popularity,
			event.CreatedAt,
			event.UpdatedAt,
		)
		if err != nil {
			return err
		}

		return insertSeats(ctx, tx, event.ID, event.Seats)
	})
	if err != nil {
		r.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("title", event.Title),
		)
		return fmt.Errorf("create event %s: %w", event.Title, err)
	}

	return nil
}

func insertSeats(ctx context.Context, tx pgx.Tx, eventID uuid.UUID, seats []entity.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"event_seats"},
		[]string{"event_id", "seat_number", "position", "is_booked"},
		pgx.CopyFromSlice(len(seats), func(i int) ([]any, error) {
			return []any{eventID, seats[i].Number, seats[i].Position, seats[i].IsBooked}, nil
		}),
	)
	return err
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND deleted_at IS NULL`

	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID", zap.Error(err), zap.String("event_id", id.String()))
		return nil, fmt.Errorf("find event by ID %s: %w", id, err)
	}

	if err := r.attachSeats(ctx, []*entity.Event{event}); err != nil {
		return nil, err
	}
	return event, nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]*entity.Event, int64, error) {
	var (
		conds = []string{"deleted_at IS NULL"}
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Query != "" {
		add("title ILIKE '%%' || $%d || '%%'", filter.Query)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.From != nil {
		add("date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("date <= $%d", *filter.To)
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}

	where := strings.Join(conds, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE `+where, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count events", zap.Error(err))
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	order, ok := eventSortColumns[filter.Sort]
	if !ok {
		order = eventSortColumns["-date"]
	}

	query := fmt.Sprintf(`SELECT %s FROM events WHERE %s ORDER BY %s, id LIMIT $%d OFFSET $%d`,
		eventColumns, where, order, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list events", zap.Error(err))
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			r.log.Error("Failed to scan event row", zap.Error(err))
			return nil, 0, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate events rows: %w", err)
	}

	if err := r.attachSeats(ctx, events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// attachSeats loads seats for all given events with a single query.
func (r *eventRepository) attachSeats(ctx context.Context, events []*entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(events))
	byID := make(map[uuid.UUID]*entity.Event, len(events))
	for i, e := range events {
		ids[i] = e.ID
		byID[e.ID] = e
		e.Seats = make([]entity.Seat, 0, e.TotalSeats)
	}

	rows, err := r.db.Query(ctx, `
		SELECT event_id, seat_number, position, is_booked
		FROM event_seats
		WHERE event_id = ANY($1)
		ORDER BY event_id, position
	`, ids)
	if err != nil {
		r.log.Error("Failed to load seats", zap.Error(err))
		return fmt.Errorf("load seats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			eventID uuid.UUID
			seat    entity.Seat
		)
		if err := rows.Scan(&eventID, &seat.Number, &seat.Position, &seat.IsBooked); err != nil {
			return fmt.Errorf("scan seat row: %w", err)
		}
		if e := byID[eventID]; e != nil {
			e.Seats = append(e.Seats, seat)
		}
	}
	return rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		// lock the row so concurrent growth cannot hand out the same labels
		var current int
		err := tx.QueryRow(ctx,
			`SELECT total_seats FROM events WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
			event.ID,
		).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		if err != nil {
			return err
		}
		if event.TotalSeats < current {
			return errors.Wrapf(domain.ErrSeatShrink, "have %d, requested %d", current, event.TotalSeats)
		}

		_, err = tx.Exec(ctx, `
			UPDATE events
			SET title = $2, description = $3, date = $4, venue = $5, price = $6,
			    total_seats = $7, status = $8, updated_at = $9
			WHERE id = $1
		`,
			event.ID,
			event.Title,
			event.Description,
			event.Date,
			event.Venue,
			event.Price,
			event.TotalSeats,
			event.Status,
			event.UpdatedAt,
		)
		if err != nil {
			return err
		}

		return insertSeats(ctx, tx, event.ID, entity.BuildSeats(current, event.TotalSeats))
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrSeatShrink) {
			return err
		}
		r.log.Error("Failed to update event", zap.Error(err), zap.String("event_id", event.ID.String()))
		return fmt.Errorf("update event %s: %w", event.ID, err)
	}

	return nil
}

func (r *eventRepository) SetStatus(ctx context.Context, id uuid.UUID, status entity.EventStatus) (*entity.Event, error) {
	query := `
		UPDATE events SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + eventColumns

	event, err := scanEvent(r.db.QueryRow(ctx, query, id, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(domain.ErrEventNotFound, "set status %s", id)
	}
	if err != nil {
		r.log.Error("Failed to set event status", zap.Error(err), zap.String("event_id", id.String()))
		return nil, fmt.Errorf("set event %s status: %w", id, err)
	}

	if err := r.attachSeats(ctx, []*entity.Event{event}); err != nil {
		return nil, err
	}

	return event, nil
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE events SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete event", zap.Error(err), zap.String("event_id", id.String()))
		return fmt.Errorf("delete event %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return errors.Wrapf(domain.ErrEventNotFound, "delete event %s", id)
	}

	r.log.Info("Event deleted", zap.String("event_id", id.String()))
	return nil
}

func (r *eventRepository) FindPublishedBetween(ctx context.Context, from, to time.Time) ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE deleted_at IS NULL AND status = 'published' AND date >= $1 AND date < $2
		ORDER BY date
	`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		r.log.Error("Failed to find events in window", zap.Error(err))
		return nil, fmt.Errorf("find published events between %s and %s: %w", from, to, err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
