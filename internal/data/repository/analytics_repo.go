package repository

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// HolderProfile is the demographic slice of the user behind one ticket.
type HolderProfile struct {
	BirthDate *time.Time
	Gender    *string
	Location  *string
	Interests []string
}

type Sale struct {
	CreatedAt time.Time
	PricePaid decimal.Decimal
}

type SaleRow struct {
	TicketID   uuid.UUID
	EventTitle string
	UserEmail  string
	SeatNumber string
	PricePaid  decimal.Decimal
	CheckedIn  bool
	CreatedAt  time.Time
}

// AnalyticsRepository runs read-only rollups. A nil eventID means all events.
type AnalyticsRepository interface {
	CountEvents(ctx context.Context) (int64, error)
	CountTickets(ctx context.Context, eventID *uuid.UUID) (int64, error)
	CountCheckIns(ctx context.Context, eventID *uuid.UUID) (int64, error)
	SumRevenue(ctx context.Context, eventID *uuid.UUID) (decimal.Decimal, error)
	CountAttendees(ctx context.Context) (int64, error)
	HolderProfiles(ctx context.Context, eventID *uuid.UUID) ([]HolderProfile, error)
	SalesSince(ctx context.Context, since time.Time) ([]Sale, error)
	SalesRows(ctx context.Context) ([]SaleRow, error)
	EventRows(ctx context.Context) ([]*entity.Event, error)
}

type analyticsRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAnalyticsRepository(db database.PgxIface, log *zap.Logger) AnalyticsRepository {
	return &analyticsRepository{
		db:  db,
		log: log.With(zap.String("repository", "analytics")),
	}
}

func (r *analyticsRepository) count(ctx context.Context, name, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		r.log.Error("Failed to count", zap.String("metric", name), zap.Error(err))
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	return n, nil
}

func (r *analyticsRepository) CountEvents(ctx context.Context) (int64, error) {
	return r.count(ctx, "events", `SELECT COUNT(*) FROM events WHERE deleted_at IS NULL`)
}

func (r *analyticsRepository) CountTickets(ctx context.Context, eventID *uuid.UUID) (int64, error) {
	return r.count(ctx, "tickets",
		`SELECT COUNT(*) FROM tickets WHERE ($1::uuid IS NULL OR event_id = $1)`, eventID)
}

func (r *analyticsRepository) CountCheckIns(ctx context.Context, eventID *uuid.UUID) (int64, error) {
	return r.count(ctx, "check-ins",
		`SELECT COUNT(*) FROM tickets WHERE checked_in AND ($1::uuid IS NULL OR event_id = $1)`, eventID)
}

func (r *analyticsRepository) CountAttendees(ctx context.Context) (int64, error) {
	return r.count(ctx, "attendees", `SELECT COUNT(DISTINCT user_id) FROM tickets`)
}

func (r *analyticsRepository) SumRevenue(ctx context.Context, eventID *uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(price_paid), 0)
		FROM tickets
		WHERE payment_status = 'paid' AND ($1::uuid IS NULL OR event_id = $1)
	`, eventID).Scan(&sum)
	if err != nil {
		r.log.Error("Failed to sum revenue", zap.Error(err))
		return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
	}
	return sum, nil
}

// HolderProfiles returns one profile per ticket, so a user holding three
// tickets is counted three times.
func (r *analyticsRepository) HolderProfiles(ctx context.Context, eventID *uuid.UUID) ([]HolderProfile, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.birth_date, u.gender, u.location, u.interests
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		WHERE ($1::uuid IS NULL OR t.event_id = $1)
	`, eventID)
	if err != nil {
		r.log.Error("Failed to load holder profiles", zap.Error(err))
		return nil, fmt.Errorf("holder profiles: %w", err)
	}

	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (HolderProfile, error) {
		var p HolderProfile
		err := row.Scan(&p.BirthDate, &p.Gender, &p.Location, &p.Interests)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan holder profiles: %w", err)
	}
	return profiles, nil
}

func (r *analyticsRepository) SalesSince(ctx context.Context, since time.Time) ([]Sale, error) {
	rows, err := r.db.Query(ctx, `
		SELECT created_at, price_paid
		FROM tickets
		WHERE payment_status = 'paid' AND created_at >= $1
		ORDER BY created_at
	`, since)
	if err != nil {
		r.log.Error("Failed to load sales", zap.Error(err))
		return nil, fmt.Errorf("sales since %s: %w", since, err)
	}

	sales, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Sale, error) {
		var s Sale
		err := row.Scan(&s.CreatedAt, &s.PricePaid)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan sales: %w", err)
	}
	return sales, nil
}

func (r *analyticsRepository) SalesRows(ctx context.Context) ([]SaleRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, e.title, u.email, t.seat_number, t.price_paid, t.checked_in, t.created_at
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		JOIN users u ON u.id = t.user_id
		ORDER BY t.created_at
	`)
	if err != nil {
		r.log.Error("Failed to load sales rows", zap.Error(err))
		return nil, fmt.Errorf("sales rows: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SaleRow, error) {
		var s SaleRow
		err := row.Scan(&s.TicketID, &s.EventTitle, &s.UserEmail, &s.SeatNumber, &s.PricePaid, &s.CheckedIn, &s.CreatedAt)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan sales rows: %w", err)
	}
	return out, nil
}

// EventRows lists every live event without seats, oldest first.
func (r *analyticsRepository) EventRows(ctx context.Context) ([]*entity.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE deleted_at IS NULL ORDER BY created_at`)
	if err != nil {
		r.log.Error("Failed to load event rows", zap.Error(err))
		return nil, fmt.Errorf("event rows: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
