package repository

import (
	"context"
	"fmt"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/domain"
	"event-ticketing/pkg/database"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BookingRequest is everything the ledger needs to issue tickets.
type BookingRequest struct {
	EventID       uuid.UUID
	UserID        uuid.UUID
	Seats         []string
	PaymentMethod entity.PaymentMethod
	// IssueToken signs the QR token for a freshly allocated ticket id.
	IssueToken func(ticketID uuid.UUID) (string, error)
}

type TicketRepository interface {
	// Book claims all requested seats and inserts one ticket per seat, or
	// changes nothing at all.
	Book(ctx context.Context, req BookingRequest) ([]*entity.Ticket, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TicketDetail, error)
	FindByQRToken(ctx context.Context, token string) (*entity.Ticket, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.TicketDetail, error)
	FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.TicketDetail, error)
	FindAll(ctx context.Context) ([]*entity.TicketDetail, error)
	// MarkCheckedIn flips checked_in only when it is still false.
	MarkCheckedIn(ctx context.Context, id uuid.UUID, at time.Time) (*entity.Ticket, error)
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

const ticketColumns = `t.id, t.event_id, t.user_id, t.seat_number, t.price_paid, t.qr_token,
		       t.checked_in, t.checked_in_at, t.payment_status, t.payment_method,
		       t.created_at, t.updated_at`

const ticketDetailQuery = `SELECT ` + ticketColumns + `,
		       e.title, e.date, e.venue, u.name, u.email
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		JOIN users u ON u.id = t.user_id`

func scanTicket(row pgx.Row, extra ...any) (*entity.Ticket, error) {
	var t entity.Ticket
	dest := append([]any{
		&t.ID,
		&t.EventID,
		&t.UserID,
		&t.SeatNumber,
		&t.PricePaid,
		&t.QRToken,
		&t.CheckedIn,
		&t.CheckedInAt,
		&t.PaymentStatus,
		&t.PaymentMethod,
		&t.CreatedAt,
		&t.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTicketDetail(row pgx.Row) (*entity.TicketDetail, error) {
	var d entity.TicketDetail
	t, err := scanTicket(row, &d.EventTitle, &d.EventDate, &d.EventVenue, &d.UserName, &d.UserEmail)
	if err != nil {
		return nil, err
	}
	d.Ticket = *t
	return &d, nil
}

func (r *ticketRepository) Book(ctx context.Context, req BookingRequest) ([]*entity.Ticket, error) {
	var tickets []*entity.Ticket

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tickets = tickets[:0]

		// 1. Lock the event row. Bookings of one event queue up here.
		var price decimal.Decimal
		err := tx.QueryRow(ctx, `
			UPDATE events
			SET popularity = popularity + $2, updated_at = NOW()
			WHERE id = $1 AND status = 'published' AND deleted_at IS NULL
			RETURNING price
		`, req.EventID, len(req.Seats)).Scan(&price)
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.Wrapf(domain.ErrNotBookable, "event %s", req.EventID)
		}
		if err != nil {
			return fmt.Errorf("lock event: %w", err)
		}

		// 2. Every requested seat must exist and be free.
		rows, err := tx.Query(ctx, `
			SELECT seat_number, is_booked
			FROM event_seats
			WHERE event_id = $1 AND seat_number = ANY($2)
		`, req.EventID, req.Seats)
		if err != nil {
			return fmt.Errorf("read seats: %w", err)
		}
		booked := make(map[string]bool, len(req.Seats))
		for rows.Next() {
			var (
				number string
				taken  bool
			)
			if err := rows.Scan(&number, &taken); err != nil {
				rows.Close()
				return fmt.Errorf("scan seat: %w", err)
			}
			booked[number] = taken
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate seats: %w", err)
		}

		for _, seat := range req.Seats {
			taken, ok := booked[seat]
			if !ok {
				return errors.Wrapf(domain.ErrUnknownSeat, "seat %s", seat)
			}
			if taken {
				return errors.Wrapf(domain.ErrSeatTaken, "seat %s", seat)
			}
		}

		// 3. Claim. Only free seats flip, so a short count means someone else won.
		tag, err := tx.Exec(ctx, `
			UPDATE event_seats
			SET is_booked = TRUE
			WHERE event_id = $1 AND seat_number = ANY($2) AND is_booked = FALSE
		`, req.EventID, req.Seats)
		if err != nil {
			return fmt.Errorf("claim seats: %w", err)
		}
		if tag.RowsAffected() != int64(len(req.Seats)) {
			return errors.Wrapf(domain.ErrSeatTaken, "claimed %d of %d seats", tag.RowsAffected(), len(req.Seats))
		}

		// 4. Issue tickets at the locked price.
		now := time.Now()
		for _, seat := range req.Seats {
			t := &entity.Ticket{
				BaseNoDelete: entity.BaseNoDelete{
					ID:        uuid.New(),
					CreatedAt: now,
					UpdatedAt: now,
				},
				EventID:       req.EventID,
				UserID:        req.UserID,
				SeatNumber:    seat,
				PricePaid:     price,
				PaymentStatus: entity.PaymentStatusPaid,
				PaymentMethod: req.PaymentMethod,
			}
			if t.QRToken, err = req.IssueToken(t.ID); err != nil {
				return fmt.Errorf("issue token: %w", err)
			}

			_, err = tx.Exec(ctx, `
				INSERT INTO tickets (id, event_id, user_id, seat_number, price_paid, qr_token,
				                     checked_in, payment_status, payment_method, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8, $9, $10)
			`,
				t.ID,
				t.EventID,
				t.UserID,
				t.SeatNumber,
				t.PricePaid,
				t.QRToken,
				t.PaymentStatus,
				t.PaymentMethod,
				t.CreatedAt,
				t.UpdatedAt,
			)
			if database.IsUniqueViolation(err) {
				return errors.Wrapf(domain.ErrSeatTaken, "seat %s", seat)
			}
			if err != nil {
				return fmt.Errorf("insert ticket: %w", err)
			}
			tickets = append(tickets, t)
		}

		return nil
	})
	if err != nil {
		if isBookingRejection(err) {
			r.log.Info("Booking rejected",
				zap.String("event_id", req.EventID.String()),
				zap.Strings("seats", req.Seats),
				zap.String("reason", err.Error()),
			)
			return nil, err
		}
		r.log.Error("Failed to book seats",
			zap.Error(err),
			zap.String("event_id", req.EventID.String()),
			zap.String("user_id", req.UserID.String()),
		)
		return nil, fmt.Errorf("book event %s: %w", req.EventID, err)
	}

	return tickets, nil
}

func isBookingRejection(err error) bool {
	return errors.Is(err, domain.ErrNotBookable) ||
		errors.Is(err, domain.ErrUnknownSeat) ||
		errors.Is(err, domain.ErrSeatTaken)
}

func (r *ticketRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TicketDetail, error) {
	ticket, err := scanTicketDetail(r.db.QueryRow(ctx, ticketDetailQuery+` WHERE t.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket", zap.Error(err), zap.String("ticket_id", id.String()))
		return nil, fmt.Errorf("find ticket %s: %w", id, err)
	}
	return ticket, nil
}

func (r *ticketRepository) FindByQRToken(ctx context.Context, token string) (*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets t WHERE t.qr_token = $1`

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket by token", zap.Error(err))
		return nil, fmt.Errorf("find ticket by token: %w", err)
	}
	return ticket, nil
}

func (r *ticketRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.TicketDetail, error) {
	return r.listDetails(ctx, ticketDetailQuery+` WHERE t.user_id = $1 ORDER BY t.created_at DESC`, userID)
}

func (r *ticketRepository) FindByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.TicketDetail, error) {
	return r.listDetails(ctx, ticketDetailQuery+` WHERE t.event_id = $1 ORDER BY t.seat_number`, eventID)
}

func (r *ticketRepository) FindAll(ctx context.Context) ([]*entity.TicketDetail, error) {
	return r.listDetails(ctx, ticketDetailQuery+` ORDER BY t.created_at DESC`)
}

func (r *ticketRepository) listDetails(ctx context.Context, query string, args ...any) ([]*entity.TicketDetail, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list tickets", zap.Error(err))
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*entity.TicketDetail
	for rows.Next() {
		t, err := scanTicketDetail(rows)
		if err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket rows: %w", err)
	}

	return tickets, nil
}

func (r *ticketRepository) MarkCheckedIn(ctx context.Context, id uuid.UUID, at time.Time) (*entity.Ticket, error) {
	query := `
		UPDATE tickets t
		SET checked_in = TRUE, checked_in_at = $2, updated_at = $2
		WHERE t.id = $1 AND t.checked_in = FALSE
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrapf(domain.ErrAlreadyCheckedIn, "ticket %s", id)
	}
	if err != nil {
		r.log.Error("Failed to check in ticket", zap.Error(err), zap.String("ticket_id", id.String()))
		return nil, fmt.Errorf("check in ticket %s: %w", id, err)
	}

	return ticket, nil
}
