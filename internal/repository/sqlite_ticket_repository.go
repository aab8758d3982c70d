package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-intake/internal/domain"
)

type sqliteTicketRepository struct {
	db  *sql.DB
	now func() time.Time
}

// SQLiteOption customizes the SQLite repository.
type SQLiteOption func(*sqliteTicketRepository)

// WithClock overrides the insertion timestamp source.
func WithClock(now func() time.Time) SQLiteOption {
	return func(r *sqliteTicketRepository) {
		r.now = now
	}
}

// NewSQLiteTicketRepository builds a repository over an embedded SQLite
// database. IDs are UUIDv4 and created_at is stored as unix microseconds.
func NewSQLiteTicketRepository(db *sql.DB, opts ...SQLiteOption) TicketRepository {
	r := &sqliteTicketRepository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const sqliteTicketColumns = `id, name, email, message, category, priority, summary, route_to, status, created_at`

func (r *sqliteTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	id := uuid.NewString()
	createdAt := r.now().UTC().Truncate(time.Microsecond)
	const query = `
        INSERT INTO support_tickets (id, name, email, message, category, priority, summary, route_to, status, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?)`
	if _, err := r.db.ExecContext(ctx, query,
		id,
		ticket.Name,
		ticket.Email,
		ticket.Message,
		string(ticket.Category),
		string(ticket.Priority),
		ticket.Summary,
		string(ticket.RouteTo),
		string(ticket.Status),
		createdAt.UnixMicro(),
	); err != nil {
		return err
	}
	ticket.ID = id
	ticket.CreatedAt = createdAt
	return nil
}

func (r *sqliteTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteTicketColumns+` FROM support_tickets WHERE id=?`, id)
	ticket, err := scanSQLiteTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *sqliteTicketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE support_tickets SET status=? WHERE id=?`, string(status), id)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *sqliteTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteTicketColumns+` FROM support_tickets ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanSQLiteTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket                            domain.Ticket
		category, priority, route, status string
		createdAtMicros                   int64
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Name,
		&ticket.Email,
		&ticket.Message,
		&category,
		&priority,
		&ticket.Summary,
		&route,
		&status,
		&createdAtMicros,
	); err != nil {
		return nil, err
	}
	ticket.Category = domain.TicketCategory(category)
	ticket.Priority = domain.TicketPriority(priority)
	ticket.RouteTo = domain.Route(route)
	ticket.Status = domain.TicketStatus(status)
	ticket.CreatedAt = time.UnixMicro(createdAtMicros).UTC()
	return &ticket, nil
}
