package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-intake/internal/domain"
)

// ErrNotFound is returned when no ticket has the requested id.
var ErrNotFound = errors.New("ticket not found")

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// Create inserts the ticket and fills in the store-assigned ID and CreatedAt.
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// List returns every ticket, newest first.
	List(ctx context.Context) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id::text, name, email, message, category, priority, summary, route_to, status, created_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO support_tickets (name, email, message, category, priority, summary, route_to, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id::text, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Name,
		ticket.Email,
		ticket.Message,
		string(ticket.Category),
		string(ticket.Priority),
		ticket.Summary,
		string(ticket.RouteTo),
		string(ticket.Status),
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query := `UPDATE support_tickets SET status=$1 WHERE id=$2 RETURNING ` + ticketColumns
	return r.fetchSingle(ctx, query, string(status), id)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Name,
		&ticket.Email,
		&ticket.Message,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Summary,
		&ticket.RouteTo,
		&ticket.Status,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
