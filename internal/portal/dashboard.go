package portal

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/spec-kit/support-intake/internal/domain"
)

// ErrLoadInFlight is returned by Load while another load is running.
var ErrLoadInFlight = errors.New("portal: ticket list is already loading")

// TicketAPI is the subset of the ticket API the dashboard uses.
type TicketAPI interface {
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error)
}

// Dashboard owns the operator's local copy of the ticket list. Nothing is
// persisted; the list is replaced wholesale on every successful load.
type Dashboard struct {
	api TicketAPI

	mu      sync.Mutex
	tickets []domain.Ticket
	loading bool
	loaded  bool
	lastErr error
}

// NewDashboard returns an empty dashboard.
func NewDashboard(api TicketAPI) *Dashboard {
	return &Dashboard{api: api}
}

// StartLoad marks a fetch as in flight. It reports false if one already is.
func (d *Dashboard) StartLoad() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loading {
		return false
	}
	d.loading = true
	return true
}

// FinishLoad ends a fetch. On error the previous list is kept.
func (d *Dashboard) FinishLoad(tickets []domain.Ticket, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	d.lastErr = err
	if err != nil {
		return
	}
	d.tickets = append([]domain.Ticket(nil), tickets...)
	d.loaded = true
}

// Load fetches the full list.
func (d *Dashboard) Load(ctx context.Context) error {
	if !d.StartLoad() {
		return ErrLoadInFlight
	}
	tickets, err := d.api.ListTickets(ctx)
	d.FinishLoad(tickets, err)
	return err
}

// MarkResolved applies the optimistic local update. It reports false when
// the ticket is unknown or already resolved.
func (d *Dashboard) MarkResolved(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.tickets {
		if d.tickets[i].ID != id {
			continue
		}
		if d.tickets[i].Status == domain.TicketStatusResolved {
			return false
		}
		d.tickets[i].Status = domain.TicketStatusResolved
		return true
	}
	return false
}

// Resolve marks a ticket resolved locally, then asks the API to do the same.
// A failed call triggers a full reload instead of a targeted rollback.
func (d *Dashboard) Resolve(ctx context.Context, id string) error {
	if !d.MarkResolved(id) {
		return nil
	}
	if _, err := d.api.UpdateStatus(ctx, id, domain.TicketStatusResolved); err != nil {
		if loadErr := d.Load(ctx); loadErr != nil && !errors.Is(loadErr, ErrLoadInFlight) {
			return errors.Join(err, loadErr)
		}
		return err
	}
	return nil
}

// Tickets returns a copy of the current list.
func (d *Dashboard) Tickets() []domain.Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Ticket(nil), d.tickets...)
}

// Loading reports whether a fetch is in flight.
func (d *Dashboard) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

// LastErr is the error from the most recent load, if any.
func (d *Dashboard) LastErr() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

// Empty reports whether the empty-state message should be shown.
func (d *Dashboard) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.loading && len(d.tickets) == 0
}

// BadgeVariant names a visual badge style.
type BadgeVariant string

const (
	BadgeDanger    BadgeVariant = "danger"
	BadgeSecondary BadgeVariant = "secondary"
	BadgeOutline   BadgeVariant = "outline"
)

// PriorityBadge maps a priority to its badge style.
func PriorityBadge(p domain.TicketPriority) BadgeVariant {
	switch p {
	case domain.TicketPriorityHigh:
		return BadgeDanger
	case domain.TicketPriorityMedium:
		return BadgeSecondary
	default:
		return BadgeOutline
	}
}

// CategoryTitle is the card heading for a ticket.
func CategoryTitle(c domain.TicketCategory) string {
	return strings.ToUpper(string(c))
}
