package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/support-intake/internal/domain"
	"github.com/spec-kit/support-intake/internal/portal"
)

const (
	cardWidth          = 72
	messagePreviewRune = 180
	emptyStateMessage  = "No tickets found. Submit one to see the AI in action!"
)

type ticketsLoadedMsg struct {
	tickets []domain.Ticket
	err     error
}

type resolveResultMsg struct {
	id  string
	err error
}

// DashboardModel is the terminal rendering of the admin dashboard.
type DashboardModel struct {
	ctx       context.Context
	api       portal.TicketAPI
	dashboard *portal.Dashboard

	spinner spinner.Model
	keys    DashboardKeyMap
	theme   Theme

	cursor int
	height int
	notice string
}

// NewDashboardModel builds a dashboard backed by api.
func NewDashboardModel(ctx context.Context, api portal.TicketAPI) DashboardModel {
	return DashboardModel{
		ctx:       ctx,
		api:       api,
		dashboard: portal.NewDashboard(api),
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		keys:      DefaultDashboardKeyMap,
		theme:     DefaultTheme,
	}
}

// Dashboard exposes the underlying state.
func (m DashboardModel) Dashboard() *portal.Dashboard {
	return m.dashboard
}

// Init fetches the list on start.
func (m DashboardModel) Init() tea.Cmd {
	return m.refresh()
}

// refresh returns nil when a fetch is already in flight.
func (m DashboardModel) refresh() tea.Cmd {
	if !m.dashboard.StartLoad() {
		return nil
	}
	ctx, api := m.ctx, m.api
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		tickets, err := api.ListTickets(ctx)
		return ticketsLoadedMsg{tickets: tickets, err: err}
	})
}

// Update implements tea.Model.
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case ticketsLoadedMsg:
		m.dashboard.FinishLoad(msg.tickets, msg.err)
		if msg.err != nil {
			m.notice = "Failed to fetch tickets: " + msg.err.Error()
		}
		m.clampCursor()
		return m, nil

	case resolveResultMsg:
		if msg.err == nil {
			return m, nil
		}
		m.notice = "Failed to update status; reloading."
		return m, m.refresh()

	case spinner.TickMsg:
		if !m.dashboard.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			m.cursor++
			m.clampCursor()
		case key.Matches(msg, m.keys.Refresh):
			m.notice = ""
			return m, m.refresh()
		case key.Matches(msg, m.keys.Resolve):
			return m, m.resolveSelected()
		}
	}
	return m, nil
}

func (m *DashboardModel) resolveSelected() tea.Cmd {
	tickets := m.dashboard.Tickets()
	if m.cursor >= len(tickets) {
		return nil
	}
	id := tickets[m.cursor].ID
	if !m.dashboard.MarkResolved(id) {
		return nil
	}
	m.notice = ""
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		_, err := api.UpdateStatus(ctx, id, domain.TicketStatusResolved)
		return resolveResultMsg{id: id, err: err}
	}
}

func (m *DashboardModel) clampCursor() {
	count := len(m.dashboard.Tickets())
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View implements tea.Model.
func (m DashboardModel) View() string {
	var b strings.Builder
	b.WriteString(m.header() + "\n")

	if m.notice != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.notice) + "\n")
	}

	tickets := m.dashboard.Tickets()
	switch {
	case m.dashboard.Empty():
		b.WriteString("\n" + m.theme.faint().Render(emptyStateMessage) + "\n")
	default:
		b.WriteString(m.cards(tickets))
	}

	b.WriteString("\n" + m.theme.help().Render("j/k move • x resolve • r refresh • q quit"))
	return b.String()
}

func (m DashboardModel) header() string {
	refresh := "[r] Refresh"
	if m.dashboard.Loading() {
		refresh = m.spinner.View() + " Loading..."
	}
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.title().Render("Support Tickets"),
		m.theme.faint().Render("Real-time AI classification and routing"),
	)
	gap := cardWidth - lipgloss.Width(left) - lipgloss.Width(refresh)
	if gap < 1 {
		gap = 1
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), m.theme.faint().Render(refresh))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(0, 1).
		Render(row)
}

// cards renders as many cards as fit, keeping the cursor visible.
func (m DashboardModel) cards(tickets []domain.Ticket) string {
	rendered := make([]string, len(tickets))
	for i := range tickets {
		rendered[i] = m.card(&tickets[i], i == m.cursor)
	}
	if m.height <= 0 || len(rendered) == 0 || m.cursor >= len(rendered) {
		return strings.Join(rendered, "\n")
	}

	budget := m.height - 6
	start := m.cursor
	used := lipgloss.Height(rendered[start])
	for start > 0 && used+lipgloss.Height(rendered[start-1]) <= budget/2 {
		start--
		used += lipgloss.Height(rendered[start])
	}
	end := m.cursor + 1
	for end < len(rendered) && used+lipgloss.Height(rendered[end]) <= budget {
		used += lipgloss.Height(rendered[end])
		end++
	}
	return strings.Join(rendered[start:end], "\n")
}

func (m DashboardModel) card(ticket *domain.Ticket, selected bool) string {
	route := m.theme.outlineLabel().Render(ticket.RouteTo.Label())
	priority := m.theme.badgeStyle(portal.PriorityBadge(ticket.Priority)).Render(string(ticket.Priority))
	gap := cardWidth - 4 - lipgloss.Width(route) - lipgloss.Width(priority)
	if gap < 1 {
		gap = 1
	}
	top := lipgloss.JoinHorizontal(lipgloss.Center, route, strings.Repeat(" ", gap), priority)

	lines := []string{
		top,
		m.theme.title().Render(portal.CategoryTitle(ticket.Category)),
		m.theme.faint().Render(ticket.CreatedAt.Local().Format("Jan 2, 2006 3:04 PM")),
		lipgloss.NewStyle().Italic(true).Width(cardWidth - 4).Render(fmt.Sprintf("%q", ticket.Summary)),
		fmt.Sprintf("From: %s  %s", lipgloss.NewStyle().Bold(true).Render(ticket.Name), m.theme.faint().Render(ticket.Email)),
		m.theme.faint().Width(cardWidth - 4).Render(preview(ticket.Message, messagePreviewRune)),
		m.statusLine(ticket),
	}

	border := m.theme.BorderColor
	if selected {
		border = m.theme.SelectedColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(cardWidth).
		Render(strings.Join(lines, "\n"))
}

func (m DashboardModel) statusLine(ticket *domain.Ticket) string {
	if ticket.Status == domain.TicketStatusResolved {
		return m.theme.faint().Render("Resolved")
	}
	return lipgloss.NewStyle().Foreground(m.theme.Success).Bold(true).Render("✓ Resolve [x]")
}

func preview(text string, limit int) string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "…"
}
