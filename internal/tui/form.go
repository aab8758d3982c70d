package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/spec-kit/support-intake/internal/domain"
	"github.com/spec-kit/support-intake/internal/portal"
)

const formWidth = 56

// focus positions, in tab order.
const (
	focusName = iota
	focusEmail
	focusMessage
	focusButton
	focusCount
)

type submitResultMsg struct {
	ticket *domain.Ticket
	err    error
}

// FormModel is the terminal rendering of the submission form.
type FormModel struct {
	ctx     context.Context
	creator portal.TicketCreator
	form    *portal.Form

	name    textinput.Model
	email   textinput.Model
	message textarea.Model
	spinner spinner.Model

	focus int
	keys  FormKeyMap
	theme Theme
}

// NewFormModel builds a form that submits through creator.
func NewFormModel(ctx context.Context, creator portal.TicketCreator) FormModel {
	name := textinput.New()
	name.Placeholder = "John Doe"
	name.Prompt = ""
	name.Width = formWidth - 4

	email := textinput.New()
	email.Placeholder = "john@example.com"
	email.Prompt = ""
	email.Width = formWidth - 4

	message := textarea.New()
	message.Placeholder = "Describe your issue..."
	message.ShowLineNumbers = false
	message.SetWidth(formWidth - 2)
	message.SetHeight(4)

	model := FormModel{
		ctx:     ctx,
		creator: creator,
		form:    portal.NewForm(),
		name:    name,
		email:   email,
		message: message,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		keys:    DefaultFormKeyMap,
		theme:   DefaultTheme,
	}
	model.setFocus(focusName)
	return model
}

// Form exposes the underlying state machine.
func (m FormModel) Form() *portal.Form {
	return m.form
}

// Init implements tea.Model.
func (m FormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m FormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submitResultMsg:
		m.form.Complete(msg.ticket, msg.err)
		if m.form.State == portal.FormSubmitted {
			m.name.SetValue("")
			m.email.SetValue("")
			m.message.SetValue("")
		}
		return m, nil

	case spinner.TickMsg:
		if m.form.State != portal.FormSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.form.State {
		case portal.FormSubmitting:
			return m, nil
		case portal.FormSubmitted:
			return m.updateSubmitted(msg)
		default:
			return m.updateEditing(msg)
		}
	}
	return m, nil
}

func (m FormModel) updateSubmitted(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Another):
		m.form.Reset()
		return m, m.setFocus(focusName)
	}
	return m, nil
}

func (m FormModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case msg.Type == tea.KeyEnter && m.focus == focusButton:
		return m.submit()
	case msg.Type == tea.KeyEnter && m.focus != focusMessage:
		return m, m.setFocus(m.focus + 1)
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.name, cmd = m.name.Update(msg)
		m.form.SetField(portal.FieldName, m.name.Value())
	case focusEmail:
		m.email, cmd = m.email.Update(msg)
		m.form.SetField(portal.FieldEmail, m.email.Value())
	case focusMessage:
		m.message, cmd = m.message.Update(msg)
		m.form.SetField(portal.FieldMessage, m.message.Value())
	}
	return m, cmd
}

func (m FormModel) submit() (tea.Model, tea.Cmd) {
	if !m.form.BeginSubmit() {
		return m, nil
	}
	ctx, creator := m.ctx, m.creator
	name, email, message := m.form.Name, m.form.Email, m.form.Message
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ticket, err := creator.CreateTicket(ctx, name, email, message)
		return submitResultMsg{ticket: ticket, err: err}
	})
}

func (m *FormModel) setFocus(position int) tea.Cmd {
	m.focus = position
	m.name.Blur()
	m.email.Blur()
	m.message.Blur()
	switch position {
	case focusName:
		return m.name.Focus()
	case focusEmail:
		return m.email.Focus()
	case focusMessage:
		return m.message.Focus()
	}
	return nil
}

// View implements tea.Model.
func (m FormModel) View() string {
	if m.form.State == portal.FormSubmitted {
		return m.viewSubmitted()
	}

	var b strings.Builder
	b.WriteString(m.theme.title().Render("Contact Support") + "\n")
	b.WriteString(m.theme.faint().Width(formWidth).Render(
		"Tell us how we can help. Our AI agent will ensure it gets to the right person instantly.") + "\n\n")

	b.WriteString(m.label("Name", focusName) + "\n" + m.name.View() + "\n\n")
	b.WriteString(m.label("Email", focusEmail) + "\n" + m.email.View() + "\n\n")
	b.WriteString(m.label("Message", focusMessage) + "\n" + m.message.View() + "\n\n")

	if m.form.Err != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.form.Err) + "\n\n")
	}

	b.WriteString(m.button() + "\n\n")
	b.WriteString(m.theme.help().Render("tab next • S-tab back • C-s submit • esc quit"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(1, 2).
		Render(b.String())
}

func (m FormModel) label(text string, position int) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(m.theme.NormalText)
	if m.focus == position && m.form.State == portal.FormEditing {
		style = style.Foreground(m.theme.Accent)
	}
	return style.Render(text)
}

func (m FormModel) button() string {
	style := lipgloss.NewStyle().Width(formWidth).Align(lipgloss.Center).
		Border(lipgloss.NormalBorder()).BorderForeground(m.theme.BorderColor)
	if m.form.State == portal.FormSubmitting {
		return style.Foreground(m.theme.FaintText).Render(m.spinner.View() + " Processing (AI Analysis)...")
	}
	if m.focus == focusButton {
		style = style.BorderForeground(m.theme.Accent).Foreground(m.theme.Accent).Bold(true)
	}
	return style.Render("Submit Request")
}

func (m FormModel) viewSubmitted() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(m.theme.Success).Render("✓ Ticket Submitted!") + "\n\n")
	b.WriteString(m.theme.faint().Width(formWidth).Render(
		"Our AI is analyzing your request and routing it to the right team. You'll hear from us shortly.") + "\n\n")
	if last := m.form.Last; last != nil && last.ID != "" {
		b.WriteString(m.theme.faint().Render("Reference: "+last.ID) + "\n\n")
	}
	b.WriteString(m.theme.help().Render("n submit another • esc quit"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.Success).
		Padding(1, 2).
		Render(b.String())
}
