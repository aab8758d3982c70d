// Package portal holds the client-side state of the submission form and the
// admin dashboard, independent of how they are rendered.
package portal

import (
	"context"
	"errors"

	"github.com/spec-kit/support-intake/internal/domain"
)

// FormErrorMessage is the only error text a submitter ever sees.
const FormErrorMessage = "Something went wrong. Please try again."

// ErrNotEditing is returned when a submit is attempted outside the editing state.
var ErrNotEditing = errors.New("portal: form is not editable")

// FormState is a step of the submission form.
type FormState int

const (
	FormEditing FormState = iota
	FormSubmitting
	FormSubmitted
)

func (s FormState) String() string {
	switch s {
	case FormSubmitting:
		return "submitting"
	case FormSubmitted:
		return "submitted"
	default:
		return "editing"
	}
}

// Field identifies a form input.
type Field int

const (
	FieldName Field = iota
	FieldEmail
	FieldMessage
)

// TicketCreator submits a support request.
type TicketCreator interface {
	CreateTicket(ctx context.Context, name, email, message string) (*domain.Ticket, error)
}

// Form is the submission form state machine. Err is non-empty only in the
// editing state after a failed submit.
type Form struct {
	Name    string
	Email   string
	Message string

	State FormState
	Err   string

	// Last is the ticket created by the most recent successful submit.
	Last *domain.Ticket
}

// NewForm returns an empty form ready for input.
func NewForm() *Form {
	return &Form{State: FormEditing}
}

// SetField updates one input. Edits are ignored unless the form is editing.
func (f *Form) SetField(field Field, value string) bool {
	if f.State != FormEditing {
		return false
	}
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldMessage:
		f.Message = value
	default:
		return false
	}
	return true
}

// Value returns the current text of one input.
func (f *Form) Value(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldMessage:
		return f.Message
	}
	return ""
}

// BeginSubmit moves editing to submitting and clears any previous error.
func (f *Form) BeginSubmit() bool {
	if f.State != FormEditing {
		return false
	}
	f.State = FormSubmitting
	f.Err = ""
	return true
}

// Complete resolves an in-flight submit. Success clears the inputs and shows
// the confirmation; failure returns to editing with the inputs kept.
func (f *Form) Complete(ticket *domain.Ticket, err error) {
	if f.State != FormSubmitting {
		return
	}
	if err != nil {
		f.State = FormEditing
		f.Err = FormErrorMessage
		return
	}
	f.Name, f.Email, f.Message = "", "", ""
	f.Last = ticket
	f.State = FormSubmitted
}

// Reset is the "submit another" action.
func (f *Form) Reset() {
	if f.State != FormSubmitted {
		return
	}
	f.State = FormEditing
	f.Err = ""
}

// Submit runs a full submit cycle against creator. The returned error is the
// underlying cause; the form itself only records FormErrorMessage.
func (f *Form) Submit(ctx context.Context, creator TicketCreator) error {
	if !f.BeginSubmit() {
		return ErrNotEditing
	}
	ticket, err := creator.CreateTicket(ctx, f.Name, f.Email, f.Message)
	f.Complete(ticket, err)
	return err
}
