package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/support-intake/internal/domain"
)

// summaryPrefixRunes is how much of the message stands in for a missing summary.
const summaryPrefixRunes = 50

var (
	// ErrMalformedJSON means the model reply could not be decoded as a JSON object.
	ErrMalformedJSON = errors.New("classifier: model reply is not a JSON object")
	// ErrInvalidSchema means a required field is missing or outside its closed set.
	ErrInvalidSchema = errors.New("classifier: model reply does not match schema")
)

// modelReply is the untrusted shape of the model's JSON. Every field is
// checked before it becomes a domain.Classification.
type modelReply struct {
	Category *string `json:"category"`
	Priority *string `json:"priority"`
	Summary  *string `json:"summary"`
	RouteTo  *string `json:"route_to"`
}

// Parse turns raw model text into a validated classification. message is
// used to derive a summary when the model omits one.
func Parse(text, message string) (domain.Classification, error) {
	var reply modelReply
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &reply); err != nil {
		return domain.Classification{}, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	category := domain.TicketCategory(normalize(reply.Category))
	if !category.Valid() {
		return domain.Classification{}, fmt.Errorf("%w: category %q", ErrInvalidSchema, deref(reply.Category))
	}
	priority := domain.TicketPriority(normalize(reply.Priority))
	if !priority.Valid() {
		return domain.Classification{}, fmt.Errorf("%w: priority %q", ErrInvalidSchema, deref(reply.Priority))
	}
	route := domain.Route(normalize(reply.RouteTo))
	if !route.Valid() {
		return domain.Classification{}, fmt.Errorf("%w: route_to %q", ErrInvalidSchema, deref(reply.RouteTo))
	}

	summary := strings.TrimSpace(deref(reply.Summary))
	if summary == "" {
		summary = DefaultSummary(message)
	}

	return domain.Classification{
		Category: category,
		Priority: priority,
		Summary:  summary,
		RouteTo:  route,
	}, nil
}

// StripCodeFence removes an optional markdown code fence around the reply,
// with or without a language tag.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimPrefix(trimmed, "```")
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		body = body[newline+1:]
	} else {
		body = ""
	}
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

// DefaultSummary is the first 50 characters of the message plus an ellipsis.
func DefaultSummary(message string) string {
	runes := []rune(message)
	if len(runes) > summaryPrefixRunes {
		runes = runes[:summaryPrefixRunes]
	}
	return string(runes) + "..."
}

func normalize(value *string) string {
	return strings.ToLower(strings.TrimSpace(deref(value)))
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
