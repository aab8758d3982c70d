package classifier

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-intake/internal/domain"
	"github.com/spec-kit/support-intake/internal/observability"
)

// FallbackSummary is stored when classification could not be completed.
const FallbackSummary = "AI processing failed, manual review required."

// Fallback reasons, also used as metric suffixes.
const (
	ReasonMissingAPIKey = "missing_api_key"
	ReasonModelError    = "model_error"
	ReasonParseError    = "parse_error"
	ReasonInvalidSchema = "invalid_schema"
)

// Generator sends a single prompt to a hosted text model and returns its reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Fallback returns the static classification used whenever the model call fails.
func Fallback() domain.Classification {
	return domain.Classification{
		Category: domain.CategoryOther,
		Priority: domain.TicketPriorityMedium,
		Summary:  FallbackSummary,
		RouteTo:  domain.RouteGeneral,
	}
}

// Classifier turns ticket text into a classification.
type Classifier struct {
	generator Generator
	logger    *zap.Logger
	metrics   *observability.Metrics
	timeout   time.Duration
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithTimeout bounds the model call. Zero leaves only the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Classifier) {
		c.timeout = timeout
	}
}

// WithMetrics records one counter per outcome.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Classifier) {
		c.metrics = metrics
	}
}

// New builds a Classifier. A nil generator means no API key was configured;
// every call then returns Fallback.
func New(generator Generator, logger *zap.Logger, opts ...Option) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Classifier{generator: generator, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify never returns an error: every failure is logged and replaced by Fallback.
func (c *Classifier) Classify(ctx context.Context, name, email, message string) domain.Classification {
	if c.generator == nil {
		return c.fallback(ReasonMissingAPIKey, errors.New("missing Gemini API key"))
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	text, err := c.generator.Generate(ctx, BuildPrompt(name, email, message))
	if err != nil {
		return c.fallback(ReasonModelError, err)
	}

	result, err := Parse(text, message)
	if err != nil {
		reason := ReasonParseError
		if errors.Is(err, ErrInvalidSchema) {
			reason = ReasonInvalidSchema
		}
		return c.fallback(reason, err)
	}

	c.metrics.Inc("classifier.ok")
	c.logger.Debug("ticket classified",
		zap.String("category", string(result.Category)),
		zap.String("priority", string(result.Priority)),
		zap.String("route_to", string(result.RouteTo)),
	)
	return result
}

func (c *Classifier) fallback(reason string, err error) domain.Classification {
	c.metrics.Inc("classifier.fallback." + reason)
	c.logger.Error("classification failed; using fallback", zap.String("reason", reason), zap.Error(err))
	return Fallback()
}
