// Package lettergen wraps the text-generation collaborator used to draft
// appeal letters.  The backend is any OpenAI-compatible completion endpoint;
// all failures are reported with GEN_* codes and are recovered upstream by
// the composer's deterministic template path, never surfaced to callers.
package lettergen

import (
	"context"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/pkg/errors"
)

// Generator produces appeal letter prose from a structured prompt.  A nil
// Generator is valid and means template-only composition.
type Generator interface {
	Generate(ctx context.Context, prompt *LetterPrompt) (string, error)
}

// Observer records the outcome and latency of each completion call.
type Observer interface {
	ObserveLLMRequest(status string, seconds float64)
}

// Status labels reported to the observer.
const (
	statusSuccess = "success"
	statusFailure = "failure"
	statusTimeout = "timeout"
	statusEmpty   = "empty"
)

// Option configures optional generator collaborators.
type Option func(*openaiGenerator)

// WithObserver wires completion metrics into the generator.
func WithObserver(obs Observer) Option {
	return func(g *openaiGenerator) { g.obs = obs }
}

// Config holds the generation backend parameters.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// ApplyDefaults fills zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
}

// completionModel is the slice of the langchaingo client the generator uses,
// narrowed for testability.
type completionModel interface {
	Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error)
}

type openaiGenerator struct {
	model  completionModel
	cfg    Config
	logger logging.Logger
	obs    Observer
}

// NewGenerator constructs a Generator backed by an OpenAI-compatible
// endpoint.  The API key may be empty for endpoints that do not check it.
func NewGenerator(cfg Config, logger logging.Logger, opts ...Option) (Generator, error) {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		// The client requires a token even for unauthenticated endpoints.
		apiKey = "unused"
	}

	clientOpts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGenerationUnavailable, "failed to build completion client")
	}

	g := &openaiGenerator{
		model:  llm,
		cfg:    cfg,
		logger: logger.Named("lettergen"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *openaiGenerator) observe(status string, elapsed time.Duration) {
	if g.obs != nil {
		g.obs.ObserveLLMRequest(status, elapsed.Seconds())
	}
}

// Generate calls the completion backend with a bounded timeout.  Timeouts
// map to GEN_002, empty completions to GEN_004, everything else to GEN_001.
func (g *openaiGenerator) Generate(ctx context.Context, prompt *LetterPrompt) (string, error) {
	if prompt == nil {
		return "", errors.New(errors.ErrCodeGenerationFailed, "nil prompt")
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	start := time.Now()
	text, err := g.model.Call(ctx, prompt.Build(),
		llms.WithMaxTokens(g.cfg.MaxTokens),
		llms.WithTemperature(g.cfg.Temperature),
	)
	elapsed := time.Since(start)

	if err != nil {
		code, status := errors.ErrCodeGenerationFailed, statusFailure
		if ctx.Err() == context.DeadlineExceeded {
			code, status = errors.ErrCodeGenerationTimeout, statusTimeout
		}
		g.observe(status, elapsed)
		g.logger.Warn("letter generation failed",
			logging.Duration("elapsed", elapsed),
			logging.Err(err),
		)
		return "", errors.Wrap(err, code, "completion request failed")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		g.observe(statusEmpty, elapsed)
		return "", errors.New(errors.ErrCodeGenerationEmpty, "completion returned empty text")
	}

	g.observe(statusSuccess, elapsed)
	g.logger.Debug("letter generated",
		logging.Duration("elapsed", elapsed),
		logging.Int("length", len(text)),
	)
	return text, nil
}
