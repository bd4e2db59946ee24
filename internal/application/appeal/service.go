package appeal

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/domain/payer"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/internal/intelligence/denial_extractor"
	"github.com/careloop/appealgen/pkg/errors"
)

// Pipeline run outcomes reported to metrics.
const (
	OutcomeGenerated = "generated"
	OutcomeRejected  = "rejected"
)

// EventPublisher publishes appeal lifecycle events to the message bus.
// Publication is best effort: a broker failure is logged and never fails the
// originating request.
type EventPublisher interface {
	PublishGenerated(ctx context.Context, ev *denial.AppealGeneratedEvent) error
	PublishFailed(ctx context.Context, ev *denial.AppealFailedEvent) error
}

// LetterStore archives rendered letters in object storage.  Best effort, same
// as event publication.
type LetterStore interface {
	PutLetter(ctx context.Context, appealID string, letter []byte) (string, error)
}

// Metrics receives pipeline observations.  A nil Metrics is valid.
type Metrics interface {
	ObservePipelineRun(outcome string, seconds float64)
	ObserveConfidence(score float64)
	IncLetterSource(source string)
}

// Config holds orchestrator tunables.
type Config struct {
	// MinInputLength is the minimum rune count of raw denial text the
	// pipeline accepts.
	MinInputLength int
}

// ApplyDefaults fills zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.MinInputLength == 0 {
		c.MinInputLength = 50
	}
}

// Dependencies wires the orchestrator's collaborators.  Extractor, Scorer,
// Resolver, and Composer are required; the rest are optional side channels
// that degrade to no-ops when nil.
type Dependencies struct {
	Extractor denial_extractor.Extractor
	Scorer    *denial_extractor.Scorer
	Resolver  *RequirementsResolver
	Composer  *Composer

	Repository denial.Repository
	Payers     payer.Repository
	Events     EventPublisher
	Letters    LetterStore
	Metrics    Metrics
	Logger     logging.Logger
}

// Service orchestrates the appeal pipeline: validate, extract, score, resolve
// requirements, compose, then fan out to persistence, object storage, and the
// event bus.  The core path is fully deterministic for identical input when
// composition runs on the template path.
type Service struct {
	cfg Config

	extractor denial_extractor.Extractor
	scorer    *denial_extractor.Scorer
	resolver  *RequirementsResolver
	composer  *Composer

	repo    denial.Repository
	payers  payer.Repository
	events  EventPublisher
	letters LetterStore
	metrics Metrics
	logger  logging.Logger
}

// NewService builds the orchestrator.
func NewService(cfg Config, deps Dependencies) *Service {
	cfg.ApplyDefaults()
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		cfg:       cfg,
		extractor: deps.Extractor,
		scorer:    deps.Scorer,
		resolver:  deps.Resolver,
		composer:  deps.Composer,
		repo:      deps.Repository,
		payers:    deps.Payers,
		events:    deps.Events,
		letters:   deps.Letters,
		metrics:   deps.Metrics,
		logger:    logger.Named("appeal"),
	}
}

// Run executes the full pipeline on raw denial text.  Input shorter than the
// configured minimum is rejected with APL_002 before any pipeline stage runs.
// Persistence, archival, and event publication happen after the result is
// built and never fail the request.
func (s *Service) Run(ctx context.Context, rawText string, pctx *denial.PatientContext) (*denial.AppealResult, error) {
	start := time.Now()

	if utf8.RuneCountInString(rawText) < s.cfg.MinInputLength {
		s.observeRun(OutcomeRejected, start)
		s.publishFailed(ctx, "", "validation", errors.ErrCodeAppealInputTooShort)
		return nil, errors.Newf(errors.ErrCodeAppealInputTooShort,
			"denial text must be at least %d characters", s.cfg.MinInputLength)
	}

	extraction := s.extractor.Extract(rawText)
	score := s.scorer.Score(extraction)
	requirements := s.resolver.Resolve(extraction.PayerName, extraction.Reason)
	letter, source := s.composer.Compose(ctx, extraction, pctx, requirements)

	result := &denial.AppealResult{
		AppealID:          uuid.NewString(),
		AppealLetter:      letter,
		DenialInfo:        extraction,
		RequiredDocuments: requirements,
		ConfidenceScore:   score,
		LetterSource:      source,
		GeneratedAt:       time.Now().UTC(),
	}

	s.logger.Info("appeal generated",
		logging.String("appeal_id", result.AppealID),
		logging.String("payer", extraction.PayerName),
		logging.String("reason", extraction.Reason.String()),
		logging.Float64("confidence", score),
		logging.String("letter_source", string(source)),
	)

	s.persist(ctx, result, pctx)
	s.archive(ctx, result)
	s.publishGenerated(ctx, result)
	s.bumpPayerStats(ctx, extraction.PayerName)

	s.observeRun(OutcomeGenerated, start)
	if s.metrics != nil {
		s.metrics.ObserveConfidence(score)
		s.metrics.IncLetterSource(string(source))
	}
	return result, nil
}

// ExtractDenial runs extraction and scoring without composing a letter.
func (s *Service) ExtractDenial(rawText string) (*denial.Extraction, float64, error) {
	if utf8.RuneCountInString(rawText) < s.cfg.MinInputLength {
		return nil, 0, errors.Newf(errors.ErrCodeAppealInputTooShort,
			"denial text must be at least %d characters", s.cfg.MinInputLength)
	}
	extraction := s.extractor.Extract(rawText)
	return extraction, s.scorer.Score(extraction), nil
}

// ResolveRequirements exposes the documentation checklist lookup.
func (s *Service) ResolveRequirements(payerName string, reason denial.ReasonType) []string {
	return s.resolver.Resolve(payerName, reason)
}

// GetAppeal loads a persisted appeal by ID.
func (s *Service) GetAppeal(ctx context.Context, appealID string) (*denial.Appeal, error) {
	if s.repo == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "appeal persistence not configured")
	}
	return s.repo.GetByID(ctx, appealID)
}

// ListAppeals returns the most recent persisted appeals.
func (s *Service) ListAppeals(ctx context.Context, limit int) ([]*denial.Appeal, error) {
	if s.repo == nil {
		return nil, errors.New(errors.ErrCodeServiceUnavailable, "appeal persistence not configured")
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}

// UpdateStatus transitions a persisted appeal's lifecycle status.
func (s *Service) UpdateStatus(ctx context.Context, appealID string, status denial.AppealStatus) error {
	if s.repo == nil {
		return errors.New(errors.ErrCodeServiceUnavailable, "appeal persistence not configured")
	}
	if !status.IsValid() {
		return errors.Newf(errors.ErrCodeValidation, "invalid appeal status %q", status)
	}
	return s.repo.UpdateStatus(ctx, appealID, status)
}

func (s *Service) persist(ctx context.Context, result *denial.AppealResult, pctx *denial.PatientContext) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, denial.NewAppeal(result, pctx)); err != nil {
		s.logger.Error("failed to persist appeal",
			logging.String("appeal_id", result.AppealID), logging.Err(err))
		s.publishFailed(ctx, result.AppealID, "persistence", errors.ErrCodeAppealSaveFailed)
	}
}

func (s *Service) archive(ctx context.Context, result *denial.AppealResult) {
	if s.letters == nil {
		return
	}
	if _, err := s.letters.PutLetter(ctx, result.AppealID, []byte(result.AppealLetter)); err != nil {
		s.logger.Warn("failed to archive appeal letter",
			logging.String("appeal_id", result.AppealID), logging.Err(err))
	}
}

func (s *Service) publishGenerated(ctx context.Context, result *denial.AppealResult) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishGenerated(ctx, denial.NewAppealGeneratedEvent(result)); err != nil {
		s.logger.Warn("failed to publish generated event",
			logging.String("appeal_id", result.AppealID), logging.Err(err))
	}
}

func (s *Service) publishFailed(ctx context.Context, appealID, stage string, code errors.ErrorCode) {
	if s.events == nil {
		return
	}
	ev := denial.NewAppealFailedEvent(appealID, stage, code.String())
	if err := s.events.PublishFailed(ctx, ev); err != nil {
		s.logger.Warn("failed to publish failed event",
			logging.String("stage", stage), logging.Err(err))
	}
}

func (s *Service) bumpPayerStats(ctx context.Context, payerName string) {
	if s.payers == nil || payerName == "" {
		return
	}
	p, err := s.payers.GetByName(ctx, payerName)
	if err != nil || p == nil {
		return
	}
	if err := s.payers.IncrementAppealCount(ctx, p.ID, false); err != nil {
		s.logger.Warn("failed to update payer statistics",
			logging.String("payer", p.Name), logging.Err(err))
	}
}

func (s *Service) observeRun(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObservePipelineRun(outcome, time.Since(start).Seconds())
	}
}
