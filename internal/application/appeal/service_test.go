package appeal

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/domain/payer"
	"github.com/careloop/appealgen/internal/intelligence/denial_extractor"
	"github.com/careloop/appealgen/internal/intelligence/lettergen"
	"github.com/careloop/appealgen/pkg/errors"
)

const denialText = `Dear Provider,

Aetna has completed its review of the prior authorization request for total knee arthroplasty (CPT 27447) for the member with Member ID: W123456789, Claim Number: CLM-2024-8891.

The request has been denied because the procedure is not medically necessary based on the documentation submitted. Denial date: 2024-03-15. An appeal must be filed by 2024-09-11.

Diagnosis: ICD-10 code M17.11.`

// --- test doubles -----------------------------------------------------------

type countingExtractor struct {
	inner denial_extractor.Extractor
	calls int
}

func (c *countingExtractor) Extract(rawText string) *denial.Extraction {
	c.calls++
	return c.inner.Extract(rawText)
}

type mockRepo struct {
	mu      sync.Mutex
	saved   []*denial.Appeal
	saveErr error

	lastListLimit int
	statusUpdates map[string]denial.AppealStatus
}

func (m *mockRepo) Save(_ context.Context, appeal *denial.Appeal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, appeal)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, appealID string) (*denial.Appeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.saved {
		if a.ID == appealID {
			return a, nil
		}
	}
	return nil, errors.New(errors.ErrCodeAppealNotFound, "appeal not found")
}

func (m *mockRepo) ListRecent(_ context.Context, limit int) ([]*denial.Appeal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastListLimit = limit
	return m.saved, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, appealID string, status denial.AppealStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statusUpdates == nil {
		m.statusUpdates = make(map[string]denial.AppealStatus)
	}
	m.statusUpdates[appealID] = status
	return nil
}

type mockEvents struct {
	mu        sync.Mutex
	generated []*denial.AppealGeneratedEvent
	failed    []*denial.AppealFailedEvent
	err       error
}

func (m *mockEvents) PublishGenerated(_ context.Context, ev *denial.AppealGeneratedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.generated = append(m.generated, ev)
	return nil
}

func (m *mockEvents) PublishFailed(_ context.Context, ev *denial.AppealFailedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.failed = append(m.failed, ev)
	return nil
}

type mockLetterStore struct {
	mu      sync.Mutex
	letters map[string]string
	err     error
}

func (m *mockLetterStore) PutLetter(_ context.Context, appealID string, letter []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if m.letters == nil {
		m.letters = make(map[string]string)
	}
	m.letters[appealID] = string(letter)
	return "letters/" + appealID + ".txt", nil
}

type mockMetrics struct {
	mu       sync.Mutex
	outcomes []string
	scores   []float64
	sources  []string
}

func (m *mockMetrics) ObservePipelineRun(outcome string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockMetrics) ObserveConfidence(score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, score)
}

func (m *mockMetrics) IncLetterSource(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, source)
}

type mockPayerRepo struct {
	mu         sync.Mutex
	payers     []*payer.Payer
	increments []uuid.UUID
}

func newMockPayerRepo() *mockPayerRepo {
	return &mockPayerRepo{payers: payer.SeedPayers()}
}

func (m *mockPayerRepo) GetByName(_ context.Context, name string) (*payer.Payer, error) {
	for _, p := range m.payers {
		if p.MatchesName(name) {
			return p, nil
		}
	}
	return nil, errors.New(errors.ErrCodePayerNotFound, "payer not found")
}

func (m *mockPayerRepo) ListAll(_ context.Context) ([]*payer.Payer, error) {
	return m.payers, nil
}

func (m *mockPayerRepo) Seed(_ context.Context, payers []*payer.Payer) error {
	m.payers = payers
	return nil
}

func (m *mockPayerRepo) IncrementAppealCount(_ context.Context, id uuid.UUID, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments = append(m.increments, id)
	return nil
}

// --- fixture ----------------------------------------------------------------

type serviceFixture struct {
	svc       *Service
	extractor *countingExtractor
	repo      *mockRepo
	events    *mockEvents
	letters   *mockLetterStore
	metrics   *mockMetrics
	payers    *mockPayerRepo
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		extractor: &countingExtractor{inner: denial_extractor.NewExtractor(nil, nil)},
		repo:      &mockRepo{},
		events:    &mockEvents{},
		letters:   &mockLetterStore{},
		metrics:   &mockMetrics{},
		payers:    newMockPayerRepo(),
	}
	f.svc = NewService(Config{}, Dependencies{
		Extractor:  f.extractor,
		Scorer:     denial_extractor.NewScorer(denial_extractor.ScoreWeights{}),
		Resolver:   NewRequirementsResolver(nil),
		Composer:   templateComposer(),
		Repository: f.repo,
		Payers:     f.payers,
		Events:     f.events,
		Letters:    f.letters,
		Metrics:    f.metrics,
	})
	return f
}

// --- tests ------------------------------------------------------------------

func TestRunScenario(t *testing.T) {
	f := newServiceFixture()

	res, err := f.svc.Run(context.Background(), denialText, nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	_, err = uuid.Parse(res.AppealID)
	assert.NoError(t, err, "appeal ID must be a UUID")
	assert.NotEmpty(t, res.AppealLetter)
	assert.NotEmpty(t, res.RequiredDocuments)
	assert.Equal(t, denial.LetterSourceTemplate, res.LetterSource)
	assert.False(t, res.GeneratedAt.IsZero())

	require.NotNil(t, res.DenialInfo)
	assert.Equal(t, "Aetna", res.DenialInfo.PayerName)
	assert.Equal(t, denial.ReasonMedicalNecessity, res.DenialInfo.Reason)
	assert.Equal(t, "CLM-2024-8891", res.DenialInfo.ClaimNumber)
	assert.GreaterOrEqual(t, res.ConfidenceScore, 0.6)
	assert.LessOrEqual(t, res.ConfidenceScore, 1.0)

	// Side channels all observed the run.
	require.Len(t, f.repo.saved, 1)
	assert.Equal(t, res.AppealID, f.repo.saved[0].ID)
	assert.Equal(t, denial.StatusGenerated, f.repo.saved[0].Status)

	require.Len(t, f.events.generated, 1)
	assert.Equal(t, res.AppealID, f.events.generated[0].AggregateID)
	assert.Equal(t, denial.ReasonMedicalNecessity, f.events.generated[0].Reason)

	assert.Equal(t, res.AppealLetter, f.letters.letters[res.AppealID])
	assert.Len(t, f.payers.increments, 1)

	assert.Equal(t, []string{OutcomeGenerated}, f.metrics.outcomes)
	assert.Equal(t, []string{string(denial.LetterSourceTemplate)}, f.metrics.sources)
	require.Len(t, f.metrics.scores, 1)
	assert.Equal(t, res.ConfidenceScore, f.metrics.scores[0])
}

func TestRunAssignsFreshIDPerCall(t *testing.T) {
	f := newServiceFixture()

	first, err := f.svc.Run(context.Background(), denialText, nil)
	require.NoError(t, err)
	second, err := f.svc.Run(context.Background(), denialText, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.AppealID, second.AppealID)
	// Everything except identity and timestamps is reproducible.
	assert.Equal(t, first.DenialInfo.Reason, second.DenialInfo.Reason)
	assert.Equal(t, first.ConfidenceScore, second.ConfidenceScore)
	assert.Equal(t, first.RequiredDocuments, second.RequiredDocuments)
	assert.Equal(t, first.AppealLetter, second.AppealLetter)
}

func TestRunRejectsShortInput(t *testing.T) {
	f := newServiceFixture()
	short := strings.Repeat("x", 49)

	res, err := f.svc.Run(context.Background(), short, nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAppealInputTooShort))

	// The pipeline never ran.
	assert.Zero(t, f.extractor.calls)
	assert.Empty(t, f.repo.saved)
	assert.Empty(t, f.events.generated)

	// The rejection is still observable.
	assert.Equal(t, []string{OutcomeRejected}, f.metrics.outcomes)
	require.Len(t, f.events.failed, 1)
	assert.Equal(t, "validation", f.events.failed[0].Stage)
	assert.Equal(t, errors.ErrCodeAppealInputTooShort.String(), f.events.failed[0].Code)
}

func TestRunAcceptsExactMinimumLength(t *testing.T) {
	f := newServiceFixture()

	res, err := f.svc.Run(context.Background(), strings.Repeat("x", 50), nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, denial.ReasonOther, res.DenialInfo.Reason)
	assert.NotEmpty(t, res.AppealLetter)
	assert.NotEmpty(t, res.RequiredDocuments)
}

func TestRunSideChannelFailuresDoNotFailRequest(t *testing.T) {
	f := newServiceFixture()
	f.repo.saveErr = errors.New(errors.ErrCodeDatabaseError, "connection refused")
	f.events.err = errors.New(errors.ErrCodeAppealEventFailed, "broker down")
	f.letters.err = errors.New(errors.ErrCodeStorageUploadFailed, "bucket missing")

	res, err := f.svc.Run(context.Background(), denialText, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.AppealLetter)
}

func TestRunGeneratorFailureStillProducesTemplateLetter(t *testing.T) {
	f := newServiceFixture()
	gen := &mockGenerator{fn: func(_ context.Context, _ *lettergen.LetterPrompt) (string, error) {
		return "", errors.New(errors.ErrCodeGenerationTimeout, "completion request failed")
	}}
	c := NewComposer(gen, nil)
	c.now = fixedClock
	f.svc.composer = c

	res, err := f.svc.Run(context.Background(), denialText, nil)
	require.NoError(t, err)
	assert.Equal(t, denial.LetterSourceTemplate, res.LetterSource)

	want, _ := templateComposer().Compose(context.Background(), res.DenialInfo, nil, res.RequiredDocuments)
	assert.Equal(t, want, res.AppealLetter)
}

func TestRunPatientContextReachesRecord(t *testing.T) {
	f := newServiceFixture()
	pctx := &denial.PatientContext{PatientName: "Jane Doe", MemberID: "CTX-99"}

	res, err := f.svc.Run(context.Background(), denialText, pctx)
	require.NoError(t, err)
	assert.Contains(t, res.AppealLetter, "Jane Doe")

	require.Len(t, f.repo.saved, 1)
	assert.Equal(t, "Jane Doe", f.repo.saved[0].PatientName)
	assert.Equal(t, "CTX-99", f.repo.saved[0].MemberID)
}

func TestExtractDenial(t *testing.T) {
	f := newServiceFixture()

	_, _, err := f.svc.ExtractDenial("too short")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAppealInputTooShort))

	ex, score, err := f.svc.ExtractDenial(denialText)
	require.NoError(t, err)
	assert.Equal(t, denial.ReasonMedicalNecessity, ex.Reason)
	assert.Greater(t, score, 0.0)
}

func TestResolveRequirementsNeverEmpty(t *testing.T) {
	f := newServiceFixture()

	assert.NotEmpty(t, f.svc.ResolveRequirements("", denial.ReasonOther))
	assert.NotEmpty(t, f.svc.ResolveRequirements("Unknown Mutual of Nowhere", denial.ReasonOther))
	for _, reason := range denial.AllReasons {
		assert.NotEmpty(t, f.svc.ResolveRequirements("Aetna", reason), "reason %s", reason)
	}
}

func TestGetAppealRoundTrip(t *testing.T) {
	f := newServiceFixture()

	res, err := f.svc.Run(context.Background(), denialText, nil)
	require.NoError(t, err)

	got, err := f.svc.GetAppeal(context.Background(), res.AppealID)
	require.NoError(t, err)
	assert.Equal(t, res.AppealLetter, got.AppealLetter)

	_, err = f.svc.GetAppeal(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAppealNotFound))
}

func TestListAppealsDefaultLimit(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.ListAppeals(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 20, f.repo.lastListLimit)

	_, err = f.svc.ListAppeals(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, f.repo.lastListLimit)
}

func TestUpdateStatus(t *testing.T) {
	f := newServiceFixture()

	res, err := f.svc.Run(context.Background(), denialText, nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateStatus(context.Background(), res.AppealID, denial.StatusSubmitted))
	assert.Equal(t, denial.StatusSubmitted, f.repo.statusUpdates[res.AppealID])

	err = f.svc.UpdateStatus(context.Background(), res.AppealID, denial.AppealStatus("bogus"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestServiceWithoutPersistence(t *testing.T) {
	svc := NewService(Config{}, Dependencies{
		Extractor: denial_extractor.NewExtractor(nil, nil),
		Scorer:    denial_extractor.NewScorer(denial_extractor.ScoreWeights{}),
		Resolver:  NewRequirementsResolver(nil),
		Composer:  templateComposer(),
	})

	res, err := svc.Run(context.Background(), denialText, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, res.AppealLetter)

	_, err = svc.GetAppeal(context.Background(), res.AppealID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}
