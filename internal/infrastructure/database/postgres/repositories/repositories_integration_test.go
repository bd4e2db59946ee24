//go:build integration

// Integration tests for the PostgreSQL repositories.  They run against the
// database named by APPEALGEN_TEST_DATABASE_URL and are gated behind the
// "integration" build tag; without the variable they skip.
package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/domain/payer"
	"github.com/careloop/appealgen/internal/infrastructure/database/postgres"
	"github.com/careloop/appealgen/internal/infrastructure/database/postgres/repositories"
	"github.com/careloop/appealgen/pkg/errors"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("APPEALGEN_TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("APPEALGEN_TEST_DATABASE_URL not set")
	}

	require.NoError(t, postgres.RunMigrations(dbURL, "file://../../../../../migrations"))

	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), `TRUNCATE appeals, payers`)
	require.NoError(t, err)
	return pool
}

func sampleAppeal() *denial.Appeal {
	now := time.Now().UTC().Truncate(time.Microsecond)
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	return &denial.Appeal{
		ID:                uuid.NewString(),
		PatientName:       "Jane Doe",
		MemberID:          "W123456789",
		PayerName:         "Aetna",
		Reason:            denial.ReasonMedicalNecessity,
		ReasonText:        "not medically necessary",
		DenialDate:        &date,
		ClaimNumber:       "CLM-2024-8891",
		ProcedureCodes:    []string{"27447"},
		DiagnosisCodes:    []string{"M17.11"},
		AppealLetter:      "Dear Appeals Department, ...",
		RequiredDocuments: []string{"Copy of denial letter"},
		ConfidenceScore:   0.88,
		DenialText:        "raw denial text",
		Status:            denial.StatusGenerated,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestAppealRepositorySaveAndGet(t *testing.T) {
	repo := repositories.NewAppealRepository(testPool(t), nil)
	ctx := context.Background()

	a := sampleAppeal()
	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.PayerName, got.PayerName)
	assert.Equal(t, a.Reason, got.Reason)
	assert.Equal(t, a.ProcedureCodes, got.ProcedureCodes)
	assert.Equal(t, a.AppealLetter, got.AppealLetter)
	assert.InDelta(t, a.ConfidenceScore, got.ConfidenceScore, 1e-9)
}

func TestAppealRepositoryGetMissing(t *testing.T) {
	repo := repositories.NewAppealRepository(testPool(t), nil)

	_, err := repo.GetByID(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAppealNotFound))
}

func TestAppealRepositoryListRecentOrdering(t *testing.T) {
	repo := repositories.NewAppealRepository(testPool(t), nil)
	ctx := context.Background()

	first := sampleAppeal()
	second := sampleAppeal()
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
}

func TestAppealRepositoryUpdateStatus(t *testing.T) {
	repo := repositories.NewAppealRepository(testPool(t), nil)
	ctx := context.Background()

	a := sampleAppeal()
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.UpdateStatus(ctx, a.ID, denial.StatusSubmitted))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, denial.StatusSubmitted, got.Status)

	err = repo.UpdateStatus(ctx, uuid.NewString(), denial.StatusApproved)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAppealNotFound))
}

func TestPayerRepositorySeedAndLookup(t *testing.T) {
	repo := repositories.NewPayerRepository(testPool(t), nil)
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx, payer.SeedPayers()))
	// Seeding twice must not duplicate.
	require.NoError(t, repo.Seed(ctx, payer.SeedPayers()))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(payer.SeedPayers()))

	byName, err := repo.GetByName(ctx, "Aetna")
	require.NoError(t, err)
	byAlias, err := repo.GetByName(ctx, "UHC")
	require.NoError(t, err)
	assert.Equal(t, "Aetna", byName.Name)
	assert.Equal(t, "UnitedHealthcare", byAlias.Name)

	_, err = repo.GetByName(ctx, "Nobody Mutual")
	assert.True(t, errors.IsCode(err, errors.ErrCodePayerNotFound))
}

func TestPayerRepositoryIncrementAppealCount(t *testing.T) {
	repo := repositories.NewPayerRepository(testPool(t), nil)
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx, payer.SeedPayers()))
	p, err := repo.GetByName(ctx, "Cigna")
	require.NoError(t, err)

	require.NoError(t, repo.IncrementAppealCount(ctx, p.ID, false))
	require.NoError(t, repo.IncrementAppealCount(ctx, p.ID, true))

	got, err := repo.GetByName(ctx, "Cigna")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalAppeals)
	assert.Equal(t, 1, got.SuccessfulAppeals)
}
