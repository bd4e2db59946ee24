// Package repositories provides the PostgreSQL-backed implementations of the
// domain repository interfaces.
package repositories

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careloop/appealgen/internal/domain/denial"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/pkg/errors"
)

const appealColumns = `id, patient_name, member_id, payer_name, denial_reason,
	denial_reason_text, denial_date, claim_number, procedure_codes,
	diagnosis_codes, appeal_letter, required_documents, confidence_score,
	denial_text, status, created_at, updated_at`

// AppealRepository persists generated appeals.  All queries are
// parameterised; every method takes the caller's context for cancellation.
type AppealRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewAppealRepository constructs a ready-to-use AppealRepository.
func NewAppealRepository(pool *pgxpool.Pool, logger logging.Logger) *AppealRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AppealRepository{pool: pool, logger: logger.Named("appeal_repo")}
}

var _ denial.Repository = (*AppealRepository)(nil)

// Save inserts a generated appeal record.
func (r *AppealRepository) Save(ctx context.Context, a *denial.Appeal) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appeals (`+appealColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		a.ID, a.PatientName, a.MemberID, a.PayerName, string(a.Reason),
		a.ReasonText, a.DenialDate, a.ClaimNumber, a.ProcedureCodes,
		a.DiagnosisCodes, a.AppealLetter, a.RequiredDocuments, a.ConfidenceScore,
		a.DenialText, string(a.Status), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert appeal",
			logging.String("appeal_id", a.ID), logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeAppealSaveFailed, "failed to insert appeal")
	}
	return nil
}

// GetByID loads an appeal by primary key.
func (r *AppealRepository) GetByID(ctx context.Context, appealID string) (*denial.Appeal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+appealColumns+` FROM appeals WHERE id = $1`, appealID)
	a, err := scanAppeal(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeAppealNotFound, "appeal not found").
				WithDetail("id=" + appealID)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load appeal")
	}
	return a, nil
}

// ListRecent returns the newest appeals first.
func (r *AppealRepository) ListRecent(ctx context.Context, limit int) ([]*denial.Appeal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appealColumns+` FROM appeals
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list appeals")
	}
	defer rows.Close()

	out := []*denial.Appeal{}
	for rows.Next() {
		a, err := scanAppeal(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan appeal row")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate appeal rows")
	}
	return out, nil
}

// UpdateStatus transitions an appeal's lifecycle status.
func (r *AppealRepository) UpdateStatus(ctx context.Context, appealID string, status denial.AppealStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appeals SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), appealID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update appeal status")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeAppealNotFound, "appeal not found").
			WithDetail("id=" + appealID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppeal(row rowScanner) (*denial.Appeal, error) {
	var (
		a      denial.Appeal
		reason string
		status string
	)
	err := row.Scan(
		&a.ID, &a.PatientName, &a.MemberID, &a.PayerName, &reason,
		&a.ReasonText, &a.DenialDate, &a.ClaimNumber, &a.ProcedureCodes,
		&a.DiagnosisCodes, &a.AppealLetter, &a.RequiredDocuments, &a.ConfidenceScore,
		&a.DenialText, &status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Reason = denial.ReasonType(reason)
	a.Status = denial.AppealStatus(status)
	return &a, nil
}
