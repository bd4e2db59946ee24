package repositories

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careloop/appealgen/internal/domain/payer"
	"github.com/careloop/appealgen/internal/infrastructure/monitoring/logging"
	"github.com/careloop/appealgen/pkg/errors"
)

const payerColumns = `id, name, aliases, appeals_phone, appeal_deadline_days,
	required_docs, tips, total_appeals, successful_appeals`

// PayerRepository persists the payer reference directory.
type PayerRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPayerRepository constructs a ready-to-use PayerRepository.
func NewPayerRepository(pool *pgxpool.Pool, logger logging.Logger) *PayerRepository {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PayerRepository{pool: pool, logger: logger.Named("payer_repo")}
}

var _ payer.Repository = (*PayerRepository)(nil)

// GetByName finds a payer by canonical name, then falls back to alias-aware
// matching over the full directory.  The directory is small (single digits),
// so the scan stays cheap.
func (r *PayerRepository) GetByName(ctx context.Context, name string) (*payer.Payer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+payerColumns+` FROM payers WHERE lower(name) = lower($1)`, name)
	p, err := scanPayer(row)
	if err == nil {
		return p, nil
	}
	if !stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load payer")
	}

	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, candidate := range all {
		if candidate.MatchesName(name) {
			return candidate, nil
		}
	}
	return nil, errors.New(errors.ErrCodePayerNotFound, "payer not found").
		WithDetail("name=" + name)
}

// ListAll returns the full payer directory ordered by name.
func (r *PayerRepository) ListAll(ctx context.Context) ([]*payer.Payer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+payerColumns+` FROM payers ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list payers")
	}
	defer rows.Close()

	out := []*payer.Payer{}
	for rows.Next() {
		p, err := scanPayer(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan payer row")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate payer rows")
	}
	return out, nil
}

// Seed inserts the built-in directory when the table is empty.  Existing rows
// are left untouched so operator edits survive restarts.
func (r *PayerRepository) Seed(ctx context.Context, payers []*payer.Payer) error {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM payers`).Scan(&count); err != nil {
		return errors.Wrap(err, errors.ErrCodePayerSeedFailed, "failed to count payers")
	}
	if count > 0 {
		return nil
	}

	for _, p := range payers {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO payers (`+payerColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (name) DO NOTHING`,
			p.ID, p.Name, p.Aliases, p.AppealsPhone, p.AppealDeadlineDays,
			p.RequiredDocs, p.Tips, p.TotalAppeals, p.SuccessfulAppeals,
		)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodePayerSeedFailed, "failed to seed payer").
				WithDetail("name=" + p.Name)
		}
	}
	r.logger.Info("seeded payer directory", logging.Int("count", len(payers)))
	return nil
}

// IncrementAppealCount bumps per-payer appeal statistics.
func (r *PayerRepository) IncrementAppealCount(ctx context.Context, id uuid.UUID, successful bool) error {
	successInc := 0
	if successful {
		successInc = 1
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE payers
		SET total_appeals = total_appeals + 1,
		    successful_appeals = successful_appeals + $1
		WHERE id = $2`, successInc, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update payer statistics")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodePayerNotFound, "payer not found").
			WithDetail("id=" + id.String())
	}
	return nil
}

func scanPayer(row rowScanner) (*payer.Payer, error) {
	var p payer.Payer
	err := row.Scan(
		&p.ID, &p.Name, &p.Aliases, &p.AppealsPhone, &p.AppealDeadlineDays,
		&p.RequiredDocs, &p.Tips, &p.TotalAppeals, &p.SuccessfulAppeals,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
