package clinic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"accredis/internal/clinic/models"
	"accredis/internal/platform/postgres"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
	txcontext "accredis/pkg/platform/tx"
)

const clinicColumns = `id, name, abn, address, state, phone, email, slug, owner_id, created_at, updated_at`

// PostgresStore persists clinics in PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	runner txcontext.Runner
}

// NewPostgres constructs a PostgreSQL-backed clinic store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, runner: txcontext.NewSQLRunner(db)}
}

// Create inserts a clinic. A taken slug yields sentinel.ErrAlreadyUsed
// without aborting the surrounding transaction, so callers can retry with
// another candidate.
func (s *PostgresStore) Create(ctx context.Context, c *models.Clinic) error {
	query := `INSERT INTO clinics (` + clinicColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (slug) DO NOTHING`
	res, err := txcontext.Or(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(c.ID), c.Name, nullString(c.ABN), c.Address, string(c.State),
		nullString(c.Phone), nullString(c.Email), c.Slug, uuid.UUID(c.OwnerID),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return fmt.Errorf("clinic slug taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert clinic: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert clinic: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("clinic slug taken: %w", sentinel.ErrAlreadyUsed)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, clinicID id.ClinicID) (*models.Clinic, error) {
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE id = $1`
	c, err := scanClinic(txcontext.Or(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(clinicID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("clinic not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find clinic by id: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListByIDs(ctx context.Context, ids []id.ClinicID) ([]*models.Clinic, error) {
	if len(ids) == 0 {
		return []*models.Clinic{}, nil
	}
	raw := make([]string, 0, len(ids))
	for _, clinicID := range ids {
		raw = append(raw, clinicID.String())
	}
	query := `SELECT ` + clinicColumns + ` FROM clinics WHERE id = ANY($1::uuid[]) ORDER BY created_at`
	rows, err := txcontext.Or(ctx, s.db).QueryContext(ctx, query, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("list clinics: %w", err)
	}
	defer rows.Close()

	out := []*models.Clinic{}
	for rows.Next() {
		c, err := scanClinic(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clinic: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clinics: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListIDsByOwner(ctx context.Context, owner id.UserID) ([]id.ClinicID, error) {
	rows, err := txcontext.Or(ctx, s.db).QueryContext(ctx,
		`SELECT id FROM clinics WHERE owner_id = $1 ORDER BY created_at`, uuid.UUID(owner))
	if err != nil {
		return nil, fmt.Errorf("list owned clinics: %w", err)
	}
	defer rows.Close()

	ids := []id.ClinicID{}
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan clinic id: %w", err)
		}
		ids = append(ids, id.ClinicID(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owned clinics: %w", err)
	}
	return ids, nil
}

// Execute locks the clinic row with SELECT ... FOR UPDATE, runs validate
// and mutate, and writes the editable columns back in the same transaction.
func (s *PostgresStore) Execute(ctx context.Context, clinicID id.ClinicID, validate func(*models.Clinic) error, mutate func(*models.Clinic)) (*models.Clinic, error) {
	var result *models.Clinic
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		db := txcontext.Or(txCtx, s.db)
		query := `SELECT ` + clinicColumns + ` FROM clinics WHERE id = $1 FOR UPDATE`
		c, err := scanClinic(db.QueryRowContext(txCtx, query, uuid.UUID(clinicID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("clinic not found: %w", sentinel.ErrNotFound)
			}
			return fmt.Errorf("lock clinic: %w", err)
		}
		if err := validate(c); err != nil {
			return err
		}
		mutate(c)

		_, err = db.ExecContext(txCtx, `
			UPDATE clinics
			SET name = $2, abn = $3, address = $4, state = $5, phone = $6, email = $7, updated_at = $8
			WHERE id = $1`,
			uuid.UUID(c.ID), c.Name, nullString(c.ABN), c.Address, string(c.State),
			nullString(c.Phone), nullString(c.Email), c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update clinic: %w", err)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClinic(row rowScanner) (*models.Clinic, error) {
	var (
		c                 models.Clinic
		rawID, rawOwner   uuid.UUID
		state             string
		abn, phone, email sql.NullString
	)
	if err := row.Scan(&rawID, &c.Name, &abn, &c.Address, &state, &phone, &email,
		&c.Slug, &rawOwner, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = id.ClinicID(rawID)
	c.OwnerID = id.UserID(rawOwner)
	c.State = id.State(state)
	c.ABN = fromNullString(abn)
	c.Phone = fromNullString(phone)
	c.Email = fromNullString(email)
	return &c, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
