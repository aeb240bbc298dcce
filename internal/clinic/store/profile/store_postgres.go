package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"accredis/internal/clinic/models"
	"accredis/internal/platform/postgres"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
	txcontext "accredis/pkg/platform/tx"
)

const profileColumns = `id, first_name, last_name, role, clinic_id, created_at, updated_at`

// PostgresStore persists profiles in PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	runner txcontext.Runner
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, runner: txcontext.NewSQLRunner(db)}
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Profile) error {
	_, err := txcontext.Or(ctx, s.db).ExecContext(ctx,
		`INSERT INTO profiles (`+profileColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(p.ID), p.FirstName, p.LastName, string(p.Role), nullClinic(p.ClinicID), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "profiles_pkey") {
			return fmt.Errorf("profile exists: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	p, err := scanProfile(txcontext.Or(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Execute(ctx context.Context, userID id.UserID, validate func(*models.Profile) error, mutate func(*models.Profile)) (*models.Profile, error) {
	var result *models.Profile
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		db := txcontext.Or(txCtx, s.db)
		p, err := scanProfile(db.QueryRowContext(txCtx,
			`SELECT `+profileColumns+` FROM profiles WHERE id = $1 FOR UPDATE`, uuid.UUID(userID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
			}
			return fmt.Errorf("lock profile: %w", err)
		}
		if err := validate(p); err != nil {
			return err
		}
		mutate(p)
		_, err = db.ExecContext(txCtx, `
			UPDATE profiles
			SET first_name = $2, last_name = $3, role = $4, clinic_id = $5, updated_at = $6
			WHERE id = $1`,
			uuid.UUID(p.ID), p.FirstName, p.LastName, string(p.Role), nullClinic(p.ClinicID), p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		result = p
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

func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		p        models.Profile
		rawID    uuid.UUID
		role     string
		clinicID uuid.NullUUID
	)
	if err := row.Scan(&rawID, &p.FirstName, &p.LastName, &role, &clinicID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.ID = id.UserID(rawID)
	p.Role = id.Role(role)
	if clinicID.Valid {
		c := id.ClinicID(clinicID.UUID)
		p.ClinicID = &c
	}
	return &p, nil
}

func nullClinic(c *id.ClinicID) uuid.NullUUID {
	if c == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*c), Valid: true}
}
