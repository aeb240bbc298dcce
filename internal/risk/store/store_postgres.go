package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"accredis/internal/platform/postgres"
	"accredis/internal/risk/models"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
	txcontext "accredis/pkg/platform/tx"
)

// score is a generated column and is never written.
const riskColumns = `id, title, description, category, severity, likelihood, status, mitigation_plan,
	owner_id, linked_docs, clinic_id, created_at, updated_at`

type PostgresStore struct {
	db     *sql.DB
	runner txcontext.Runner
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, runner: txcontext.NewSQLRunner(db)}
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Risk) error {
	_, err := txcontext.Or(ctx, s.db).ExecContext(ctx,
		`INSERT INTO risks (`+riskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(r.ID), r.Title, r.Description, string(r.Category), int(r.Severity), int(r.Likelihood),
		string(r.Status), nullString(r.MitigationPlan), nullUser(r.OwnerID), docArray(r.LinkedDocs),
		uuid.UUID(r.ClinicID), r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "risks_pkey") {
			return fmt.Errorf("risk id taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert risk: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, riskID id.RiskID) (*models.Risk, error) {
	r, err := scanRisk(txcontext.Or(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+riskColumns+` FROM risks WHERE id = $1`, uuid.UUID(riskID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("risk not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find risk by id: %w", err)
	}
	return r, nil
}

// List orders by the generated score column, then newest first.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]*models.Risk, error) {
	var (
		where = []string{"clinic_id = $1"}
		args  = []any{uuid.UUID(f.ClinicID)}
	)
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	if f.Category != nil {
		args = append(args, string(*f.Category))
		where = append(where, "category = $"+strconv.Itoa(len(args)))
	}
	args = append(args, f.limit())
	query := `SELECT ` + riskColumns + ` FROM risks WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY score DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := txcontext.Or(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list risks: %w", err)
	}
	defer rows.Close()

	out := []*models.Risk{}
	for rows.Next() {
		r, err := scanRisk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan risk: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risks: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Execute(ctx context.Context, riskID id.RiskID, validate func(*models.Risk) error, mutate func(*models.Risk)) (*models.Risk, error) {
	var result *models.Risk
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		db := txcontext.Or(txCtx, s.db)
		r, err := scanRisk(db.QueryRowContext(txCtx,
			`SELECT `+riskColumns+` FROM risks WHERE id = $1 FOR UPDATE`, uuid.UUID(riskID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("risk not found: %w", sentinel.ErrNotFound)
			}
			return fmt.Errorf("lock risk: %w", err)
		}
		if err := validate(r); err != nil {
			return err
		}
		mutate(r)

		_, err = db.ExecContext(txCtx, `
			UPDATE risks
			SET title = $2, description = $3, category = $4, severity = $5, likelihood = $6, status = $7,
				mitigation_plan = $8, owner_id = $9, linked_docs = $10, updated_at = $11
			WHERE id = $1`,
			uuid.UUID(r.ID), r.Title, r.Description, string(r.Category), int(r.Severity), int(r.Likelihood),
			string(r.Status), nullString(r.MitigationPlan), nullUser(r.OwnerID), docArray(r.LinkedDocs), r.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update risk: %w", err)
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullUser(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}

func docArray(docs []id.DocumentID) any {
	raw := make([]string, 0, len(docs))
	for _, d := range docs {
		raw = append(raw, d.String())
	}
	return pq.Array(raw)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRisk(row rowScanner) (*models.Risk, error) {
	var (
		r                    models.Risk
		rawID, rawClinic     uuid.UUID
		category, status     string
		severity, likelihood int
		plan                 sql.NullString
		owner                uuid.NullUUID
		linked               pq.StringArray
	)
	if err := row.Scan(&rawID, &r.Title, &r.Description, &category, &severity, &likelihood, &status,
		&plan, &owner, &linked, &rawClinic, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.ID = id.RiskID(rawID)
	r.ClinicID = id.ClinicID(rawClinic)
	r.Category = models.Category(category)
	r.Status = models.Status(status)
	r.Severity = models.Level(severity)
	r.Likelihood = models.Level(likelihood)
	if plan.Valid {
		r.MitigationPlan = &plan.String
	}
	if owner.Valid {
		u := id.UserID(owner.UUID)
		r.OwnerID = &u
	}
	r.LinkedDocs = make([]id.DocumentID, 0, len(linked))
	for _, raw := range linked {
		docID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse linked document: %w", err)
		}
		r.LinkedDocs = append(r.LinkedDocs, id.DocumentID(docID))
	}
	return &r, nil
}
