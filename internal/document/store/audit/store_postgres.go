package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"accredis/internal/document/models"
	"accredis/internal/platform/postgres"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
	txcontext "accredis/pkg/platform/tx"
)

const auditColumns = `id, document_id, document_version, clinic_id, score, issues, recommendations, coverage, audited_by, audited_at`

// PostgresStore keeps audits in PostgreSQL with findings in JSONB columns.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, a *models.Audit) error {
	issues, err := json.Marshal(a.Issues)
	if err != nil {
		return fmt.Errorf("marshal audit issues: %w", err)
	}
	recs, err := json.Marshal(a.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal audit recommendations: %w", err)
	}
	coverage, err := json.Marshal(a.Coverage)
	if err != nil {
		return fmt.Errorf("marshal audit coverage: %w", err)
	}

	_, err = txcontext.Or(ctx, s.db).ExecContext(ctx,
		`INSERT INTO audits (`+auditColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(a.ID), uuid.UUID(a.DocumentID), a.DocumentVersion, uuid.UUID(a.ClinicID), a.Score,
		issues, recs, coverage, uuid.UUID(a.AuditedBy), a.AuditedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "audits_pkey") {
			return fmt.Errorf("audit id taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByDocument(ctx context.Context, docID id.DocumentID) ([]*models.Audit, error) {
	rows, err := txcontext.Or(ctx, s.db).QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audits WHERE document_id = $1 ORDER BY audited_at DESC`, uuid.UUID(docID))
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer rows.Close()

	out := []*models.Audit{}
	for rows.Next() {
		var (
			a                        models.Audit
			rawID, rawDoc, rawClinic uuid.UUID
			rawAuditor               uuid.UUID
			issues, recs, coverage   []byte
		)
		if err := rows.Scan(&rawID, &rawDoc, &a.DocumentVersion, &rawClinic, &a.Score,
			&issues, &recs, &coverage, &rawAuditor, &a.AuditedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		a.ID = id.AuditID(rawID)
		a.DocumentID = id.DocumentID(rawDoc)
		a.ClinicID = id.ClinicID(rawClinic)
		a.AuditedBy = id.UserID(rawAuditor)
		if err := json.Unmarshal(issues, &a.Issues); err != nil {
			return nil, fmt.Errorf("decode audit issues: %w", err)
		}
		if err := json.Unmarshal(recs, &a.Recommendations); err != nil {
			return nil, fmt.Errorf("decode audit recommendations: %w", err)
		}
		if err := json.Unmarshal(coverage, &a.Coverage); err != nil {
			return nil, fmt.Errorf("decode audit coverage: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audits: %w", err)
	}
	return out, nil
}
