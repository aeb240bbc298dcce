package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"accredis/internal/document/models"
	"accredis/internal/platform/postgres"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
	txcontext "accredis/pkg/platform/tx"
)

const documentColumns = `id, title, content, category, jurisdiction, status, version, tags, clinic_id,
	created_by, created_at, updated_at, signature_hash, signed_by, signed_at`

// PostgresStore persists documents in PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	runner txcontext.Runner
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, runner: txcontext.NewSQLRunner(db)}
}

func (s *PostgresStore) Create(ctx context.Context, d *models.Document) error {
	hash, signedBy, signedAt := signatureColumns(d.Signature)
	_, err := txcontext.Or(ctx, s.db).ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		uuid.UUID(d.ID), d.Title, d.Content, string(d.Category), string(d.Jurisdiction),
		string(d.Status), d.Version, pq.Array(d.Tags), uuid.UUID(d.ClinicID),
		uuid.UUID(d.CreatedBy), d.CreatedAt, d.UpdatedAt, hash, signedBy, signedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "documents_pkey") {
			return fmt.Errorf("document id taken: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	d, err := scanDocument(txcontext.Or(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, uuid.UUID(docID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []id.DocumentID) ([]*models.Document, error) {
	if len(ids) == 0 {
		return []*models.Document{}, nil
	}
	raw := make([]string, 0, len(ids))
	for _, docID := range ids {
		raw = append(raw, docID.String())
	}
	return s.query(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ANY($1::uuid[])`, pq.Array(raw))
}

// List applies the filter in SQL, newest first.
func (s *PostgresStore) List(ctx context.Context, f Filter) ([]*models.Document, error) {
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
	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))
	return s.query(ctx, query, args...)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Document, error) {
	rows, err := txcontext.Or(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := []*models.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// Execute locks the row with SELECT ... FOR UPDATE so a concurrent
// transition waits and then validates against the committed status.
func (s *PostgresStore) Execute(ctx context.Context, docID id.DocumentID, validate func(*models.Document) error, mutate func(*models.Document)) (*models.Document, error) {
	var result *models.Document
	err := s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		db := txcontext.Or(txCtx, s.db)
		d, err := scanDocument(db.QueryRowContext(txCtx,
			`SELECT `+documentColumns+` FROM documents WHERE id = $1 FOR UPDATE`, uuid.UUID(docID)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("document not found: %w", sentinel.ErrNotFound)
			}
			return fmt.Errorf("lock document: %w", err)
		}
		if err := validate(d); err != nil {
			return err
		}
		mutate(d)

		hash, signedBy, signedAt := signatureColumns(d.Signature)
		_, err = db.ExecContext(txCtx, `
			UPDATE documents
			SET title = $2, content = $3, category = $4, jurisdiction = $5, status = $6, version = $7,
				tags = $8, updated_at = $9,
				signature_hash = COALESCE(signature_hash, $10),
				signed_by = COALESCE(signed_by, $11),
				signed_at = COALESCE(signed_at, $12)
			WHERE id = $1`,
			uuid.UUID(d.ID), d.Title, d.Content, string(d.Category), string(d.Jurisdiction),
			string(d.Status), d.Version, pq.Array(d.Tags), d.UpdatedAt, hash, signedBy, signedAt,
		)
		if err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		result = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func signatureColumns(sig *models.Signature) (sql.NullString, uuid.NullUUID, sql.NullTime) {
	if sig == nil {
		return sql.NullString{}, uuid.NullUUID{}, sql.NullTime{}
	}
	return sql.NullString{String: sig.Hash, Valid: true},
		uuid.NullUUID{UUID: uuid.UUID(sig.SignedBy), Valid: true},
		sql.NullTime{Time: sig.SignedAt, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		d                           models.Document
		rawID, rawClinic, rawAuthor uuid.UUID
		category, jurisdiction      string
		status                      string
		tags                        pq.StringArray
		hash                        sql.NullString
		signedBy                    uuid.NullUUID
		signedAt                    sql.NullTime
	)
	if err := row.Scan(&rawID, &d.Title, &d.Content, &category, &jurisdiction, &status, &d.Version,
		&tags, &rawClinic, &rawAuthor, &d.CreatedAt, &d.UpdatedAt, &hash, &signedBy, &signedAt); err != nil {
		return nil, err
	}
	d.ID = id.DocumentID(rawID)
	d.ClinicID = id.ClinicID(rawClinic)
	d.CreatedBy = id.UserID(rawAuthor)
	d.Category = models.Category(category)
	d.Jurisdiction = models.Jurisdiction(jurisdiction)
	d.Status = models.Status(status)
	d.Tags = []string(tags)
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if hash.Valid && signedBy.Valid && signedAt.Valid {
		d.Signature = &models.Signature{
			Hash:     hash.String,
			SignedBy: id.UserID(signedBy.UUID),
			SignedAt: signedAt.Time.UTC(),
		}
	}
	return &d, nil
}
