package profile

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accredis/internal/clinic/models"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
)

func TestPostgresStore_Profile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)
	ctx := context.Background()
	now := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	p := &models.Profile{ID: id.NewUserID(), FirstName: "Jo", LastName: "Ng", Role: id.RoleManager, CreatedAt: now, UpdatedAt: now}

	t.Run("duplicate maps to already used", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "profiles_pkey"})
		assert.ErrorIs(t, store.Create(ctx, p), sentinel.ErrAlreadyUsed)
	})

	t.Run("scans clinic membership", func(t *testing.T) {
		clinic := id.NewClinicID()
		mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "role", "clinic_id", "created_at", "updated_at"}).
				AddRow(p.ID.String(), "Jo", "Ng", "manager", clinic.String(), now, now))

		found, err := store.FindByID(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, found.ClinicID)
		assert.Equal(t, clinic, *found.ClinicID)
		assert.Equal(t, id.RoleManager, found.Role)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
