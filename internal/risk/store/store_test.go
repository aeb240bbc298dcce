package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"accredis/internal/risk/models"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
)

func newRisk(clinicID id.ClinicID, sev, like models.Level, at time.Time) *models.Risk {
	r, err := models.NewRisk(id.NewRiskID(), clinicID, id.NewUserID(), models.Details{
		Title: "Risk", Description: "Something could go wrong", Category: models.CategoryWHS,
		Severity: sev, Likelihood: like,
	}, at)
	if err != nil {
		panic(err)
	}
	return r
}

type MemoryStoreSuite struct {
	suite.Suite
	ctx      context.Context
	store    *InMemory
	clinicID id.ClinicID
	now      time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
	s.clinicID = id.NewClinicID()
	s.now = time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) TestListOrdersByScore() {
	low := newRisk(s.clinicID, 1, 2, s.now)
	high := newRisk(s.clinicID, 5, 4, s.now)
	mediumOld := newRisk(s.clinicID, 3, 4, s.now)
	mediumNew := newRisk(s.clinicID, 4, 3, s.now.Add(time.Minute))
	foreign := newRisk(id.NewClinicID(), 5, 5, s.now)
	for _, r := range []*models.Risk{low, high, mediumOld, mediumNew, foreign} {
		s.Require().NoError(s.store.Create(s.ctx, r))
	}

	got, err := s.store.List(s.ctx, Filter{ClinicID: s.clinicID})
	s.Require().NoError(err)
	s.Require().Len(got, 4)
	s.Equal([]id.RiskID{high.ID, mediumNew.ID, mediumOld.ID, low.ID},
		[]id.RiskID{got[0].ID, got[1].ID, got[2].ID, got[3].ID})

	closed := models.StatusClosed
	got, err = s.store.List(s.ctx, Filter{ClinicID: s.clinicID, Status: &closed})
	s.Require().NoError(err)
	s.Empty(got)

	got, err = s.store.List(s.ctx, Filter{ClinicID: s.clinicID, Limit: 2})
	s.Require().NoError(err)
	s.Len(got, 2)
}

func (s *MemoryStoreSuite) TestCreateTwice() {
	r := newRisk(s.clinicID, 2, 2, s.now)
	s.Require().NoError(s.store.Create(s.ctx, r))
	s.ErrorIs(s.store.Create(s.ctx, r), sentinel.ErrAlreadyUsed)
}

func (s *MemoryStoreSuite) TestExecute() {
	r := newRisk(s.clinicID, 2, 2, s.now)
	s.Require().NoError(s.store.Create(s.ctx, r))

	s.Run("validation failure writes nothing", func() {
		_, err := s.store.Execute(s.ctx, r.ID,
			func(*models.Risk) error { return errors.New("nope") },
			func(r *models.Risk) { r.Title = "changed" },
		)
		s.Error(err)
		found, _ := s.store.FindByID(s.ctx, r.ID)
		s.Equal("Risk", found.Title)
	})

	s.Run("mutation is persisted", func() {
		_, err := s.store.Execute(s.ctx, r.ID,
			func(*models.Risk) error { return nil },
			func(r *models.Risk) { r.Severity = 5 },
		)
		s.Require().NoError(err)
		found, _ := s.store.FindByID(s.ctx, r.ID)
		s.Equal(10, found.Score())
	})

	s.Run("unknown risk", func() {
		_, err := s.store.Execute(s.ctx, id.NewRiskID(), func(*models.Risk) error { return nil }, func(*models.Risk) {})
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestReturnedRisksAreCopies() {
	r := newRisk(s.clinicID, 2, 2, s.now)
	s.Require().NoError(s.store.Create(s.ctx, r))
	r.Title = "mutated by caller"

	found, err := s.store.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("Risk", found.Title)
}

var riskCols = []string{"id", "title", "description", "category", "severity", "likelihood", "status",
	"mitigation_plan", "owner_id", "linked_docs", "clinic_id", "created_at", "updated_at"}

func TestPostgresStore_ListOrdersByScore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	store := NewPostgres(db)

	clinicID, docID, owner := id.NewClinicID(), id.NewDocumentID(), id.NewUserID()
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE clinic_id = $1 ORDER BY score DESC, created_at DESC LIMIT $2")).
		WithArgs(sqlmock.AnyArg(), 100).
		WillReturnRows(sqlmock.NewRows(riskCols).AddRow(
			id.NewRiskID().String(), "Fridge", "Power loss", "clinical", 5, 4, "open",
			"Backup generator", owner.String(), "{"+docID.String()+"}", clinicID.String(), now, now,
		))

	risks, err := store.List(context.Background(), Filter{ClinicID: clinicID})
	require.NoError(t, err)
	require.Len(t, risks, 1)
	assert.Equal(t, 20, risks[0].Score())
	assert.Equal(t, []id.DocumentID{docID}, risks[0].LinkedDocs)
	require.NotNil(t, risks[0].MitigationPlan)
	assert.Equal(t, "Backup generator", *risks[0].MitigationPlan)
	require.NotNil(t, risks[0].OwnerID)
	assert.Equal(t, owner, *risks[0].OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM risks WHERE id = $1")).WillReturnRows(sqlmock.NewRows(riskCols))

	_, err = NewPostgres(db).FindByID(context.Background(), id.NewRiskID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestPostgresStore_ExecuteLocksRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	riskID := id.NewRiskID()
	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM risks WHERE id = $1 FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows(riskCols).AddRow(
			riskID.String(), "Fridge", "Power loss", "clinical", 2, 2, "open",
			nil, nil, "{}", id.NewClinicID().String(), now, now,
		))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE risks")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r, err := NewPostgres(db).Execute(context.Background(), riskID,
		func(*models.Risk) error { return nil },
		func(r *models.Risk) { r.Status = models.StatusMonitoring },
	)
	require.NoError(t, err)
	assert.Equal(t, models.StatusMonitoring, r.Status)
	assert.Nil(t, r.MitigationPlan)
	assert.Empty(t, r.LinkedDocs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
