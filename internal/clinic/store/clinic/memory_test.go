package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"accredis/internal/clinic/models"
	id "accredis/pkg/domain"
	"accredis/pkg/platform/sentinel"
)

type ClinicStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	base  time.Time
}

func TestClinicStoreSuite(t *testing.T) {
	suite.Run(t, new(ClinicStoreSuite))
}

func (s *ClinicStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.base = time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
}

func (s *ClinicStoreSuite) newClinic(slug string, owner id.UserID, offset time.Duration) *models.Clinic {
	return &models.Clinic{
		ID:        id.NewClinicID(),
		Name:      "Clinic " + slug,
		Address:   "1 Test St",
		State:     id.StateQLD,
		Slug:      slug,
		OwnerID:   owner,
		CreatedAt: s.base.Add(offset),
		UpdatedAt: s.base.Add(offset),
	}
}

func (s *ClinicStoreSuite) TestCreateAndFind() {
	owner := id.NewUserID()
	c := s.newClinic("north", owner, 0)
	s.Require().NoError(s.store.Create(s.ctx, c))

	found, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Name, found.Name)

	found.Name = "mutated outside"
	again, err := s.store.FindByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.Name, again.Name, "returned records are copies")

	_, err = s.store.FindByID(s.ctx, id.NewClinicID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ClinicStoreSuite) TestSlugUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, s.newClinic("harbour", id.NewUserID(), 0)))

	err := s.store.Create(s.ctx, s.newClinic("harbour", id.NewUserID(), 0))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *ClinicStoreSuite) TestListings() {
	owner := id.NewUserID()
	second := s.newClinic("b", owner, time.Hour)
	first := s.newClinic("a", owner, 0)
	foreign := s.newClinic("c", id.NewUserID(), 2*time.Hour)
	for _, c := range []*models.Clinic{second, first, foreign} {
		s.Require().NoError(s.store.Create(s.ctx, c))
	}

	ids, err := s.store.ListIDsByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Equal([]id.ClinicID{first.ID, second.ID}, ids)

	listed, err := s.store.ListByIDs(s.ctx, []id.ClinicID{foreign.ID, id.NewClinicID(), first.ID})
	s.Require().NoError(err)
	s.Require().Len(listed, 2)
	s.Equal(first.ID, listed[0].ID)
	s.Equal(foreign.ID, listed[1].ID)
}

func (s *ClinicStoreSuite) TestExecute() {
	c := s.newClinic("exec", id.NewUserID(), 0)
	s.Require().NoError(s.store.Create(s.ctx, c))

	s.Run("applies mutation after validation", func() {
		updated, err := s.store.Execute(s.ctx, c.ID,
			func(*models.Clinic) error { return nil },
			func(cl *models.Clinic) { cl.Name = "Renamed" },
		)
		s.Require().NoError(err)
		s.Equal("Renamed", updated.Name)

		found, _ := s.store.FindByID(s.ctx, c.ID)
		s.Equal("Renamed", found.Name)
	})

	s.Run("validation failure leaves record untouched", func() {
		refuse := errors.New("refused")
		_, err := s.store.Execute(s.ctx, c.ID,
			func(*models.Clinic) error { return refuse },
			func(cl *models.Clinic) { cl.Name = "Never" },
		)
		s.ErrorIs(err, refuse)

		found, _ := s.store.FindByID(s.ctx, c.ID)
		s.Equal("Renamed", found.Name)
	})

	s.Run("unknown id", func() {
		_, err := s.store.Execute(s.ctx, id.NewClinicID(),
			func(*models.Clinic) error { return nil },
			func(*models.Clinic) {},
		)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}
