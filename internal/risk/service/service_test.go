package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"accredis/internal/access"
	docmodels "accredis/internal/document/models"
	documentstore "accredis/internal/document/store/document"
	"accredis/internal/risk/export"
	"accredis/internal/risk/models"
	riskstore "accredis/internal/risk/store"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/audit/publishers/compliance"
	auditmemory "accredis/pkg/platform/audit/store/memory"
	"accredis/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	risks     *riskstore.InMemory
	documents *documentstore.InMemory
	trail     *auditmemory.InMemoryStore
	service   *Service

	clinicID id.ClinicID
	staff    access.Principal
	outsider access.Principal
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2025, 10, 20, 11, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.risks = riskstore.NewInMemory()
	s.documents = documentstore.NewInMemory()
	s.trail = auditmemory.NewInMemoryStore()
	s.service = New(s.risks, s.documents, WithAuditPublisher(compliance.New(s.trail)))

	s.clinicID = id.NewClinicID()
	other := id.NewClinicID()
	s.staff = access.Principal{ID: id.NewUserID(), Role: id.RoleStaff, ClinicID: &s.clinicID}
	s.outsider = access.Principal{ID: id.NewUserID(), Role: id.RoleOwner, ClinicID: &other}
}

func (s *ServiceSuite) details(title string, sev, like models.Level) models.Details {
	return models.Details{
		Title: title, Description: "Could harm patients", Category: models.CategoryClinical,
		Severity: sev, Likelihood: like,
	}
}

func (s *ServiceSuite) document(clinicID id.ClinicID) id.DocumentID {
	d, err := docmodels.NewDocument(id.NewDocumentID(), clinicID, id.NewUserID(), docmodels.Draft{
		Title: "Cold chain", Content: "body", Category: docmodels.CategoryPolicy, Jurisdiction: docmodels.JurisdictionNational,
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.documents.Create(s.ctx, d))
	return d.ID
}

func (s *ServiceSuite) TestCreateRisk() {
	s.Run("score derived and owner is the creator", func() {
		r, err := s.service.CreateRisk(s.ctx, s.staff, nil, s.details("Fridge failure", 4, 4))
		s.Require().NoError(err)
		s.Equal(16, r.Score())
		s.Equal(models.TierHigh, r.Tier())
		s.Equal(models.StatusOpen, r.Status)
		s.Equal(s.staff.ID, *r.OwnerID)
		s.Equal(s.clinicID, r.ClinicID)
	})

	s.Run("linked documents from the same clinic", func() {
		d := s.details("Linked", 2, 2)
		d.LinkedDocs = []id.DocumentID{s.document(s.clinicID)}
		r, err := s.service.CreateRisk(s.ctx, s.staff, nil, d)
		s.Require().NoError(err)
		s.Len(r.LinkedDocs, 1)
	})

	s.Run("linked document from another clinic", func() {
		d := s.details("Cross clinic", 2, 2)
		d.LinkedDocs = []id.DocumentID{s.document(id.NewClinicID())}
		_, err := s.service.CreateRisk(s.ctx, s.staff, nil, d)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown linked document", func() {
		d := s.details("Dangling", 2, 2)
		d.LinkedDocs = []id.DocumentID{id.NewDocumentID()}
		_, err := s.service.CreateRisk(s.ctx, s.staff, nil, d)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("outsider cannot raise risks in the clinic", func() {
		_, err := s.service.CreateRisk(s.ctx, s.outsider, &s.clinicID, s.details("Intrusion", 1, 1))
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("invalid levels", func() {
		_, err := s.service.CreateRisk(s.ctx, s.staff, nil, s.details("Bad", 0, 3))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestListRisks() {
	_, err := s.service.CreateRisk(s.ctx, s.staff, nil, s.details("Low", 1, 2))
	s.Require().NoError(err)
	high, err := s.service.CreateRisk(s.ctx, s.staff, nil, s.details("High", 5, 5))
	s.Require().NoError(err)

	risks, err := s.service.ListRisks(s.ctx, s.staff, ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(risks, 2)
	s.Equal(high.ID, risks[0].ID)

	_, err = s.service.ListRisks(s.ctx, s.outsider, ListFilter{ClinicID: &s.clinicID})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	_, err = s.service.GetRisk(s.ctx, s.outsider, high.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestUpdateRisk() {
	r, err := s.service.CreateRisk(s.ctx, s.staff, nil, s.details("Needle stick", 3, 3))
	s.Require().NoError(err)

	s.Run("another member updates status and likelihood", func() {
		colleague := access.Principal{ID: id.NewUserID(), Role: id.RoleStaff, ClinicID: &s.clinicID}
		like, status := models.Level(5), models.StatusMonitoring
		later := requestcontext.WithTime(s.ctx, s.now.Add(time.Hour))

		updated, err := s.service.UpdateRisk(later, colleague, r.ID, models.Changes{Likelihood: &like, Status: &status})
		s.Require().NoError(err)
		s.Equal(15, updated.Score())
		s.Equal(models.StatusMonitoring, updated.Status)
		s.Equal(s.now.Add(time.Hour), updated.UpdatedAt)
	})

	s.Run("linking a foreign document is rejected", func() {
		linked := []id.DocumentID{s.document(id.NewClinicID())}
		_, err := s.service.UpdateRisk(s.ctx, s.staff, r.ID, models.Changes{LinkedDocs: &linked})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		found, _ := s.risks.FindByID(s.ctx, r.ID)
		s.Empty(found.LinkedDocs)
	})

	s.Run("outsider", func() {
		status := models.StatusClosed
		_, err := s.service.UpdateRisk(s.ctx, s.outsider, r.ID, models.Changes{Status: &status})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown risk", func() {
		status := models.StatusClosed
		_, err := s.service.UpdateRisk(s.ctx, s.staff, id.NewRiskID(), models.Changes{Status: &status})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestExportRisks() {
	_, err := s.service.CreateRisk(s.ctx, s.staff, nil, s.details("Privacy breach", 4, 2))
	s.Require().NoError(err)

	var buf bytes.Buffer
	s.Require().NoError(s.service.ExportRisks(s.ctx, s.staff, ListFilter{}, &buf))

	f, err := excelize.OpenReader(&buf)
	s.Require().NoError(err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("Privacy breach", rows[1][0])

	s.True(dErrors.HasCode(s.service.ExportRisks(s.ctx, s.outsider, ListFilter{ClinicID: &s.clinicID}, &buf), dErrors.CodeForbidden))
}
