package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"accredis/internal/access"
	"accredis/internal/risk/export"
	"accredis/internal/risk/handler/mocks"
	"accredis/internal/risk/models"
	"accredis/internal/risk/service"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type RiskHandlerSuite struct {
	suite.Suite
	service   *mocks.MockService
	router    http.Handler
	principal access.Principal
	clinicID  id.ClinicID
}

func TestRiskHandlerSuite(t *testing.T) {
	suite.Run(t, new(RiskHandlerSuite))
}

func (s *RiskHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.clinicID = id.NewClinicID()
	s.principal = access.Principal{ID: id.NewUserID(), Role: id.RoleStaff, ClinicID: &s.clinicID}

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *RiskHandlerSuite) as(req *http.Request) *http.Request {
	return req.WithContext(access.WithPrincipal(req.Context(), s.principal))
}

func (s *RiskHandlerSuite) risk(sev, like models.Level) *models.Risk {
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	owner := s.principal.ID
	return &models.Risk{
		ID:          id.NewRiskID(),
		Title:       "Vaccine fridge failure",
		Description: "Temperature excursion overnight",
		Category:    models.CategoryClinical,
		Severity:    sev,
		Likelihood:  like,
		Status:      models.StatusOpen,
		OwnerID:     &owner,
		LinkedDocs:  []id.DocumentID{},
		ClinicID:    s.clinicID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *RiskHandlerSuite) TestCreate() {
	s.Run("response carries derived score and tier", func() {
		docID := id.NewDocumentID()
		s.service.EXPECT().
			CreateRisk(gomock.Any(), s.principal, gomock.Nil(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ access.Principal, _ *id.ClinicID, d models.Details) (*models.Risk, error) {
				s.Equal(models.Level(4), d.Severity)
				s.Equal(models.Level(4), d.Likelihood)
				s.Equal([]id.DocumentID{docID}, d.LinkedDocs)
				return s.risk(d.Severity, d.Likelihood), nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/risks", map[string]any{
			"title": "Vaccine fridge failure", "description": "Temperature excursion overnight",
			"category": "clinical", "severity": 4, "likelihood": 4, "linked_docs": []string{docID.String()},
		})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "risk_score", float64(16))
		testutil.AssertJSONContains(s.T(), rr, "tier", "high")
		testutil.AssertJSONContains(s.T(), rr, "status", "open")
	})

	s.Run("level outside 1..5", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/risks", map[string]any{
			"title": "X", "description": "Y", "category": "clinical", "severity": 6, "likelihood": 1,
		})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown category", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/risks", map[string]any{
			"title": "X", "description": "Y", "category": "financial", "severity": 2, "likelihood": 2,
		})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("malformed body", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/risks", json.RawMessage(`{"title": "X",`))
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("foreign linked document", func() {
		s.service.EXPECT().
			CreateRisk(gomock.Any(), s.principal, gomock.Nil(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "linked documents must belong to the risk's clinic"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/risks", map[string]any{
			"title": "X", "description": "Y", "category": "privacy", "severity": 2, "likelihood": 2,
			"linked_docs": []string{id.NewDocumentID().String()},
		})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *RiskHandlerSuite) TestList() {
	s.Run("filters by status", func() {
		s.service.EXPECT().
			ListRisks(gomock.Any(), s.principal, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ access.Principal, f service.ListFilter) ([]*models.Risk, error) {
				s.Require().NotNil(f.Status)
				s.Equal(models.StatusMonitoring, *f.Status)
				s.Nil(f.ClinicID)
				return []*models.Risk{s.risk(5, 3), s.risk(2, 2)}, nil
			})

		rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, "/risks?status=monitoring")))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[RiskListResponse](s.T(), rr)
		s.Equal(2, resp.Count)
		s.Equal(15, resp.Risks[0].RiskScore)
		s.Equal(models.TierLow, resp.Risks[1].RiskTier)
	})

	s.Run("forbidden clinic", func() {
		other := id.NewClinicID()
		s.service.EXPECT().ListRisks(gomock.Any(), s.principal, gomock.Any()).Return(nil, access.ErrForbidden())

		rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, "/risks?clinic_id="+other.String())))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}

func (s *RiskHandlerSuite) TestExport() {
	s.Run("xlsx attachment", func() {
		s.service.EXPECT().
			ExportRisks(gomock.Any(), s.principal, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ access.Principal, _ service.ListFilter, w io.Writer) error {
				_, err := w.Write([]byte("PK"))
				return err
			})

		rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, "/risks/export")))

		testutil.AssertStatusOK(s.T(), rr)
		s.Equal(export.ContentType, rr.Header().Get("Content-Type"))
		s.Contains(rr.Header().Get("Content-Disposition"), "risk-register.xlsx")
		s.Equal("PK", rr.Body.String())
	})

	s.Run("failure is reported as json", func() {
		s.service.EXPECT().
			ExportRisks(gomock.Any(), s.principal, gomock.Any(), gomock.Any()).
			Return(dErrors.New(dErrors.CodeInternal, "failed to build risk register"))

		rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, "/risks/export")))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
	})
}

func (s *RiskHandlerSuite) TestGet() {
	risk := s.risk(3, 4)
	s.service.EXPECT().GetRisk(gomock.Any(), s.principal, risk.ID).Return(risk, nil)

	rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, "/risks/"+risk.ID.String())))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "tier", "medium")

	rr = testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, "/risks/not-a-uuid")))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}

func (s *RiskHandlerSuite) TestUpdate() {
	s.Run("partial update", func() {
		risk := s.risk(2, 2)
		s.service.EXPECT().
			UpdateRisk(gomock.Any(), s.principal, risk.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ access.Principal, _ id.RiskID, c models.Changes) (*models.Risk, error) {
				s.Require().NotNil(c.Status)
				s.Equal(models.StatusClosed, *c.Status)
				s.Require().NotNil(c.LinkedDocs)
				s.Empty(*c.LinkedDocs)
				s.Nil(c.Severity)
				risk.Status = *c.Status
				return risk, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/risks/"+risk.ID.String(), map[string]any{
			"status": "closed", "linked_docs": []string{},
		})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "status", "closed")
	})

	s.Run("no changes", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/risks/"+id.NewRiskID().String(), map[string]any{})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("bad likelihood", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/risks/"+id.NewRiskID().String(), map[string]any{"likelihood": 0})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}
