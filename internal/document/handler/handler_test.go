package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"accredis/internal/access"
	"accredis/internal/document/extract"
	"accredis/internal/document/extract/extracttest"
	"accredis/internal/document/generator"
	"accredis/internal/document/handler/mocks"
	"accredis/internal/document/models"
	"accredis/internal/document/service"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type DocumentHandlerSuite struct {
	suite.Suite
	service   *mocks.MockService
	router    http.Handler
	principal access.Principal
	clinicID  id.ClinicID
}

func TestDocumentHandlerSuite(t *testing.T) {
	suite.Run(t, new(DocumentHandlerSuite))
}

func (s *DocumentHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.clinicID = id.NewClinicID()
	s.principal = access.Principal{ID: id.NewUserID(), Role: id.RoleManager, ClinicID: &s.clinicID}

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *DocumentHandlerSuite) as(req *http.Request) *http.Request {
	return req.WithContext(access.WithPrincipal(req.Context(), s.principal))
}

func (s *DocumentHandlerSuite) document(status models.Status) *models.Document {
	now := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
	return &models.Document{
		ID:           id.NewDocumentID(),
		Title:        "Hand Hygiene Policy",
		Content:      "## Purpose\nClean hands.",
		Category:     models.CategoryPolicy,
		Jurisdiction: models.JurisdictionNational,
		Status:       status,
		Version:      1,
		Tags:         []string{},
		ClinicID:     s.clinicID,
		CreatedBy:    s.principal.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *DocumentHandlerSuite) TestCreate() {
	s.Run("defaults the jurisdiction to national", func() {
		s.service.EXPECT().
			CreateDocument(gomock.Any(), s.principal, gomock.Nil(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ access.Principal, _ *id.ClinicID, d models.Draft) (*models.Document, error) {
				s.Equal(models.JurisdictionNational, d.Jurisdiction)
				s.Equal(models.CategoryPolicy, d.Category)
				return s.document(models.StatusDraft), nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/documents", map[string]any{
			"title": "Hand Hygiene Policy", "content": "## Purpose\nClean hands.", "category": "policy",
		})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "status", "draft")
		testutil.AssertJSONContains(s.T(), rr, "version", float64(1))
	})

	s.Run("unknown category is rejected before the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/documents", map[string]any{
			"title": "X", "content": "Y", "category": "memo",
		})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown fields are rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/documents", map[string]any{
			"title": "X", "content": "Y", "category": "policy", "status": "published",
		})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("missing principal is unauthorized", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/documents", map[string]any{
			"title": "X", "content": "Y", "category": "policy",
		})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *DocumentHandlerSuite) TestGenerate() {
	s.service.EXPECT().
		GenerateDocument(gomock.Any(), s.principal, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ access.Principal, clinicID *id.ClinicID, req generator.Request) (*models.Document, error) {
			s.Require().NotNil(clinicID)
			s.Equal(s.clinicID, *clinicID)
			s.Equal("infection control", req.Prompt)
			s.Equal(models.Jurisdiction("QLD"), req.Jurisdiction)
			return s.document(models.StatusDraft), nil
		})

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/documents/generate", map[string]any{
		"clinic_id": s.clinicID.String(), "prompt": "  infection control ", "category": "procedure", "jurisdiction": "QLD",
	})
	rr := testutil.DoRequest(s.router, s.as(req))

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
}

func multipartUpload(s *DocumentHandlerSuite, filename, contentType, body string, fields map[string]string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		s.Require().NoError(mw.WriteField(k, v))
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	s.Require().NoError(err)
	_, err = part.Write([]byte(body))
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (s *DocumentHandlerSuite) TestUpload() {
	s.Run("markdown file", func() {
		s.service.EXPECT().
			UploadDocument(gomock.Any(), s.principal, gomock.Nil(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ access.Principal, _ *id.ClinicID, up service.Upload) (*models.Document, error) {
				s.Equal("privacy.md", up.Filename)
				s.Equal("# Privacy\nWe protect records.", string(up.Content))
				s.Equal(models.CategoryProcedure, up.Category)
				s.Equal([]string{"privacy", " records"}, up.Tags)
				doc := s.document(models.StatusDraft)
				doc.Title = up.Filename
				return doc, nil
			})

		req := multipartUpload(s, "privacy.md", "application/octet-stream", "# Privacy\nWe protect records.",
			map[string]string{"category": "procedure", "tags": "privacy, records"})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "title", "privacy.md")
	})

	s.Run("pdf text is extracted", func() {
		s.service.EXPECT().
			UploadDocument(gomock.Any(), s.principal, gomock.Nil(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ access.Principal, _ *id.ClinicID, up service.Upload) (*models.Document, error) {
				s.Equal("hand-hygiene.pdf", up.Filename)
				s.Contains(string(up.Content), "Hand Hygiene Policy")
				s.Contains(string(up.Content), "Staff wash hands before every consult.")
				return s.document(models.StatusDraft), nil
			})

		req := multipartUpload(s, "hand-hygiene.pdf", extract.MediaTypePDF,
			string(extracttest.PDF("Hand Hygiene Policy", "Staff wash hands before every consult.")), nil)
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	})

	s.Run("docx paragraphs are extracted", func() {
		s.service.EXPECT().
			UploadDocument(gomock.Any(), s.principal, gomock.Nil(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ access.Principal, _ *id.ClinicID, up service.Upload) (*models.Document, error) {
				s.Equal("Sharps Disposal Procedure\nUse the yellow bin.", string(up.Content))
				return s.document(models.StatusDraft), nil
			})

		req := multipartUpload(s, "sharps", extract.MediaTypeDOCX,
			string(extracttest.DOCX("Sharps Disposal Procedure", "Use the yellow bin.")), nil)
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	})

	s.Run("unsupported formats are rejected", func() {
		req := multipartUpload(s, "scan.png", "image/png", "\x89PNG", nil)
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("corrupt pdf", func() {
		req := multipartUpload(s, "policy.pdf", extract.MediaTypePDF, "%PDF-1.7\n1 0 obj\n<<", nil)
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("corrupt docx", func() {
		req := multipartUpload(s, "policy.docx", extract.MediaTypeDOCX, "PK\x03\x04 broken", nil)
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("json body is not a form", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/documents/upload", map[string]any{"file": "x"})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *DocumentHandlerSuite) TestList() {
	s.Run("passes filters", func() {
		s.service.EXPECT().
			ListDocuments(gomock.Any(), s.principal, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ access.Principal, f service.ListFilter) ([]*models.Document, error) {
				s.Require().NotNil(f.Status)
				s.Equal(models.StatusReview, *f.Status)
				s.Nil(f.Category)
				s.Equal(10, f.Limit)
				return []*models.Document{s.document(models.StatusReview)}, nil
			})

		rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, "/documents?status=review&limit=10")))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[DocumentListResponse](s.T(), rr)
		s.Equal(1, resp.Count)
	})

	s.Run("bad status filter", func() {
		rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, "/documents?status=pending")))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *DocumentHandlerSuite) TestGet() {
	s.Run("signed document reports whether the signature is current", func() {
		doc := s.document(models.StatusPublished)
		sig := models.Sign(doc, s.principal.ID, doc.CreatedAt)
		doc.Signature = &sig
		doc.Content = "edited after signing"
		s.service.EXPECT().GetDocument(gomock.Any(), s.principal, doc.ID).Return(doc, nil)

		rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, "/documents/"+doc.ID.String())))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "signature_current", false)
		resp := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
		signature, ok := (*resp)["signature"].(map[string]any)
		s.Require().True(ok, "signature missing from response")
		s.Equal(s.principal.ID.String(), signature["signed_by"])
	})

	s.Run("forbidden maps to 403", func() {
		docID := id.NewDocumentID()
		s.service.EXPECT().GetDocument(gomock.Any(), s.principal, docID).Return(nil, dErrors.New(dErrors.CodeForbidden, "access denied"))

		rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, "/documents/"+docID.String())))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}

func (s *DocumentHandlerSuite) TestUpdate() {
	s.Run("partial edit", func() {
		doc := s.document(models.StatusDraft)
		s.service.EXPECT().
			UpdateDocument(gomock.Any(), s.principal, doc.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ access.Principal, _ id.DocumentID, e models.Edit) (*models.Document, error) {
				s.Require().NotNil(e.Title)
				s.Equal("Renamed", *e.Title)
				s.Nil(e.Content)
				s.True(e.BumpVersion)
				return doc, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/documents/"+doc.ID.String(), map[string]any{
			"title": "Renamed", "bump_version": true,
		})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("empty edit", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPatch, "/documents/"+id.NewDocumentID().String(), map[string]any{})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *DocumentHandlerSuite) TestTransition() {
	s.Run("invalid transition maps to 409", func() {
		docID := id.NewDocumentID()
		s.service.EXPECT().
			Transition(gomock.Any(), s.principal, docID, models.StatusPublished).
			Return(nil, dErrors.New(dErrors.CodeInvalidTransition, "cannot move document from draft to published"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/documents/"+docID.String()+"/transition", map[string]any{"status": "published"})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "invalid_transition")
	})

	s.Run("publish returns the signed document", func() {
		doc := s.document(models.StatusPublished)
		sig := models.Sign(doc, s.principal.ID, doc.UpdatedAt)
		doc.Signature = &sig
		s.service.EXPECT().Transition(gomock.Any(), s.principal, doc.ID, models.StatusPublished).Return(doc, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/documents/"+doc.ID.String()+"/transition", map[string]any{"status": "published"})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "signature_current", true)
	})

	s.Run("unknown status", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/documents/"+id.NewDocumentID().String()+"/transition", map[string]any{"status": "approved"})
		rr := testutil.DoRequest(s.router, s.as(req))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *DocumentHandlerSuite) TestAudits() {
	doc := s.document(models.StatusDraft)
	a := &models.Audit{ID: id.NewAuditID(), DocumentID: doc.ID, DocumentVersion: 1, ClinicID: s.clinicID, Score: 74,
		Issues: []models.Issue{}, Recommendations: []string{}, Coverage: map[string]bool{}, AuditedBy: s.principal.ID}

	s.Run("run audit", func() {
		s.service.EXPECT().AuditDocument(gomock.Any(), s.principal, doc.ID).Return(a, nil)

		rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodPost, "/documents/"+doc.ID.String()+"/audit")))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "score", float64(74))
	})

	s.Run("list audits", func() {
		s.service.EXPECT().ListAudits(gomock.Any(), s.principal, doc.ID).Return([]*models.Audit{a}, nil)

		rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, "/documents/"+doc.ID.String()+"/audits")))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[AuditListResponse](s.T(), rr)
		s.Equal(1, resp.Count)
	})
}
