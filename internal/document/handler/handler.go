// Package handler exposes the document workflow over HTTP.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"accredis/internal/access"
	"accredis/internal/document/extract"
	"accredis/internal/document/generator"
	"accredis/internal/document/models"
	"accredis/internal/document/service"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/httputil"
	"accredis/pkg/requestcontext"
)

// multipartOverhead is the room left for form fields and part headers on
// top of the file limit.
const multipartOverhead = 1 << 20

// Service is the document service surface the handler depends on.
type Service interface {
	CreateDocument(ctx context.Context, p access.Principal, clinicID *id.ClinicID, draft models.Draft) (*models.Document, error)
	GenerateDocument(ctx context.Context, p access.Principal, clinicID *id.ClinicID, req generator.Request) (*models.Document, error)
	UploadDocument(ctx context.Context, p access.Principal, clinicID *id.ClinicID, up service.Upload) (*models.Document, error)
	GetDocument(ctx context.Context, p access.Principal, docID id.DocumentID) (*models.Document, error)
	ListDocuments(ctx context.Context, p access.Principal, f service.ListFilter) ([]*models.Document, error)
	UpdateDocument(ctx context.Context, p access.Principal, docID id.DocumentID, edit models.Edit) (*models.Document, error)
	Transition(ctx context.Context, p access.Principal, docID id.DocumentID, to models.Status) (*models.Document, error)
	AuditDocument(ctx context.Context, p access.Principal, docID id.DocumentID) (*models.Audit, error)
	ListAudits(ctx context.Context, p access.Principal, docID id.DocumentID) ([]*models.Audit, error)
}

type Handler struct {
	service    Service
	extractors *extract.Registry
	logger     *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, extractors: extract.NewRegistry(), logger: logger}
}

// Register mounts document routes. The router must already carry the
// principal middleware.
func (h *Handler) Register(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Post("/generate", h.HandleGenerate)
		r.Post("/upload", h.HandleUpload)
		r.Get("/{id}", h.HandleGet)
		r.Patch("/{id}", h.HandleUpdate)
		r.Post("/{id}/transition", h.HandleTransition)
		r.Post("/{id}/audit", h.HandleAudit)
		r.Get("/{id}/audits", h.HandleListAudits)
	})
}

// HandleCreate handles POST /documents.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := principal(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[DocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.CreateDocument(ctx, p, req.Clinic(), req.Draft())
	if err != nil {
		h.fail(ctx, w, "failed to create document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(doc))
}

// HandleGenerate handles POST /documents/generate.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := principal(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[GenerateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.GenerateDocument(ctx, p, req.Clinic(), req.Request())
	if err != nil {
		h.fail(ctx, w, "failed to generate document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(doc))
}

// HandleUpload handles POST /documents/upload. The multipart form carries a
// "file" part plus optional clinic_id, category, jurisdiction and tags
// (comma separated) fields.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := principal(w, r)
	if !ok {
		return
	}

	up, clinicID, err := h.readUpload(w, r)
	if err != nil {
		h.fail(ctx, w, "rejected document upload", err)
		return
	}

	doc, err := h.service.UploadDocument(ctx, p, clinicID, up)
	if err != nil {
		h.fail(ctx, w, "failed to upload document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(doc))
}

// HandleList handles GET /documents?clinic_id=&status=&category=&limit=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := principal(w, r)
	if !ok {
		return
	}

	filter, err := listFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	docs, err := h.service.ListDocuments(ctx, p, filter)
	if err != nil {
		h.fail(ctx, w, "failed to list documents", err)
		return
	}
	resp := DocumentListResponse{Documents: make([]DocumentResponse, 0, len(docs)), Count: len(docs)}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, toResponse(d))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet handles GET /documents/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := principal(w, r)
	if !ok {
		return
	}
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc, err := h.service.GetDocument(ctx, p, docID)
	if err != nil {
		h.fail(ctx, w, "failed to get document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(doc))
}

// HandleUpdate handles PATCH /documents/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := principal(w, r)
	if !ok {
		return
	}
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateDocumentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.UpdateDocument(ctx, p, docID, req.Edit())
	if err != nil {
		h.fail(ctx, w, "failed to update document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(doc))
}

// HandleTransition handles POST /documents/{id}/transition.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := principal(w, r)
	if !ok {
		return
	}
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[TransitionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	doc, err := h.service.Transition(ctx, p, docID, req.Target())
	if err != nil {
		h.fail(ctx, w, "document transition refused", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(doc))
}

// HandleAudit handles POST /documents/{id}/audit.
func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := principal(w, r)
	if !ok {
		return
	}
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	a, err := h.service.AuditDocument(ctx, p, docID)
	if err != nil {
		h.fail(ctx, w, "failed to audit document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, a)
}

// HandleListAudits handles GET /documents/{id}/audits.
func (h *Handler) HandleListAudits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := principal(w, r)
	if !ok {
		return
	}
	docID, err := id.ParseDocumentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	audits, err := h.service.ListAudits(ctx, p, docID)
	if err != nil {
		h.fail(ctx, w, "failed to list audits", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AuditListResponse{Audits: audits, Count: len(audits)})
}

// DocumentResponse adds signature_current, which is false once a signed
// document has been edited after signing.
type DocumentResponse struct {
	*models.Document
	SignatureCurrent *bool `json:"signature_current,omitempty"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Count     int                `json:"count"`
}

type AuditListResponse struct {
	Audits []*models.Audit `json:"audits"`
	Count  int             `json:"count"`
}

func toResponse(d *models.Document) DocumentResponse {
	resp := DocumentResponse{Document: d}
	if d.Signature != nil {
		current := d.Signature.Matches(d)
		resp.SignatureCurrent = &current
	}
	return resp
}

func listFilter(r *http.Request) (service.ListFilter, error) {
	q := r.URL.Query()
	var f service.ListFilter
	if raw := q.Get("clinic_id"); raw != "" {
		clinicID, err := id.ParseClinicID(raw)
		if err != nil {
			return f, err
		}
		f.ClinicID = &clinicID
	}
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return f, err
		}
		f.Status = &status
	}
	if raw := q.Get("category"); raw != "" {
		category, err := models.ParseCategory(raw)
		if err != nil {
			return f, err
		}
		f.Category = &category
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return f, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer")
		}
		f.Limit = limit
	}
	return f, nil
}

// readUpload parses the multipart form and returns the file text as an
// Upload. Text and markdown are taken as is; PDF and DOCX files have their
// text extracted.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, *id.ClinicID, error) {
	var up service.Upload
	r.Body = http.MaxBytesReader(w, r.Body, models.MaxContentBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		return up, nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid or oversized multipart form")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		return up, nil, dErrors.New(dErrors.CodeBadRequest, "file is required")
	}
	defer file.Close()

	if _, ok := h.extractors.For(header.Filename, header.Header.Get("Content-Type")); !ok {
		return up, nil, dErrors.New(dErrors.CodeValidation, "only text, markdown, PDF and DOCX files are supported")
	}
	if header.Size > models.MaxContentBytes {
		return up, nil, dErrors.New(dErrors.CodeValidation, "file exceeds 20MB")
	}
	data, err := io.ReadAll(io.LimitReader(file, models.MaxContentBytes+1))
	if err != nil {
		return up, nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read uploaded file")
	}
	if len(data) > models.MaxContentBytes {
		return up, nil, dErrors.New(dErrors.CodeValidation, "file exceeds 20MB")
	}
	content, err := h.extractors.Extract(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		return up, nil, err
	}
	if len(content) > models.MaxContentBytes {
		return up, nil, dErrors.New(dErrors.CodeValidation, "extracted text exceeds 20MB")
	}

	clinicID, err := parseClinic(r.FormValue("clinic_id"))
	if err != nil {
		return up, nil, err
	}
	category := models.CategoryPolicy
	if raw := strings.TrimSpace(r.FormValue("category")); raw != "" {
		if category, err = models.ParseCategory(raw); err != nil {
			return up, nil, err
		}
	}
	jurisdiction, err := parseJurisdiction(r.FormValue("jurisdiction"))
	if err != nil {
		return up, nil, err
	}

	up = service.Upload{
		Filename:     filepath.Base(header.Filename),
		Content:      []byte(content),
		Category:     category,
		Jurisdiction: jurisdiction,
	}
	if raw := r.FormValue("tags"); raw != "" {
		up.Tags = strings.Split(raw, ",")
	}
	return up, clinicID, nil
}

func principal(w http.ResponseWriter, r *http.Request) (access.Principal, bool) {
	p, ok := access.FromContext(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
	}
	return p, ok
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelInfo
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
