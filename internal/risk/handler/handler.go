// Package handler exposes the risk register over HTTP.
package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"accredis/internal/access"
	"accredis/internal/risk/export"
	"accredis/internal/risk/models"
	"accredis/internal/risk/service"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/httputil"
	"accredis/pkg/requestcontext"
)

const exportFilename = "risk-register.xlsx"

// Service is the risk service surface the handler depends on.
type Service interface {
	CreateRisk(ctx context.Context, p access.Principal, clinicID *id.ClinicID, d models.Details) (*models.Risk, error)
	GetRisk(ctx context.Context, p access.Principal, riskID id.RiskID) (*models.Risk, error)
	ListRisks(ctx context.Context, p access.Principal, f service.ListFilter) ([]*models.Risk, error)
	UpdateRisk(ctx context.Context, p access.Principal, riskID id.RiskID, c models.Changes) (*models.Risk, error)
	ExportRisks(ctx context.Context, p access.Principal, f service.ListFilter, w io.Writer) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/risks", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/export", h.HandleExport)
		r.Get("/{id}", h.HandleGet)
		r.Patch("/{id}", h.HandleUpdate)
	})
}

// HandleCreate handles POST /risks.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := principal(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[RiskRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	risk, err := h.service.CreateRisk(ctx, p, req.Clinic(), req.Details())
	if err != nil {
		h.fail(ctx, w, "failed to create risk", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(risk))
}

// HandleList handles GET /risks?clinic_id=&status=&category=&limit=.
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

	risks, err := h.service.ListRisks(ctx, p, filter)
	if err != nil {
		h.fail(ctx, w, "failed to list risks", err)
		return
	}
	resp := RiskListResponse{Risks: make([]RiskResponse, 0, len(risks)), Count: len(risks)}
	for _, risk := range risks {
		resp.Risks = append(resp.Risks, toResponse(risk))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleExport handles GET /risks/export. It accepts the list filters and
// responds with an XLSX attachment.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
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

	// Buffered so a failed export still gets a JSON error response.
	var buf bytes.Buffer
	if err := h.service.ExportRisks(ctx, p, filter, &buf); err != nil {
		h.fail(ctx, w, "failed to export risks", err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(ctx, "failed to write risk export",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

// HandleGet handles GET /risks/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := principal(w, r)
	if !ok {
		return
	}
	riskID, err := id.ParseRiskID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	risk, err := h.service.GetRisk(ctx, p, riskID)
	if err != nil {
		h.fail(ctx, w, "failed to get risk", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(risk))
}

// HandleUpdate handles PATCH /risks/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := principal(w, r)
	if !ok {
		return
	}
	riskID, err := id.ParseRiskID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateRiskRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	risk, err := h.service.UpdateRisk(ctx, p, riskID, req.Changes())
	if err != nil {
		h.fail(ctx, w, "failed to update risk", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(risk))
}

// RiskResponse adds the derived score and tier.
type RiskResponse struct {
	*models.Risk
	RiskScore int         `json:"risk_score"`
	RiskTier  models.Tier `json:"tier"`
}

type RiskListResponse struct {
	Risks []RiskResponse `json:"risks"`
	Count int            `json:"count"`
}

func toResponse(r *models.Risk) RiskResponse {
	return RiskResponse{Risk: r, RiskScore: r.Score(), RiskTier: r.Tier()}
}

func listFilter(r *http.Request) (service.ListFilter, error) {
	q := r.URL.Query()
	var f service.ListFilter
	var err error
	if f.ClinicID, err = parseClinic(q.Get("clinic_id")); err != nil {
		return f, err
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
