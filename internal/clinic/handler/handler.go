// Package handler exposes clinic registration and profile endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"accredis/internal/access"
	"accredis/internal/clinic/models"
	id "accredis/pkg/domain"
	dErrors "accredis/pkg/domain-errors"
	"accredis/pkg/platform/httputil"
	"accredis/pkg/requestcontext"
)

// Service is the clinic service surface the handler depends on.
type Service interface {
	CreateClinic(ctx context.Context, p access.Principal, details models.ClinicDetails) (*models.Clinic, error)
	GetClinic(ctx context.Context, p access.Principal, clinicID id.ClinicID) (*models.Clinic, error)
	ListClinics(ctx context.Context, p access.Principal) ([]*models.Clinic, error)
	UpdateClinic(ctx context.Context, p access.Principal, clinicID id.ClinicID, details models.ClinicDetails) (*models.Clinic, error)
	CreateProfile(ctx context.Context, p access.Principal, details models.ProfileDetails) (*models.Profile, error)
	GetProfile(ctx context.Context, p access.Principal) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p access.Principal, details models.ProfileDetails) (*models.Profile, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts clinic and profile routes. The router must already carry
// the principal middleware.
func (h *Handler) Register(r chi.Router) {
	r.Route("/clinics", func(r chi.Router) {
		r.Post("/", h.HandleCreateClinic)
		r.Get("/", h.HandleListClinics)
		r.Get("/{id}", h.HandleGetClinic)
		r.Patch("/{id}", h.HandleUpdateClinic)
	})
	r.Route("/profile", func(r chi.Router) {
		r.Post("/", h.HandleCreateProfile)
		r.Get("/", h.HandleGetProfile)
		r.Patch("/", h.HandleUpdateProfile)
	})
}

// HandleCreateClinic handles POST /clinics.
func (h *Handler) HandleCreateClinic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := principal(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ClinicRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	clinic, err := h.service.CreateClinic(ctx, p, req.Details())
	if err != nil {
		h.fail(ctx, w, "failed to create clinic", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, clinic)
}

// HandleListClinics handles GET /clinics.
func (h *Handler) HandleListClinics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := principal(w, r)
	if !ok {
		return
	}

	clinics, err := h.service.ListClinics(ctx, p)
	if err != nil {
		h.fail(ctx, w, "failed to list clinics", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ClinicListResponse{Clinics: clinics, Count: len(clinics)})
}

// HandleGetClinic handles GET /clinics/{id}.
func (h *Handler) HandleGetClinic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := principal(w, r)
	if !ok {
		return
	}
	clinicID, err := id.ParseClinicID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	clinic, err := h.service.GetClinic(ctx, p, clinicID)
	if err != nil {
		h.fail(ctx, w, "failed to get clinic", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, clinic)
}

// HandleUpdateClinic handles PATCH /clinics/{id}.
func (h *Handler) HandleUpdateClinic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := principal(w, r)
	if !ok {
		return
	}
	clinicID, err := id.ParseClinicID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ClinicRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	clinic, err := h.service.UpdateClinic(ctx, p, clinicID, req.Details())
	if err != nil {
		h.fail(ctx, w, "failed to update clinic", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, clinic)
}

// HandleCreateProfile handles POST /profile.
func (h *Handler) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := principal(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.CreateProfile(ctx, p, req.Details())
	if err != nil {
		h.fail(ctx, w, "failed to create profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, profile)
}

// HandleGetProfile handles GET /profile.
func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := principal(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(ctx, p)
	if err != nil {
		h.fail(ctx, w, "failed to get profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// HandleUpdateProfile handles PATCH /profile.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	p, ok := principal(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.UpdateProfile(ctx, p, req.Details())
	if err != nil {
		h.fail(ctx, w, "failed to update profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

// ClinicListResponse wraps GET /clinics results.
type ClinicListResponse struct {
	Clinics []*models.Clinic `json:"clinics"`
	Count   int              `json:"count"`
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
