// Package handler is the thin HTTP layer over the provisioning workflow. It
// decodes requests, enforces the admin scope, and translates outcomes; all
// business decisions live in the provisioning service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"member-gateway/internal/member/models"
	"member-gateway/internal/platform/middleware"
	"member-gateway/internal/provisioning"
	dErrors "member-gateway/pkg/domain-errors"
	"member-gateway/pkg/platform/httputil"
)

// Service is the provisioning surface the handler needs.
type Service interface {
	SubmitSelfService(ctx context.Context, req *models.RegistrationRequest, onProgress provisioning.ProgressFunc) (*provisioning.Outcome, error)
	SubmitAdmin(ctx context.Context, req *models.RegistrationRequest, onProgress provisioning.ProgressFunc) (*provisioning.Outcome, error)
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the registration endpoints. The admin endpoint sits behind
// the supplied middleware, which is expected to verify an administrator token
// and place the claims in the request context.
func (h *Handler) Register(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Post("/members/register", h.handleSelfRegister)
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/admin/members", h.handleAdminCreate)
	})
}

func (h *Handler) handleSelfRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[models.RegistrationRequest](w, r, h.logger)
	if !ok {
		return
	}

	// Administrator-only options are not honored on the public endpoint.
	req.WaiveFee = false
	req.SkipWelcomeNotice = false

	outcome, err := h.svc.SubmitSelfService(r.Context(), req, h.progressLogger(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

func (h *Handler) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeJSON[models.RegistrationRequest](w, r, h.logger)
	if !ok {
		return
	}

	claims, found := middleware.AdminFromContext(r.Context())
	if !found {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "administrator credentials required"))
		return
	}
	// Administrators act within their own organization only.
	if req.OrgID == "" {
		req.OrgID = claims.OrgID
	}
	if req.OrgID != claims.OrgID {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token is not valid for this organization"))
		return
	}

	outcome, err := h.svc.SubmitAdmin(r.Context(), req, h.progressLogger(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeOutcome(w, outcome)
}

// progressLogger surfaces retry progress in the request log. HTTP is
// request/response, so mid-flight progress cannot reach the caller; the log
// line keeps the signal for operators.
func (h *Handler) progressLogger(ctx context.Context) provisioning.ProgressFunc {
	return func(attempt, max int) {
		if attempt == 1 {
			return
		}
		h.logger.InfoContext(ctx, "registration in progress",
			"attempt", attempt,
			"max_attempts", max,
			"request_id", middleware.GetRequestID(ctx),
		)
	}
}

func (h *Handler) writeOutcome(w http.ResponseWriter, outcome *provisioning.Outcome) {
	status := http.StatusCreated
	if outcome.Action == models.ActionExisting {
		status = http.StatusOK
	}
	httputil.WriteJSON(w, status, models.RegistrationResponse{
		MemberNumber: outcome.MemberNumber,
		Action:       string(outcome.Action),
		Status:       outcome.Record.Status.String(),
		Message:      outcome.Message,
		Attempts:     outcome.Attempts,
		TempPassword: outcome.TempPassword,
	})
}
