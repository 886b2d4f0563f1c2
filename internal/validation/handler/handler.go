package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"biokey/internal/platform/middleware"
	"biokey/internal/transport/http/shared"
	id "biokey/pkg/domain"
	dErrors "biokey/pkg/domain-errors"
)

// Service defines the validation code operations the handler needs.
type Service interface {
	Issue(ctx context.Context, accountID id.AccountID) (int, error)
}

// Handler exposes validation code reissuance over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the validation code routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/resend_validate_code", h.handleResendValidateCode)
}

type resendRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleResendValidateCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req resendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeMissingInput, "invalid request body"))
		return
	}

	if req.Email == "" || !govalidator.IsEmail(req.Email) {
		shared.WriteError(w, dErrors.New(dErrors.CodeMissingInput, "email is required"))
		return
	}

	// The email is the account identifier; codes queue against it directly.
	accountID, err := id.ParseAccountID(req.Email)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if _, err := h.service.Issue(ctx, accountID); err != nil {
		h.logger.ErrorContext(ctx, "failed to issue validation code",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
