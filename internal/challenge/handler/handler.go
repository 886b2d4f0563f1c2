package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"biokey/internal/platform/middleware"
	"biokey/internal/transport/http/shared"
	id "biokey/pkg/domain"
)

// Service defines the challenge operations the handler needs.
type Service interface {
	Issue(ctx context.Context, accountID id.AccountID) (string, error)
}

// Handler exposes challenge issuance over HTTP.
type Handler struct {
	accountID id.AccountID
	service   Service
	logger    *slog.Logger
}

func New(accountID id.AccountID, service Service, logger *slog.Logger) *Handler {
	return &Handler{accountID: accountID, service: service, logger: logger}
}

// Register registers the challenge routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/request_biometric_challenge", h.handleRequestChallenge)
}

type challengeResponse struct {
	Challenge string `json:"challenge"`
}

func (h *Handler) handleRequestChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tok, err := h.service.Issue(ctx, h.accountID)
	if err != nil {
		h.logger.WarnContext(ctx, "challenge request rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, challengeResponse{Challenge: tok})
}
