package handler

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"biokey/internal/platform/middleware"
	"biokey/internal/transport/http/shared"
	id "biokey/pkg/domain"
	dErrors "biokey/pkg/domain-errors"
)

// Service defines the enrollment operations the handler needs.
type Service interface {
	Register(ctx context.Context, accountID id.AccountID, key ed25519.PublicKey, validateCode int) error
}

// Handler exposes biometric key registration over HTTP.
type Handler struct {
	accountID id.AccountID
	service   Service
	logger    *slog.Logger
}

func New(accountID id.AccountID, service Service, logger *slog.Logger) *Handler {
	return &Handler{accountID: accountID, service: service, logger: logger}
}

// Register registers the enrollment routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register_biometrics", h.handleRegisterBiometrics)
}

type registerRequest struct {
	PublicKey    string `json:"publicKey"`
	ValidateCode int    `json:"validateCode"`
}

func (h *Handler) handleRegisterBiometrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid register request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeMissingInput, "invalid request body"))
		return
	}

	if req.PublicKey == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeMissingInput, "public key is not present"))
		return
	}

	// Keys travel hex-encoded; a key that does not decode cannot be registered.
	key, err := hex.DecodeString(req.PublicKey)
	if err != nil {
		h.logger.WarnContext(ctx, "undecodable public key",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeMissingInput, "public key must be hex encoded"))
		return
	}

	if err := h.service.Register(ctx, h.accountID, key, req.ValidateCode); err != nil {
		h.logger.WarnContext(ctx, "key registration rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, true)
}
