package handler

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"biokey/internal/authorize"
	"biokey/internal/platform/middleware"
	"biokey/internal/transport/http/shared"
	id "biokey/pkg/domain"
	dErrors "biokey/pkg/domain-errors"
)

// Service defines the authorization operations the handler needs.
type Service interface {
	Authorize(ctx context.Context, accountID id.AccountID, req authorize.Request) (bool, error)
}

// Handler exposes transaction authorization over HTTP.
type Handler struct {
	accountID id.AccountID
	service   Service
	logger    *slog.Logger
}

func New(accountID id.AccountID, service Service, logger *slog.Logger) *Handler {
	return &Handler{accountID: accountID, service: service, logger: logger}
}

// Register registers the authorization routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/authorize_transaction", h.handleAuthorizeTransaction)
}

type authorizeRequest struct {
	TransactionID   string `json:"transactionID"`
	SignedChallenge string `json:"signedChallenge"`
	ValidateCode    int    `json:"validateCode"`
}

func (h *Handler) handleAuthorizeTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req authorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	granted, err := h.service.Authorize(ctx, h.accountID, authorize.Request{
		TransactionID:   id.TransactionID(req.TransactionID),
		SignedChallenge: decodeSignature(req.SignedChallenge),
		ValidateCode:    req.ValidateCode,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "authorization request rejected",
			"request_id", requestID,
			"transaction_id", req.TransactionID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	if granted {
		shared.WriteJSON(w, http.StatusOK, true)
		return
	}
	shared.WriteJSON(w, http.StatusUnauthorized, false)
}

// decodeSignature turns a hex signature into bytes. A proof that does not
// decode is still a proof attempt: it is passed through raw so it verifies
// against nothing and the request is denied, not rejected as malformed.
func decodeSignature(signed string) []byte {
	if signed == "" {
		return nil
	}
	if raw, err := hex.DecodeString(signed); err == nil {
		return raw
	}
	return []byte(signed)
}
