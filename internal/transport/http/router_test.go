package httptransport

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"biokey/internal/authorize"
	authorizeHandler "biokey/internal/authorize/handler"
	"biokey/internal/challenge"
	challengeHandler "biokey/internal/challenge/handler"
	challengeStore "biokey/internal/challenge/store"
	"biokey/internal/enrollment"
	enrollmentHandler "biokey/internal/enrollment/handler"
	keyStore "biokey/internal/enrollment/store/keys"
	"biokey/internal/validation"
	validationHandler "biokey/internal/validation/handler"
	codeStore "biokey/internal/validation/store/codes"
	id "biokey/pkg/domain"
	"biokey/pkg/testutil"
)

const accountEmail = "user@example.com"

type fixture struct {
	router       http.Handler
	codesSvc     *validation.Service
	challengeSvc *challenge.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accountID := id.AccountID(accountEmail)

	codesSvc, err := validation.New(codeStore.NewInMemoryCodeStore())
	if err != nil {
		t.Fatalf("validation service: %v", err)
	}
	enrollSvc, err := enrollment.New(keyStore.NewInMemoryKeyStore(), codesSvc)
	if err != nil {
		t.Fatalf("enrollment service: %v", err)
	}
	challengeSvc, err := challenge.New(challengeStore.NewInMemoryChallengeStore(), enrollSvc)
	if err != nil {
		t.Fatalf("challenge service: %v", err)
	}
	authorizeSvc, err := authorize.New(enrollSvc, challengeSvc, codesSvc)
	if err != nil {
		t.Fatalf("authorize service: %v", err)
	}

	router := NewRouter(logger,
		validationHandler.New(codesSvc, logger),
		enrollmentHandler.New(accountID, enrollSvc, logger),
		challengeHandler.New(accountID, challengeSvc, logger),
		authorizeHandler.New(accountID, authorizeSvc, logger),
	)

	return &fixture{router: router, codesSvc: codesSvc, challengeSvc: challengeSvc}
}

func TestCatchAllRoute(t *testing.T) {
	f := newFixture(t)

	rec := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/nope"))
	testutil.AssertStatus(t, rec, http.StatusNotFound)
	if body := string(testutil.ReadBody(t, rec)); body != "Error: Not Found" {
		t.Fatalf("expected catch-all body, got %q", body)
	}

	// Wrong method on a known route gets the same treatment.
	rec = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodPost, "/request_biometric_challenge"))
	testutil.AssertStatus(t, rec, http.StatusNotFound)
	if body := string(testutil.ReadBody(t, rec)); body != "Error: Not Found" {
		t.Fatalf("expected catch-all body, got %q", body)
	}
}

func TestResendValidateCode(t *testing.T) {
	f := newFixture(t)

	rec := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/resend_validate_code", map[string]string{}))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/resend_validate_code", map[string]string{"email": "not an email"}))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/resend_validate_code", map[string]string{"email": accountEmail}))
	testutil.AssertStatus(t, rec, http.StatusOK)
	if body := string(testutil.ReadBody(t, rec)); body != "" {
		t.Fatalf("expected empty body on resend success, got %q", body)
	}
}

func TestChallengeRequiresRegistration(t *testing.T) {
	f := newFixture(t)

	rec := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/request_biometric_challenge"))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
}

func TestRegisterBiometrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	rec := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/register_biometrics", map[string]any{}))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/register_biometrics", map[string]any{
		"publicKey": hex.EncodeToString(pub),
	}))
	testutil.AssertStatus(t, rec, http.StatusOK)
	if body := strings.TrimSpace(string(testutil.ReadBody(t, rec))); body != "true" {
		t.Fatalf("expected body true, got %q", body)
	}

	// Same key again conflicts.
	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/register_biometrics", map[string]any{
		"publicKey": hex.EncodeToString(pub),
	}))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	// A further key needs the freshest validation code.
	pub2, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/register_biometrics", map[string]any{
		"publicKey": hex.EncodeToString(pub2),
	}))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	code, err := f.codesSvc.Issue(ctx, id.AccountID(accountEmail))
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}
	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/register_biometrics", map[string]any{
		"publicKey":    hex.EncodeToString(pub2),
		"validateCode": code,
	}))
	testutil.AssertStatus(t, rec, http.StatusOK)
}

func TestAuthorizeTransactionFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	rec := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/register_biometrics", map[string]any{
		"publicKey": hex.EncodeToString(pub),
	}))
	testutil.AssertStatus(t, rec, http.StatusOK)

	rec = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/request_biometric_challenge"))
	testutil.AssertStatus(t, rec, http.StatusOK)
	challengeResp := testutil.UnmarshalResponse[struct {
		Challenge string `json:"challenge"`
	}](t, rec)
	if challengeResp.Challenge == "" {
		t.Fatalf("expected a challenge token")
	}

	// The client signs the full token string it was handed.
	sig := ed25519.Sign(priv, []byte(challengeResp.Challenge))

	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/authorize_transaction", map[string]any{
		"transactionID":   "tx1",
		"signedChallenge": hex.EncodeToString(sig),
	}))
	testutil.AssertStatus(t, rec, http.StatusOK)
	if body := strings.TrimSpace(string(testutil.ReadBody(t, rec))); body != "true" {
		t.Fatalf("expected body true, got %q", body)
	}

	// Replay of the same signature is denied.
	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/authorize_transaction", map[string]any{
		"transactionID":   "tx1",
		"signedChallenge": hex.EncodeToString(sig),
	}))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
	if body := strings.TrimSpace(string(testutil.ReadBody(t, rec))); body != "false" {
		t.Fatalf("expected body false, got %q", body)
	}

	// Validation code path.
	code, err := f.codesSvc.Issue(ctx, id.AccountID(accountEmail))
	if err != nil {
		t.Fatalf("issue code: %v", err)
	}
	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/authorize_transaction", map[string]any{
		"transactionID": "tx2",
		"validateCode":  code,
	}))
	testutil.AssertStatus(t, rec, http.StatusOK)

	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/authorize_transaction", map[string]any{
		"transactionID": "tx2",
		"validateCode":  code,
	}))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	// No proof at all is a malformed request, not a denial.
	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/authorize_transaction", map[string]any{
		"transactionID": "tx3",
	}))
	testutil.AssertStatus(t, rec, http.StatusBadRequest)

	// Missing transaction ID is rejected before the proof is considered.
	rec = testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/authorize_transaction", map[string]any{
		"validateCode": code,
	}))
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
}
