package fel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice(t *testing.T) *billing.Invoice {
	t.Helper()
	issueDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	breakdown := billing.TariffBreakdown{
		BaseFee:  decimal.NewFromInt(50),
		Subtotal: decimal.NewFromInt(50),
		Total:    decimal.NewFromInt(50),
	}
	inv, err := billing.NewInvoice(
		"FAC-202608-0001",
		uuid.New(),
		"Juan Morales",
		uuid.New(),
		breakdown,
		decimal.NewFromInt(25000),
		issueDate,
		issueDate.AddDate(0, 0, 30),
		issueDate.AddDate(0, -1, 0),
		issueDate,
	)
	require.NoError(t, err)
	return inv
}

func newTestCertifier(t *testing.T, handler http.HandlerFunc) *HTTPCertifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	certifier, err := NewHTTPCertifier(config.CertificationConfig{
		Enabled:  true,
		BaseURL:  server.URL,
		APIKey:   "test-key",
		IssuerID: "12345678-9",
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	return certifier
}

func TestNewHTTPCertifier(t *testing.T) {
	t.Run("rejects missing base URL", func(t *testing.T) {
		_, err := NewHTTPCertifier(config.CertificationConfig{APIKey: "k"})
		assert.Error(t, err)
	})

	t.Run("rejects missing API key", func(t *testing.T) {
		_, err := NewHTTPCertifier(config.CertificationConfig{BaseURL: "http://localhost"})
		assert.Error(t, err)
	})
}

func TestHTTPCertifier_Certify(t *testing.T) {
	t.Run("returns authorization on success", func(t *testing.T) {
		certifier := newTestCertifier(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/documents/certify", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "FAC-202608-0001", req["document_number"])
			assert.Equal(t, "normal", req["document_type"])
			assert.Equal(t, "12345678-9", req["issuer_id"])

			json.NewEncoder(w).Encode(map[string]any{
				"external_id":        "FEL-123",
				"authorization_code": "AUTH-456",
				"certified_at":       time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC),
			})
		})

		result, err := certifier.Certify(context.Background(), billing.DocumentKindInvoice, testInvoice(t))
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "FEL-123", result.ExternalID)
		assert.Equal(t, "AUTH-456", result.AuthorizationCode)
	})

	t.Run("reports authority rejection without failing", func(t *testing.T) {
		certifier := newTestCertifier(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{
				"code":    "INVALID_NIT",
				"message": "issuer NIT is not registered",
			})
		})

		result, err := certifier.Certify(context.Background(), billing.DocumentKindInvoice, testInvoice(t))
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "INVALID_NIT")
	})

	t.Run("returns error when authority is unreachable", func(t *testing.T) {
		certifier, err := NewHTTPCertifier(config.CertificationConfig{
			BaseURL: "http://127.0.0.1:1",
			APIKey:  "test-key",
			Timeout: time.Second,
		})
		require.NoError(t, err)

		_, err = certifier.Certify(context.Background(), billing.DocumentKindInvoice, testInvoice(t))
		assert.Error(t, err)
	})
}

func TestHTTPCertifier_Void(t *testing.T) {
	certifier := newTestCertifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/documents/void", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "FEL-123", req["external_id"])
		assert.Equal(t, "duplicate document", req["reason"])

		json.NewEncoder(w).Encode(map[string]any{
			"voided_at": time.Date(2026, 8, 16, 9, 0, 0, 0, time.UTC),
		})
	})

	result, err := certifier.Void(context.Background(), "FEL-123", "AUTH-456", "duplicate document")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.VoidedAt.IsZero())
}
