package fel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	certifyPath = "/api/v1/documents/certify"
	voidPath    = "/api/v1/documents/void"
)

// HTTPCertifier implements the Certifier interface against the electronic
// invoicing (FEL) authority's REST API. Callers treat it as a retriable side
// channel: a failed call is recorded on the document and retried later.
type HTTPCertifier struct {
	config     config.CertificationConfig
	httpClient *http.Client
}

// NewHTTPCertifier creates a new FEL certifier from configuration
func NewHTTPCertifier(cfg config.CertificationConfig) (*HTTPCertifier, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("fel: base URL cannot be empty")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("fel: API key cannot be empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPCertifier{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// certifyRequest is the wire format for document certification
type certifyRequest struct {
	IssuerID       string          `json:"issuer_id"`
	DocumentType   string          `json:"document_type"`
	DocumentNumber string          `json:"document_number"`
	ClientName     string          `json:"client_name"`
	IssueDate      time.Time       `json:"issue_date"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
	ReferenceID    uuid.UUID       `json:"reference_id"`
}

// certifyResponse is the wire format of a certification result
type certifyResponse struct {
	ExternalID        string    `json:"external_id"`
	AuthorizationCode string    `json:"authorization_code"`
	CertifiedAt       time.Time `json:"certified_at"`
}

// errorResponse is the authority's error envelope
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Certify certifies an invoice document with the tax authority
func (c *HTTPCertifier) Certify(ctx context.Context, kind billing.DocumentKind, invoice *billing.Invoice) (*billing.CertificationResult, error) {
	req := certifyRequest{
		IssuerID:       c.config.IssuerID,
		DocumentType:   string(kind),
		DocumentNumber: invoice.InvoiceNumber,
		ClientName:     invoice.ClientName,
		IssueDate:      invoice.IssueDate,
		Total:          invoice.Total,
		Currency:       "GTQ",
		ReferenceID:    invoice.ID,
	}
	return c.certify(ctx, req)
}

// CertifyPayment certifies a payment receipt with the tax authority
func (c *HTTPCertifier) CertifyPayment(ctx context.Context, payment *billing.Payment, invoice *billing.Invoice) (*billing.CertificationResult, error) {
	req := certifyRequest{
		IssuerID:       c.config.IssuerID,
		DocumentType:   "recibo",
		DocumentNumber: invoice.InvoiceNumber,
		ClientName:     invoice.ClientName,
		IssueDate:      payment.PaidAt,
		Total:          payment.Total,
		Currency:       "GTQ",
		ReferenceID:    payment.ID,
	}
	return c.certify(ctx, req)
}

func (c *HTTPCertifier) certify(ctx context.Context, req certifyRequest) (*billing.CertificationResult, error) {
	respBody, status, err := c.doRequest(ctx, certifyPath, req)
	if err != nil {
		return nil, err
	}

	if status >= 400 {
		return &billing.CertificationResult{
			Success: false,
			Error:   parseAuthorityError(respBody, status),
		}, nil
	}

	var resp certifyResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("fel: failed to parse response: %w", err)
	}

	certifiedAt := resp.CertifiedAt
	if certifiedAt.IsZero() {
		certifiedAt = time.Now()
	}

	return &billing.CertificationResult{
		Success:           true,
		ExternalID:        resp.ExternalID,
		AuthorizationCode: resp.AuthorizationCode,
		CertifiedAt:       certifiedAt,
	}, nil
}

// voidRequest is the wire format for voiding a certified document
type voidRequest struct {
	IssuerID          string `json:"issuer_id"`
	ExternalID        string `json:"external_id"`
	AuthorizationCode string `json:"authorization_code"`
	Reason            string `json:"reason"`
}

// voidResponse is the wire format of a void result
type voidResponse struct {
	VoidedAt time.Time `json:"voided_at"`
}

// Void voids a previously certified document with the tax authority
func (c *HTTPCertifier) Void(ctx context.Context, externalID, authorizationCode, reason string) (*billing.VoidResult, error) {
	req := voidRequest{
		IssuerID:          c.config.IssuerID,
		ExternalID:        externalID,
		AuthorizationCode: authorizationCode,
		Reason:            reason,
	}

	respBody, status, err := c.doRequest(ctx, voidPath, req)
	if err != nil {
		return nil, err
	}

	if status >= 400 {
		return &billing.VoidResult{
			Success: false,
			Error:   parseAuthorityError(respBody, status),
		}, nil
	}

	var resp voidResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("fel: failed to parse response: %w", err)
	}

	voidedAt := resp.VoidedAt
	if voidedAt.IsZero() {
		voidedAt = time.Now()
	}

	return &billing.VoidResult{
		Success:  true,
		VoidedAt: voidedAt,
	}, nil
}

func (c *HTTPCertifier) doRequest(ctx context.Context, path string, payload any) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("fel: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("fel: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fel: authority unreachable: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("fel: failed to read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

func parseAuthorityError(body []byte, status int) string {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		if errResp.Code != "" {
			return fmt.Sprintf("%s: %s", errResp.Code, errResp.Message)
		}
		return errResp.Message
	}
	return fmt.Sprintf("authority returned status %d", status)
}

// Ensure HTTPCertifier implements Certifier
var _ billing.Certifier = (*HTTPCertifier)(nil)
