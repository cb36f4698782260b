package billing

import (
	"context"
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/registry"
)

// CertificationResult is the outcome of a certification attempt against the
// electronic-invoicing (FEL) authority
type CertificationResult struct {
	Success           bool
	ExternalID        string
	AuthorizationCode string
	CertifiedAt       time.Time
	Error             string
}

// VoidResult is the outcome of voiding a certified document
type VoidResult struct {
	Success  bool
	VoidedAt time.Time
	Error    string
}

// Certifier certifies and voids fiscal documents with the tax authority.
// Calls are a retriable side channel: local financial state must stay correct
// even if the authority is slow, fails, or never answers.
type Certifier interface {
	Certify(ctx context.Context, kind DocumentKind, invoice *Invoice) (*CertificationResult, error)
	CertifyPayment(ctx context.Context, payment *Payment, invoice *Invoice) (*CertificationResult, error)
	Void(ctx context.Context, externalID, authorizationCode, reason string) (*VoidResult, error)
}

// RenderedTicket is a rendered payment/invoice ticket
type RenderedTicket struct {
	Path string
	URL  string
	Size int64
}

// TicketRenderer renders PDF/QR tickets for documents. Consumed only for
// side-effect notification; failures never roll back a financial transition.
type TicketRenderer interface {
	RenderInvoice(ctx context.Context, invoice *Invoice) (*RenderedTicket, error)
	RenderPayment(ctx context.Context, payment *Payment, invoice *Invoice) (*RenderedTicket, error)
}

// NotificationSender delivers documents to clients. Best effort: failures are
// logged only.
type NotificationSender interface {
	Notify(ctx context.Context, client *registry.Client, subject, body string, attachmentPath string) error
}
