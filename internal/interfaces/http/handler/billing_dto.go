package handler

import (
	"time"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
)

// InvoiceResponse represents a billing document in API responses
// @Description Invoice, reconnection invoice or note returned by the API
type InvoiceResponse struct {
	ID            string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	InvoiceNumber string  `json:"invoice_number" example:"FACT-2026-000123"`
	Kind          string  `json:"kind" example:"normal" enums:"normal,reconexion,nota-credito,nota-debito"`
	ClientID      string  `json:"client_id"`
	ClientName    string  `json:"client_name" example:"Maria Lopez"`
	ReadingID     *string `json:"reading_id,omitempty"`

	IssueDate   time.Time `json:"issue_date"`
	DueDate     time.Time `json:"due_date"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	Consumption   string `json:"consumption" example:"5800.0000"`
	BaseFee       string `json:"base_fee" example:"50.00"`
	OverageLiters string `json:"overage_liters" example:"800.0000"`
	OverageCost   string `json:"overage_cost" example:"12.50"`
	Subtotal      string `json:"subtotal" example:"62.50"`
	Total         string `json:"total" example:"65.63"`

	Status           string     `json:"status" example:"pendiente" enums:"pendiente,pagada,anulada"`
	PaymentMethod    string     `json:"payment_method,omitempty" enums:"efectivo,cheque,transferencia,tarjeta"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`

	VoidedAt   *time.Time `json:"voided_at,omitempty"`
	VoidReason string     `json:"void_reason,omitempty"`

	ConsolidatedIntoID  *string `json:"consolidated_into_id,omitempty"`
	ConsolidationStatus string  `json:"consolidation_status" example:"none" enums:"none,partial,consolidated"`

	Reconnection *billing.ReconnectionDetail `json:"reconnection,omitempty"`
	Note         *billing.NoteDetail         `json:"note,omitempty"`

	Certification billing.Certification `json:"certification"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version" example:"1"`
}

func toInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                  invoice.ID.String(),
		InvoiceNumber:       invoice.InvoiceNumber,
		Kind:                string(invoice.Kind),
		ClientID:            invoice.ClientID.String(),
		ClientName:          invoice.ClientName,
		IssueDate:           invoice.IssueDate,
		DueDate:             invoice.DueDate,
		PeriodStart:         invoice.PeriodStart,
		PeriodEnd:           invoice.PeriodEnd,
		Consumption:         invoice.Consumption.StringFixed(4),
		BaseFee:             invoice.BaseFee.StringFixed(2),
		OverageLiters:       invoice.OverageLiters.StringFixed(4),
		OverageCost:         invoice.OverageCost.StringFixed(2),
		Subtotal:            invoice.Subtotal.StringFixed(2),
		Total:               invoice.Total.StringFixed(2),
		Status:              string(invoice.Status),
		PaymentMethod:       string(invoice.PaymentMethod),
		PaymentReference:    invoice.PaymentReference,
		PaidAt:              invoice.PaidAt,
		VoidedAt:            invoice.VoidedAt,
		VoidReason:          invoice.VoidReason,
		ConsolidationStatus: string(invoice.ConsolidationStatus),
		Reconnection:        invoice.Reconnection,
		Note:                invoice.Note,
		Certification:       invoice.Certification,
		CreatedAt:           invoice.CreatedAt,
		UpdatedAt:           invoice.UpdatedAt,
		Version:             invoice.Version,
	}
	if invoice.ReadingID != nil {
		id := invoice.ReadingID.String()
		resp.ReadingID = &id
	}
	if invoice.ConsolidatedIntoID != nil {
		id := invoice.ConsolidatedIntoID.String()
		resp.ConsolidatedIntoID = &id
	}
	return resp
}

func toInvoiceResponses(invoices []billing.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, toInvoiceResponse(&invoices[i]))
	}
	return responses
}

// PaymentResponse represents a payment in API responses
// @Description Payment details returned by the API
type PaymentResponse struct {
	ID           string                 `json:"id"`
	InvoiceID    string                 `json:"invoice_id"`
	ClientID     string                 `json:"client_id"`
	Amounts      billing.PaymentAmounts `json:"amounts"`
	Total        string                 `json:"total" example:"65.63"`
	Method       string                 `json:"method" example:"efectivo" enums:"efectivo,cheque,transferencia,tarjeta"`
	Reference    string                 `json:"reference,omitempty"`
	Check        *billing.CheckDetail   `json:"check,omitempty"`
	Status       string                 `json:"status" example:"procesado" enums:"procesado,cancelado,pendiente_confirmacion"`
	ReceivedBy   string                 `json:"received_by" example:"operador1"`
	PaidAt       time.Time              `json:"paid_at"`
	CancelledAt  *time.Time             `json:"cancelled_at,omitempty"`
	CancelReason string                 `json:"cancel_reason,omitempty"`

	Certification billing.Certification `json:"certification"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version" example:"1"`
}

func toPaymentResponse(payment *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID.String(),
		InvoiceID:     payment.InvoiceID.String(),
		ClientID:      payment.ClientID.String(),
		Amounts:       payment.Amounts,
		Total:         payment.Total.StringFixed(2),
		Method:        string(payment.Method),
		Reference:     payment.Reference,
		Check:         payment.Check,
		Status:        string(payment.Status),
		ReceivedBy:    payment.ReceivedBy,
		PaidAt:        payment.PaidAt,
		CancelledAt:   payment.CancelledAt,
		CancelReason:  payment.CancelReason,
		Certification: payment.Certification,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
		Version:       payment.Version,
	}
}

// ReconnectionResponse represents a completed reconnection in API responses
// @Description Immutable record of a processed reconnection
type ReconnectionResponse struct {
	ID                    string    `json:"id"`
	ClientID              string    `json:"client_id"`
	Option                string    `json:"option" example:"parcial" enums:"parcial,total,emergencia"`
	TotalDebt             string    `json:"total_debt" example:"325.00"`
	ReconnectionFee       string    `json:"reconnection_fee" example:"125.00"`
	AmountPaid            string    `json:"amount_paid" example:"385.00"`
	RemainingBalance      string    `json:"remaining_balance" example:"65.00"`
	ConsolidatedInvoiceID string    `json:"consolidated_invoice_id"`
	SourceInvoiceIDs      []string  `json:"source_invoice_ids"`
	Method                string    `json:"method" example:"efectivo"`
	Operator              string    `json:"operator" example:"operador1"`
	ProcessedAt           time.Time `json:"processed_at"`
	CreatedAt             time.Time `json:"created_at"`
}

func toReconnectionResponse(reconnection *billing.Reconnection) ReconnectionResponse {
	sourceIDs := make([]string, 0, len(reconnection.SourceInvoiceIDs))
	for _, id := range reconnection.SourceInvoiceIDs {
		sourceIDs = append(sourceIDs, id.String())
	}

	return ReconnectionResponse{
		ID:                    reconnection.ID.String(),
		ClientID:              reconnection.ClientID.String(),
		Option:                string(reconnection.Option),
		TotalDebt:             reconnection.TotalDebt.StringFixed(2),
		ReconnectionFee:       reconnection.ReconnectionFee.StringFixed(2),
		AmountPaid:            reconnection.AmountPaid.StringFixed(2),
		RemainingBalance:      reconnection.RemainingBalance.StringFixed(2),
		ConsolidatedInvoiceID: reconnection.ConsolidatedInvoiceID.String(),
		SourceInvoiceIDs:      sourceIDs,
		Method:                string(reconnection.Method),
		Operator:              reconnection.Operator,
		ProcessedAt:           reconnection.ProcessedAt,
		CreatedAt:             reconnection.CreatedAt,
	}
}

func toReconnectionResponses(reconnections []billing.Reconnection) []ReconnectionResponse {
	responses := make([]ReconnectionResponse, 0, len(reconnections))
	for i := range reconnections {
		responses = append(responses, toReconnectionResponse(&reconnections[i]))
	}
	return responses
}
