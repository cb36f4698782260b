package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/Fvasquez2556/agua-loti-sub000/internal/domain/billing"
	"github.com/Fvasquez2556/agua-loti-sub000/internal/infrastructure/config"
	"go.uber.org/zap"
)

// FileTicketRenderer implements TicketRenderer by rendering HTML templates to
// the output directory, converting to PDF when a converter is configured.
// Template files in the template directory override the built-in defaults.
type FileTicketRenderer struct {
	invoiceTmpl *template.Template
	paymentTmpl *template.Template
	outputDir   string
	converter   *PDFConverter // nil when PDF output is disabled
	logger      *zap.Logger
}

// NewFileTicketRenderer creates a ticket renderer from configuration
func NewFileTicketRenderer(cfg config.PrintingConfig, logger *zap.Logger) (*FileTicketRenderer, error) {
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("printing: output directory cannot be empty")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("printing: failed to create output directory: %w", err)
	}

	invoiceTmpl, err := loadTemplate(cfg.TemplateDir, "invoice.html", defaultInvoiceTemplate)
	if err != nil {
		return nil, err
	}
	paymentTmpl, err := loadTemplate(cfg.TemplateDir, "payment.html", defaultPaymentTemplate)
	if err != nil {
		return nil, err
	}

	var converter *PDFConverter
	if cfg.PDFEnabled {
		converter = NewPDFConverter(cfg.PDFTimeout, logger)
	}

	return &FileTicketRenderer{
		invoiceTmpl: invoiceTmpl,
		paymentTmpl: paymentTmpl,
		outputDir:   cfg.OutputDir,
		converter:   converter,
		logger:      logger,
	}, nil
}

func loadTemplate(dir, name, fallback string) (*template.Template, error) {
	if dir != "" {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			tmpl, err := template.ParseFiles(path)
			if err != nil {
				return nil, fmt.Errorf("printing: failed to parse template %s: %w", path, err)
			}
			return tmpl, nil
		}
	}
	tmpl, err := template.New(name).Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("printing: failed to parse built-in template %s: %w", name, err)
	}
	return tmpl, nil
}

// RenderInvoice renders the invoice ticket and returns its storage location
func (r *FileTicketRenderer) RenderInvoice(ctx context.Context, invoice *billing.Invoice) (*billing.RenderedTicket, error) {
	var buf bytes.Buffer
	if err := r.invoiceTmpl.Execute(&buf, invoice); err != nil {
		return nil, fmt.Errorf("failed to render invoice ticket: %w", err)
	}
	return r.store(ctx, "factura-"+invoice.InvoiceNumber, buf.String())
}

// RenderPayment renders the payment receipt ticket
func (r *FileTicketRenderer) RenderPayment(ctx context.Context, payment *billing.Payment, invoice *billing.Invoice) (*billing.RenderedTicket, error) {
	data := struct {
		Payment *billing.Payment
		Invoice *billing.Invoice
	}{payment, invoice}

	var buf bytes.Buffer
	if err := r.paymentTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render payment ticket: %w", err)
	}
	return r.store(ctx, "recibo-"+invoice.InvoiceNumber, buf.String())
}

// store writes the rendered document to the output directory, as PDF when a
// converter is available and as HTML otherwise
func (r *FileTicketRenderer) store(ctx context.Context, baseName, html string) (*billing.RenderedTicket, error) {
	content := []byte(html)
	ext := ".html"

	if r.converter != nil {
		pdf, err := r.converter.Convert(ctx, html)
		if err != nil {
			// Fall back to the HTML document so the ticket still ships
			r.logger.Warn("PDF conversion failed, storing HTML ticket",
				zap.String("document", baseName),
				zap.Error(err),
			)
		} else {
			content = pdf
			ext = ".pdf"
		}
	}

	path := filepath.Join(r.outputDir, baseName+ext)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write ticket %s: %w", path, err)
	}

	return &billing.RenderedTicket{
		Path: path,
		Size: int64(len(content)),
	}, nil
}

// Close releases the PDF converter, if any
func (r *FileTicketRenderer) Close() error {
	if r.converter != nil {
		return r.converter.Close()
	}
	return nil
}

// Ensure FileTicketRenderer implements TicketRenderer
var _ billing.TicketRenderer = (*FileTicketRenderer)(nil)
