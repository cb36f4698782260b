package printing

// Default ticket templates, used when the template directory does not
// provide an override. Thermal-receipt layout, 80mm paper.

const defaultInvoiceTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<title>Factura {{.InvoiceNumber}}</title>
<style>
  body { font-family: monospace; font-size: 12px; width: 72mm; margin: 0 auto; }
  .header { text-align: center; margin-bottom: 8px; }
  .header h1 { font-size: 14px; margin: 0; }
  table { width: 100%; border-collapse: collapse; }
  td.amount { text-align: right; }
  .total { font-weight: bold; border-top: 1px dashed #000; }
  .footer { text-align: center; margin-top: 8px; font-size: 10px; }
</style>
</head>
<body>
<div class="header">
  <h1>Agua LOTI</h1>
  <div>Servicio de agua potable</div>
</div>
<table>
  <tr><td>Factura</td><td class="amount">{{.InvoiceNumber}}</td></tr>
  <tr><td>Cliente</td><td class="amount">{{.ClientName}}</td></tr>
  <tr><td>Periodo</td><td class="amount">{{.MonthLabel}}</td></tr>
  <tr><td>Emision</td><td class="amount">{{.IssueDate.Format "02/01/2006"}}</td></tr>
  <tr><td>Vence</td><td class="amount">{{.DueDate.Format "02/01/2006"}}</td></tr>
  <tr><td>Consumo (L)</td><td class="amount">{{.Consumption}}</td></tr>
  <tr><td>Tarifa base</td><td class="amount">Q {{.BaseFee.StringFixed 2}}</td></tr>
  {{if .OverageCost.IsPositive}}
  <tr><td>Excedente</td><td class="amount">Q {{.OverageCost.StringFixed 2}}</td></tr>
  {{end}}
  <tr class="total"><td>Total</td><td class="amount">Q {{.Total.StringFixed 2}}</td></tr>
</table>
{{if .Certification.Certified}}
<div class="footer">
  <div>FEL: {{.Certification.ExternalID}}</div>
  <div>Autorizacion: {{.Certification.AuthorizationCode}}</div>
</div>
{{end}}
<div class="footer">Gracias por su pago puntual</div>
</body>
</html>`

const defaultPaymentTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<title>Recibo {{.Invoice.InvoiceNumber}}</title>
<style>
  body { font-family: monospace; font-size: 12px; width: 72mm; margin: 0 auto; }
  .header { text-align: center; margin-bottom: 8px; }
  .header h1 { font-size: 14px; margin: 0; }
  table { width: 100%; border-collapse: collapse; }
  td.amount { text-align: right; }
  .total { font-weight: bold; border-top: 1px dashed #000; }
  .footer { text-align: center; margin-top: 8px; font-size: 10px; }
</style>
</head>
<body>
<div class="header">
  <h1>Agua LOTI</h1>
  <div>Recibo de pago</div>
</div>
<table>
  <tr><td>Factura</td><td class="amount">{{.Invoice.InvoiceNumber}}</td></tr>
  <tr><td>Cliente</td><td class="amount">{{.Invoice.ClientName}}</td></tr>
  <tr><td>Fecha</td><td class="amount">{{.Payment.PaidAt.Format "02/01/2006 15:04"}}</td></tr>
  <tr><td>Metodo</td><td class="amount">{{.Payment.Method}}</td></tr>
  {{if .Payment.Check}}
  <tr><td>Banco</td><td class="amount">{{.Payment.Check.Bank}}</td></tr>
  <tr><td>Cheque</td><td class="amount">{{.Payment.Check.CheckNumber}}</td></tr>
  {{end}}
  <tr><td>Monto original</td><td class="amount">Q {{.Payment.Amounts.Original.StringFixed 2}}</td></tr>
  {{if .Payment.Amounts.Mora.IsPositive}}
  <tr><td>Mora</td><td class="amount">Q {{.Payment.Amounts.Mora.StringFixed 2}}</td></tr>
  {{end}}
  {{if .Payment.Amounts.ReconnectionFee.IsPositive}}
  <tr><td>Reconexion</td><td class="amount">Q {{.Payment.Amounts.ReconnectionFee.StringFixed 2}}</td></tr>
  {{end}}
  <tr class="total"><td>Total pagado</td><td class="amount">Q {{.Payment.Total.StringFixed 2}}</td></tr>
</table>
<div class="footer">Atendido por: {{.Payment.ReceivedBy}}</div>
<div class="footer">Gracias por su pago</div>
</body>
</html>`
