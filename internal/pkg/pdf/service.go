// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
)

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(invoiceTemplate))

// Service handles PDF generation
type Service struct {
	company config.CompanyConfig
	now     func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		company: cfg.Company,
		now:     time.Now,
	}
}

// GenerateInvoice renders the invoice for an order as PDF. It needs the
// wkhtmltopdf binary on PATH.
func (s *Service) GenerateInvoice(o *order.Order) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderInvoiceHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

// RenderInvoiceHTML renders the invoice markup
func (s *Service) RenderInvoiceHTML(o *order.Order) (string, error) {
	data := InvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", o.OrderNumber),
		InvoiceDate:   s.now().Format("January 2, 2006"),
		Symbol:        currencySymbol(o.Currency),
		Order:         o,
		Company:       s.company,
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Symbol        string
	Order         *order.Order
	Company       config.CompanyConfig
}

func currencySymbol(currency string) string {
	switch currency {
	case "", "INR":
		return "₹"
	case "USD":
		return "$"
	default:
		return currency + " "
	}
}

// wkhtmltopdf renders with an old WebKit, so the layout sticks to tables
const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.InvoiceNumber}}</title>
<style>
body { font-family: Arial, sans-serif; font-size: 13px; color: #222; margin: 24px; }
table { width: 100%; border-collapse: collapse; }
td, th { padding: 6px; vertical-align: top; text-align: left; }
.brand { font-size: 22px; font-weight: bold; color: #15803d; }
.muted { color: #666; }
.right { text-align: right; }
.lines th { background: #f0fdf4; border-bottom: 2px solid #bbf7d0; }
.lines td { border-bottom: 1px solid #eee; }
.grand td { font-size: 16px; font-weight: bold; border-top: 2px solid #222; }
.status-paid { color: #166534; font-weight: bold; }
.status-pending { color: #b45309; font-weight: bold; }
</style>
</head>
<body>
<table>
  <tr>
    <td>
      <div class="brand">{{.Company.Name}}</div>
      <div class="muted">{{.Company.Address}}</div>
      <div class="muted">{{.Company.Phone}} {{.Company.Email}}</div>
      <div class="muted">{{.Company.Website}}</div>
    </td>
    <td class="right">
      <div class="brand">TAX INVOICE</div>
      <div>{{.InvoiceNumber}} · {{.InvoiceDate}}</div>
      <div>Order {{.Order.OrderNumber}} ({{.Order.Status}})</div>
      <div class="{{if .Order.IsPaid}}status-paid{{else}}status-pending{{end}}">{{.Order.Payment.Provider}}: {{.Order.Payment.Status}}</div>
    </td>
  </tr>
</table>

<table>
  <tr>
    <td>
      <strong>Deliver to</strong><br>
      {{if .Order.Address.Name}}{{.Order.Address.Name}}<br>{{end}}
      {{.Order.Address.Line1}}<br>
      {{if .Order.Address.Line2}}{{.Order.Address.Line2}}<br>{{end}}
      {{.Order.Address.City}}, {{.Order.Address.State}} {{.Order.Address.Pincode}}
      {{if .Order.Address.Phone}}<br>{{.Order.Address.Phone}}{{end}}
    </td>
    <td class="right">
      <strong>Delivery slot</strong><br>
      {{.Order.TimeSlot.Date}}<br>
      {{.Order.TimeSlot.StartTime}} - {{.Order.TimeSlot.EndTime}}
    </td>
  </tr>
</table>

<table class="lines">
  <tr><th>Item</th><th>Unit</th><th class="right">Qty</th><th class="right">Rate</th><th class="right">Amount</th></tr>
  {{range .Order.Items}}
  <tr>
    <td>{{.Name}}</td>
    <td>{{.Unit}}</td>
    <td class="right">{{.Qty}}</td>
    <td class="right">{{$.Symbol}}{{money .UnitPrice}}</td>
    <td class="right">{{$.Symbol}}{{money .Price}}</td>
  </tr>
  {{end}}
  <tr><td colspan="4" class="right">Subtotal</td><td class="right">{{.Symbol}}{{money .Order.Subtotal}}</td></tr>
  <tr><td colspan="4" class="right">Delivery</td><td class="right">{{if .Order.DeliveryFee.IsZero}}FREE{{else}}{{.Symbol}}{{money .Order.DeliveryFee}}{{end}}</td></tr>
  <tr class="grand"><td colspan="4" class="right">Total ({{.Order.Currency}})</td><td class="right">{{.Symbol}}{{money .Order.Total}}</td></tr>
</table>

<p class="muted">Questions about this order? Write to {{.Company.Email}}.</p>
</body>
</html>
`
