package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"time"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"
)

// Setting keys used on printed tickets.
const (
	SettingCompanyName  = "company_name"
	SettingAddress      = "company_address"
	SettingTicketFooter = "ticket_footer"
)

var paymentMethodLabels = map[string]string{
	models.PaymentMethodCash:    "Cash",
	models.PaymentMethodCard:    "Card",
	models.PaymentMethodDigital: "Digital",
}

// PaymentMethodLabel returns the human label printed on tickets.
func PaymentMethodLabel(method string) string {
	if label, ok := paymentMethodLabels[method]; ok {
		return label
	}
	return method
}

var ticketTemplate = template.Must(template.New("ticket").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<div style="font-family: monospace; width: 280px; font-size: 12px;">
  <div style="text-align: center;">
    <strong>{{.CompanyName}}</strong><br>
    {{if .Address}}{{.Address}}<br>{{end}}
  </div>
  <hr>
  <div>
    Order #{{.OrderNumber}}<br>
    {{.Timestamp}}<br>
    Cashier: {{.CashierName}}
  </div>
  <hr>
  <table style="width: 100%;">
    {{range .Lines}}<tr>
      <td>{{.Quantity}}x {{.Name}}{{if .Size}} ({{.Size}}){{end}}</td>
      <td style="text-align: right;">{{money .Subtotal}}</td>
    </tr>
    {{end}}
  </table>
  <hr>
  <div style="text-align: right;">
    <strong>TOTAL: {{money .Total}}</strong><br>
    Paid by {{.PaymentLabel}}
  </div>
  {{if .Footer}}<hr><div style="text-align: center;">{{.Footer}}</div>{{end}}
</div>`))

var reconciliationTemplate = template.Must(template.New("zticket").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<div style="font-family: monospace; width: 280px; font-size: 12px;">
  <div style="text-align: center;"><strong>{{.CompanyName}}</strong><br>CASH CLOSE</div>
  <hr>
  <div>
    {{.Timestamp}}<br>
    Cashier: {{.CashierName}}<br>
    Sessions closed: {{.SessionsClosed}}
  </div>
  <hr>
  <table style="width: 100%;">
    <tr><td>Opening</td><td style="text-align: right;">{{money .FirstOpening}}</td></tr>
    <tr><td>Sales</td><td style="text-align: right;">{{money .TotalSales}}</td></tr>
    <tr><td>Withdrawals</td><td style="text-align: right;">-{{money .TotalWithdrawals}}</td></tr>
    <tr><td><strong>Expected</strong></td><td style="text-align: right;"><strong>{{money .ExpectedClosing}}</strong></td></tr>
    <tr><td>Counted</td><td style="text-align: right;">{{money .ActualClosing}}</td></tr>
    <tr><td><strong>Difference</strong></td><td style="text-align: right;"><strong>{{money .Difference}}</strong></td></tr>
  </table>
</div>`))

type ticketLine struct {
	Name     string
	Size     string
	Quantity int
	Subtotal float64
}

// --- TicketService Interface ---

// TicketService formats completed orders and cash reconciliations into the
// printable HTML fragments the register sends to the print dialog.
type TicketService interface {
	RenderOrderTicket(validated *ValidatedOrder) (string, error)
	RenderReconciliationTicket(reconciliation *Reconciliation, cashierName string) (string, error)
}

type ticketService struct {
	settingRepo repositories.SettingRepository
}

// NewTicketService creates a new instance of TicketService.
func NewTicketService(sr repositories.SettingRepository) TicketService {
	return &ticketService{settingRepo: sr}
}

func (s *ticketService) setting(key, fallback string) string {
	value, err := s.settingRepo.GetValue(key)
	if err != nil || value == "" {
		return fallback
	}
	return value
}

func (s *ticketService) RenderOrderTicket(validated *ValidatedOrder) (string, error) {
	if validated == nil || validated.Order == nil {
		return "", errors.New("nothing to render")
	}
	order := validated.Order

	paymentLabel := ""
	if order.PaymentMethod != nil {
		paymentLabel = PaymentMethodLabel(*order.PaymentMethod)
	}

	lines := make([]ticketLine, 0, len(validated.Items))
	for _, item := range validated.Items {
		line := ticketLine{Name: item.ProductName, Quantity: item.Quantity, Subtotal: item.Subtotal}
		if item.SizeName != nil {
			line.Size = *item.SizeName
		}
		lines = append(lines, line)
	}

	data := struct {
		CompanyName  string
		Address      string
		Footer       string
		OrderNumber  int64
		Timestamp    string
		CashierName  string
		Lines        []ticketLine
		Total        float64
		PaymentLabel string
	}{
		CompanyName:  s.setting(SettingCompanyName, "POS"),
		Address:      s.setting(SettingAddress, ""),
		Footer:       s.setting(SettingTicketFooter, ""),
		OrderNumber:  order.OrderNumber,
		Timestamp:    order.UpdatedAt.Format("02/01/2006 15:04"),
		CashierName:  validated.CashierName,
		Lines:        lines,
		Total:        order.Total,
		PaymentLabel: paymentLabel,
	}

	var buf bytes.Buffer
	if err := ticketTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering order ticket: %w", err)
	}
	return buf.String(), nil
}

func (s *ticketService) RenderReconciliationTicket(reconciliation *Reconciliation, cashierName string) (string, error) {
	if reconciliation == nil {
		return "", errors.New("nothing to render")
	}

	timestamp := time.Now()
	if reconciliation.ClosedAt != nil {
		timestamp = *reconciliation.ClosedAt
	}

	data := struct {
		CompanyName      string
		Timestamp        string
		CashierName      string
		SessionsClosed   int
		FirstOpening     float64
		TotalSales       float64
		TotalWithdrawals float64
		ExpectedClosing  float64
		ActualClosing    float64
		Difference       float64
	}{
		CompanyName:      s.setting(SettingCompanyName, "POS"),
		Timestamp:        timestamp.Format("02/01/2006 15:04"),
		CashierName:      cashierName,
		SessionsClosed:   reconciliation.SessionsClosed,
		FirstOpening:     reconciliation.FirstOpening,
		TotalSales:       reconciliation.TotalSales,
		TotalWithdrawals: reconciliation.TotalWithdrawals,
		ExpectedClosing:  reconciliation.ExpectedClosing,
		ActualClosing:    reconciliation.ActualClosing,
		Difference:       reconciliation.Difference,
	}

	var buf bytes.Buffer
	if err := reconciliationTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering reconciliation ticket: %w", err)
	}
	return buf.String(), nil
}
