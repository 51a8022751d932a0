package services

import (
	"testing"
	"time"

	"resto_pos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderTicket(t *testing.T) {
	service := NewTicketService(&fakeSettingRepo{values: map[string]string{
		SettingCompanyName:  "Chez Nous",
		SettingAddress:      "12 Rue du Marche",
		SettingTicketFooter: "Merci!",
	}})

	method := models.PaymentMethodCard
	size := "Large"
	validated := &ValidatedOrder{
		Order: &models.Order{
			ID:            1,
			OrderNumber:   1042,
			Status:        models.OrderStatusCompleted,
			Total:         12.00,
			PaymentMethod: &method,
			UpdatedAt:     time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC),
		},
		Items: []models.OrderItem{
			{ProductName: "Espresso", Quantity: 2, Subtotal: 5.00},
			{ProductName: "Cheesecake", SizeName: &size, Quantity: 1, Subtotal: 7.00},
		},
		CashierName: "Maria Lopez",
	}

	html, err := service.RenderOrderTicket(validated)
	require.NoError(t, err)

	assert.Contains(t, html, "Chez Nous")
	assert.Contains(t, html, "12 Rue du Marche")
	assert.Contains(t, html, "Order #1042")
	assert.Contains(t, html, "15/06/2025 13:45")
	assert.Contains(t, html, "Cashier: Maria Lopez")
	assert.Contains(t, html, "2x Espresso")
	assert.Contains(t, html, "1x Cheesecake (Large)")
	assert.Contains(t, html, "TOTAL: 12.00")
	assert.Contains(t, html, "Paid by Card")
	assert.Contains(t, html, "Merci!")
}

func TestRenderOrderTicketFallbacks(t *testing.T) {
	// No settings rows at all: the ticket still renders with defaults.
	service := NewTicketService(&fakeSettingRepo{values: map[string]string{}})

	method := models.PaymentMethodCash
	validated := &ValidatedOrder{
		Order: &models.Order{OrderNumber: 1, Total: 2.50, PaymentMethod: &method, UpdatedAt: time.Now()},
		Items: []models.OrderItem{{ProductName: "Espresso", Quantity: 1, Subtotal: 2.50}},
	}

	html, err := service.RenderOrderTicket(validated)
	require.NoError(t, err)
	assert.Contains(t, html, "POS")
	assert.NotContains(t, html, "<hr><div style=\"text-align: center;\"></div>", "an empty footer is omitted")
}

func TestRenderOrderTicketNil(t *testing.T) {
	service := NewTicketService(&fakeSettingRepo{values: map[string]string{}})
	_, err := service.RenderOrderTicket(nil)
	assert.Error(t, err)
}

func TestRenderReconciliationTicket(t *testing.T) {
	service := NewTicketService(&fakeSettingRepo{values: map[string]string{
		SettingCompanyName: "Chez Nous",
	}})

	closedAt := time.Date(2025, 6, 15, 23, 10, 0, 0, time.UTC)
	reconciliation := &Reconciliation{
		SessionsClosed:   2,
		FirstOpening:     100.00,
		TotalSales:       250.10,
		TotalWithdrawals: 50.05,
		ExpectedClosing:  300.05,
		ActualClosing:    300.00,
		Difference:       -0.05,
		ClosedAt:         &closedAt,
	}

	html, err := service.RenderReconciliationTicket(reconciliation, "Maria Lopez")
	require.NoError(t, err)

	assert.Contains(t, html, "CASH CLOSE")
	assert.Contains(t, html, "Sessions closed: 2")
	assert.Contains(t, html, "250.10")
	assert.Contains(t, html, "-50.05")
	assert.Contains(t, html, "300.05")
	assert.Contains(t, html, "-0.05")
	assert.Contains(t, html, "Cashier: Maria Lopez")
}

func TestPaymentMethodLabel(t *testing.T) {
	assert.Equal(t, "Cash", PaymentMethodLabel(models.PaymentMethodCash))
	assert.Equal(t, "Card", PaymentMethodLabel(models.PaymentMethodCard))
	assert.Equal(t, "Digital", PaymentMethodLabel(models.PaymentMethodDigital))
	assert.Equal(t, "cheque", PaymentMethodLabel("cheque"))
}
