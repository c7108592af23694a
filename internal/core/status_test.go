package core_test

import (
	"testing"

	"shellfish-ops/internal/core"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to core.OrderStatus
		ok       bool
	}{
		{core.OrderStatusPending, core.OrderStatusConfirmed, true},
		{core.OrderStatusPending, core.OrderStatusCancelled, true},
		{core.OrderStatusPending, core.OrderStatusDelivered, false},
		{core.OrderStatusConfirmed, core.OrderStatusDelivered, true},
		{core.OrderStatusConfirmed, core.OrderStatusPending, true},
		{core.OrderStatusConfirmed, core.OrderStatusCancelled, true},
		{core.OrderStatusDelivered, core.OrderStatusPending, false},
		{core.OrderStatusDelivered, core.OrderStatusCancelled, false},
		{core.OrderStatusCancelled, core.OrderStatusPending, false},
		{core.OrderStatusDelivered, core.OrderStatusDelivered, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, core.OrderStatusDelivered.Terminal())
	assert.True(t, core.OrderStatusCancelled.Terminal())
	assert.False(t, core.OrderStatusConfirmed.Terminal())
	assert.False(t, core.OrderStatus("shipped").Valid())
}

func TestInvoiceStatus_Transitions(t *testing.T) {
	assert.True(t, core.InvoiceStatusDraft.CanTransitionTo(core.InvoiceStatusSent))
	assert.True(t, core.InvoiceStatusDraft.CanTransitionTo(core.InvoiceStatusPaid))
	assert.True(t, core.InvoiceStatusSent.CanTransitionTo(core.InvoiceStatusPaid))
	assert.True(t, core.InvoiceStatusSent.CanTransitionTo(core.InvoiceStatusDraft))
	assert.False(t, core.InvoiceStatusPaid.CanTransitionTo(core.InvoiceStatusSent))
	assert.False(t, core.InvoiceStatusPaid.CanTransitionTo(core.InvoiceStatusDraft))
	assert.False(t, core.InvoiceStatus("void").Valid())
}

func TestNumberFormats(t *testing.T) {
	assert.Equal(t, "16001", core.FormatOrderNumber(16001))
	assert.Equal(t, "INV-16001", core.FormatInvoiceNumber(16001))
	assert.Equal(t, "INV-00042", core.FormatInvoiceNumber(42))
}

func TestInvoiceFilenames(t *testing.T) {
	inv := &core.Invoice{InvoiceNumber: "INV-16001"}
	assert.Equal(t, "INV-16001.pdf", inv.PDFFilename())
	assert.Equal(t, "INV-16001-ShippingTag.pdf", inv.ShippingTagFilename())
}

func TestInvoiceRecipients(t *testing.T) {
	tests := []struct {
		name     string
		customer core.Customer
		want     []string
	}{
		{
			name:     "accounting plus additional",
			customer: core.Customer{AccountingEmail: "ap@bar.example", AdditionalAccountingEmail: "cfo@bar.example", ContactEmail: "chef@bar.example"},
			want:     []string{"ap@bar.example", "cfo@bar.example", "billing@oysterponds.example"},
		},
		{
			name:     "falls back to contact",
			customer: core.Customer{ContactEmail: "chef@bar.example"},
			want:     []string{"chef@bar.example", "billing@oysterponds.example"},
		},
		{
			name:     "duplicates removed",
			customer: core.Customer{AccountingEmail: "AP@bar.example", AdditionalAccountingEmail: "ap@bar.example"},
			want:     []string{"AP@bar.example", "billing@oysterponds.example"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.InvoiceRecipients(&tt.customer, "billing@oysterponds.example")
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := core.InvoiceRecipients(&core.Customer{BusinessName: "No Mail Inc"}, "billing@oysterponds.example")
	assert.True(t, core.IsKind(err, core.KindValidation))
}
