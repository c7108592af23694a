package core_test

import (
	"errors"
	"fmt"
	"testing"

	"shellfish-ops/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var e *core.Error
	require.True(t, errors.As(err, &e), "expected *core.Error, got %v", err)
	require.Equal(t, core.KindValidation, e.Kind)
	return e.Fields
}

func TestValidateStruct_OrderInput(t *testing.T) {
	negative := decimal.RequireFromString("-1")
	err := core.ValidateStruct(core.CreateOrderInput{
		Items: []core.OrderLineInput{
			{Product: core.ProductRef{ID: 1}, Quantity: 0},
			{Product: core.ProductRef{ID: 2}, Quantity: 5, PricePerUnit: &negative},
		},
	})
	fields := fieldsOf(t, err)

	assert.Contains(t, err.Error(), "customer")
	assert.Contains(t, err.Error(), "delivery_date")
	assert.Equal(t, "is required", fields["items[0].quantity"])
	assert.Contains(t, fields, "items[1].price_per_unit")
}

func TestValidateStruct_CustomerInput(t *testing.T) {
	err := core.ValidateStruct(core.CustomerInput{
		BusinessName: "Oyster Bar NYC",
		ContactEmail: "not-an-email",
		ReminderDay:  "Funday",
	})
	fields := fieldsOf(t, err)

	assert.Equal(t, "must be a valid email address", fields["contact_email"])
	assert.Contains(t, fields["reminder_day"], "must be one of")
	assert.NotContains(t, fields, "business_name")

	assert.NoError(t, core.ValidateStruct(core.CustomerInput{BusinessName: "Oyster Bar NYC", ReminderDay: "Friday"}))
}

func TestValidateStruct_EmptyItems(t *testing.T) {
	err := core.ValidateStruct(core.PublicOrderInput{CustomerSlug: "oyster-bar-nyc"})
	fields := fieldsOf(t, err)
	assert.Equal(t, "is required", fields["items"])
}

func TestErrorKinds(t *testing.T) {
	base := errors.New("smtp: connection refused")
	tests := []struct {
		err  error
		kind core.Kind
	}{
		{core.NotFoundf("order %d not found", 7), core.KindNotFound},
		{core.Validationf("bad"), core.KindValidation},
		{core.Conflictf("dup"), core.KindConflict},
		{core.Unauthorizedf("no"), core.KindUnauthorized},
		{core.Unavailable(base, "mail delivery failed"), core.KindUnavailable},
		{fmt.Errorf("failed to load: %w", core.NotFoundf("x")), core.KindNotFound},
		{base, core.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, core.KindOf(tt.err))
			assert.True(t, core.IsKind(tt.err, tt.kind))
		})
	}

	wrapped := core.Unavailable(base, "mail delivery failed")
	assert.ErrorIs(t, wrapped, base)
	assert.Equal(t, "mail delivery failed: smtp: connection refused", wrapped.Error())
	assert.False(t, core.IsKind(nil, core.KindInternal))
}
