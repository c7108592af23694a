package ai_test

import (
	"testing"
	"time"

	"shellfish-ops/internal/ai"
	"shellfish-ops/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func interpretRequest() ai.InterpretRequest {
	return ai.InterpretRequest{
		Text:  "Oyster Bar wants 200 OSC Selects for Friday",
		Today: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Products: []core.Product{
			{ID: 1, Name: "OSC Selects", Unit: core.UnitOyster, BasePrice: decimal.RequireFromString("0.80"), IsActive: true},
			{ID: 2, Name: "Retired Grade", Unit: core.UnitOyster, BasePrice: decimal.RequireFromString("0.50"), IsActive: false},
		},
		Customers: []core.CustomerSummary{{ID: 7, BusinessName: "Oyster Bar NYC"}},
	}
}

func TestParseDraft(t *testing.T) {
	req := interpretRequest()

	tests := []struct {
		name    string
		content string
		kind    core.Kind
		check   func(t *testing.T, d *ai.OrderDraft)
	}{
		{
			name: "valid draft",
			content: `{"is_clarification":false,"clarification_message":"","customer_id":7,"delivery_date":"2025-06-13",
				"items":[{"product_id":1,"quantity":200}],"notes":"","confidence":0.9,"reasoning":"named customer"}`,
			check: func(t *testing.T, d *ai.OrderDraft) {
				assert.Equal(t, 7, d.CustomerID)
				assert.Equal(t, []ai.DraftLine{{ProductID: 1, Quantity: 200}}, d.Items)
			},
		},
		{
			name: "clarification",
			content: `{"is_clarification":true,"clarification_message":"Which customer is this for?","customer_id":0,
				"delivery_date":"","items":[],"notes":"","confidence":0.3,"reasoning":"no customer"}`,
			check: func(t *testing.T, d *ai.OrderDraft) {
				assert.True(t, d.IsClarification)
				assert.Equal(t, "Which customer is this for?", d.ClarificationMessage)
			},
		},
		{
			name:    "unknown customer",
			content: `{"customer_id":99,"delivery_date":"2025-06-13","items":[{"product_id":1,"quantity":1}]}`,
			kind:    core.KindValidation,
		},
		{
			name:    "inactive product",
			content: `{"customer_id":7,"delivery_date":"2025-06-13","items":[{"product_id":2,"quantity":1}]}`,
			kind:    core.KindValidation,
		},
		{
			name:    "bad date",
			content: `{"customer_id":7,"delivery_date":"Friday","items":[{"product_id":1,"quantity":1}]}`,
			kind:    core.KindValidation,
		},
		{
			name:    "zero quantity",
			content: `{"customer_id":7,"delivery_date":"2025-06-13","items":[{"product_id":1,"quantity":0}]}`,
			kind:    core.KindValidation,
		},
		{
			name:    "empty response",
			content: ``,
			kind:    core.KindUnavailable,
		},
		{
			name:    "malformed json",
			content: `{"customer_id":`,
			kind:    core.KindUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ai.ParseDraft(tt.content, req)
			if tt.check != nil {
				require.NoError(t, err)
				tt.check(t, d)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, core.KindOf(err))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := ai.BuildPrompt(interpretRequest())

	assert.Contains(t, prompt, "2025-06-10 (Tuesday)")
	assert.Contains(t, prompt, "7 | Oyster Bar NYC")
	assert.Contains(t, prompt, "1 | OSC Selects | per oyster | base 0.80")
	assert.NotContains(t, prompt, "Retired Grade")
	assert.Contains(t, prompt, "200 OSC Selects for Friday")
}
