package cli

import (
	"context"
	"testing"
	"time"

	"shellfish-ops/internal/app"
	"shellfish-ops/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "worker", "remind", "create-admin", "export", "ar-aging", "interpret", "migrate", "seed", "shell"})

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	reminders := serve.Flags().Lookup("reminders")
	require.NotNil(t, reminders)
	assert.Equal(t, "true", reminders.DefValue)
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want time.Weekday
		ok   bool
	}{
		{"Monday", time.Monday, true},
		{"thu", time.Thursday, true},
		{"SATURDAY", time.Saturday, true},
		{"tu", 0, false},
		{"Mondays", 0, false},
		{"someday", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseWeekday(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type seedApp struct {
	app.ApplicationService
	mock.Mock
}

func (m *seedApp) ListProducts(ctx context.Context, includeInactive bool) ([]core.Product, error) {
	args := m.Called(ctx, includeInactive)
	return args.Get(0).([]core.Product), args.Error(1)
}

func (m *seedApp) CreateProduct(ctx context.Context, in core.ProductInput) (*core.Product, error) {
	args := m.Called(ctx, in)
	if fn, ok := args.Get(0).(func(context.Context, core.ProductInput) *core.Product); ok {
		return fn(ctx, in), args.Error(1)
	}
	return args.Get(0).(*core.Product), args.Error(1)
}

func (m *seedApp) CreateCustomer(ctx context.Context, in core.CustomerInput) (*core.Customer, error) {
	args := m.Called(ctx, in)
	c, _ := args.Get(0).(*core.Customer)
	return c, args.Error(1)
}

func TestSeed_SkipsExisting(t *testing.T) {
	svc := &seedApp{}
	svc.On("ListProducts", mock.Anything, true).Return([]core.Product{
		{ID: 1, Name: "OSC Selects"},
		{ID: 2, Name: "OSC Grandes"},
	}, nil)
	next := 3
	svc.On("CreateProduct", mock.Anything, mock.Anything).Return(func(_ context.Context, in core.ProductInput) *core.Product {
		p := &core.Product{ID: next, Name: in.Name}
		next++
		return p
	}, nil)
	svc.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(in core.CustomerInput) bool {
		return in.BusinessName == "Demo Oyster Bar"
	})).Return(nil, core.Conflictf("customer slug %q is already in use", "demo-oyster-bar"))
	svc.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(in core.CustomerInput) bool {
		return in.BusinessName == "Demo Fish Market"
	})).Return(&core.Customer{ID: 9}, nil)

	created, err := seed(context.Background(), svc)
	require.NoError(t, err)
	assert.Equal(t, 5, created, "four products and one customer")
	svc.AssertNumberOfCalls(t, "CreateProduct", 4)

	barCall := svc.Calls[len(svc.Calls)-2]
	in := barCall.Arguments.Get(1).(core.CustomerInput)
	require.Len(t, in.CustomPricing, len(seedProducts))
	assert.Equal(t, 1, in.CustomPricing[0].ProductID)
	assert.Equal(t, "0.75", in.CustomPricing[0].Price.StringFixed(2))
}
