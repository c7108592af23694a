package cli

import (
	"context"
	"fmt"
	"os"

	"shellfish-ops/internal/app"
	"shellfish-ops/internal/core"
	"shellfish-ops/internal/db"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (c *cli) migrateCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.RequireDatabase(); err != nil {
				return err
			}
			pool, err := db.NewPool(cmd.Context(), c.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.Migrate(cmd.Context(), pool, os.DirFS(dir))
			if err != nil {
				return err
			}
			log.Info().Int("applied", applied).Msg("all migrations processed")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory holding NNN_description.sql files")
	return cmd
}

// seedProducts is the standard oyster line-up.
var seedProducts = []core.ProductInput{
	{Name: "OSC Selects", Description: "Premium choice oysters, hand-selected for quality"},
	{Name: "OSC Grandes", Description: "Large premium oysters with deep cups"},
	{Name: "OP Pearls", Description: "Small, delicate oysters with a briny finish"},
	{Name: "Torrisi Premium Pearls", Description: "Premium signature oysters for discerning palates"},
	{Name: "Pipe's Cove Darlings", Description: "Sweet, buttery oysters from Pipe's Cove"},
	{Name: "Naked Cowboy", Description: "Bold, briny oysters with a clean finish"},
}

// seedCustomer is a demo account; price applies to every product when set.
type seedCustomer struct {
	input core.CustomerInput
	price string
}

var seedCustomers = []seedCustomer{
	{
		input: core.CustomerInput{
			BusinessName:    "Demo Oyster Bar",
			Name:            "Chef Demo",
			ContactEmail:    "chef@demo-oyster-bar.example",
			AccountingEmail: "ap@demo-oyster-bar.example",
			BillingAddress:  core.Address{Street: "1 Main Street", City: "Greenport", State: "NY", Zip: "11944"},
			ReminderEnabled: true,
			ReminderDay:     "Monday",
		},
		price: "0.75",
	},
	{
		input: core.CustomerInput{
			BusinessName:        "Demo Fish Market",
			Name:                "Counter Manager",
			ContactEmail:        "orders@demo-fish-market.example",
			RequiresShippingTag: true,
		},
	},
}

func (c *cli) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the standard products and demo customers (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			created, err := seed(cmd.Context(), rt.App)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seed complete: %d records created\n", created)
			return err
		},
	}
}

// seed creates whatever seed records are missing. Existing records are left untouched.
func seed(ctx context.Context, svc app.ApplicationService) (int, error) {
	created := 0
	products, err := svc.ListProducts(ctx, true)
	if err != nil {
		return 0, err
	}
	existing := make(map[string]int, len(products))
	for _, p := range products {
		existing[p.Name] = p.ID
	}

	for _, in := range seedProducts {
		if _, ok := existing[in.Name]; ok {
			continue
		}
		p, err := svc.CreateProduct(ctx, in)
		if err != nil {
			return created, fmt.Errorf("failed to seed product %s: %w", in.Name, err)
		}
		existing[p.Name] = p.ID
		created++
	}

	for _, sc := range seedCustomers {
		in := sc.input
		if sc.price != "" {
			price := decimal.RequireFromString(sc.price)
			for _, sp := range seedProducts {
				in.CustomPricing = append(in.CustomPricing, core.CustomPrice{ProductID: existing[sp.Name], Price: price})
			}
		}
		_, err := svc.CreateCustomer(ctx, in)
		switch {
		case core.IsKind(err, core.KindConflict):
			log.Debug().Str("customer", in.BusinessName).Msg("seed customer exists")
		case err != nil:
			return created, fmt.Errorf("failed to seed customer %s: %w", in.BusinessName, err)
		default:
			created++
		}
	}
	return created, nil
}
