package app

import (
	"context"

	"shellfish-ops/internal/ai"
	"shellfish-ops/internal/config"
	"shellfish-ops/internal/core"
	"shellfish-ops/internal/db"
	"shellfish-ops/internal/mail"
	"shellfish-ops/internal/render"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Runtime is the wired object graph shared by the server and the CLI commands.
type Runtime struct {
	Pool     *pgxpool.Pool
	App      ApplicationService
	Services Services
	Mailer   *mail.Mailer
}

// Close releases the database pool.
func (rt *Runtime) Close() {
	if rt.Pool != nil {
		rt.Pool.Close()
	}
}

// Bootstrap connects to the database and wires every service from cfg.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	loc := cfg.Location()
	company := core.Company(cfg.ShipperCertification, cfg.InternalEmail)

	mailer, err := mail.New(cfg.SMTP, company)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if !cfg.SMTP.Configured() {
		log.Warn().Msg("SMTP_USER/SMTP_PASS not set: invoice and reminder emails are disabled")
	}

	renderer := render.NewBounded(render.New(company), cfg.PDFConcurrency)
	sequences := core.NewSequenceService()

	svc := Services{
		Catalog:   core.NewCatalogService(pool),
		Customers: core.NewCustomerService(pool),
		Harvest:   core.NewHarvestLocationService(pool),
		Orders: core.NewOrderService(pool, sequences, core.OrderOptions{
			NumberBase: cfg.OrderNumberStart,
			Location:   loc,
		}),
		Invoices: core.NewInvoiceService(pool, sequences, renderer, mailer, core.InvoiceOptions{
			NumberBase:           cfg.InvoiceNumberStart,
			ShipperCertification: cfg.ShipperCertification,
			InternalEmail:        cfg.InternalEmail,
			Location:             loc,
		}),
		Reporting: core.NewReportingService(pool, core.ReportingOptions{
			Location:             loc,
			ShipperCertification: cfg.ShipperCertification,
			InternalEmail:        cfg.InternalEmail,
		}),
		Users: core.NewUserService(pool),
	}

	var interpreter ai.OrderInterpreter
	if cfg.OpenAIAPIKey != "" {
		interpreter = ai.NewAgent(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set: order interpretation is disabled")
	}

	return &Runtime{
		Pool:     pool,
		App:      NewAppService(pool, svc, interpreter, loc),
		Services: svc,
		Mailer:   mailer,
	}, nil
}

var (
	_ core.InvoiceMailer    = (*mail.Mailer)(nil)
	_ core.DocumentRenderer = (*render.Bounded)(nil)
	_ ai.OrderInterpreter   = (*ai.Agent)(nil)
)
