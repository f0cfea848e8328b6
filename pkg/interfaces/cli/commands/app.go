package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vsinha/spares/pkg/application/services"
	"github.com/vsinha/spares/pkg/domain/repositories"
	"github.com/vsinha/spares/pkg/infrastructure/config"
	"github.com/vsinha/spares/pkg/infrastructure/demo"
	"github.com/vsinha/spares/pkg/infrastructure/events"
	"github.com/vsinha/spares/pkg/infrastructure/logger"
	"github.com/vsinha/spares/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/spares/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/spares/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/spares/pkg/interfaces/cli/output"
)

// app is the store and service a command runs against
type app struct {
	cfg   *config.Config
	store repositories.Store
	pg    *postgres.Store
	svc   *services.Service
	log   zerolog.Logger
}

// openApp connects the configured store, builds the service and applies the
// --seed-dir and --demo flags
func openApp(cmd *cobra.Command, cfg *config.Config) (*app, error) {
	log := logger.WithComponent("cli")
	a := &app{cfg: cfg, log: log}

	switch cfg.Store {
	case config.StorePostgres:
		pg, err := postgres.Open(cfg.DatabaseURL, logger.WithComponent("postgres"))
		if err != nil {
			return nil, err
		}
		a.pg = pg
		a.store = pg
	default:
		a.store = memory.NewStore()
	}

	eventStore := events.NewInMemoryEventStore()
	if err := eventStore.Subscribe(events.AllEvents, events.NewAuditHandler(logger.WithComponent("audit"))); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to subscribe audit log: %w", err)
	}
	a.svc = services.New(a.store,
		services.WithCompanyGSTIN(cfg.CompanyGSTIN),
		services.WithDefaultGSTRate(cfg.DefaultGSTRate),
		services.WithPublisher(eventStore),
	)

	if err := a.seed(cmd); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) seed(cmd *cobra.Command) error {
	dir, _ := cmd.Flags().GetString("seed-dir")
	useDemo, _ := cmd.Flags().GetBool("demo")
	if dir == "" && !useDemo {
		return nil
	}
	if a.pg != nil {
		if err := a.pg.Migrate(cmd.Context()); err != nil {
			return err
		}
	}

	data := demo.BuildWorkshopData()
	if dir != "" {
		loaded, err := csv.NewLoader().LoadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to load seed files: %w", err)
		}
		data = *loaded
	}
	summary, err := a.svc.ImportMasterData(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("failed to import master data: %w", err)
	}
	a.log.Info().
		Int("locations", summary.Locations).
		Int("parts", summary.Parts).
		Int("suppliers", summary.Suppliers).
		Int("machines", summary.Machines).
		Int("stock_rows", summary.StockRows).
		Int("skipped", summary.Skipped).
		Msg("Seeded master data")
	return nil
}

// Close releases the database connection, if any
func (a *app) Close() error {
	if a.pg != nil {
		return a.pg.Close()
	}
	return nil
}

// locationCodes maps location IDs to codes for display
func (a *app) locationCodes(ctx context.Context) (map[string]string, error) {
	locs, err := a.svc.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]string, len(locs))
	for _, l := range locs {
		codes[l.ID] = l.Code
	}
	return codes, nil
}

// locationIDs resolves location codes to IDs
func (a *app) locationIDs(ctx context.Context, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	byCode, err := a.locationCodes(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(codes))
outer:
	for _, want := range codes {
		for id, code := range byCode {
			if code == want {
				ids = append(ids, id)
				continue outer
			}
		}
		return nil, fmt.Errorf("unknown location code: %s", want)
	}
	return ids, nil
}

// outputConfig opens the --output file, or stdout, in the --format format
func outputConfig(cmd *cobra.Command) (output.Config, func() error, error) {
	format, _ := cmd.Flags().GetString("format")
	path, _ := cmd.Flags().GetString("output")
	if format == output.FormatXLSX && path == "" {
		return output.Config{}, nil, fmt.Errorf("--output is required for the xlsx format")
	}

	var out io.Writer = cmd.OutOrStdout()
	closeFn := func() error { return nil }
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return output.Config{}, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		out = f
		closeFn = f.Close
	}
	return output.Config{Format: format, Out: out}, closeFn, nil
}

func addOutputFlags(cmd *cobra.Command, formats string) {
	cmd.Flags().StringP("format", "f", output.FormatText, "Output format: "+formats)
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
}
