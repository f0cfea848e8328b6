package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/infrastructure/config"
	"github.com/vsinha/spares/pkg/infrastructure/demo"
	"github.com/vsinha/spares/pkg/infrastructure/excel"
	"github.com/vsinha/spares/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/spares/pkg/interfaces/cli/output"
)

func newMigrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Store != config.StorePostgres {
				return fmt.Errorf("migrate needs SPARES_STORE=%s", config.StorePostgres)
			}
			a, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.pg.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func newSeedCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed [dir]",
		Short: "Import master data and opening stock",
		Long: fmt.Sprintf(`Import locations, spare parts, suppliers, machines and opening stock.

dir may hold any of %s, %s, %s, %s and %s.
Records whose code already exists are skipped, so seeding twice is safe.
Without dir, --demo imports the demo workshop.`,
			csv.LocationsFile, csv.PartsFile, csv.SuppliersFile, csv.MachinesFile, csv.StockFile),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			useDemo, _ := cmd.Flags().GetBool("demo")
			if len(args) == 0 && !useDemo {
				return fmt.Errorf("give a seed directory or --demo")
			}

			var data dto.MasterData
			if len(args) == 1 {
				loaded, err := csv.NewLoader().LoadDir(args[0])
				if err != nil {
					return fmt.Errorf("failed to load seed files: %w", err)
				}
				data = *loaded
			} else {
				data = demo.BuildWorkshopData()
			}

			// the root --demo flag would seed a second time
			if err := cmd.Flags().Set("demo", "false"); err != nil {
				return err
			}
			a, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.pg != nil {
				if err := a.pg.Migrate(cmd.Context()); err != nil {
					return err
				}
			}

			summary, err := a.svc.ImportMasterData(cmd.Context(), data)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			return output.Summary(summary, output.Config{Format: format, Out: cmd.OutOrStdout()})
		},
	}
	cmd.Flags().StringP("format", "f", output.FormatText, "Output format: text, json")
	return cmd
}

func newImportStockCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-stock <file.xlsx>",
		Short: "Set stock counts from an Excel sheet",
		Long: `Set stock counts from an Excel sheet with the columns part_number,
location_code, quantity and optionally reason. Each row becomes an
adjustment to the counted quantity. One bad row rejects the whole file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheet, _ := cmd.Flags().GetString("sheet")
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("unable to open file: %w", err)
			}
			defer f.Close()

			lines, err := excel.ReadOpeningStock(f, sheet)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(args[0]), err)
			}

			a, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			n, err := a.svc.ImportStock(cmd.Context(), lines)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d stock rows from %s\n", n, filepath.Base(args[0]))
			return nil
		},
	}
	cmd.Flags().String("sheet", "", "Sheet name (default: first sheet)")
	return cmd
}

func newUserCommand(cfg *config.Config) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage API users",
	}
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an API user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("SPARES_USER_PASSWORD")
			}

			a, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			u, err := a.svc.CreateUser(cmd.Context(), dto.UserInput{
				Username: args[0],
				Name:     name,
				Role:     entities.Role(role),
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %s (%s)\n", u.Role, u.Username, u.ID)
			return nil
		},
	}
	add.Flags().String("name", "", "Display name")
	add.Flags().String("role", string(entities.RoleStorekeeper), "Role: admin, approver, storekeeper")
	add.Flags().String("password", "", "Password (default SPARES_USER_PASSWORD)")
	user.AddCommand(add)
	return user
}
