package commands

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/domain/gst"
	"github.com/vsinha/spares/pkg/domain/repositories"
	"github.com/vsinha/spares/pkg/infrastructure/config"
	"github.com/vsinha/spares/pkg/infrastructure/reports"
	"github.com/vsinha/spares/pkg/interfaces/cli/output"
)

func newReportCommand(cfg *config.Config) *cobra.Command {
	report := &cobra.Command{
		Use:   "report",
		Short: "Stock reports",
		Long: `Stock reports. Against postgres the reports are read straight from
the database; against the memory store they are built from the loaded data.`,
	}
	report.PersistentFlags().StringSlice("location", nil, "Only these location codes")

	lowStock := &cobra.Command{
		Use:   "low-stock",
		Short: "Stock rows at or below the part's reorder point",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, cfg, func(_ *app, src reports.Source, filter reports.Filter, out output.Config) error {
				rows, err := src.LowStock(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return output.LowStock(rows, out)
			})
		},
	}
	addOutputFlags(lowStock, "text, json, csv, xlsx, html")

	valuation := &cobra.Command{
		Use:   "valuation",
		Short: "On-hand stock value per location",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, cfg, func(_ *app, src reports.Source, filter reports.Filter, out output.Config) error {
				rows, err := src.Valuation(cmd.Context(), filter)
				if err != nil {
					return err
				}
				return output.Valuation(rows, out)
			})
		},
	}
	addOutputFlags(valuation, "text, json, csv, xlsx, html")

	stock := &cobra.Command{
		Use:   "stock",
		Short: "Stock levels per part and location",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, cfg, func(a *app, _ reports.Source, filter reports.Filter, out output.Config) error {
				return writeStockLevels(cmd, a, filter, out)
			})
		},
	}
	addOutputFlags(stock, "text, json, csv, xlsx, html")

	report.AddCommand(lowStock, valuation, stock)
	return report
}

func runReport(cmd *cobra.Command, cfg *config.Config, write func(*app, reports.Source, reports.Filter, output.Config) error) error {
	out, closeOut, err := outputConfig(cmd)
	if err != nil {
		return err
	}
	defer closeOut()

	a, err := openApp(cmd, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	codes, _ := cmd.Flags().GetStringSlice("location")
	ids, err := a.locationIDs(cmd.Context(), codes)
	if err != nil {
		return err
	}
	filter := reports.Filter{LocationIDs: ids}

	var src reports.Source = reports.NewStoreSource(a.store)
	if cfg.Store == config.StorePostgres {
		sqlSrc, err := reports.Connect(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer sqlSrc.Close()
		src = sqlSrc
	}
	return write(a, src, filter, out)
}

func writeStockLevels(cmd *cobra.Command, a *app, filter reports.Filter, out output.Config) error {
	ctx := cmd.Context()
	levels, err := a.svc.StockLevels(ctx, repositories.StockFilter{})
	if err != nil {
		return err
	}
	if len(filter.LocationIDs) > 0 {
		kept := levels[:0]
		for _, l := range levels {
			if slices.Contains(filter.LocationIDs, l.LocationID) {
				kept = append(kept, l)
			}
		}
		levels = kept
	}

	codes, err := a.locationCodes(ctx)
	if err != nil {
		return err
	}
	parts, err := a.svc.ListSpareParts(ctx, repositories.PartFilter{})
	if err != nil {
		return err
	}
	for _, p := range parts {
		codes[p.ID] = string(p.PartNumber)
	}
	return output.StockLevels(levels, codes, out)
}

func newReplenishCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replenish",
		Short: "Plan purchases and transfers for stock below its reorder point",
		Long: `Plan purchases and transfers for stock below its reorder point.
With --raise the plan is turned into draft indents and draft stock
transfers in one transaction.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raise, _ := cmd.Flags().GetBool("raise")
			requestedBy, _ := cmd.Flags().GetString("requested-by")

			out, closeOut, err := outputConfig(cmd)
			if err != nil {
				return err
			}
			defer closeOut()

			a, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			var plan *dto.ReplenishmentPlan
			if raise {
				docs, err := a.svc.RaiseReplenishment(cmd.Context(), requestedBy)
				if err != nil {
					return err
				}
				plan = docs.Plan
				a.log.Info().
					Int("indents", len(docs.Indents)).
					Int("transfers", len(docs.Transfers)).
					Msg("Raised replenishment documents")
				for _, in := range docs.Indents {
					fmt.Fprintf(cmd.ErrOrStderr(), "Raised indent %s\n", in.Number)
				}
				for _, tr := range docs.Transfers {
					fmt.Fprintf(cmd.ErrOrStderr(), "Raised transfer %s\n", tr.Number)
				}
			} else {
				plan, err = a.svc.PlanReplenishment(cmd.Context())
				if err != nil {
					return err
				}
			}

			codes, err := a.locationCodes(cmd.Context())
			if err != nil {
				return err
			}
			return output.Replenishment(plan, codes, out)
		},
	}
	addOutputFlags(cmd, "text, json, csv, xlsx, html")
	cmd.Flags().Bool("raise", false, "Raise draft indents and transfers for the plan")
	cmd.Flags().String("requested-by", "replenishment", "Requester recorded on raised documents")
	return cmd
}

func newGSTCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gst <amount>",
		Short: "Compute GST on a taxable amount",
		Example: `  spares gst 1000 --rate 18
  spares gst 1000 --rate 28 --party-gstin 29AABCU9603R1ZJ`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount: %s", args[0])
			}
			rate, _ := cmd.Flags().GetInt("rate")
			party, _ := cmd.Flags().GetString("party-gstin")
			format, _ := cmd.Flags().GetString("format")

			in := dto.GSTInput{Amount: amount, Rate: gst.Rate(rate), PartyGSTIN: party}
			if cmd.Flags().Changed("inter-state") {
				v, _ := cmd.Flags().GetBool("inter-state")
				in.InterState = &v
			}

			a, err := openApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			res, err := a.svc.ComputeGST(in)
			if err != nil {
				return err
			}
			return output.GST(res, output.Config{Format: format, Out: cmd.OutOrStdout()})
		},
	}
	cmd.Flags().Int("rate", 0, "GST rate: 5, 12, 18 or 28 (default DEFAULT_GST_RATE)")
	cmd.Flags().String("party-gstin", "", "Counterparty GSTIN; a different state code means IGST")
	cmd.Flags().Bool("inter-state", false, "Force IGST (or CGST+SGST with --inter-state=false)")
	cmd.Flags().StringP("format", "f", output.FormatText, "Output format: "+output.FormatText+", "+output.FormatJSON)
	return cmd
}
