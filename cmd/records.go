package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/strollerlabs/stroller-truth/internal/model"
)

var (
	recordsRegion        string
	recordsUse           string
	recordsSeatRev       string
	recordsConfidenceMin string
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List records in the current snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		if err := env.ensureData(ctx); err != nil {
			return err
		}

		filter := model.RecordFilter{
			Region:              model.Region(recordsRegion),
			IntendedUseCategory: recordsUse,
			ConfidenceMin:       model.Confidence(recordsConfidenceMin),
		}
		if recordsSeatRev != "" {
			b := recordsSeatRev == "true"
			filter.SeatReversible = &b
		}

		snap := env.Mem.Snapshot()
		records := snap.Filter(filter, env.Rules)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tBRAND\tMODEL\tREGION\tUSE\tWEIGHT(LB)\tDISCLOSURES")
		for _, rec := range records {
			h := model.HighlightsOf(rec)
			weight := "-"
			if h.StrollerWeightLb != nil {
				weight = fmt.Sprintf("%g", *h.StrollerWeightLb)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
				rec.ProductID, rec.Brand, rec.Model, rec.Region,
				rec.StringField(model.FieldIntendedUse), weight,
				len(env.Rules.RecordDisclosures(rec, rec.Region)),
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("%d of %d records\n", len(records), snap.Len())
		return nil
	},
}

func init() {
	recordsCmd.Flags().StringVar(&recordsRegion, "region", "", "filter by region (US, EU, other)")
	recordsCmd.Flags().StringVar(&recordsUse, "use", "", "filter by intended use category")
	recordsCmd.Flags().StringVar(&recordsSeatRev, "seat-reversible", "", "filter by seat reversibility (true/false)")
	recordsCmd.Flags().StringVar(&recordsConfidenceMin, "confidence-min", "", "exclude records with unverified core fields (medium or high)")
	rootCmd.AddCommand(recordsCmd)
}
