package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/strollerlabs/stroller-truth/internal/export"
	"github.com/strollerlabs/stroller-truth/internal/model"
)

var (
	compareRegion string
	compareFields []string
	compareXLSX   string
)

var compareCmd = &cobra.Command{
	Use:   "compare <product_id>...",
	Short: "Build a field-by-field comparison matrix for 2-6 products",
	Args:  cobra.MinimumNArgs(1),
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

		req := model.ComparisonRequest{
			ProductIDs: args,
			Region:     model.Region(compareRegion),
			Fields:     compareFields,
		}
		matrix, err := env.Eval.Compare(env.Mem.Snapshot(), req)
		if err != nil {
			return err
		}

		if compareXLSX != "" {
			if err := export.WriteXLSX(matrix, compareXLSX); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", compareXLSX)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprint(w, "FIELD")
		for _, row := range matrix.Rows {
			fmt.Fprintf(w, "\t%s", row.ProductID)
		}
		fmt.Fprintln(w)
		for i, field := range matrix.Fields {
			fmt.Fprint(w, field)
			for _, row := range matrix.Rows {
				cell := row.Cells[i]
				if cell.Excluded {
					fmt.Fprintf(w, "\t[%s]", cell.Disclosure.Reason)
				} else {
					fmt.Fprintf(w, "\t%v", cell.Value.Value)
				}
			}
			fmt.Fprintln(w)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		for _, warn := range matrix.Warnings {
			fmt.Printf("warning: %s (%s): %s\n", warn.Field, warn.Reason, warn.Message)
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareRegion, "region", "US", "target region")
	compareCmd.Flags().StringSliceVar(&compareFields, "fields", []string{
		model.FieldWeight, model.FieldFoldedDims, model.FieldMaxChildLb,
	}, "fields to compare")
	compareCmd.Flags().StringVar(&compareXLSX, "xlsx", "", "write the matrix to an XLSX file")
	rootCmd.AddCommand(compareCmd)
}
