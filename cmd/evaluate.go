package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strollerlabs/stroller-truth/internal/model"
)

var (
	evalRegion    string
	evalTerrain   string
	evalMaxWeight float64
	evalTravel    string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Partition the snapshot into eligible / ineligible / needs-review",
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

		cs := model.Constraints{
			Terrain:    evalTerrain,
			TravelMode: evalTravel,
		}
		if cmd.Flags().Changed("max-weight") {
			cs.MaxWeightLbs = &evalMaxWeight
		}

		partition, err := env.Eval.EvaluateAll(ctx, env.Mem.Snapshot().Records(), model.Region(evalRegion), cs)
		if err != nil {
			return err
		}

		printBucket := func(name string, evals []model.ProductEvaluation) {
			fmt.Printf("%s (%d):\n", name, len(evals))
			for _, pe := range evals {
				fmt.Printf("  %s  %s %s", pe.ProductID, pe.Brand, pe.Model)
				if len(pe.Result.Reasons) > 0 {
					fmt.Printf("  reasons=%v", pe.Result.Reasons)
				}
				if len(pe.Result.Refusals) > 0 {
					fmt.Printf("  refusals=%d", len(pe.Result.Refusals))
				}
				if len(pe.Result.Disclosures) > 0 {
					fmt.Printf("  disclosures=%d", len(pe.Result.Disclosures))
				}
				fmt.Println()
			}
		}
		printBucket("eligible", partition.Eligible)
		printBucket("needs_review", partition.NeedsReview)
		printBucket("ineligible", partition.Ineligible)
		return nil
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evalRegion, "region", "US", "target region")
	evaluateCmd.Flags().StringVar(&evalTerrain, "terrain", "", "required terrain (smooth, urban, light_uneven, all_terrain, jogging)")
	evaluateCmd.Flags().Float64Var(&evalMaxWeight, "max-weight", 0, "maximum stroller weight in lb")
	evaluateCmd.Flags().StringVar(&evalTravel, "travel", "", "travel mode (air applies refusal logic)")
	rootCmd.AddCommand(evaluateCmd)
}
