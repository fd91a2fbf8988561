package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/carbon-analyzer/pkg/alternatives"
	"github.com/menta2k/carbon-analyzer/pkg/carbon"
	"github.com/menta2k/carbon-analyzer/pkg/equivalency"
	"github.com/menta2k/carbon-analyzer/pkg/product"
	"github.com/menta2k/carbon-analyzer/pkg/types"
)

type estimateFlags struct {
	barcode         string
	name            string
	category        string
	materials       []string
	weightGrams     float64
	origin          string
	verified        bool
	location        string
	purchaseContext string
	format          string
}

type estimateOutput struct {
	Product      types.ProductInfo          `json:"product"`
	Estimate     types.CarbonEstimate       `json:"estimate"`
	Alternatives []alternatives.Alternative `json:"alternatives"`
	Equivalency  equivalency.Output         `json:"equivalency"`
}

func newEstimateCmd(a *app) *cobra.Command {
	var f estimateFlags

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the footprint of a product described by flags",
		Long: `Estimate the footprint of a product described by flags.

With --barcode the product is resolved first and the remaining flags
override the resolved fields.`,
		Example: `  carbon-analyzer estimate --category electronics --materials aluminum,glass --weight-g 187 --origin China
  carbon-analyzer estimate --barcode 5432109876543 --location "local market"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runEstimate(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.barcode, "barcode", "", "resolve this barcode before applying overrides")
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	factors := carbon.DefaultFactors()
	cmd.Flags().StringVar(&f.category, "category", "", "product category: "+strings.Join(factors.Categories(), ", "))
	cmd.Flags().StringSliceVar(&f.materials, "materials", nil, "comma separated material tags")
	cmd.Flags().Float64Var(&f.weightGrams, "weight-g", 0, "product weight in grams")
	cmd.Flags().StringVar(&f.origin, "origin", "", "country of origin")
	cmd.Flags().BoolVar(&f.verified, "verified", false, "mark the product data as verified")
	cmd.Flags().StringVar(&f.location, "location", "", "purchase location (overrides scan.location)")
	cmd.Flags().StringVar(&f.purchaseContext, "context", "", "purchase context: "+strings.Join(factors.PurchaseContexts(), ", "))
	cmd.Flags().StringVar(&f.format, "format", "", "output format: text|json (overrides output.format)")

	return cmd
}

func (a *app) runEstimate(cmd *cobra.Command, f estimateFlags) error {
	info := types.ProductInfo{Name: "Custom Product", WeightKg: types.DefaultWeightKg}
	if f.barcode != "" {
		resolver := product.NewResolver(a.sources()...)
		resolver.SetLogger(a.logger)
		info = resolver.Resolve(cmd.Context(), f.barcode)
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		info.Name = f.name
	}
	if flags.Changed("category") {
		info.Category = f.category
	}
	if flags.Changed("materials") {
		info.Materials = f.materials
	}
	if flags.Changed("weight-g") {
		info.WeightKg = types.GramsToKg(f.weightGrams)
	}
	if flags.Changed("origin") {
		info.CountryOrigin = f.origin
	}
	if flags.Changed("verified") {
		info.Verified = f.verified
	}
	info = info.Normalized()

	est := a.newEngine().Estimate(info,
		firstNonEmpty(f.location, a.cfg.Scan.Location),
		firstNonEmpty(f.purchaseContext, a.cfg.Scan.PurchaseContext))

	out := estimateOutput{
		Product:      info,
		Estimate:     est,
		Alternatives: alternatives.ForEstimate(info, est),
		Equivalency:  equivalency.FromEstimate(est),
	}

	if firstNonEmpty(f.format, a.cfg.Output.Format) == "json" {
		return writeJSON(cmd.OutOrStdout(), out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s, %s)\n", headerStyle.Render(info.Name), info.Category, info.CountryOrigin)
	if err := renderEstimate(w, est); err != nil {
		return err
	}
	if len(out.Alternatives) > 0 {
		fmt.Fprintln(w)
		if err := renderAlternatives(w, info.Category, out.Alternatives); err != nil {
			return err
		}
	}
	renderEquivalency(w, out.Equivalency)
	return nil
}
