package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	carbonanalyzer "github.com/menta2k/carbon-analyzer"
	"github.com/menta2k/carbon-analyzer/pkg/processing"
)

type scanFlags struct {
	barcode         string
	image           string
	imageBase64     string
	location        string
	purchaseContext string
	format          string
}

func newScanCmd(a *app) *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Resolve a product, detect its packaging and estimate its footprint",
		Example: `  carbon-analyzer scan --barcode 7890123456789
  carbon-analyzer scan --image https://example.com/can.jpg --location "local market"
  carbon-analyzer scan --barcode 5449000000996 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runScan(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.barcode, "barcode", "", "product barcode")
	cmd.Flags().StringVar(&f.image, "image", "", "packaging photo path or URL (jpg/png/webp)")
	cmd.Flags().StringVar(&f.imageBase64, "image-base64", "", "packaging photo as base64 or data URL")
	cmd.Flags().StringVar(&f.location, "location", "", "purchase location (overrides scan.location)")
	cmd.Flags().StringVar(&f.purchaseContext, "context", "", "purchase context, e.g. retail_store, online")
	cmd.Flags().StringVar(&f.format, "format", "", "output format: text|json (overrides output.format)")
	cmd.MarkFlagsMutuallyExclusive("image", "image-base64")

	return cmd
}

func (a *app) runScan(cmd *cobra.Command, f scanFlags) error {
	if f.barcode == "" && f.image == "" && f.imageBase64 == "" {
		return fmt.Errorf("at least one of --barcode, --image or --image-base64 is required")
	}

	analyzer, err := a.newAnalyzer()
	if err != nil {
		return err
	}

	req := carbonanalyzer.ScanRequest{
		Barcode:         f.barcode,
		ImageBase64:     f.imageBase64,
		Location:        firstNonEmpty(f.location, a.cfg.Scan.Location),
		PurchaseContext: firstNonEmpty(f.purchaseContext, a.cfg.Scan.PurchaseContext),
	}

	if f.image != "" {
		img, err := processing.NewProcessor().LoadImageSmart(cmd.Context(), f.image)
		if err != nil {
			return fmt.Errorf("failed to load image: %w", err)
		}
		req.Image = img
	}

	result, err := analyzer.Analyze(cmd.Context(), req)
	if err != nil {
		return err
	}

	if firstNonEmpty(f.format, a.cfg.Output.Format) == "json" {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	return renderScan(cmd.OutOrStdout(), result)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
