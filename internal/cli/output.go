package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	carbonanalyzer "github.com/menta2k/carbon-analyzer"
	"github.com/menta2k/carbon-analyzer/pkg/alternatives"
	"github.com/menta2k/carbon-analyzer/pkg/equivalency"
	"github.com/menta2k/carbon-analyzer/pkg/types"
)

const tabPadding = 2

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	impactColors = map[types.ImpactLevel]lipgloss.Color{
		types.ImpactLow:      lipgloss.Color("42"),
		types.ImpactMedium:   lipgloss.Color("220"),
		types.ImpactHigh:     lipgloss.Color("208"),
		types.ImpactVeryHigh: lipgloss.Color("196"),
	}
)

func impactStyle(level types.ImpactLevel) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if c, ok := impactColors[level]; ok {
		style = style.Foreground(c)
	}
	return style
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderScan(w io.Writer, result *carbonanalyzer.ScanResult) error {
	p := result.Product
	fmt.Fprintln(w, headerStyle.Render(p.Name))
	if p.Brand != "" {
		fmt.Fprintf(w, "Brand:     %s\n", p.Brand)
	}
	fmt.Fprintf(w, "Barcode:   %s\n", p.Barcode)
	fmt.Fprintf(w, "Category:  %s\n", p.Category)
	fmt.Fprintf(w, "Materials: %s\n", strings.Join(p.Materials, ", "))
	fmt.Fprintf(w, "Weight:    %.3f kg, origin %s\n", p.WeightKg, p.CountryOrigin)
	if p.Source != "" {
		fmt.Fprintln(w, mutedStyle.Render("source: "+p.Source))
	}

	if len(result.Materials) > 0 {
		fmt.Fprintln(w)
		if err := renderDetections(w, result.Materials); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	if err := renderEstimate(w, result.Estimate); err != nil {
		return err
	}

	if len(result.Alternatives) > 0 {
		fmt.Fprintln(w)
		if err := renderAlternatives(w, result.Product.Category, result.Alternatives); err != nil {
			return err
		}
	}

	renderEquivalency(w, result.Equivalency)
	fmt.Fprintln(w, mutedStyle.Render("scan "+result.ScanID))
	return nil
}

func renderDetections(w io.Writer, detections []types.MaterialDetection) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "Material\tConfidence\tRecyclable\tkg CO2e/kg")
	fmt.Fprintln(tw, "--------\t----------\t----------\t----------")
	for _, d := range detections {
		fmt.Fprintf(tw, "%s\t%.2f\t%v\t%v\n",
			d.MaterialType, d.Confidence, propertyOr(d, "recyclable"), propertyOr(d, "carbon_intensity"))
	}
	return tw.Flush()
}

func propertyOr(d types.MaterialDetection, key string) any {
	if v, ok := d.Properties[key]; ok {
		return v
	}
	return "-"
}

func renderEstimate(w io.Writer, est types.CarbonEstimate) error {
	fmt.Fprintf(w, "Total: %s kg CO2e  %s\n",
		equivalency.FormatFloat(est.TotalCO2Kg, 3), impactStyle(est.ImpactLevel).Render(string(est.ImpactLevel)))

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintf(tw, "  production\t%.3f\n", est.ProductionCO2Kg)
	fmt.Fprintf(tw, "  transport\t%.3f\n", est.TransportCO2Kg)
	fmt.Fprintf(tw, "  packaging\t%.3f\n", est.PackagingCO2Kg)
	fmt.Fprintf(tw, "  usage\t%.3f\n", est.UsageCO2Kg)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "Confidence: %.0f%%  (%s)\n", est.ConfidenceScore*100, est.Methodology)
	return nil
}

func renderAlternatives(w io.Writer, category string, alts []alternatives.Alternative) error {
	header := headerStyle.Render("Lower-carbon alternatives")
	if category == types.DefaultCategory || !alternatives.HasSuggestions(category) {
		header += " " + mutedStyle.Render("(general suggestions)")
	}
	fmt.Fprintln(w, header)
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	for _, alt := range alts {
		fmt.Fprintf(tw, "  %s\t%.2f kg\t-%.0f%%\t%s\n", alt.Name, alt.CO2Kg, alt.Reduction*100, alt.Reason)
	}
	return tw.Flush()
}

func renderEquivalency(w io.Writer, out equivalency.Output) {
	if out.IsEmpty || out.DisplayText == "" {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, out.DisplayText)
}
