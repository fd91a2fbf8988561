package cli

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/carbon-analyzer/internal/config"
	"github.com/menta2k/carbon-analyzer/internal/utils"
	"github.com/menta2k/carbon-analyzer/pkg/material"
	"github.com/menta2k/carbon-analyzer/pkg/processing"
	"github.com/menta2k/carbon-analyzer/pkg/types"
)

type classifyFlags struct {
	debugDir    string
	debugFormat string
	quality     int
	format      string
	describe    bool
}

// classifyResult is one line of classify output
type classifyResult struct {
	Source    string                    `json:"source"`
	Width     int                       `json:"width"`
	Height    int                       `json:"height"`
	Materials []types.MaterialDetection `json:"materials"`
	Overlay   string                    `json:"overlay,omitempty"`
	// Description is the model's free-text answer with --describe
	Description string `json:"description,omitempty"`
}

func newClassifyCmd(a *app) *cobra.Command {
	var f classifyFlags

	cmd := &cobra.Command{
		Use:   "classify <image|dir|url>...",
		Short: "Detect packaging materials in images",
		Example: `  carbon-analyzer classify bottle.jpg
  carbon-analyzer classify ./photos --debug-dir out --debug-format webp`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runClassify(cmd, args, f)
		},
	}

	cmd.Flags().StringVar(&f.debugDir, "debug-dir", "", "write overlays with detection boxes to this directory")
	cmd.Flags().StringVar(&f.debugFormat, "debug-format", "png", "overlay format: png|jpg|webp")
	cmd.Flags().IntVar(&f.quality, "debug-quality", 92, "overlay quality for jpg/webp")
	cmd.Flags().StringVar(&f.format, "format", "", "output format: text|json (overrides output.format)")
	cmd.Flags().BoolVar(&f.describe, "describe", false, "ask the vision model for a packaging description (ollama or llamacpp backend)")

	return cmd
}

func (a *app) runClassify(cmd *cobra.Command, args []string, f classifyFlags) error {
	sources, err := utils.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no images found in %s", strings.Join(args, ", "))
	}

	debugDir := firstNonEmpty(f.debugDir, a.cfg.Output.DebugDir)
	if debugDir != "" {
		if err := utils.EnsureDir(debugDir); err != nil {
			return fmt.Errorf("failed to create debug directory: %w", err)
		}
	}

	classifier, err := a.newClassifier()
	if err != nil {
		return err
	}
	model, isModel := classifier.(*material.Model)
	if f.describe && !isModel {
		return fmt.Errorf("--describe needs a model backend (%s or %s), got %s",
			config.BackendOllama, config.BackendLlamaCpp, a.cfg.Classifier.Backend)
	}
	processor := processing.NewProcessor()

	results := make([]classifyResult, 0, len(sources))
	for _, src := range sources {
		img, err := processor.LoadImageSmart(cmd.Context(), src)
		if err == nil {
			err = processor.ValidateImage(img, 1)
		}
		if err != nil {
			a.logger.Warn().Err(err).Str("source", src).Msg("skipping image")
			continue
		}

		b := img.Bounds()
		res := classifyResult{
			Source:    src,
			Width:     b.Dx(),
			Height:    b.Dy(),
			Materials: classifier.Classify(cmd.Context(), img),
		}

		if f.describe {
			desc, err := model.Describe(cmd.Context(), img)
			if err != nil {
				a.logger.Warn().Err(err).Str("source", src).Msg("packaging description failed")
			}
			res.Description = desc
		}

		if debugDir != "" {
			res.Overlay = a.saveOverlay(processor, img, res.Materials, src, debugDir, f)
		}
		results = append(results, res)
	}

	if len(results) == 0 {
		return fmt.Errorf("none of the %d images could be loaded", len(sources))
	}

	if firstNonEmpty(f.format, a.cfg.Output.Format) == "json" {
		return writeJSON(cmd.OutOrStdout(), results)
	}

	w := cmd.OutOrStdout()
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%dx%d)\n", headerStyle.Render(res.Source), res.Width, res.Height)
		if err := renderDetections(w, res.Materials); err != nil {
			return err
		}
		if res.Description != "" {
			fmt.Fprintln(w, res.Description)
		}
		if res.Overlay != "" {
			fmt.Fprintln(w, mutedStyle.Render("overlay: "+res.Overlay))
		}
	}
	return nil
}

// saveOverlay writes the debug overlay and returns its path, or "" on failure
func (a *app) saveOverlay(p *processing.Processor, img image.Image, detections []types.MaterialDetection, src, dir string, f classifyFlags) string {
	name := src
	if utils.IsURL(src) {
		name = utils.SanitizeFilename(strings.TrimPrefix(strings.TrimPrefix(src, "https://"), "http://"))
	}
	ext := strings.ToLower(f.debugFormat)
	path := utils.GenerateOutputFilename(filepath.Base(name), dir, "", "_materials", ext)

	overlay := p.CreateDebugOverlay(img, detections)
	if err := p.SaveImage(overlay, path, ext, f.quality, false); err != nil {
		a.logger.Warn().Err(err).Str("path", path).Msg("debug overlay save failed")
		return ""
	}
	a.logger.Debug().Str("path", path).Msg("wrote overlay")
	return path
}
