package cli

import (
	"fmt"
	"time"

	carbonanalyzer "github.com/menta2k/carbon-analyzer"
	"github.com/menta2k/carbon-analyzer/internal/config"
	"github.com/menta2k/carbon-analyzer/pkg/carbon"
	"github.com/menta2k/carbon-analyzer/pkg/client"
	"github.com/menta2k/carbon-analyzer/pkg/llamacpp"
	"github.com/menta2k/carbon-analyzer/pkg/material"
	"github.com/menta2k/carbon-analyzer/pkg/ollama"
	"github.com/menta2k/carbon-analyzer/pkg/product"
)

// newAnalyzer wires the facade from the resolved configuration
func (a *app) newAnalyzer() (*carbonanalyzer.Analyzer, error) {
	classifier, err := a.newClassifier()
	if err != nil {
		return nil, err
	}

	resolver := product.NewResolver(a.sources()...)
	resolver.SetLogger(a.logger.With().Str("component", "product").Logger())

	return carbonanalyzer.NewWithConfig(carbonanalyzer.Config{
		Classifier:      classifier,
		Resolver:        resolver,
		Engine:          a.newEngine(),
		EnrichMaterials: a.cfg.Scan.EnrichMaterials,
		Logger:          a.logger,
	}), nil
}

func (a *app) newEngine() *carbon.Engine {
	cfg := carbon.DefaultConfig()
	cfg.Logger = a.logger.With().Str("component", "carbon").Logger()
	return carbon.NewWithConfig(cfg)
}

func (a *app) sources() []product.Source {
	catalog := product.DefaultCatalog()
	sources := []product.Source{catalog}
	if !a.cfg.Product.Offline {
		timeout := time.Duration(a.cfg.Product.LookupTimeoutSeconds) * time.Second
		sources = append(sources, product.NewOpenFoodFacts(a.cfg.Product.OpenFoodFactsURL, timeout))
	}
	a.logger.Debug().
		Int("catalog_entries", catalog.Len()).
		Int("sources", len(sources)).
		Msg("product sources ready")
	return sources
}

// newClassifier builds the configured classifier backend
func (a *app) newClassifier() (material.Classifier, error) {
	cc := a.cfg.Classifier
	logger := a.logger.With().Str("component", "material").Str("backend", cc.Backend).Logger()

	var (
		visionClient client.VisionClient
		err          error
	)

	switch cc.Backend {
	case config.BackendOllama:
		visionClient, err = ollama.NewClient(cc.ServerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
	case config.BackendLlamaCpp:
		visionClient, err = llamacpp.NewClient(cc.ServerURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp client: %w", err)
		}
	default:
		hc := material.DefaultHeuristicConfig()
		hc.TextureWeight = a.cfg.Vision.TextureWeight
		hc.ColorWeight = a.cfg.Vision.ColorWeight
		hc.EdgeWeight = a.cfg.Vision.EdgeWeight
		hc.MaxDimension = a.cfg.Vision.MaxDimension
		h := material.NewHeuristicWithConfig(hc)
		h.SetLogger(logger)
		return h, nil
	}

	mc := material.DefaultModelConfig()
	mc.Model = cc.Model
	mc.SendSize = cc.SendSize
	mc.SendQuality = cc.SendQuality
	m := material.NewModelWithConfig(visionClient, mc)
	m.SetLogger(logger)
	return m, nil
}
