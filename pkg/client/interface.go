package client

import (
	"context"

	"github.com/menta2k/carbon-analyzer/pkg/types"
)

// VisionClient is a vision language model backend
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	AnalyzeMaterials(ctx context.Context, model, prompt, imgB64 string) (*types.MaterialScores, error)
}
