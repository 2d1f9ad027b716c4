package analysis

import (
	"context"

	"netopscore/internal/domain"
)

// AdapterInput is the LLM adapter contract's input shape.
type AdapterInput struct {
	Kind            domain.AnalysisKind
	ProjectContext  string
	DeviceContext   string
	IncludeOriginal bool
}

// AdapterOutput is the LLM adapter contract's output shape.
type AdapterOutput struct {
	AIDraftJSON string
	AIDraftText string
	LLMMetrics  domain.LLMMetrics
}

// Adapter is the opaque LLM boundary; the core never depends on a
// specific model provider. Production wiring points this at an HTTP
// client for the configured endpoint; tests substitute a stub.
type Adapter interface {
	Analyze(ctx context.Context, in AdapterInput) (AdapterOutput, error)
}

// AdapterFunc adapts a plain function to the Adapter interface.
type AdapterFunc func(ctx context.Context, in AdapterInput) (AdapterOutput, error)

func (f AdapterFunc) Analyze(ctx context.Context, in AdapterInput) (AdapterOutput, error) {
	return f(ctx, in)
}
