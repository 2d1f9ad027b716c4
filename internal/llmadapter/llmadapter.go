// Package llmadapter is the production implementation of
// analysis.Adapter: a plain net/http client posting to the configured
// analysis endpoint. The backend is opaque: one JSON request out, one
// draft-plus-metrics response back. A bare *http.Client with a timeout
// is enough here.
package llmadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"netopscore/internal/analysis"
	"netopscore/internal/domain"
)

// HTTPAdapter posts analysis jobs to an external LLM service and
// decodes its response into analysis.AdapterOutput.
type HTTPAdapter struct {
	client   *http.Client
	endpoint string
}

// New builds an HTTPAdapter. timeout bounds one call end to end; the
// controller's own circuit breaker and adapter-timeout config layer on
// top of this.
func New(endpoint string, timeout time.Duration) *HTTPAdapter {
	return &HTTPAdapter{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

type requestBody struct {
	Kind            string `json:"kind"`
	ProjectContext  string `json:"project_context"`
	DeviceContext   string `json:"device_context"`
	IncludeOriginal bool   `json:"include_original"`
}

type responseBody struct {
	AIDraftJSON    string `json:"ai_draft_json"`
	AIDraftText    string `json:"ai_draft_text"`
	PromptTokens   int    `json:"prompt_tokens"`
	CompletionTok  int    `json:"completion_tokens"`
	ModelName      string `json:"model_name"`
	ElapsedMillis  int64  `json:"elapsed_millis"`
}

// Analyze implements analysis.Adapter.
func (a *HTTPAdapter) Analyze(ctx context.Context, in analysis.AdapterInput) (analysis.AdapterOutput, error) {
	payload, err := json.Marshal(requestBody{
		Kind:            string(in.Kind),
		ProjectContext:  in.ProjectContext,
		DeviceContext:   in.DeviceContext,
		IncludeOriginal: in.IncludeOriginal,
	})
	if err != nil {
		return analysis.AdapterOutput{}, fmt.Errorf("llmadapter: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return analysis.AdapterOutput{}, fmt.Errorf("llmadapter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		return analysis.AdapterOutput{}, fmt.Errorf("llmadapter: call endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return analysis.AdapterOutput{}, fmt.Errorf("llmadapter: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return analysis.AdapterOutput{}, fmt.Errorf("llmadapter: endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var out responseBody
	if err := json.Unmarshal(body, &out); err != nil {
		return analysis.AdapterOutput{}, fmt.Errorf("llmadapter: decode response: %w", err)
	}

	elapsed := out.ElapsedMillis
	if elapsed == 0 {
		elapsed = time.Since(started).Milliseconds()
	}

	return analysis.AdapterOutput{
		AIDraftJSON: out.AIDraftJSON,
		AIDraftText: out.AIDraftText,
		LLMMetrics: domain.LLMMetrics{
			ModelName:       out.ModelName,
			InferenceTimeMs: elapsed,
			TokenUsage: domain.TokenUsage{
				Prompt:     out.PromptTokens,
				Completion: out.CompletionTok,
				Total:      out.PromptTokens + out.CompletionTok,
			},
		},
	}, nil
}
