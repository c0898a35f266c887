package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// HealthChecker probes the native Ollama API to confirm the server is
// reachable and the configured model is pulled.
type HealthChecker struct {
	http *resty.Client
}

// NewHealthChecker creates a health checker against the native API root,
// e.g. http://localhost:11434.
func NewHealthChecker(host string) *HealthChecker {
	return &HealthChecker{
		http: resty.New().
			SetBaseURL(host).
			SetTimeout(5 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(1 * time.Second),
	}
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ListModels returns the models available on the server.
func (h *HealthChecker) ListModels(ctx context.Context) ([]string, error) {
	var tags tagsResponse

	resp, err := h.http.R().
		SetContext(ctx).
		SetResult(&tags).
		Get("/api/tags")
	if err != nil {
		return nil, fmt.Errorf("ollama server unreachable: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ollama server returned status %d", resp.StatusCode())
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Check verifies the server is up and warns if the model is not pulled.
// A missing model is not fatal: Ollama resolves partial tags server-side.
func (h *HealthChecker) Check(ctx context.Context, model string) error {
	names, err := h.ListModels(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		if name == model {
			log.Info().Str("model", model).Msg("Ollama server ready")
			return nil
		}
	}

	log.Warn().
		Str("model", model).
		Int("available", len(names)).
		Msg("Model not in server tag list, Ollama may pull it on first use")
	return nil
}
