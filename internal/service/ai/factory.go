package ai

import (
	"fmt"
	"log/slog"
	"strings"

	aiSvc "sanctum/internal/domain/services/ai"
)

// NewGenerator picks a backend from the provider name. "anthropic" is chosen
// implicitly when an API key is present; it returns nil when nothing is
// configured.
func NewGenerator(provider, apiKey, model string, logger *slog.Logger) (aiSvc.Generator, error) {
	switch strings.ToLower(provider) {
	case "lorem":
		logger.Info("ai provider", "provider", "lorem")
		return NewLoremGenerator(), nil
	case "none":
		logger.Info("ai provider disabled")
		return nil, nil
	case "", "anthropic":
		if apiKey == "" {
			if provider != "" {
				return nil, fmt.Errorf("AI_PROVIDER=anthropic requires ANTHROPIC_API_KEY")
			}
			logger.Warn("ANTHROPIC_API_KEY is not set, AI features are disabled")
			return nil, nil
		}
		gen, err := NewAnthropicGenerator(apiKey, model)
		if err != nil {
			return nil, err
		}
		logger.Info("ai provider", "provider", "anthropic", "model", gen.model)
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", provider)
	}
}
