package ai

import (
	"context"
	"log/slog"
	"strings"

	"sanctum/internal/config"
	aiSvc "sanctum/internal/domain/services/ai"
)

const truncatedMarker = "...(truncated)"

// librarian implements aiSvc.Librarian over an optional Generator
type librarian struct {
	gen     aiSvc.Generator
	prompts *Prompts
	logger  *slog.Logger
}

// NewLibrarian creates a librarian. A nil generator makes every call return
// the "unavailable" message.
func NewLibrarian(gen aiSvc.Generator, prompts *Prompts, logger *slog.Logger) aiSvc.Librarian {
	return &librarian{gen: gen, prompts: prompts, logger: logger}
}

func (l *librarian) Summarize(ctx context.Context, content string, docType aiSvc.DocType) string {
	if l.gen == nil {
		return l.prompts.Unavailable
	}

	body, truncated := truncateRunes(content, config.MaxSummarizeChars)
	if truncated {
		body += " " + truncatedMarker
	}

	prompt, err := l.prompts.Summarize.Render(struct {
		DocType aiSvc.DocType
		Content string
	}{docType, body})
	if err != nil {
		l.logger.Error("render summarize prompt", "error", err)
		return l.prompts.Summarize.Failed
	}

	return l.generate(ctx, "summarize", &l.prompts.Summarize, prompt)
}

func (l *librarian) Ask(ctx context.Context, question, contextText string) string {
	if l.gen == nil {
		return l.prompts.Unavailable
	}

	body, _ := truncateRunes(contextText, config.MaxAskContextChars)
	prompt, err := l.prompts.Ask.Render(struct {
		Context  string
		Question string
	}{body, question})
	if err != nil {
		l.logger.Error("render ask prompt", "error", err)
		return l.prompts.Ask.Failed
	}

	return l.generate(ctx, "ask", &l.prompts.Ask, prompt)
}

func (l *librarian) generate(ctx context.Context, task string, cfg *PromptConfig, prompt string) string {
	text, err := l.gen.Generate(ctx, cfg.System, prompt)
	if err != nil {
		l.logger.Error("ai generation failed",
			"task", task,
			"provider", l.gen.Name(),
			"error", err,
		)
		return cfg.Failed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return cfg.Empty
	}
	return text
}

// truncateRunes cuts s to at most n characters
func truncateRunes(s string, n int) (string, bool) {
	if len(s) <= n {
		return s, false
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}
