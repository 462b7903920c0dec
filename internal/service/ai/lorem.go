package ai

import (
	"context"
	"strings"

	loremgen "github.com/bozaro/golorem"
)

// LoremGenerator produces placeholder prose for offline development
type LoremGenerator struct {
	generator  *loremgen.Lorem
	paragraphs int
}

// NewLoremGenerator returns a generator that writes a few lorem paragraphs
func NewLoremGenerator() *LoremGenerator {
	return &LoremGenerator{generator: loremgen.New(), paragraphs: 2}
}

func (g *LoremGenerator) Name() string { return "lorem" }

func (g *LoremGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	parts := make([]string, 0, g.paragraphs)
	for i := 0; i < g.paragraphs; i++ {
		parts = append(parts, g.generator.Paragraph(3, 5))
	}
	return strings.Join(parts, "\n\n"), nil
}
