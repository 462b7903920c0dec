package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sanctum/internal/domain/models/library"
	aiSvc "sanctum/internal/domain/services/ai"
)

var (
	summarizeText string
	askContext    string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <path>",
	Short: "Ask the librarian to summarize a document",
	Long: `Summarize a markdown document. PDFs are stored as links, so pass their
extracted text with --text.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		text := ""
		if summarizeText != "" {
			var err error
			if text, err = readInput(a.in, summarizeText); err != nil {
				return err
			}
		}
		return a.summarize(ctx, args[0], text)
	}),
}

var askCmd = &cobra.Command{
	Use:   "ask <question>...",
	Short: "Ask the librarian a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.ask(ctx, strings.Join(args, " "), askContext)
	}),
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeText, "text", "", "file with the document's text (\"-\" for stdin)")
	askCmd.Flags().StringVar(&askContext, "context", "", "document to ask about")

	rootCmd.AddCommand(summarizeCmd, askCmd)
}

func (a *app) summarize(ctx context.Context, ref, text string) error {
	id, err := resolve(a.store.Snapshot(), ref)
	if err != nil {
		return err
	}
	n, _ := a.store.Node(id)

	docType := aiSvc.DocTypeMarkdown
	switch {
	case n.Kind == library.KindPDF:
		docType = aiSvc.DocTypePDF
		if text == "" {
			return errors.New("PDF text is required, pass --text")
		}
	case n.Content != nil && text == "":
		text = *n.Content
	case text == "":
		return fmt.Errorf("%q has no text to summarize", ref)
	}

	summary, err := a.api.Summarize(ctx, text, docType)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}
	fmt.Fprintln(a.out, summary)
	return nil
}

func (a *app) ask(ctx context.Context, question, contextRef string) error {
	if strings.TrimSpace(question) == "" {
		return errors.New("a question is required")
	}

	contextText := ""
	if contextRef != "" {
		id, err := resolve(a.store.Snapshot(), contextRef)
		if err != nil {
			return err
		}
		if n, ok := a.store.Node(id); ok && n.Content != nil {
			contextText = *n.Content
		}
	}

	answer, err := a.api.Ask(ctx, question, contextText)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}
	fmt.Fprintln(a.out, answer)
	return nil
}
