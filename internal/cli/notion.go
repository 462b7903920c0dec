package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sanctum/internal/domain/models/library"
	notionSvc "sanctum/internal/domain/services/notion"
	"sanctum/internal/treestore"
)

var notionImportAll bool

var notionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Browse and import Notion pages",
	Long: `Browse and import pages from a Notion workspace. The integration token is
read from --notion-token, SHELF_NOTION_TOKEN or notion_token in the config file
and is only ever sent along with the request.`,
}

var notionSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "List the pages the integration can see",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.notionSearch(ctx)
	}),
}

var notionImportCmd = &cobra.Command{
	Use:   "import [page-id]...",
	Short: "Import pages as markdown documents in the root folder",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if len(args) == 0 && !notionImportAll {
			return errors.New("give page ids or --all")
		}
		return a.notionImport(ctx, args)
	}),
}

func init() {
	notionCmd.PersistentFlags().String("notion-token", "", "Notion integration token")
	cobra.CheckErr(viper.BindPFlag("notion_token", notionCmd.PersistentFlags().Lookup("notion-token")))
	notionImportCmd.Flags().BoolVar(&notionImportAll, "all", false, "import every page the integration can see")

	notionCmd.AddCommand(notionSearchCmd, notionImportCmd)
	rootCmd.AddCommand(notionCmd)
}

func (a *app) notionToken() (string, error) {
	if a.settings.NotionToken == "" {
		return "", errors.New("no Notion token configured")
	}
	return a.settings.NotionToken, nil
}

func (a *app) notionSearch(ctx context.Context) error {
	token, err := a.notionToken()
	if err != nil {
		return err
	}
	pages, err := a.api.NotionPages(ctx, token)
	if err != nil {
		return fmt.Errorf("search notion: %w", err)
	}
	if len(pages) == 0 {
		fmt.Fprintln(a.out, "No pages found.")
		return nil
	}
	for _, p := range pages {
		fmt.Fprintf(a.out, "%s  %s\n", p.ID, strings.TrimSpace(p.Icon+" "+p.Title))
	}
	return nil
}

// notionImport fetches the chosen pages (all of them when ids is empty) and
// adds them in one batch. Pages that fail to render are reported and skipped.
func (a *app) notionImport(ctx context.Context, ids []string) error {
	token, err := a.notionToken()
	if err != nil {
		return err
	}
	pages, err := a.api.NotionPages(ctx, token)
	if err != nil {
		return fmt.Errorf("search notion: %w", err)
	}

	selected := pages
	if len(ids) > 0 {
		byID := make(map[string]notionSvc.Page, len(pages))
		for _, p := range pages {
			byID[p.ID] = p
		}
		selected = selected[:0:0]
		for _, id := range ids {
			p, ok := byID[id]
			if !ok {
				p = notionSvc.Page{ID: id, Title: id}
			}
			selected = append(selected, p)
		}
	}

	var items []treestore.ImportItem
	for _, p := range selected {
		markdown, err := a.api.NotionMarkdown(ctx, token, p.ID)
		if err != nil {
			fmt.Fprintf(a.out, "skipped %s: %v\n", p.ID, err)
			continue
		}
		items = append(items, treestore.ImportItem{
			Name:    notionDocName(p),
			Kind:    library.KindMarkdown,
			Content: markdown,
		})
	}

	if len(items) == 0 {
		return errors.New("nothing to import")
	}
	a.store.ImportBatch(items)
	fmt.Fprintf(a.out, "imported %d page(s)\n", len(items))
	return nil
}

// notionDocName is the page's import name made safe for the server, which
// rejects "/" in names
func notionDocName(p notionSvc.Page) string {
	name := strings.TrimSpace(p.ImportName())
	return strings.ReplaceAll(name, "/", "-")
}
