package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sanctum/internal/domain/models/library"
	"sanctum/internal/service/library/converter"
	"sanctum/internal/treestore"
)

var uploadTo string

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a PDF, a Google link file, or a text document",
	Long: `Upload a file into a folder. PDFs are stored on the server and linked by
URL. A JSON file holding {"url": "..."} for a Google Doc, Sheet or Slides
becomes a link node. Anything else becomes a markdown document.

A file with the same name in the folder is replaced after you confirm.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		return a.upload(ctx, uploadTo, filepath.Base(args[0]), data)
	}),
}

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import local markdown, text or HTML files into the root folder",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.importFiles(ctx, converter.NewRegistry(), args)
	}),
}

func init() {
	uploadCmd.Flags().StringVar(&uploadTo, "to", "", "destination folder (default is the root)")

	rootCmd.AddCommand(uploadCmd, importCmd)
}

func (a *app) upload(ctx context.Context, folderRef, filename string, data []byte) error {
	parentID, err := resolve(a.store.Snapshot(), folderRef)
	if err != nil {
		return err
	}

	res, err := a.store.UploadFile(ctx, parentID, filename, data)
	if err != nil {
		return fmt.Errorf("upload %s: %w", filename, err)
	}

	path := a.store.Snapshot().Path(res.ID)
	switch {
	case res.Cancelled:
		fmt.Fprintf(a.out, "kept existing %s\n", path)
	case res.Overwritten:
		fmt.Fprintf(a.out, "replaced %s\n", path)
	default:
		fmt.Fprintf(a.out, "uploaded %s\n", path)
	}
	return nil
}

// importFiles converts every supported file and adds them in one batch.
// Unsupported or unreadable files are reported and skipped.
func (a *app) importFiles(ctx context.Context, reg *converter.Registry, paths []string) error {
	var items []treestore.ImportItem
	for _, p := range paths {
		if !reg.Supports(p) {
			fmt.Fprintf(a.out, "skipped %s: unsupported file type\n", p)
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(a.out, "skipped %s: %v\n", p, err)
			continue
		}
		doc, err := reg.ConvertFile(ctx, filepath.Base(p), data)
		if err != nil {
			fmt.Fprintf(a.out, "skipped %s: %v\n", p, err)
			continue
		}
		items = append(items, treestore.ImportItem{
			Name:    doc.Name,
			Kind:    library.KindMarkdown,
			Content: doc.Content,
		})
	}

	if len(items) == 0 {
		return errors.New("nothing to import")
	}
	ids := a.store.ImportBatch(items)
	fmt.Fprintf(a.out, "imported %d document(s)\n", len(ids))
	return nil
}
