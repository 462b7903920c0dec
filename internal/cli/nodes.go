package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sanctum/internal/domain/models/library"
)

var treeShowIDs bool
var editFile string

var treeCmd = &cobra.Command{
	Use:   "tree [path]",
	Short: "Print the library tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		ref := ""
		if len(args) == 1 {
			ref = args[0]
		}
		return a.printTree(ref, treeShowIDs)
	}),
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		_, err := a.create(args[0], library.KindFolder)
		return err
	}),
}

var newCmd = &cobra.Command{
	Use:   "new <path>",
	Short: "Create a markdown document",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		_, err := a.create(args[0], library.KindMarkdown)
		return err
	}),
}

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a node and everything below it",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.remove(args[0])
	}),
}

var mvCmd = &cobra.Command{
	Use:   "mv <path> <folder>",
	Short: "Move a node into another folder",
	Long: `Move a node into another folder. If the folder already holds a node with
the same name you are asked before it is replaced.`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.move(ctx, args[0], args[1])
	}),
}

var renameCmd = &cobra.Command{
	Use:   "rename <path> <new-name>",
	Short: "Rename a node",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.rename(args[0], args[1])
	}),
}

var editCmd = &cobra.Command{
	Use:   "edit <path>",
	Short: "Replace a document's text from a file or stdin",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		text, err := readInput(a.in, editFile)
		if err != nil {
			return err
		}
		return a.edit(args[0], text)
	}),
}

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a document's text, or the URL of a linked file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.cat(args[0])
	}),
}

func init() {
	treeCmd.Flags().BoolVar(&treeShowIDs, "ids", false, "show node ids")
	editCmd.Flags().StringVarP(&editFile, "file", "f", "", "read the text from this file instead of stdin")

	rootCmd.AddCommand(treeCmd, mkdirCmd, newCmd, rmCmd, mvCmd, renameCmd, editCmd, catCmd)
}

func (a *app) printTree(ref string, showIDs bool) error {
	fs := a.store.Snapshot()
	id, err := resolve(fs, ref)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, renderTree(fs, id, showIDs, a.styles))
	return nil
}

func (a *app) create(ref string, kind library.Kind) (string, error) {
	folderRef, name := splitRef(ref)
	if name == "" {
		return "", errors.New("a name is required")
	}

	fs := a.store.Snapshot()
	parentID, err := resolve(fs, folderRef)
	if err != nil {
		return "", err
	}
	if existing := fs.ChildByName(parentID, name); existing != nil {
		return "", fmt.Errorf("%q already exists", ref)
	}

	id, ok := a.store.CreateNode(parentID, kind, name)
	if !ok {
		return "", fmt.Errorf("cannot create %q: %q is not a folder", name, folderRef)
	}
	fmt.Fprintf(a.out, "created %s\n", a.store.Snapshot().Path(id))
	return id, nil
}

func (a *app) remove(ref string) error {
	fs := a.store.Snapshot()
	id, err := resolve(fs, ref)
	if err != nil {
		return err
	}
	path := fs.Path(id)
	if !a.store.DeleteNode(id) {
		return errors.New("the root folder cannot be deleted")
	}
	fmt.Fprintf(a.out, "deleted %s\n", path)
	return nil
}

func (a *app) move(ctx context.Context, ref, folderRef string) error {
	fs := a.store.Snapshot()
	id, err := resolve(fs, ref)
	if err != nil {
		return err
	}
	target, err := resolve(fs, folderRef)
	if err != nil {
		return err
	}

	if !a.store.MoveNode(ctx, id, target) {
		return fmt.Errorf("%s was not moved to %s", fs.Path(id), displayPath(fs, target))
	}
	fmt.Fprintf(a.out, "moved %s\n", a.store.Snapshot().Path(id))
	return nil
}

func (a *app) rename(ref, name string) error {
	id, err := resolve(a.store.Snapshot(), ref)
	if err != nil {
		return err
	}
	if !a.store.RenameNode(id, name) {
		return fmt.Errorf("cannot rename %q to %q", ref, name)
	}
	fmt.Fprintf(a.out, "renamed to %s\n", name)
	return nil
}

func (a *app) edit(ref, text string) error {
	id, err := resolve(a.store.Snapshot(), ref)
	if err != nil {
		return err
	}
	if !a.store.UpdateContent(id, text) {
		return fmt.Errorf("%q is not a markdown document", ref)
	}
	fmt.Fprintf(a.out, "saved %s\n", a.store.Snapshot().Path(id))
	return nil
}

func (a *app) cat(ref string) error {
	fs := a.store.Snapshot()
	id, err := resolve(fs, ref)
	if err != nil {
		return err
	}
	n := fs[id]
	switch {
	case n.Content != nil:
		fmt.Fprintln(a.out, *n.Content)
	case n.ExternalRef != nil:
		fmt.Fprintln(a.out, *n.ExternalRef)
	default:
		return fmt.Errorf("%q has no text", ref)
	}
	return nil
}

func displayPath(fs library.FileSystem, id string) string {
	if id == library.RootID {
		return "/"
	}
	return fs.Path(id)
}

// readInput reads all of path, or of in when path is empty or "-"
func readInput(in io.Reader, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
