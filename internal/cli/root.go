package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// current is the app built for the running command, closed after it returns
var current *app

var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Manage a Library Sanctum document tree from the terminal",
	Long: `shelf edits the folder tree of a Library Sanctum server: create, move,
rename and delete documents, upload PDFs and Google links, import local files
and Notion pages, and ask the librarian about a document.

Nodes are addressed by id or by a path of names, e.g. "Research/notes.md".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/shelf/config.yaml)")
	flags.String("server", "", "library server URL")
	flags.String("token", "", "bearer token for the server")
	flags.BoolP("yes", "y", false, "answer yes to overwrite prompts")
	flags.BoolP("verbose", "v", false, "log requests to stderr")

	cobra.CheckErr(viper.BindPFlag("server", flags.Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("token", flags.Lookup("token")))
	cobra.CheckErr(viper.BindPFlag("yes", flags.Lookup("yes")))
	cobra.CheckErr(viper.BindPFlag("verbose", flags.Lookup("verbose")))
}

// withApp wraps a command body so it runs against a loaded store
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), loadSettings(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		current = a
		return fn(cmd.Context(), a, args)
	}
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if current != nil {
		current.close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
