// Package cli implements the shelf command line: a terminal front end over
// the tree store, synced to a library server.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"sanctum/internal/client"
	aiSvc "sanctum/internal/domain/services/ai"
	notionSvc "sanctum/internal/domain/services/notion"
	"sanctum/internal/treestore"
)

// serverAPI is the part of the server the CLI calls directly, outside the
// tree store
type serverAPI interface {
	Summarize(ctx context.Context, content string, docType aiSvc.DocType) (string, error)
	Ask(ctx context.Context, question, contextText string) (string, error)
	NotionPages(ctx context.Context, notionToken string) ([]notionSvc.Page, error)
	NotionMarkdown(ctx context.Context, notionToken, pageID string) (string, error)
}

// app holds what one command invocation needs
type app struct {
	settings Settings
	logger   *slog.Logger
	api      serverAPI
	store    *treestore.Store
	in       io.Reader
	out      io.Writer
	styles   treeStyles
}

// newApp connects to the configured server and loads the tree
func newApp(ctx context.Context, settings Settings, in io.Reader, out, errOut io.Writer) (*app, error) {
	level := slog.LevelWarn
	if settings.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	api := client.New(settings.Server,
		client.WithToken(settings.Token),
		client.WithLogger(logger),
		client.WithHTTPClient(&http.Client{Timeout: timeout}),
	)

	store := treestore.New(treestore.Options{
		Remote:      api,
		Uploader:    api,
		Confirmer:   newPromptConfirmer(in, errOut, settings.AssumeYes),
		Logger:      logger,
		CallTimeout: timeout,
	})
	if err := store.Load(ctx); err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("load library from %s: %w", settings.Server, err)
	}

	return &app{
		settings: settings,
		logger:   logger,
		api:      api,
		store:    store,
		in:       in,
		out:      out,
		styles:   defaultTreeStyles(),
	}, nil
}

// close waits for queued remote writes, giving up after the call timeout
func (a *app) close() {
	timeout := a.settings.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.store.Close(ctx); err != nil {
		a.logger.Error("pending changes were not sent", "error", err)
	}
}
