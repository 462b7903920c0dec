package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	loremgen "github.com/bozaro/golorem"
	"github.com/joho/godotenv"

	"sanctum/internal/config"
	models "sanctum/internal/domain/models/library"
	librarySvc "sanctum/internal/domain/services/library"
	"sanctum/internal/repository"
	serviceLibrary "sanctum/internal/service/library"
)

// seedEntry is one node to create; Folder is the slash path of its parent
type seedEntry struct {
	Folder  string
	Name    string
	Kind    models.Kind
	Content string
	URL     string
}

func main() {
	clearData := flag.Bool("clear-data", false, "Delete every node and re-create the starter root (keeps schema)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema and the root folder, don't seed documents")
	samples := flag.Int("samples", 5, "Number of lorem ipsum documents to add under Samples/")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *clearData {
		log.Fatalf("🚫 BLOCKED: Cannot run --clear-data in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	db, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if *clearData {
		log.Println("🧹 Clearing library...")
		removed, err := db.Nodes.DeleteSubtree(ctx, models.RootID)
		if err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Printf("✅ Removed %d nodes", removed)
	}

	nodeService := serviceLibrary.NewNodeService(db.Nodes, db.Tx, logger)
	if err := nodeService.EnsureRoot(ctx); err != nil {
		log.Fatalf("Failed to create root: %v", err)
	}
	log.Printf("✅ Schema ready (%s)", db.Driver)

	if *schemaOnly || *clearData {
		return
	}

	log.Printf("🌱 Seeding library (environment: %s)", cfg.Environment)
	plan := seedPlan(loremgen.New(), *samples)
	created, err := apply(ctx, nodeService, plan)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}
	log.Printf("🎉 Seeding complete: %d nodes created", created)
}

// seedPlan lists the starter folders and documents, followed by n generated
// lorem documents. Parents always come before their children.
func seedPlan(lorem *loremgen.Lorem, n int) []seedEntry {
	plan := []seedEntry{
		{Name: "Research", Kind: models.KindFolder},
		{Folder: "Research", Name: "Reading list.md", Kind: models.KindMarkdown,
			Content: "# Reading list\n\n- [ ] The Name of the Rose\n- [ ] Invisible Cities\n- [x] Borges, Labyrinths"},
		{Folder: "Research", Name: "Project plan", Kind: models.KindGoogleDoc,
			URL: "https://docs.google.com/document/d/sample-plan/edit"},
		{Folder: "Research", Name: "Budget", Kind: models.KindGoogleSheet,
			URL: "https://docs.google.com/spreadsheets/d/sample-budget/edit"},
		{Name: "Archive", Kind: models.KindFolder},
		{Folder: "Archive", Name: "2023", Kind: models.KindFolder},
		{Folder: "Archive/2023", Name: "Retrospective.md", Kind: models.KindMarkdown,
			Content: "# Retrospective\n\nWhat went well, what did not, what to try next."},
	}

	if n <= 0 {
		return plan
	}
	plan = append(plan, seedEntry{Name: "Samples", Kind: models.KindFolder})
	for i := 1; i <= n; i++ {
		title := strings.TrimSuffix(lorem.Sentence(2, 4), ".")
		body := "# " + title + "\n\n" + lorem.Paragraph(3, 6) + "\n\n" + lorem.Paragraph(3, 6)
		plan = append(plan, seedEntry{
			Folder:  "Samples",
			Name:    fmt.Sprintf("Sample %02d.md", i),
			Kind:    models.KindMarkdown,
			Content: body,
		})
	}
	return plan
}

// apply creates the plan through the node service so validation runs as it
// would for a client
func apply(ctx context.Context, svc librarySvc.NodeService, plan []seedEntry) (int, error) {
	folders := map[string]string{"": models.RootID}
	created := 0

	for _, e := range plan {
		parentID, ok := folders[e.Folder]
		if !ok {
			return created, fmt.Errorf("seed %s: folder %q not created yet", e.Name, e.Folder)
		}

		req := &librarySvc.CreateNodeRequest{
			ParentID: &parentID,
			Name:     e.Name,
			Type:     e.Kind,
		}
		if e.Content != "" {
			req.Content = &e.Content
		}
		if e.URL != "" {
			req.URL = &e.URL
		}

		node, err := svc.CreateNode(ctx, req)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", e.Name, err)
		}
		created++

		if e.Kind == models.KindFolder {
			path := e.Name
			if e.Folder != "" {
				path = e.Folder + "/" + e.Name
			}
			folders[path] = node.ID
		}
		log.Printf("✅ Created %s/%s", e.Folder, e.Name)
	}
	return created, nil
}
