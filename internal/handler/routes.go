package handler

import "net/http"

// Routes groups the handlers the server mounts. Nil handlers are skipped.
type Routes struct {
	Files  *FileHandler
	Upload *UploadHandler
	AI     *AIHandler
	Notion *NotionHandler

	// Uploads serves locally stored blobs under /uploads/
	Uploads http.Handler
}

// Register mounts every configured route on mux (Go 1.22+ patterns)
func (rt *Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", HealthCheck)

	if rt.Files != nil {
		mux.HandleFunc("GET /api/files", rt.Files.ListFiles)
		mux.HandleFunc("POST /api/files", rt.Files.CreateFile)
		mux.HandleFunc("PUT /api/files/{id}", rt.Files.UpdateFile)
		mux.HandleFunc("DELETE /api/files/{id}", rt.Files.DeleteFile)
	}

	if rt.Upload != nil {
		mux.HandleFunc("POST /api/upload", rt.Upload.Upload)
	}
	if rt.Uploads != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", rt.Uploads))
	}

	if rt.AI != nil {
		mux.HandleFunc("POST /api/ai/summarize", rt.AI.Summarize)
		mux.HandleFunc("POST /api/ai/ask", rt.AI.Ask)
	}

	if rt.Notion != nil {
		mux.HandleFunc("GET /api/notion/pages", rt.Notion.SearchPages)
		mux.HandleFunc("GET /api/notion/pages/{id}/markdown", rt.Notion.PageMarkdown)
	}
}
