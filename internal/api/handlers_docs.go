package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
)

// handleListDocuments lists organized documents under the output directory.
// Each document is a subdirectory keyed by doc ID, holding the three output
// buckets.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.cfg.OutputDir)
	if err != nil {
		if os.IsNotExist(err) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"documents": []any{}})
			return
		}
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	docs := []map[string]any{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		docDir := filepath.Join(s.cfg.OutputDir, entry.Name())
		counts := map[string]int{}
		total := 0
		for _, bucket := range []string{"endpoints", "concepts", "overview"} {
			files, err := os.ReadDir(filepath.Join(docDir, bucket))
			if err != nil {
				continue
			}
			n := 0
			for _, f := range files {
				if !f.IsDir() && filepath.Ext(f.Name()) == ".md" {
					n++
				}
			}
			counts[bucket] = n
			total += n
		}
		docs = append(docs, map[string]any{
			"doc_id":  entry.Name(),
			"files":   total,
			"buckets": counts,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": docs})
}
