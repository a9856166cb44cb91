package rest

import (
	"bytes"
	"context"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/viant/afs"
)

const indexFile = "index.html"

// DirectoryAssets serves files below dir. An empty dir serves nothing.
func DirectoryAssets(dir string) AssetServer {
	if dir == "" {
		return func(string) ([]byte, string, bool) { return nil, "", false }
	}
	fs := afs.New()
	return func(name string) ([]byte, string, bool) {
		name = strings.TrimPrefix(path.Clean("/"+name), "/")
		if name == "" {
			return nil, "", false
		}
		data, err := fs.DownloadWithURL(context.Background(), filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			return nil, "", false
		}
		return data, mimeType(name), true
	}
}

func mimeType(name string) string {
	if ret := mime.TypeByExtension(path.Ext(name)); ret != "" {
		return ret
	}
	return "application/octet-stream"
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	cfg := s.service.Config()
	if !cfg.WWW.Enabled {
		http.NotFound(w, r)
		return
	}
	name := chi.URLParam(r, "*")
	data, contentType, ok := s.assets(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if path.Base(name) == indexFile {
		data = bytes.ReplaceAll(data, []byte("{{BASE_PATH}}"), []byte(cfg.Server.HTTPBasePath))
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
