package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const assetCacheControl = "public, max-age=604800, stale-while-revalidate=86400"

// Assets serves files from fsys with Cache-Control, Vary, and ETag handling.
// Request paths are matched after prefix is stripped. In dev mode every
// response is marked no-cache and ETags are skipped.
func Assets(fsys fs.FS, prefix string, dev bool) http.Handler {
	etags := map[string]string{}
	if !dev {
		_ = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if et, err := fileETag(fsys, p); err == nil {
				etags["/"+p] = et
			}
			return nil
		})
	}
	files := http.StripPrefix(prefix, http.FileServer(http.FS(fsys)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Accept-Encoding")
		if dev {
			w.Header().Set("Cache-Control", "no-cache")
			files.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Cache-Control", assetCacheControl)
		key := path.Clean("/" + strings.TrimPrefix(r.URL.Path, prefix))
		if et := etags[key]; et != "" {
			w.Header().Set("ETag", et)
			if inm := r.Header.Get("If-None-Match"); inm != "" && inm == et {
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}

// AssetsDir serves the directory dir under prefix.
func AssetsDir(dir, prefix string, dev bool) http.Handler {
	return Assets(os.DirFS(dir), prefix, dev)
}

func fileETag(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}
