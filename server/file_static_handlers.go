package server

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"net/http"
	"time"
)

//go:embed static/*
var staticFiles embed.FS

// staticAsset is an embedded file plus the ETag derived from its content.
type staticAsset struct {
	name string
	data []byte
	etag string
}

func loadStaticAsset(name string) (staticAsset, error) {
	data, err := fs.ReadFile(staticFiles, "static/"+name)
	if err != nil {
		return staticAsset{}, fmt.Errorf("static asset %s: %w", name, err)
	}
	sum := sha256.Sum256(data)
	return staticAsset{name: name, data: data, etag: `"` + hex.EncodeToString(sum[:8]) + `"`}, nil
}

// serve answers If-None-Match with 304; the content type comes from the file extension.
func (a staticAsset) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", a.etag)
	http.ServeContent(w, r, a.name, time.Time{}, bytes.NewReader(a.data))
}
