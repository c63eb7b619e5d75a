package storage

import (
	"io"
	"path"
	"time"
)

// BlobStore keeps the raw body of every catalog import so a catalog can be
// rebuilt from exactly what was uploaded.
type BlobStore interface {
	// Put writes r under key and returns the key in canonical form.
	Put(key string, r io.Reader) (string, error)
	Get(key string) (io.ReadCloser, error)
	// SignedURL is a link an operator can fetch the blob from; the FS
	// store hands out file:// URLs.
	SignedURL(key string) (string, error)
}

// ImportKey is where the body of upload uploadID received at t is kept,
// bucketed by UTC day: imports/2026-10-16/<uploadID>.json.
func ImportKey(uploadID string, t time.Time) string {
	return path.Join("imports", t.UTC().Format(time.DateOnly), uploadID+".json")
}
