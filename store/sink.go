package store

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"

	fm "github.com/covidflights/flightmatrix"
)

// Sink receives finished artifacts. Names are relative, slash separated.
type Sink interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	// Location is where name ends up, for logging.
	Location(name string) string
	Close() error
}

// NewSink writes to GCS when dest is a gs:// name, else under a local directory.
func NewSink(ctx context.Context, dest string) (Sink, error) {
	if IsGCS(dest) {
		bucket, prefix, err := SplitGCS(dest)
		if err != nil {
			return nil, err
		}
		return NewGCSSink(ctx, bucket, prefix)
	}
	return NewLocalSink(dest), nil
}

// ContentType guesses from the extension, defaulting to octet-stream.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return "application/json"
	case ".ndjson":
		return "application/x-ndjson"
	case ".csv":
		return "text/csv"
	}
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// {{{ LocalSink

type LocalSink struct {
	Dir string
}

func NewLocalSink(dir string) *LocalSink { return &LocalSink{Dir: dir} }

func (s *LocalSink) Location(name string) string {
	if s.Dir == "" {
		return filepath.FromSlash(name)
	}
	return filepath.Join(s.Dir, filepath.FromSlash(name))
}

func (s *LocalSink) Put(ctx context.Context, name string, data []byte, contentType string) error {
	full := s.Location(name)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &fm.FileError{Op: "write", Path: full, Err: err}
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return &fm.FileError{Op: "write", Path: full, Err: err}
	}
	return nil
}

func (s *LocalSink) Close() error { return nil }

// }}}
// {{{ GCSSink

type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSSink(ctx context.Context, bucket, prefix string) (*GCSSink, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSSink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (s *GCSSink) object(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *GCSSink) Location(name string) string {
	return gcsScheme + s.bucket + "/" + s.object(name)
}

func (s *GCSSink) Put(ctx context.Context, name string, data []byte, contentType string) error {
	w := s.client.Bucket(s.bucket).Object(s.object(name)).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=3600"

	if _, err := w.Write(data); err != nil {
		w.Close()
		return &fm.FileError{Op: "write", Path: s.Location(name), Err: err}
	}
	if err := w.Close(); err != nil {
		return &fm.FileError{Op: "write", Path: s.Location(name), Err: err}
	}
	return nil
}

func (s *GCSSink) Close() error { return s.client.Close() }

// }}}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
