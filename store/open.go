// Package store opens pipeline inputs and writes its artifacts, on local disk
// or in Google Cloud Storage. Names of the form gs://bucket/object go to GCS.
package store

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	fm "github.com/covidflights/flightmatrix"
)

const gcsScheme = "gs://"

// Source is what the readers need: open one input, or expand a pattern.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Glob(ctx context.Context, pattern string) ([]string, error)
}

// Opener is the Source for local files and gs:// objects. The GCS client is
// only created the first time a gs:// name shows up.
type Opener struct {
	mu  sync.Mutex
	gcs *storage.Client
}

func NewOpener() *Opener { return &Opener{} }

func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gcs == nil {
		return nil
	}
	err := o.gcs.Close()
	o.gcs = nil
	return err
}

func (o *Opener) client(ctx context.Context) (*storage.Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gcs == nil {
		c, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating GCS client: %w", err)
		}
		o.gcs = c
	}
	return o.gcs, nil
}

// IsGCS reports whether name refers to a GCS object.
func IsGCS(name string) bool { return strings.HasPrefix(name, gcsScheme) }

// SplitGCS turns gs://bucket/a/b into ("bucket", "a/b").
func SplitGCS(name string) (bucket, object string, err error) {
	if !IsGCS(name) {
		return "", "", fmt.Errorf("%q is not a gs:// name", name)
	}
	bucket, object, _ = strings.Cut(strings.TrimPrefix(name, gcsScheme), "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%q has no bucket", name)
	}
	return bucket, object, nil
}

// Join puts a slash-separated name under dir, which may be local or gs://.
func Join(dir, name string) string {
	if IsGCS(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + strings.TrimPrefix(name, "/")
	}
	return filepath.Join(dir, filepath.FromSlash(name))
}

// {{{ o.Open

// Open returns a reader over the named input, gunzipping names ending in .gz.
// A missing input is a *flightmatrix.FileError wrapping ErrNotFound.
func (o *Opener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	var rc io.ReadCloser

	if IsGCS(name) {
		bucket, object, err := SplitGCS(name)
		if err != nil {
			return nil, &fm.FileError{Op: "open", Path: name, Err: err}
		}
		c, err := o.client(ctx)
		if err != nil {
			return nil, &fm.FileError{Op: "open", Path: name, Err: err}
		}
		r, err := c.Bucket(bucket).Object(object).NewReader(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, &fm.FileError{Op: "open", Path: name, Err: fmt.Errorf("%w: %w", fm.ErrNotFound, err)}
		} else if err != nil {
			return nil, &fm.FileError{Op: "open", Path: name, Err: err}
		}
		rc = r

	} else {
		f, err := os.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &fm.FileError{Op: "open", Path: name, Err: fmt.Errorf("%w: %w", fm.ErrNotFound, err)}
		} else if err != nil {
			return nil, &fm.FileError{Op: "open", Path: name, Err: err}
		}
		rc = f
	}

	if !strings.HasSuffix(name, ".gz") {
		return rc, nil
	}
	gz, err := gzip.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, &fm.FileError{Op: "gzopen", Path: name, Err: err}
	}
	return gzipReadCloser{gz, rc}, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	under io.Closer
}

func (g gzipReadCloser) Close() error {
	err := g.Reader.Close()
	if uerr := g.under.Close(); err == nil {
		err = uerr
	}
	return err
}

// }}}
// {{{ o.Glob

// Glob expands a shell pattern into a sorted list of inputs. No match at all
// is ErrNotFound: a run with no flight lists is a misconfiguration.
func (o *Opener) Glob(ctx context.Context, pattern string) ([]string, error) {
	var names []string
	var err error

	if IsGCS(pattern) {
		names, err = o.globGCS(ctx, pattern)
	} else {
		names, err = filepath.Glob(pattern)
	}
	if err != nil {
		return nil, &fm.FileError{Op: "glob", Path: pattern, Err: err}
	}
	if len(names) == 0 {
		return nil, &fm.FileError{Op: "glob", Path: pattern, Err: fm.ErrNotFound}
	}
	sort.Strings(names)
	return names, nil
}

// GCS has no globbing, so list everything under the literal prefix of the
// pattern and match the object names ourselves.
func (o *Opener) globGCS(ctx context.Context, pattern string) ([]string, error) {
	bucket, objPattern, err := SplitGCS(pattern)
	if err != nil {
		return nil, err
	}
	if _, err := path.Match(objPattern, ""); err != nil {
		return nil, err
	}
	c, err := o.client(ctx)
	if err != nil {
		return nil, err
	}

	q := &storage.Query{Prefix: LiteralPrefix(objPattern)}
	names := []string{}
	it := c.Bucket(bucket).Objects(ctx, q)
	for {
		oa, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("GCS-Readdir [gs://%s]%s: %w", bucket, q.Prefix, err)
		}
		if ok, _ := path.Match(objPattern, oa.Name); ok {
			names = append(names, gcsScheme+bucket+"/"+oa.Name)
		}
	}
	return names, nil
}

// LiteralPrefix is the part of a glob pattern before its first metacharacter.
func LiteralPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, `*?[\`); i >= 0 {
		return pattern[:i]
	}
	return pattern
}

// }}}

// ExpandAll globs each pattern in turn, keeping pattern order and dropping
// repeats, so feeds are concatenated in the order they were configured.
func ExpandAll(ctx context.Context, src Source, patterns []string) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range patterns {
		names, err := src.Glob(ctx, p)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out, nil
}

// {{{ -------------------------={ E N D }=----------------------------------

// Local variables:
// folded-file: t
// end:

// }}}
