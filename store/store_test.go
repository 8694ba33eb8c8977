package store

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fm "github.com/covidflights/flightmatrix"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestOpenLocal(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.csv", "x,y\n1,2\n")

	o := NewOpener()
	defer o.Close()

	rc, err := o.Open(context.Background(), p)
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "x,y\n1,2\n", string(b))
}

func TestOpenGzip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "flightlist_20200101.csv.gz")
	f, err := os.Create(p)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("origin,destination,day\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	rc, err := NewOpener().Open(context.Background(), p)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "origin,destination,day\n", string(b))
}

func TestOpenMissing(t *testing.T) {
	_, err := NewOpener().Open(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fm.ErrNotFound)

	var fe *fm.FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "open", fe.Op)
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestGlobLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "flightlist_2020_02.csv", "")
	writeFile(t, dir, "flightlist_2020_01.csv", "")
	writeFile(t, dir, "other.csv", "")

	names, err := NewOpener().Glob(context.Background(), filepath.Join(dir, "flightlist_*.csv"))
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "flightlist_2020_01.csv", filepath.Base(names[0]))

	_, err = NewOpener().Glob(context.Background(), filepath.Join(dir, "missing_*.csv"))
	assert.ErrorIs(t, err, fm.ErrNotFound)
}

func TestExpandAllKeepsPatternOrder(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.csv", "")
	a := writeFile(t, dir, "a.csv", "")

	names, err := ExpandAll(context.Background(), NewOpener(), []string{b, filepath.Join(dir, "*.csv")})
	require.NoError(t, err)
	assert.Equal(t, []string{b, a}, names)
}

func TestSplitGCS(t *testing.T) {
	bucket, obj, err := SplitGCS("gs://opensky/covid/flightlist_*.csv.gz")
	require.NoError(t, err)
	assert.Equal(t, "opensky", bucket)
	assert.Equal(t, "covid/flightlist_*.csv.gz", obj)
	assert.Equal(t, "covid/flightlist_", LiteralPrefix(obj))

	_, _, err = SplitGCS("gs:///x")
	assert.Error(t, err)
	_, _, err = SplitGCS("/tmp/x")
	assert.Error(t, err)
	assert.False(t, IsGCS("/tmp/x"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "gs://site/data/flights/x.json", Join("gs://site/data/", "flights/x.json"))
	assert.Equal(t, filepath.Join("data", "flights", "x.json"), Join("data", "flights/x.json"))
}

func TestLocalSink(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSink(context.Background(), dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(context.Background(), "flights/output/flights_countries.json", []byte(`{}`), "application/json"))
	b, err := os.ReadFile(filepath.Join(dir, "flights", "output", "flights_countries.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(b))
	assert.Equal(t, filepath.Join(dir, "x.json"), s.Location("x.json"))
}

func TestLocalSinkUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := writeFile(t, dir, "file", "")

	s := NewLocalSink(blocker) // a file where a directory should be
	err := s.Put(context.Background(), "out.json", []byte("{}"), "application/json")
	require.Error(t, err)
	var fe *fm.FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "write", fe.Op)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", ContentType("a/b.json"))
	assert.Equal(t, "text/csv", ContentType("x.CSV"))
	assert.Equal(t, "application/x-ndjson", ContentType("rows.ndjson"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}
