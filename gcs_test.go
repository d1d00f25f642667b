package gfluent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gferrors "github.com/simple-dev-tools/gfluent/errors"
	"github.com/simple-dev-tools/gfluent/internal/testutil"
)

func newMemGCS(t *testing.T, api StorageAPI, files map[string]string) *GCS {
	t.Helper()
	memfs := billy.NewInMemoryFS()
	for name, content := range files {
		require.NoError(t, memfs.WriteFile(name, []byte(content), 0o644))
	}
	return NewGCSWithClient("proj", api, WithFilesystem(memfs))
}

func TestNewGCS_EmptyProject(t *testing.T) {
	_, err := NewGCS(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, gferrors.ErrInvalidOption)
}

func TestGCS_Upload_Directory(t *testing.T) {
	type object struct {
		key     string
		content string
	}
	var uploaded []object
	mock := &testutil.MockStorage{
		UploadFunc: func(_ context.Context, bucket, key, contentType string, r io.Reader) error {
			assert.Equal(t, "my-bucket", bucket)
			assert.NotEmpty(t, contentType)
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			uploaded = append(uploaded, object{key: key, content: string(data)})
			return nil
		},
	}

	g := newMemGCS(t, mock, map[string]string{
		"data/products.json": `{"id":1}`,
		"data/orders.json":   `{"id":2}`,
		"data/readme.txt":    "not data",
	})

	n, err := g.Local("data").
		Suffix(".json").
		Bucket("my-bucket").
		Prefix("staging/2024").
		Upload(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, uploaded, 2)

	sort.Slice(uploaded, func(i, j int) bool { return uploaded[i].key < uploaded[j].key })
	assert.Equal(t, "staging/2024/orders.json", uploaded[0].key)
	assert.Equal(t, `{"id":2}`, uploaded[0].content)
	assert.Equal(t, "staging/2024/products.json", uploaded[1].key)
}

func TestGCS_Upload_SingleFileWithoutPrefix(t *testing.T) {
	var gotKey string
	mock := &testutil.MockStorage{
		UploadFunc: func(_ context.Context, _, key, _ string, _ io.Reader) error {
			gotKey = key
			return nil
		},
	}

	g := newMemGCS(t, mock, map[string]string{"exports/products.csv": "id,name\n1,widget\n"})
	n, err := g.Local("exports/products.csv").Bucket("my-bucket").Upload(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "products.csv", gotKey)
}

func TestGCS_Upload_Incomplete(t *testing.T) {
	g := newMemGCS(t, &testutil.MockStorage{}, map[string]string{"data/a.json": "{}"})
	_, err := g.Local("data").Upload(context.Background())
	assert.ErrorIs(t, err, gferrors.ErrIncompleteConfig)

	g = newMemGCS(t, &testutil.MockStorage{}, nil)
	_, err = g.Bucket("my-bucket").Upload(context.Background())
	assert.ErrorIs(t, err, gferrors.ErrIncompleteConfig)
}

func TestGCS_Local_MissingPath(t *testing.T) {
	g := newMemGCS(t, &testutil.MockStorage{}, nil)
	g.Local("no/such/path")
	assert.ErrorIs(t, g.Err(), gferrors.ErrInvalidOption)
}

func TestGCS_Bucket_StripsScheme(t *testing.T) {
	var gotBucket string
	mock := &testutil.MockStorage{
		UploadFunc: func(_ context.Context, bucket, _, _ string, _ io.Reader) error {
			gotBucket = bucket
			return nil
		},
	}

	g := newMemGCS(t, mock, map[string]string{"data/a.json": "{}"})
	_, err := g.Local("data/a.json").Bucket("gs://my-bucket").Upload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", gotBucket)

	g = newMemGCS(t, &testutil.MockStorage{}, nil)
	g.Bucket("gs://")
	assert.ErrorIs(t, g.Err(), gferrors.ErrInvalidOption)
}

func TestGCS_Upload_ExecutorErrorPassthrough(t *testing.T) {
	denied := errors.New("storage: permission denied")
	mock := &testutil.MockStorage{
		UploadFunc: func(context.Context, string, string, string, io.Reader) error {
			return denied
		},
	}

	g := newMemGCS(t, mock, map[string]string{"data/a.json": "{}"})
	_, err := g.Local("data/a.json").Bucket("my-bucket").Upload(context.Background())
	assert.ErrorIs(t, err, denied)
}

func TestGCS_Download(t *testing.T) {
	memfs := billy.NewInMemoryFS()
	require.NoError(t, memfs.MkdirAll("incoming", 0o755))

	mock := &testutil.MockStorage{
		ListFunc: func(_ context.Context, bucket, prefix, delimiter string) ([]string, error) {
			assert.Equal(t, "my-bucket", bucket)
			assert.Equal(t, "staging/", prefix, "listing is anchored past the key separator")
			assert.Equal(t, "/", delimiter)
			return []string{"staging/products.json", "staging/archive/"}, nil
		},
		NewReaderFunc: func(_ context.Context, _, key string) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte(`{"id":1}`))), nil
		},
	}

	g := NewGCSWithClient("proj", mock, WithFilesystem(memfs))
	n, err := g.Local("incoming").
		Bucket("my-bucket").
		Prefix("staging").
		Download(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n, "directory placeholders are skipped")

	data, err := memfs.ReadFile("incoming/products.json")
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, string(data))
}

// TestGCS_Download_PrefixAlreadyAnchored verifies a prefix carrying its own
// trailing slash is not doubled when listing.
func TestGCS_Download_PrefixAlreadyAnchored(t *testing.T) {
	memfs := billy.NewInMemoryFS()
	require.NoError(t, memfs.MkdirAll("incoming", 0o755))

	var gotPrefix string
	mock := &testutil.MockStorage{
		ListFunc: func(_ context.Context, _, prefix, _ string) ([]string, error) {
			gotPrefix = prefix
			return nil, nil
		},
	}

	g := NewGCSWithClient("proj", mock, WithFilesystem(memfs))
	_, err := g.Local("incoming").
		Bucket("my-bucket").
		Prefix("staging/").
		Download(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "staging/", gotPrefix)
}

// failCloseFS wraps a filesystem so that files it creates fail on Close.
type failCloseFS struct {
	fs.Filesystem
	closeErr error
}

type failCloseFile struct {
	fs.File
	closeErr error
}

func (f *failCloseFS) Create(name string) (fs.File, error) {
	file, err := f.Filesystem.Create(name)
	if err != nil {
		return nil, err
	}
	return &failCloseFile{File: file, closeErr: f.closeErr}, nil
}

func (f *failCloseFile) Close() error {
	f.File.Close()
	return f.closeErr
}

// TestGCS_Download_ReportsCloseError verifies a failed flush of the
// destination file is not swallowed.
func TestGCS_Download_ReportsCloseError(t *testing.T) {
	memfs := billy.NewInMemoryFS()
	require.NoError(t, memfs.MkdirAll("incoming", 0o755))
	flushErr := errors.New("disk full")

	mock := &testutil.MockStorage{
		ListFunc: func(context.Context, string, string, string) ([]string, error) {
			return []string{"staging/products.json"}, nil
		},
		NewReaderFunc: func(context.Context, string, string) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte(`{"id":1}`))), nil
		},
	}

	g := NewGCSWithClient("proj", mock,
		WithFilesystem(&failCloseFS{Filesystem: memfs, closeErr: flushErr}))
	n, err := g.Local("incoming").
		Bucket("my-bucket").
		Prefix("staging").
		Download(context.Background())

	assert.ErrorIs(t, err, flushErr)
	assert.Zero(t, n)
}

func TestGCS_Download_RequiresDirectory(t *testing.T) {
	g := newMemGCS(t, &testutil.MockStorage{}, map[string]string{"data/a.json": "{}"})
	_, err := g.Local("data/a.json").
		Bucket("my-bucket").
		Prefix("staging").
		Download(context.Background())
	assert.ErrorIs(t, err, gferrors.ErrInvalidOption)
}

func TestGCS_Download_Incomplete(t *testing.T) {
	g := newMemGCS(t, &testutil.MockStorage{}, map[string]string{"data/a.json": "{}"})
	_, err := g.Local("data").Bucket("my-bucket").Download(context.Background())
	assert.ErrorIs(t, err, gferrors.ErrIncompleteConfig)
}

func TestGCS_Delete(t *testing.T) {
	var deleted []string
	mock := &testutil.MockStorage{
		ListFunc: func(_ context.Context, _, prefix, delimiter string) ([]string, error) {
			assert.Equal(t, "staging", prefix)
			assert.Empty(t, delimiter, "delete lists recursively")
			return []string{"staging/a.json", "staging/b.json", "staging/sub/c.json"}, nil
		},
		DeleteFunc: func(_ context.Context, _, key string) error {
			deleted = append(deleted, key)
			return nil
		},
	}

	g := NewGCSWithClient("proj", mock)
	n, err := g.Bucket("my-bucket").Prefix("staging").Delete(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, deleted, 3)
}

func TestGCS_Delete_RequiresPrefix(t *testing.T) {
	g := NewGCSWithClient("proj", &testutil.MockStorage{})
	_, err := g.Bucket("my-bucket").Delete(context.Background())
	assert.ErrorIs(t, err, gferrors.ErrIncompleteConfig)
}

func TestGCS_Close(t *testing.T) {
	closed := false
	mock := &testutil.MockStorage{CloseFunc: func() error {
		closed = true
		return nil
	}}

	require.NoError(t, NewGCSWithClient("proj", mock).Close())
	assert.True(t, closed)
}
