package gfluent

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	gferrors "github.com/simple-dev-tools/gfluent/errors"
	"github.com/simple-dev-tools/gfluent/gftypes"
	"github.com/simple-dev-tools/gfluent/internal/gcpapi"
	"github.com/simple-dev-tools/gfluent/internal/validation"
)

// DefaultContentType is used when content type detection fails.
const DefaultContentType = "application/octet-stream"

// GCS is a fluent Cloud Storage client. Setters accumulate a local path,
// bucket and object prefix; the terminal Upload, Download and Delete calls
// perform the transfers through the injected executor, one remote operation
// per object.
//
// Example:
//
//	gcs, err := gfluent.NewGCS(ctx, "my-project")
//	if err != nil {
//	    return err
//	}
//	defer gcs.Close()
//
//	n, err := gcs.Local("/data/exports").
//	    Suffix(".json").
//	    Bucket("my-bucket").
//	    Prefix("staging/2024").
//	    Upload(ctx)
type GCS struct {
	projectID string
	api       StorageAPI
	fsys      fs.Filesystem
	logger    *slog.Logger

	localPath  string
	localIsDir bool
	suffix     string
	bucket     string
	prefix     string

	err error
}

// NewGCS creates a fluent Cloud Storage client backed by the real service.
func NewGCS(ctx context.Context, projectID string, opts ...gftypes.Option) (*GCS, error) {
	if projectID == "" {
		return nil, gferrors.NewError("gcs", gferrors.ErrInvalidOption).
			WithMessage("project id must not be empty")
	}

	cfg := newClientConfig(opts...)
	api, err := gcpapi.NewStorageClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newGCS(projectID, api, cfg), nil
}

// NewGCSWithClient creates a fluent Cloud Storage client with an injected
// executor. This is primarily used for testing with mocked executors.
func NewGCSWithClient(projectID string, api StorageAPI, opts ...gftypes.Option) *GCS {
	return newGCS(projectID, api, newClientConfig(opts...))
}

func newGCS(projectID string, api StorageAPI, cfg *gftypes.ClientConfig) *GCS {
	filesystem := cfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}
	return &GCS{
		projectID: projectID,
		api:       api,
		fsys:      filesystem,
		logger:    cfg.Logger,
	}
}

func (g *GCS) fail(err error) *GCS {
	if g.err == nil {
		g.err = err
	}
	return g
}

// Err returns the first violation recorded by a setter, if any.
func (g *GCS) Err() error {
	return g.err
}

// Local sets the local path, either a single file or a directory. For
// Upload a directory means every regular file in it (optionally restricted
// by Suffix); for Download it is the destination directory.
func (g *GCS) Local(localPath string) *GCS {
	info, err := g.fsys.Stat(localPath)
	if err != nil {
		return g.fail(gferrors.NewResourceError("local", localPath, gferrors.ErrInvalidOption).
			WithMessage("not a file or directory"))
	}
	g.localPath = localPath
	g.localIsDir = info.IsDir()
	return g
}

// Suffix restricts directory uploads to files with the given suffix.
func (g *GCS) Suffix(suffix string) *GCS {
	g.suffix = suffix
	return g
}

// Bucket sets the bucket name. A leading gs:// is stripped.
func (g *GCS) Bucket(bucket string) *GCS {
	name := validation.NormalizeBucket(bucket)
	if name == "" {
		return g.fail(gferrors.NewResourceError("bucket", bucket, gferrors.ErrInvalidOption).
			WithMessage("bucket name must not be empty"))
	}
	g.bucket = name
	return g
}

// Prefix sets the object key prefix, without the trailing slash.
func (g *GCS) Prefix(prefix string) *GCS {
	g.prefix = prefix
	return g
}

// Upload uploads the resolved local file(s) to the bucket under the
// configured prefix, keyed by basename. It returns the number of objects
// uploaded. Local and Bucket must be called first.
func (g *GCS) Upload(ctx context.Context) (int, error) {
	if g.err != nil {
		return 0, g.err
	}
	if g.localPath == "" || g.bucket == "" {
		return 0, gferrors.NewError("upload", gferrors.ErrIncompleteConfig).
			WithMessage("Local and Bucket must be called before Upload")
	}

	files, err := g.resolveLocalFiles()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, name := range files {
		if err := g.uploadOne(ctx, name); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (g *GCS) uploadOne(ctx context.Context, name string) error {
	file, err := g.fsys.Open(name)
	if err != nil {
		return gferrors.NewResourceError("upload", name, err)
	}
	defer file.Close()

	key := g.objectKey(filepath.Base(name))
	g.logger.Info("uploading", "local", name, "bucket", g.bucket, "key", key)
	return g.api.Upload(ctx, g.bucket, key, g.detectContentType(name), file)
}

// Download downloads every object under the configured prefix into the
// local directory, keyed by object basename. Objects that only mark a
// directory placeholder are skipped. It returns the number of objects
// downloaded.
func (g *GCS) Download(ctx context.Context) (int, error) {
	if g.err != nil {
		return 0, g.err
	}
	if g.localPath == "" || g.bucket == "" || g.prefix == "" {
		return 0, gferrors.NewError("download", gferrors.ErrIncompleteConfig).
			WithMessage("Local, Bucket and Prefix must be called before Download")
	}
	if !g.localIsDir {
		return 0, gferrors.NewResourceError("download", g.localPath, gferrors.ErrInvalidOption).
			WithMessage("local path must be a directory for Download")
	}

	// Objects are keyed prefix/basename, so the non-recursive listing must
	// anchor past the separator or the delimiter hides every key.
	listPrefix := g.prefix
	if !strings.HasSuffix(listPrefix, "/") {
		listPrefix += "/"
	}
	names, err := g.api.List(ctx, g.bucket, listPrefix, "/")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			g.logger.Warn("skipping directory placeholder", "key", name)
			continue
		}
		if err := g.downloadOne(ctx, name); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (g *GCS) downloadOne(ctx context.Context, name string) error {
	r, err := g.api.NewReader(ctx, g.bucket, name)
	if err != nil {
		return err
	}
	defer r.Close()

	dest := filepath.Join(g.localPath, path.Base(name))
	g.logger.Info("downloading", "key", name, "local", dest)

	file, err := g.fsys.Create(dest)
	if err != nil {
		return gferrors.NewResourceError("download", dest, err)
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return gferrors.NewResourceError("download", dest, err)
	}
	return nil
}

// Delete removes every object under the configured prefix and returns the
// number of objects deleted. Bucket and Prefix must be called first.
func (g *GCS) Delete(ctx context.Context) (int, error) {
	if g.err != nil {
		return 0, g.err
	}
	if g.bucket == "" || g.prefix == "" {
		return 0, gferrors.NewError("delete", gferrors.ErrIncompleteConfig).
			WithMessage("Bucket and Prefix must be called before Delete")
	}

	names, err := g.api.List(ctx, g.bucket, g.prefix, "")
	if err != nil {
		return 0, err
	}

	count := 0
	for _, name := range names {
		if err := g.api.Delete(ctx, g.bucket, name); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.api.Close()
}

// resolveLocalFiles expands the configured local path into the list of
// regular files to upload, applying the suffix filter for directories.
func (g *GCS) resolveLocalFiles() ([]string, error) {
	if !g.localIsDir {
		return []string{g.localPath}, nil
	}

	entries, err := g.fsys.ReadDir(g.localPath)
	if err != nil {
		return nil, gferrors.NewResourceError("upload", g.localPath, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if g.suffix != "" && !strings.HasSuffix(entry.Name(), g.suffix) {
			continue
		}
		files = append(files, filepath.Join(g.localPath, entry.Name()))
	}
	return files, nil
}

// objectKey joins the prefix and basename. An empty prefix keys the object
// by basename alone.
func (g *GCS) objectKey(basename string) string {
	if g.prefix == "" {
		return basename
	}
	return g.prefix + "/" + basename
}

// detectContentType determines the content type by sniffing the file
// contents where possible, falling back to extension-based lookup.
func (g *GCS) detectContentType(name string) string {
	file, err := g.fsys.Open(name)
	if err != nil {
		return g.detectContentTypeFromExtension(name)
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	if n > 0 {
		return mimetype.Detect(buf[:n]).String()
	}

	return g.detectContentTypeFromExtension(name)
}

func (g *GCS) detectContentTypeFromExtension(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return DefaultContentType
}
