package gfluent

import (
	"context"
	"io"

	"github.com/simple-dev-tools/gfluent/gftypes"
)

// BigQueryAPI is the remote executor behind the BQ builder. The production
// implementation wraps cloud.google.com/go/bigquery; tests inject mocks.
// Implementations own job submission, polling, authentication and retries.
type BigQueryAPI interface {
	// Query runs a query job and returns the result rows.
	Query(ctx context.Context, spec gftypes.QueryJobSpec) (gftypes.RowIterator, error)

	// QueryToTable runs a query job writing to spec.Target and returns the
	// number of rows in the result.
	QueryToTable(ctx context.Context, spec gftypes.QueryJobSpec) (int64, error)

	// LoadURI runs a load job from a gs:// URI and returns the destination
	// table's row count once the job completes.
	LoadURI(ctx context.Context, spec gftypes.LoadJobSpec) (int64, error)

	// LoadReader runs a load job streaming data from r and returns the
	// number of rows written by the job.
	LoadReader(ctx context.Context, r io.Reader, spec gftypes.LoadJobSpec) (int64, error)

	// Exec runs a DDL/DML statement at the given location and discards the
	// result.
	Exec(ctx context.Context, stmt, location string) error

	// TableExists reports whether the table exists.
	TableExists(ctx context.Context, ref gftypes.TableRef) (bool, error)

	// DeleteTable drops the table. A missing table is not an error.
	DeleteTable(ctx context.Context, ref gftypes.TableRef) error

	// CreateDataset creates a dataset in the given location.
	CreateDataset(ctx context.Context, dataset, location string) error

	// DeleteDataset deletes a dataset together with its contents. A missing
	// dataset is not an error.
	DeleteDataset(ctx context.Context, dataset string) error

	// Close releases the underlying client.
	Close() error
}

// StorageAPI is the remote executor behind the GCS builder. The production
// implementation wraps cloud.google.com/go/storage.
type StorageAPI interface {
	// Upload writes the contents of r to bucket/key with the given content
	// type.
	Upload(ctx context.Context, bucket, key, contentType string, r io.Reader) error

	// List returns the object names under prefix. A non-empty delimiter
	// groups keys the way a filesystem groups directories.
	List(ctx context.Context, bucket, prefix, delimiter string) ([]string, error)

	// NewReader opens the object for reading. The caller closes it.
	NewReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// Delete removes a single object.
	Delete(ctx context.Context, bucket, key string) error

	// Close releases the underlying client.
	Close() error
}

// SheetsAPI is the remote executor behind the Sheet builder. The production
// implementation wraps the Google Sheets v4 service.
type SheetsAPI interface {
	// ReadRange returns the cell values of an A1 range, one slice per row.
	ReadRange(ctx context.Context, spreadsheetID, rangeSpec string) ([][]interface{}, error)
}
