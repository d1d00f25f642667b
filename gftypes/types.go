// Package gftypes provides shared type definitions for the gfluent module.
package gftypes

import (
	"fmt"
	"log/slog"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"google.golang.org/api/option"
)

// WriteMode controls what happens to existing rows in the destination table.
// It maps to the BigQuery write disposition.
type WriteMode string

// Predefined write modes
const (
	// WriteAppend appends loaded or queried rows to the table. Default.
	WriteAppend WriteMode = "WRITE_APPEND"

	// WriteTruncate replaces the table contents before writing.
	WriteTruncate WriteMode = "WRITE_TRUNCATE"

	// WriteEmpty writes only if the destination table is empty.
	WriteEmpty WriteMode = "WRITE_EMPTY"
)

// Valid reports whether the write mode is one of the allowed values.
func (m WriteMode) Valid() bool {
	switch m {
	case WriteAppend, WriteTruncate, WriteEmpty:
		return true
	}
	return false
}

// Disposition converts the mode to the SDK's write disposition.
func (m WriteMode) Disposition() bigquery.TableWriteDisposition {
	return bigquery.TableWriteDisposition(m)
}

// CreateMode controls whether the destination table may be created on demand.
// It maps to the BigQuery create disposition.
type CreateMode string

// Predefined create modes
const (
	// CreateIfNeeded creates the table when it does not exist. Default.
	CreateIfNeeded CreateMode = "CREATE_IF_NEEDED"

	// CreateNever fails the job when the table does not exist.
	CreateNever CreateMode = "CREATE_NEVER"
)

// Valid reports whether the create mode is one of the allowed values.
func (m CreateMode) Valid() bool {
	return m == CreateIfNeeded || m == CreateNever
}

// Disposition converts the mode to the SDK's create disposition.
func (m CreateMode) Disposition() bigquery.TableCreateDisposition {
	return bigquery.TableCreateDisposition(m)
}

// SourceFormat identifies the data format of files loaded into BigQuery.
type SourceFormat string

// Predefined source formats
const (
	// FormatJSON is newline-delimited JSON. Default.
	FormatJSON SourceFormat = "NEWLINE_DELIMITED_JSON"

	// FormatCSV is comma-separated values.
	FormatCSV SourceFormat = "CSV"

	// FormatAvro is the Avro binary format.
	FormatAvro SourceFormat = "AVRO"

	// FormatParquet is the Parquet columnar format.
	FormatParquet SourceFormat = "PARQUET"

	// FormatORC is the ORC columnar format.
	FormatORC SourceFormat = "ORC"

	// FormatDatastoreBackup is a Cloud Datastore export.
	FormatDatastoreBackup SourceFormat = "DATASTORE_BACKUP"
)

// Valid reports whether the source format is one of the allowed values.
func (f SourceFormat) Valid() bool {
	switch f {
	case FormatJSON, FormatCSV, FormatAvro, FormatParquet, FormatORC, FormatDatastoreBackup:
		return true
	}
	return false
}

// DataFormat converts the format to the SDK's data format constant.
func (f SourceFormat) DataFormat() bigquery.DataFormat {
	return bigquery.DataFormat(f)
}

// DefaultLocation is the BigQuery job and dataset location used when the
// caller does not configure one.
const DefaultLocation = "US"

// TableRef identifies a BigQuery table by project, dataset and table ID.
type TableRef struct {
	ProjectID string
	Dataset   string
	Table     string
}

// String returns the dataset-qualified name without the project ID.
func (r TableRef) String() string {
	return fmt.Sprintf("%s.%s", r.Dataset, r.Table)
}

// FullyQualified returns the project-qualified name usable in SQL when
// wrapped in backticks.
func (r TableRef) FullyQualified() string {
	return fmt.Sprintf("%s.%s.%s", r.ProjectID, r.Dataset, r.Table)
}

// QueryJobSpec is the assembled configuration for a single query job.
// Target nil means the query result is returned to the caller instead of
// being written to a table.
type QueryJobSpec struct {
	SQL        string
	Target     *TableRef
	WriteMode  WriteMode
	CreateMode CreateMode
	Location   string
}

// LoadJobSpec is the assembled configuration for a single load job.
type LoadJobSpec struct {
	Target     TableRef
	SourceURI  string
	Format     SourceFormat
	Schema     bigquery.Schema
	WriteMode  WriteMode
	CreateMode CreateMode
	Location   string
}

// Autodetect reports whether the load job should infer the table schema.
func (s LoadJobSpec) Autodetect() bool {
	return len(s.Schema) == 0
}

// RowIterator yields query result rows one at a time. Next follows the
// semantics of the SDK's row iterator: it fills dst and returns
// iterator.Done after the last row. *bigquery.RowIterator satisfies this
// interface.
type RowIterator interface {
	Next(dst interface{}) error
}

// QueryResult is the outcome of the Query terminal call.
type QueryResult struct {
	// Rows iterates the result set. Set only when no destination
	// table was configured.
	Rows RowIterator

	// RowCount is the number of rows in the result. For a query written
	// to a destination table it is the job's total rows.
	RowCount int64
}

// ClientConfig holds configuration applied when constructing the real
// Google Cloud executors. Options mutate this struct.
type ClientConfig struct {
	// Location is the default BigQuery job and dataset location.
	Location string

	// Logger receives structured operation logs. Nil means discard.
	Logger *slog.Logger

	// CredentialsFile is a path to a service account JSON key file.
	CredentialsFile string

	// CredentialsJSON is raw service account JSON key material.
	CredentialsJSON []byte

	// Endpoint overrides the service endpoint, e.g. for emulators.
	Endpoint string

	// HTTPClient overrides the transport used by the SDK clients.
	HTTPClient *http.Client

	// Scopes overrides the OAuth scopes requested for the Sheets service.
	Scopes []string

	// Filesystem backs local file operations. Nil means the OS filesystem.
	Filesystem fs.Filesystem

	// ClientOptions are passed to the SDK clients verbatim, after the
	// options derived from the fields above.
	ClientOptions []option.ClientOption
}

// GoogleOptions assembles the SDK client options derived from the config.
func (c *ClientConfig) GoogleOptions() []option.ClientOption {
	var opts []option.ClientOption
	if c.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(c.CredentialsFile))
	}
	if len(c.CredentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(c.CredentialsJSON))
	}
	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Endpoint))
	}
	if c.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.HTTPClient))
	}
	if len(c.Scopes) > 0 {
		opts = append(opts, option.WithScopes(c.Scopes...))
	}
	opts = append(opts, c.ClientOptions...)
	return opts
}

// Option configures the construction of a fluent client.
type Option func(*ClientConfig)
