package gfluent

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"

	gferrors "github.com/simple-dev-tools/gfluent/errors"
	"github.com/simple-dev-tools/gfluent/gftypes"
	"github.com/simple-dev-tools/gfluent/internal/gcpapi"
	"github.com/simple-dev-tools/gfluent/internal/validation"
)

// BQ is a fluent BigQuery client. Chained setters accumulate a validated
// job configuration; a terminal call (Query, Load, Truncate, Delete, ...)
// assembles one job spec and fires exactly one remote operation through the
// injected executor.
//
// Setters validate immediately and record the first violation; the terminal
// call surfaces it before any remote dispatch. A BQ value is intended for a
// single logical task on a single goroutine.
//
// Example:
//
//	bq, err := gfluent.NewBQ(ctx, "my-project")
//	if err != nil {
//	    return err
//	}
//	defer bq.Close()
//
//	rows, err := bq.Table("sales.products").
//	    GCS("gs://bucket/staging/*.json").
//	    Mode(gftypes.WriteTruncate).
//	    Load(ctx)
type BQ struct {
	projectID string
	api       BigQueryAPI
	logger    *slog.Logger

	table      *gftypes.TableRef
	gcsURI     string
	sql        string
	schema     bigquery.Schema
	mode       gftypes.WriteMode
	createMode gftypes.CreateMode
	format     gftypes.SourceFormat
	location   string

	err error
}

// NewBQ creates a fluent BigQuery client for the given project, backed by
// the real BigQuery service. Credentials are resolved by the SDK's default
// chain unless overridden through options.
func NewBQ(ctx context.Context, projectID string, opts ...gftypes.Option) (*BQ, error) {
	if projectID == "" {
		return nil, gferrors.NewError("bq", gferrors.ErrInvalidOption).
			WithMessage("project id must not be empty")
	}

	cfg := newClientConfig(opts...)
	api, err := gcpapi.NewBigQueryClient(ctx, projectID, cfg)
	if err != nil {
		return nil, err
	}
	return newBQ(projectID, api, cfg), nil
}

// NewBQWithClient creates a fluent BigQuery client with an injected
// executor. This is primarily used for testing with mocked executors.
func NewBQWithClient(projectID string, api BigQueryAPI, opts ...gftypes.Option) *BQ {
	return newBQ(projectID, api, newClientConfig(opts...))
}

func newBQ(projectID string, api BigQueryAPI, cfg *gftypes.ClientConfig) *BQ {
	return &BQ{
		projectID:  projectID,
		api:        api,
		logger:     cfg.Logger,
		mode:       gftypes.WriteAppend,
		createMode: gftypes.CreateIfNeeded,
		format:     gftypes.FormatJSON,
		location:   cfg.Location,
	}
}

// fail records the first violation; later setters and terminals see it.
func (b *BQ) fail(err error) *BQ {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the first violation recorded by a setter, if any.
func (b *BQ) Err() error {
	return b.err
}

// Table sets the destination table using the dataset.table format, without
// the project ID.
func (b *BQ) Table(ref string) *BQ {
	parsed, err := validation.ParseTableRef(b.projectID, ref)
	if err != nil {
		return b.fail(err)
	}
	b.table = &parsed
	return b
}

// GCS sets the source location for Load. Single object or wildcard pattern,
// with the gs:// prefix.
func (b *BQ) GCS(uri string) *BQ {
	if err := validation.ValidateGCSURI(uri); err != nil {
		return b.fail(err)
	}
	b.gcsURI = uri
	return b
}

// SQL sets the query statement. Only SELECT and WITH statements are
// accepted.
func (b *BQ) SQL(query string) *BQ {
	if err := validation.ValidateSQL(query); err != nil {
		return b.fail(err)
	}
	b.sql = query
	return b
}

// Schema sets an explicit table schema for Load. When not set, the load job
// autodetects the schema.
func (b *BQ) Schema(schema bigquery.Schema) *BQ {
	b.schema = schema
	return b
}

// Mode sets the write disposition. Default is WriteAppend.
func (b *BQ) Mode(mode gftypes.WriteMode) *BQ {
	if !mode.Valid() {
		return b.fail(gferrors.NewResourceError("mode", string(mode), gferrors.ErrInvalidOption).
			WithMessage("must be one of WRITE_APPEND|WRITE_TRUNCATE|WRITE_EMPTY"))
	}
	b.mode = mode
	return b
}

// CreateMode sets the create disposition. Default is CreateIfNeeded.
func (b *BQ) CreateMode(mode gftypes.CreateMode) *BQ {
	if !mode.Valid() {
		return b.fail(gferrors.NewResourceError("create_mode", string(mode), gferrors.ErrInvalidOption).
			WithMessage("must be one of CREATE_IF_NEEDED|CREATE_NEVER"))
	}
	b.createMode = mode
	return b
}

// Format sets the data format of loaded files. Default is
// newline-delimited JSON.
func (b *BQ) Format(format gftypes.SourceFormat) *BQ {
	if !format.Valid() {
		return b.fail(gferrors.NewResourceError("format", string(format), gferrors.ErrInvalidOption).
			WithMessage("unknown source format"))
	}
	b.format = format
	return b
}

// Location sets the job location. Default is "US" and must match the
// destination dataset.
func (b *BQ) Location(location string) *BQ {
	if location == "" {
		return b.fail(gferrors.NewError("location", gferrors.ErrInvalidOption).
			WithMessage("location must not be empty"))
	}
	b.location = location
	return b
}

// Query runs the configured SQL statement. With a destination table set the
// query result is written to it and the returned QueryResult carries the row
// count; otherwise the QueryResult carries the row iterator.
//
// Any failure from the BigQuery service is returned unchanged.
func (b *BQ) Query(ctx context.Context) (*gftypes.QueryResult, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.sql == "" {
		return nil, gferrors.NewError("query", gferrors.ErrIncompleteConfig).
			WithMessage("SQL must be called before Query")
	}

	spec := gftypes.QueryJobSpec{
		SQL:        b.sql,
		WriteMode:  b.mode,
		CreateMode: b.createMode,
		Location:   b.location,
	}

	if b.table != nil {
		spec.Target = b.table
		n, err := b.api.QueryToTable(ctx, spec)
		if err != nil {
			return nil, err
		}
		return &gftypes.QueryResult{RowCount: n}, nil
	}

	rows, err := b.api.Query(ctx, spec)
	if err != nil {
		return nil, err
	}
	return &gftypes.QueryResult{Rows: rows}, nil
}

// Load runs a load job from the configured GCS location into the destination
// table and returns the table's row count once the job completes.
//
// Table and GCS must be called first. Schema is optional; when absent the
// job autodetects. Mode, CreateMode and Format have defaults.
func (b *BQ) Load(ctx context.Context) (int64, error) {
	if b.err != nil {
		return 0, b.err
	}
	if b.table == nil || b.gcsURI == "" {
		return 0, gferrors.NewError("load", gferrors.ErrIncompleteConfig).
			WithMessage("Table and GCS must be called before Load")
	}

	return b.api.LoadURI(ctx, gftypes.LoadJobSpec{
		Target:     *b.table,
		SourceURI:  b.gcsURI,
		Format:     b.format,
		Schema:     b.schema,
		WriteMode:  b.mode,
		CreateMode: b.createMode,
		Location:   b.location,
	})
}

// Truncate deletes all rows in the destination table.
func (b *BQ) Truncate(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if b.table == nil {
		return gferrors.NewError("truncate", gferrors.ErrIncompleteConfig).
			WithMessage("Table must be called before Truncate")
	}

	stmt := fmt.Sprintf("TRUNCATE TABLE `%s`", b.table.FullyQualified())
	b.logger.Info("truncating table", "table", b.table.FullyQualified())
	return b.api.Exec(ctx, stmt, b.location)
}

// Delete drops the destination table. No error is returned if the table
// does not exist.
func (b *BQ) Delete(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if b.table == nil {
		return gferrors.NewError("delete", gferrors.ErrIncompleteConfig).
			WithMessage("Table must be called before Delete")
	}
	return b.api.DeleteTable(ctx, *b.table)
}

// Drop is an alias of Delete.
func (b *BQ) Drop(ctx context.Context) error {
	return b.Delete(ctx)
}

// Exists reports whether the destination table exists.
func (b *BQ) Exists(ctx context.Context) (bool, error) {
	if b.err != nil {
		return false, b.err
	}
	if b.table == nil {
		return false, gferrors.NewError("exists", gferrors.ErrIncompleteConfig).
			WithMessage("Table must be called before Exists")
	}
	return b.api.TableExists(ctx, *b.table)
}

// CreateDataset creates the given dataset, without the project ID, in the
// configured location.
func (b *BQ) CreateDataset(ctx context.Context, dataset string) error {
	if b.err != nil {
		return b.err
	}
	if dataset == "" {
		return gferrors.NewError("create_dataset", gferrors.ErrIncompleteConfig).
			WithMessage("dataset must not be empty")
	}
	return b.api.CreateDataset(ctx, dataset, b.location)
}

// DeleteDataset deletes the given dataset together with its contents. No
// error is returned if the dataset does not exist.
func (b *BQ) DeleteDataset(ctx context.Context, dataset string) error {
	if b.err != nil {
		return b.err
	}
	if dataset == "" {
		return gferrors.NewError("delete_dataset", gferrors.ErrIncompleteConfig).
			WithMessage("dataset must not be empty")
	}
	return b.api.DeleteDataset(ctx, dataset)
}

// Close releases the underlying client.
func (b *BQ) Close() error {
	return b.api.Close()
}
